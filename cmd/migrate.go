package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gangland/server/gangland"
	"github.com/gangland/server/gangland/database"
	"github.com/gangland/server/gangland/migration"
	"github.com/gangland/server/internal/clock"
	"github.com/gangland/server/internal/gateways/database/repositories"
)

var (
	migrateMongoURI  string
	migrateBatchSize int
	migrateDryRun    bool
	migrateReset     bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "import players from the legacy mongo deployment",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		uri := migrateMongoURI
		if uri == "" {
			uri = cfg.Mongo.URI
		}
		if uri == "" {
			return errors.New("no mongo uri: set [mongo].uri or pass --mongo-uri")
		}

		db, err := database.New(ctx, cfg.DB)
		if err != nil {
			slog.Error("Failed to connect to database", slog.String("type", "db"), slog.Any("error", err))
			return err
		}
		defer db.Close()

		if err := db.InitializeSchema(ctx); err != nil {
			return err
		}
		if migrateReset && !migrateDryRun {
			slog.Warn("Resetting game tables before import", slog.String("type", "db"))
			if err := db.ResetGameTables(ctx); err != nil {
				return err
			}
		}

		tablesSource, err := gangland.NewTablesSource(ctx, cfg)
		if err != nil {
			return err
		}
		t, err := tablesSource.Tables(ctx)
		if err != nil {
			return err
		}

		client, err := migration.ConnectMongo(ctx, uri)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				slog.Warn("Failed to disconnect from mongo", slog.String("type", "db"), slog.Any("error", err))
			}
		}()

		migrator := migration.NewMigrator(
			migration.NewMongoSource(client, cfg.Mongo.Database, cfg.Mongo.Collection),
			repositories.NewPlayerImporter(db.BunDB()),
			t,
			clock.System{},
		)
		migrator.SetBatchSize(migrateBatchSize)
		migrator.SetDryRun(migrateDryRun)

		stats, err := migrator.MigratePlayers(ctx)
		if err != nil {
			slog.Error("Migration failed", slog.String("type", "db"), slog.Any("error", err))
			return err
		}
		slog.Info("Migration completed",
			slog.String("type", "db"),
			slog.Int64("written", stats.Written),
			slog.Duration("took", stats.Duration))
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateMongoURI, "mongo-uri", "", "legacy mongo uri, overrides [mongo].uri")
	migrateCmd.Flags().IntVar(&migrateBatchSize, "batch-size", 0, "players per insert")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "convert without writing")
	migrateCmd.Flags().BoolVar(&migrateReset, "reset", false, "truncate game tables before importing")
	rootCmd.AddCommand(migrateCmd)
}
