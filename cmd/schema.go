package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gangland/server/gangland/database"
)

var schemaReset bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "create the game tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := database.New(ctx, cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.InitializeSchema(ctx); err != nil {
			return err
		}
		if schemaReset {
			if err := db.ResetGameTables(ctx); err != nil {
				return err
			}
			slog.Warn("Game tables truncated", slog.String("type", "db"))
		}
		slog.Info("Schema ready", slog.String("type", "db"), slog.String("database", cfg.DB.Database))
		return nil
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaReset, "reset", false, "truncate every game table")
	rootCmd.AddCommand(schemaCmd)
}
