package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gangland/server/gangland"
	"github.com/gangland/server/gangland/api"
	"github.com/gangland/server/gangland/background"
	"github.com/gangland/server/gangland/config"
	"github.com/gangland/server/gangland/database"
	"github.com/gangland/server/gangland/logger"
	"github.com/gangland/server/gangland/services"
	"github.com/gangland/server/internal/clock"
	"github.com/gangland/server/internal/domain/game"
	"github.com/gangland/server/internal/gateways/database/repositories"
	"github.com/gangland/server/internal/gateways/memory"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	path := flag.String("config", "config.toml", "path to config")
	initSchema := flag.Bool("init-schema", false, "create tables and indexes on startup")
	inMemory := flag.Bool("memory", false, "keep game state in memory instead of postgres")
	flag.Parse()

	cfg, err := gangland.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.SetDefault(slog.New(logger.NewHandler(os.Stdout, logger.Options{
		Level:   cfg.Log.Level,
		NoColor: cfg.Log.NoColor,
	})))
	slog.Info("Starting gangland server",
		slog.String("type", "sys"),
		slog.String("version", version),
		slog.String("commit", commit))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var (
		repo game.Repository
		ping func(context.Context) error
		db   *database.DB
	)
	if *inMemory {
		slog.Warn("Running with in-memory storage, state is lost on exit", slog.String("type", "sys"))
		repo = memory.New()
	} else {
		dbStart := time.Now()
		db, err = database.New(ctx, cfg.DB)
		if err != nil {
			slog.Error("Database connection failed",
				slog.String("type", "db"),
				slog.String("error", err.Error()),
				slog.Duration("attempted_for", time.Since(dbStart)))
			os.Exit(-1)
		}
		defer db.Close()
		slog.Info("Database connected",
			slog.String("type", "db"),
			slog.String("database", cfg.DB.Database),
			slog.Duration("took", time.Since(dbStart)))

		if *initSchema {
			if err := db.InitializeSchema(ctx); err != nil {
				slog.Error("Failed to initialize schema", slog.String("type", "db"), slog.Any("error", err))
				os.Exit(-1)
			}
		}
		repo = repositories.NewGameRepository(db.BunDB())
		ping = db.Ping
	}

	tablesSource, err := gangland.NewTablesSource(ctx, cfg)
	if err != nil {
		slog.Error("Failed to set up game tables", slog.String("type", "sys"), slog.Any("error", err))
		os.Exit(-1)
	}
	if _, err := tablesSource.Tables(ctx); err != nil {
		slog.Error("Failed to load game tables", slog.String("type", "sys"), slog.Any("error", err))
		os.Exit(-1)
	}

	engineOpts, err := gangland.EngineOptions(cfg.Game)
	if err != nil {
		slog.Error("Invalid game configuration", slog.String("type", "sys"), slog.Any("error", err))
		os.Exit(-1)
	}
	var announcers []game.Announcer
	if cfg.Feed.Enabled() {
		announcers = append(announcers, services.NewKillFeed(cfg.Feed.Token, cfg.Feed.ChannelID))
		slog.Info("Kill feed enabled", slog.String("type", "feed"), slog.String("channel", cfg.Feed.ChannelID.String()))
	}
	if cfg.Stats.Enabled() {
		stats, err := services.NewInfluxStats(ctx, cfg.Stats)
		if err != nil {
			slog.Warn("Kill statistics disabled", slog.String("type", "feed"), slog.Any("error", err))
		} else {
			defer stats.Close()
			announcers = append(announcers, stats)
		}
	}
	serviceOpts := []game.ServiceOption{game.WithEngineOptions(engineOpts...)}
	if len(announcers) > 0 {
		serviceOpts = append(serviceOpts, game.WithAnnouncer(game.Announcers(announcers...)))
	}
	svc := game.NewService(repo, tablesSource, clock.System{}, serviceOpts...)

	jobs := background.NewManager()
	if pruner, ok := repo.(background.CooldownPruner); ok {
		prune := background.PruneCooldowns(pruner, clock.System{}, config.CooldownPruneGrace)
		jobs.Start("cooldown-pruner", func(ctx context.Context) {
			background.Every(ctx, config.CooldownPruneInterval, prune)
		})
	}

	app := api.NewServer(api.ServerConfig{
		RateLimit:       cfg.API.RateLimit,
		ActionRateLimit: cfg.API.ActionRateLimit,
		AllowOrigins:    cfg.API.AllowOrigins,
	}, api.Deps{
		Game:     svc,
		Tables:   tablesSource,
		Sessions: api.NewSessions(cfg.API.SessionSecret, cfg.API.SessionTTL.Duration, clock.System{}),
		Ping:     ping,
	})

	slog.Info("Starting API server",
		slog.String("type", "sys"),
		slog.String("address", cfg.API.Addr),
		slog.String("crime_policy", cfg.Game.CrimePolicy))

	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.API.Addr); err != nil {
			slog.Error("Failed to start server", slog.String("type", "sys"), slog.String("error", err.Error()))
			s <- syscall.SIGTERM
		}
	}()

	<-s
	slog.Info("Shutting down server...", slog.String("type", "sys"))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", slog.String("type", "sys"), slog.String("error", err.Error()))
	}
	if err := jobs.Shutdown(config.BackgroundStopTimeout); err != nil {
		slog.Warn("Background jobs did not stop in time", slog.String("type", "sys"))
	}
	slog.Info("Shutdown complete", slog.String("type", "sys"))
}
