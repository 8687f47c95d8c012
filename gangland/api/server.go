package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/gangland/server/gangland/config"
	"github.com/gangland/server/internal/domain/game"
)

type ServerConfig struct {
	RateLimit       int
	ActionRateLimit int
	RequestTimeout  time.Duration
	// AllowOrigins is a comma separated CORS allow list. Empty disables CORS.
	AllowOrigins string
}

type Deps struct {
	Game     *game.Service
	Tables   game.TablesSource
	Sessions *Sessions
	// Ping reports storage health. Nil means always healthy.
	Ping func(context.Context) error
}

// NewServer builds the fiber app with every route mounted under /api.
func NewServer(cfg ServerConfig, deps Deps) *fiber.App {
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = config.GlobalRateLimit
	}
	if cfg.ActionRateLimit <= 0 {
		cfg.ActionRateLimit = config.ActionRateLimit
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = config.RequestTimeout
	}

	app := fiber.New(fiber.Config{
		AppName:               "gangland",
		DisableStartupMessage: true,
		ReadTimeout:           cfg.RequestTimeout,
		WriteTimeout:          cfg.RequestTimeout,
		ErrorHandler:          errorHandler,
	})

	global := NewRateLimiter(cfg.RateLimit, config.RateLimitWindow)
	actions := NewRateLimiter(cfg.ActionRateLimit, config.RateLimitWindow)
	done := make(chan struct{})
	go global.run(done)
	go actions.run(done)
	app.Hooks().OnShutdown(func() error {
		close(done)
		return nil
	})

	h := &Handlers{game: deps.Game, tables: deps.Tables, ping: deps.Ping}

	app.Use(recover.New())
	if cfg.AllowOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.AllowOrigins,
			AllowMethods: "GET,POST,DELETE,OPTIONS",
			AllowHeaders: "Origin,Content-Type,Accept,Authorization",
		}))
	}
	app.Use(Logging())
	app.Get("/health", h.Health)

	r := app.Group("/api", RateLimit(global, byIP))
	r.Get("/tables", h.Tables)

	authed := r.Group("", AuthRequired(deps.Sessions))
	act := RateLimit(actions, byPlayer)

	authed.Post("/players", act, h.Register)
	authed.Get("/me", h.Me)
	authed.Get("/players/lookup", h.LookupPlayers)

	authed.Post("/crimes/:id", act, h.CommitCrime)
	authed.Post("/search", act, h.StartSearch)
	authed.Delete("/search", act, h.CancelSearch)
	authed.Post("/shoot", act, h.Shoot)
	authed.Post("/travel", act, h.Travel)

	authed.Post("/shop/guns/:id", act, h.BuyGun)
	authed.Post("/shop/protection/:id", act, h.BuyProtection)

	authed.Post("/cars/:id/melt", act, h.MeltCar)
	authed.Post("/cars/:id/repair", act, h.RepairCar)
	authed.Post("/cars/:id/activate", act, h.ActivateCar)

	authed.Get("/factories", h.Factories)
	authed.Post("/factories/:city/takeover", act, h.TakeoverFactory)
	authed.Post("/factories/:city/collect", act, h.CollectBullets)

	authed.Get("/market", h.Listings)
	authed.Post("/market", act, h.ListCar)
	authed.Post("/market/:id/buy", act, h.BuyCar)
	authed.Delete("/market/:id", act, h.CancelListing)

	authed.Post("/bank/deposit", act, h.Deposit)
	authed.Post("/bank/withdraw", act, h.Withdraw)

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := "ERROR"
		switch fe.Code {
		case fiber.StatusNotFound:
			code = "NOT_FOUND"
		case fiber.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		case fiber.StatusRequestEntityTooLarge:
			code = "PAYLOAD_TOO_LARGE"
		}
		return SendError(c, fe.Code, code, fe.Message, nil)
	}
	return SendGameError(c, err)
}
