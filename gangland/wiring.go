package gangland

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gangland/server/gangland/cache"
	"github.com/gangland/server/gangland/services"
	"github.com/gangland/server/internal/clock"
	"github.com/gangland/server/internal/domain/engine"
	"github.com/gangland/server/internal/domain/game"
	"github.com/gangland/server/internal/domain/tables"
)

// NewTablesSource serves balance tables from the configured bucket, or the
// built-in defaults when object storage is not configured.
func NewTablesSource(ctx context.Context, cfg *Config) (game.TablesSource, error) {
	if !cfg.Spaces.Enabled() {
		slog.Info("Using built-in game tables", slog.String("type", "sys"))
		return game.StaticTables(tables.Default()), nil
	}
	client, err := services.NewSpacesClient(ctx, cfg.Spaces)
	if err != nil {
		return nil, err
	}
	c, err := cache.NewTTL[*tables.Tables](cfg.Cache.Size, cfg.Cache.TablesTTL.Duration, clock.System{})
	if err != nil {
		return nil, fmt.Errorf("failed to create tables cache: %w", err)
	}
	slog.Info("Loading game tables from object storage",
		slog.String("type", "sys"),
		slog.String("bucket", cfg.Spaces.Bucket),
		slog.String("key", cfg.Spaces.TablesKey))
	return services.NewSpacesTables(client, cfg.Spaces.Bucket, cfg.Spaces.TablesKey, c), nil
}

// EngineOptions turns the game section into engine options.
func EngineOptions(cfg GameConfig) ([]engine.Option, error) {
	policy, err := engine.PolicyByName(cfg.CrimePolicy, cfg.HospitalGate)
	if err != nil {
		return nil, err
	}
	opts := []engine.Option{engine.WithCrimePolicy(policy)}
	if cfg.Seed != 0 {
		opts = append(opts, engine.WithRNG(&lockedRNG{rng: engine.SeededRNG(cfg.Seed)}))
	}
	return opts, nil
}

// lockedRNG lets concurrent requests share one seeded source.
type lockedRNG struct {
	mu  sync.Mutex
	rng engine.RNG
}

func (r *lockedRNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

func (r *lockedRNG) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}
