package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/gangland/server/internal/clock"
)

// CooldownPruner is implemented by stores that can drop expired cooldowns.
type CooldownPruner interface {
	PruneCooldowns(ctx context.Context, before time.Time) (int64, error)
}

// PruneCooldowns returns a job that deletes cooldowns which expired more than
// grace ago.
func PruneCooldowns(store CooldownPruner, clk clock.Clock, grace time.Duration) func(context.Context) {
	return func(ctx context.Context) {
		n, err := store.PruneCooldowns(ctx, clk.Now().Add(-grace))
		if err != nil {
			slog.Error("Failed to prune cooldowns", slog.String("type", "db"), slog.Any("error", err))
			return
		}
		if n > 0 {
			slog.Debug("Pruned expired cooldowns", slog.String("type", "db"), slog.Int64("rows", n))
		}
	}
}
