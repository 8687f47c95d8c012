package game

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/gangland/server/internal/domain/game"

type metrics struct {
	actions   metric.Int64Counter
	conflicts metric.Int64Counter
	kills     metric.Int64Counter
}

// newMetrics registers the service counters on the global meter provider.
// Without a configured provider they are no-ops.
func newMetrics() metrics {
	m := otel.Meter(instrumentationName)
	return metrics{
		actions:   counter(m, "gangland.actions", "Player actions persisted"),
		conflicts: counter(m, "gangland.conflicts", "Actions rejected by a concurrent update"),
		kills:     counter(m, "gangland.kills", "Players killed"),
	}
}

func counter(m metric.Meter, name, desc string) metric.Int64Counter {
	c, err := m.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		slog.Warn("Failed to create counter",
			slog.String("type", "game"),
			slog.String("name", name),
			slog.Any("error", err))
		return noop.Int64Counter{}
	}
	return c
}
