package services

import (
	"context"
	"fmt"
	"log/slog"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/gangland/server/internal/domain/game"
)

// StatsConfig points kill statistics at an InfluxDB bucket. An empty URL
// disables them.
type StatsConfig struct {
	URL    string `toml:"url"`
	Token  string `toml:"token"`
	Org    string `toml:"org"`
	Bucket string `toml:"bucket"`
}

func (c StatsConfig) Enabled() bool {
	return c.URL != ""
}

type pointWriter interface {
	WritePoint(point *write.Point)
}

// InfluxStats records every kill as a point. Writes are batched by the
// client and never block the request.
type InfluxStats struct {
	client influxdb2.Client
	writer pointWriter
}

func NewInfluxStats(ctx context.Context, cfg StatsConfig) (*InfluxStats, error) {
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(500).
			SetFlushInterval(1000))

	running, err := client.Ping(ctx)
	if err != nil || !running {
		client.Close()
		if err == nil {
			err = fmt.Errorf("server not ready")
		}
		return nil, fmt.Errorf("failed to reach influxdb at %s: %w", cfg.URL, err)
	}

	w := client.WriteAPI(cfg.Org, cfg.Bucket)
	go func() {
		for err := range w.Errors() {
			slog.Warn("Failed to write stats point",
				slog.String("type", "feed"),
				slog.Any("error", err))
		}
	}()
	return &InfluxStats{client: client, writer: w}, nil
}

func (s *InfluxStats) AnnounceKill(_ context.Context, kill game.Kill) error {
	s.writer.WritePoint(killPoint(kill))
	return nil
}

// Close flushes pending points.
func (s *InfluxStats) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

func killPoint(kill game.Kill) *write.Point {
	return influxdb2.NewPoint("kill",
		map[string]string{"city": kill.CityName},
		map[string]interface{}{
			"killer":      kill.Killer.ID,
			"victim":      kill.Victim.ID,
			"victim_rank": kill.VictimRank,
			"bullets":     kill.BulletsUsed,
			"cars_looted": kill.CarsLooted,
		},
		kill.At)
}
