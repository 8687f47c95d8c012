package repositories

import (
	"context"
	"log/slog"

	"github.com/uptrace/bun"

	"github.com/gangland/server/gangland/config"
	"github.com/gangland/server/internal/domain/engine"
	"github.com/gangland/server/internal/gateways/database/models"
)

// PlayerImporter bulk loads players that already exist elsewhere. Rows that
// collide with an existing id, username or wallet are skipped.
type PlayerImporter struct {
	*BaseRepository
}

func NewPlayerImporter(db *bun.DB) *PlayerImporter {
	return &PlayerImporter{BaseRepository: NewBaseRepository(db)}
}

// ImportPlayers inserts ps in chunks and returns how many rows were written.
func (r *PlayerImporter) ImportPlayers(ctx context.Context, ps []engine.Player) (int64, error) {
	var written int64
	for start := 0; start < len(ps); start += config.ImportBatchSize {
		end := min(start+config.ImportBatchSize, len(ps))
		batch := make([]*models.Player, 0, end-start)
		for i := start; i < end; i++ {
			batch = append(batch, toPlayerModel(&ps[i]))
		}
		n, err := r.BatchInsert(ctx, "players", &batch)
		if err != nil {
			return written, err
		}
		written += n
		slog.Debug("Imported player batch",
			slog.String("type", "db"),
			slog.Int("size", len(batch)),
			slog.Int64("written", n))
	}
	return written, nil
}
