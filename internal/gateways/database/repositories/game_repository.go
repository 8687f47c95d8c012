package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/gangland/server/gangland/config"
	"github.com/gangland/server/internal/domain/engine"
	"github.com/gangland/server/internal/domain/game"
	"github.com/gangland/server/internal/gateways/database/models"
)

type gameRepository struct {
	*BaseRepository
}

// NewGameRepository returns the Postgres backed game.Repository.
func NewGameRepository(db *bun.DB) game.Repository {
	return &gameRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *gameRepository) CreatePlayer(ctx context.Context, p *engine.Player) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	m := toPlayerModel(p)
	m.UpdatedAt = m.CreatedAt
	if _, err := r.db.NewInsert().Model(m).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("player %s: %w", p.ID, game.ErrDuplicate)
		}
		return r.HandleErrorWithID("create", "player", p.ID, err)
	}
	p.Version = m.Version
	return nil
}

func (r *gameRepository) GetPlayer(ctx context.Context, id string) (*engine.Player, error) {
	m := new(models.Player)
	err := r.SelectOneWithTimeout(ctx, "get", "player", id, func(ctx context.Context) error {
		return r.db.NewSelect().Model(m).Where("id = ?", id).Scan(ctx)
	})
	if err != nil {
		return nil, err
	}
	return toPlayer(m), nil
}

func (r *gameRepository) GetPlayerByUsername(ctx context.Context, username string) (*engine.Player, error) {
	m := new(models.Player)
	err := r.SelectOneWithTimeout(ctx, "get_by_username", "player", username, func(ctx context.Context) error {
		return r.db.NewSelect().Model(m).Where("lower(username) = lower(?)", username).Scan(ctx)
	})
	if err != nil {
		return nil, err
	}
	return toPlayer(m), nil
}

func (r *gameRepository) ListPlayerRefs(ctx context.Context) ([]game.PlayerRef, error) {
	var ms []models.Player
	err := r.SelectWithTimeout(ctx, "list_refs", "player", func(ctx context.Context) error {
		return r.db.NewSelect().
			Model(&ms).
			Column("id", "username", "rank").
			Order("username ASC").
			Scan(ctx)
	})
	if err != nil {
		return nil, err
	}
	refs := make([]game.PlayerRef, len(ms))
	for i, m := range ms {
		refs[i] = game.PlayerRef{ID: m.ID, Username: m.Username, Rank: m.Rank}
	}
	return refs, nil
}

func (r *gameRepository) GetFactory(ctx context.Context, cityID int) (*engine.BulletFactory, error) {
	m := new(models.BulletFactory)
	err := r.SelectOneWithTimeout(ctx, "get", "bullet_factory", cityID, func(ctx context.Context) error {
		return r.db.NewSelect().Model(m).Where("city_id = ?", cityID).Scan(ctx)
	})
	if err != nil {
		return nil, err
	}
	return toFactory(m), nil
}

func (r *gameRepository) ListFactories(ctx context.Context) ([]*engine.BulletFactory, error) {
	var ms []*models.BulletFactory
	err := r.SelectWithTimeout(ctx, "list", "bullet_factory", func(ctx context.Context) error {
		return r.db.NewSelect().Model(&ms).Order("city_id ASC").Scan(ctx)
	})
	if err != nil {
		return nil, err
	}
	fs := make([]*engine.BulletFactory, len(ms))
	for i, m := range ms {
		fs[i] = toFactory(m)
	}
	return fs, nil
}

func (r *gameRepository) GetCooldown(ctx context.Context, playerID, actionID string) (*time.Time, error) {
	m := new(models.PlayerCooldown)
	err := r.SelectOneWithTimeout(ctx, "get", "cooldown", actionID, func(ctx context.Context) error {
		return r.db.NewSelect().
			Model(m).
			Where("player_id = ? AND action_id = ?", playerID, actionID).
			Scan(ctx)
	})
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m.ExpiresAt, nil
}

// PruneCooldowns deletes cooldowns that expired before the cutoff. An
// expired row and a missing row mean the same thing to the engine.
func (r *gameRepository) PruneCooldowns(ctx context.Context, before time.Time) (int64, error) {
	ctx, cancel := r.WithCustomTimeout(ctx, config.BatchQueryTimeout)
	defer cancel()

	res, err := r.db.NewDelete().
		Model((*models.PlayerCooldown)(nil)).
		Where("expires_at < ?", before).
		Exec(ctx)
	if err != nil {
		return 0, r.HandleError("prune", "cooldown", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *gameRepository) GetListing(ctx context.Context, id string) (*engine.CarListing, error) {
	m := new(models.CarListing)
	err := r.SelectOneWithTimeout(ctx, "get", "car_listing", id, func(ctx context.Context) error {
		return r.db.NewSelect().Model(m).Where("id = ?", id).Scan(ctx)
	})
	if err != nil {
		return nil, err
	}
	return toListing(m), nil
}

func (r *gameRepository) HasActiveListing(ctx context.Context, carID string) (bool, error) {
	var exists bool
	err := r.SelectWithTimeout(ctx, "exists", "car_listing", func(ctx context.Context) error {
		var err error
		exists, err = r.db.NewSelect().
			Model((*models.CarListing)(nil)).
			Where("car_id = ? AND active = TRUE", carID).
			Exists(ctx)
		return err
	})
	return exists, err
}

func (r *gameRepository) ListListings(ctx context.Context, filter game.ListingFilter) ([]*engine.CarListing, int, error) {
	var (
		ms    []*models.CarListing
		total int
	)
	err := r.SelectWithTimeout(ctx, "list", "car_listing", func(ctx context.Context) error {
		q := r.db.NewSelect().Model(&ms).Where("active = TRUE")
		if filter.CarType != nil {
			q = q.Where("car_type = ?", *filter.CarType)
		}
		if filter.MaxPrice > 0 {
			q = q.Where("price <= ?", filter.MaxPrice)
		}
		if filter.SellerID != "" {
			q = q.Where("seller_id = ?", filter.SellerID)
		}
		var err error
		total, err = q.Order("created_at DESC").
			Offset(filter.Offset).
			Limit(filter.Limit).
			ScanAndCount(ctx)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	ls := make([]*engine.CarListing, len(ms))
	for i, m := range ms {
		ls[i] = toListing(m)
	}
	return ls, total, nil
}

// Apply writes the change set in one transaction. Players and the factory are
// compare-and-swapped on version; any lost race rolls everything back.
func (r *gameRepository) Apply(ctx context.Context, cs game.ChangeSet) error {
	start := time.Now()
	err := r.Transaction(ctx, config.ApplyTimeout, func(ctx context.Context, tx bun.Tx) error {
		for i := range cs.Players {
			if err := r.updatePlayer(ctx, tx, &cs.Players[i]); err != nil {
				return err
			}
		}
		if cs.Factory != nil {
			if err := r.saveFactory(ctx, tx, cs.Factory); err != nil {
				return err
			}
		}
		if cs.Cooldown != nil {
			cd := &models.PlayerCooldown{
				PlayerID:  cs.Cooldown.PlayerID,
				ActionID:  cs.Cooldown.ActionID,
				ExpiresAt: cs.Cooldown.ExpiresAt,
			}
			_, err := tx.NewInsert().
				Model(cd).
				On("CONFLICT (player_id, action_id) DO UPDATE").
				Set("expires_at = EXCLUDED.expires_at").
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("upsert cooldown: %w", err)
			}
		}
		if cs.Attempt != nil {
			if _, err := tx.NewInsert().Model(toAttemptModel(cs.Attempt)).Exec(ctx); err != nil {
				return fmt.Errorf("insert crime attempt: %w", err)
			}
		}
		if cs.CreateListing != nil {
			if _, err := tx.NewInsert().Model(toListingModel(cs.CreateListing)).Exec(ctx); err != nil {
				if isUniqueViolation(err) {
					return game.ErrStale
				}
				return fmt.Errorf("insert listing: %w", err)
			}
		}
		if cs.CloseListing != nil {
			err := expectOne(tx.NewUpdate().
				Model(toListingModel(cs.CloseListing)).
				Column("active", "buyer_id", "closed_at").
				WherePK().
				Where("active = TRUE").
				Exec(ctx))
			if err != nil {
				return err
			}
		}
		if w := cs.Withdraw; w != nil {
			_, err := tx.NewUpdate().
				Model((*models.CarListing)(nil)).
				Set("active = FALSE").
				Set("closed_at = ?", w.At).
				Where("seller_id = ?", w.SellerID).
				Where("active = TRUE").
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("withdraw listings of %s: %w", w.SellerID, err)
			}
		}
		return nil
	})

	if err != nil && !errors.Is(err, game.ErrStale) {
		return r.HandleError("apply", "change_set", err)
	}
	slog.Debug("Change set applied",
		slog.String("type", "db"),
		slog.Int("players", len(cs.Players)),
		slog.Bool("stale", errors.Is(err, game.ErrStale)),
		slog.Duration("took", time.Since(start)))
	return err
}

func (r *gameRepository) updatePlayer(ctx context.Context, tx bun.Tx, p *engine.Player) error {
	m := toPlayerModel(p)
	m.Version = p.Version + 1
	m.UpdatedAt = time.Now()
	err := expectOne(tx.NewUpdate().
		Model(m).
		ExcludeColumn("id", "created_at").
		WherePK().
		Where("version = ?", p.Version).
		Exec(ctx))
	if err != nil && !errors.Is(err, game.ErrStale) {
		return fmt.Errorf("update player %s: %w", p.ID, err)
	}
	return err
}

// saveFactory inserts a factory seen for the first time (version 0) and
// compare-and-swaps an existing one.
func (r *gameRepository) saveFactory(ctx context.Context, tx bun.Tx, f *engine.BulletFactory) error {
	m := toFactoryModel(f)
	m.Version = f.Version + 1
	var (
		res sql.Result
		err error
	)
	if f.Version == 0 {
		res, err = tx.NewInsert().Model(m).On("CONFLICT (city_id) DO NOTHING").Exec(ctx)
	} else {
		res, err = tx.NewUpdate().
			Model(m).
			ExcludeColumn("city_id").
			WherePK().
			Where("version = ?", f.Version).
			Exec(ctx)
	}
	err = expectOne(res, err)
	if err != nil && !errors.Is(err, game.ErrStale) {
		return fmt.Errorf("save factory %d: %w", f.CityID, err)
	}
	return err
}
