package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gangland/server/internal/domain/engine"
)

// Register creates a new player account.
func (s *Service) Register(ctx context.Context, id, username string, wallet *string) (*engine.Player, error) {
	e, err := s.engine(ctx)
	if err != nil {
		return nil, err
	}
	p, err := e.NewPlayer(id, username, wallet, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreatePlayer(ctx, &p); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, engine.Conflict("player or username already exists")
		}
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	slog.Info("Player registered",
		slog.String("type", "game"),
		slog.String("player", id),
		slog.String("username", username))
	return &p, nil
}

func (s *Service) CommitCrime(ctx context.Context, playerID string, crimeID int) (*Result[engine.CrimeOutcome], error) {
	e, err := s.engine(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := e.Tables().Crime(crimeID); !ok {
		return nil, engine.Validation("invalid crime id %d", crimeID)
	}

	var (
		p        engine.Player
		cooldown *time.Time
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		p, err = s.player(gctx, playerID)
		return err
	})
	g.Go(func() error {
		var err error
		cooldown, err = s.repo.GetCooldown(gctx, playerID, engine.CrimeActionID(crimeID))
		if err != nil {
			return fmt.Errorf("failed to load cooldown: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res, err := e.CommitCrime(p, crimeID, cooldown, s.clock.Now())
	if err != nil {
		return nil, err
	}
	cs := ChangeSet{
		Players:  []engine.Player{res.Player},
		Cooldown: &res.Cooldown,
		Attempt:  &res.Attempt,
	}
	if err := s.apply(ctx, "commit_crime", cs); err != nil {
		return nil, err
	}
	slog.Debug("Crime resolved",
		slog.String("type", "game"),
		slog.String("player", playerID),
		slog.Int("crime", crimeID),
		slog.Bool("success", res.Outcome.Success),
		slog.Int64("money", res.Outcome.Money))
	return &Result[engine.CrimeOutcome]{Player: res.Player, Outcome: res.Outcome}, nil
}

func (s *Service) StartSearch(ctx context.Context, playerID, targetID string) (*Result[engine.SearchOutcome], error) {
	if playerID == targetID {
		return nil, engine.Validation("you cannot search for yourself")
	}
	e, err := s.engine(ctx)
	if err != nil {
		return nil, err
	}
	p, target, err := s.pair(ctx, playerID, targetID)
	if err != nil {
		return nil, err
	}
	res, err := e.StartSearch(p, target, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, "start_search", ChangeSet{Players: []engine.Player{res.Player}}); err != nil {
		return nil, err
	}
	return &Result[engine.SearchOutcome]{Player: res.Player, Outcome: res.Outcome}, nil
}

func (s *Service) CancelSearch(ctx context.Context, playerID string) (*engine.Player, error) {
	res, err := simple(ctx, s, "cancel_search", playerID, func(e *engine.Engine, p engine.Player) (engine.Player, struct{}, error) {
		next, err := e.CancelSearch(p)
		return next, struct{}{}, err
	})
	if err != nil {
		return nil, err
	}
	return &res.Player, nil
}

// pair loads two players concurrently.
func (s *Service) pair(ctx context.Context, firstID, secondID string) (first, second engine.Player, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		first, err = s.player(gctx, firstID)
		return err
	})
	g.Go(func() error {
		var err error
		second, err = s.player(gctx, secondID)
		if engine.IsKind(err, engine.KindNotFound) {
			return engine.NotFound("target not found")
		}
		return err
	})
	err = g.Wait()
	return first, second, err
}

func (s *Service) Shoot(ctx context.Context, playerID, victimID string) (*Result[engine.ShootOutcome], error) {
	if playerID == victimID {
		return nil, engine.Validation("you cannot shoot yourself")
	}
	e, err := s.engine(ctx)
	if err != nil {
		return nil, err
	}
	attacker, victim, err := s.pair(ctx, playerID, victimID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	res, err := e.Shoot(attacker, victim, now)
	if err != nil {
		return nil, err
	}
	cs := ChangeSet{
		Players:  []engine.Player{res.Attacker, res.Victim},
		Withdraw: &Withdrawal{SellerID: res.Victim.ID, At: now},
	}
	if err := s.apply(ctx, "shoot", cs); err != nil {
		return nil, err
	}
	s.metrics.kills.Add(ctx, 1)
	slog.Info("Player killed",
		slog.String("type", "game"),
		slog.String("killer", attacker.ID),
		slog.String("victim", victim.ID),
		slog.Int64("bullets", res.Outcome.BulletsUsed),
		slog.Int("cars_looted", len(res.Outcome.Looted)))

	if s.feed != nil {
		kill := Kill{
			Killer:      res.Attacker,
			Victim:      res.Victim,
			VictimRank:  res.Outcome.VictimRank,
			BulletsUsed: res.Outcome.BulletsUsed,
			CarsLooted:  len(res.Outcome.Looted),
			CityName:    e.CityName(res.Attacker.City),
			At:          now,
		}
		if err := s.feed.AnnounceKill(ctx, kill); err != nil {
			slog.Error("Failed to announce kill",
				slog.String("type", "feed"),
				slog.String("error", err.Error()))
		}
	}
	return &Result[engine.ShootOutcome]{Player: res.Attacker, Outcome: res.Outcome}, nil
}

func (s *Service) Travel(ctx context.Context, playerID string, cityID int) (*Result[engine.TravelOutcome], error) {
	return simple(ctx, s, "travel", playerID, func(e *engine.Engine, p engine.Player) (engine.Player, engine.TravelOutcome, error) {
		res, err := e.Travel(p, cityID, s.clock.Now())
		return res.Player, res.Outcome, err
	})
}

func (s *Service) BuyGun(ctx context.Context, playerID string, gunID int) (*Result[engine.PurchaseOutcome], error) {
	return simple(ctx, s, "buy_gun", playerID, func(e *engine.Engine, p engine.Player) (engine.Player, engine.PurchaseOutcome, error) {
		res, err := e.BuyGun(p, gunID, s.clock.Now())
		return res.Player, res.Outcome, err
	})
}

func (s *Service) BuyProtection(ctx context.Context, playerID string, protectionID int) (*Result[engine.PurchaseOutcome], error) {
	return simple(ctx, s, "buy_protection", playerID, func(e *engine.Engine, p engine.Player) (engine.Player, engine.PurchaseOutcome, error) {
		res, err := e.BuyProtection(p, protectionID, s.clock.Now())
		return res.Player, res.Outcome, err
	})
}

func (s *Service) RepairCar(ctx context.Context, playerID, carID string) (*Result[engine.RepairOutcome], error) {
	return simple(ctx, s, "repair_car", playerID, func(e *engine.Engine, p engine.Player) (engine.Player, engine.RepairOutcome, error) {
		res, err := e.RepairCar(p, carID, s.clock.Now())
		return res.Player, res.Outcome, err
	})
}

// MeltCar loads the player before checking the market. A listing created
// after that read bumps the player version, so the melt then fails as stale.
func (s *Service) MeltCar(ctx context.Context, playerID, carID string) (*Result[engine.MeltOutcome], error) {
	e, err := s.engine(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.player(ctx, playerID)
	if err != nil {
		return nil, err
	}
	listed, err := s.repo.HasActiveListing(ctx, carID)
	if err != nil {
		return nil, fmt.Errorf("failed to check listings: %w", err)
	}
	if listed {
		return nil, engine.Precondition("cancel the listing before melting this car")
	}
	res, err := e.MeltCar(p, carID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, "melt_car", ChangeSet{Players: []engine.Player{res.Player}}); err != nil {
		return nil, err
	}
	return &Result[engine.MeltOutcome]{Player: res.Player, Outcome: res.Outcome}, nil
}

func (s *Service) SetActiveCar(ctx context.Context, playerID, carID string) (*engine.Player, error) {
	res, err := simple(ctx, s, "set_active_car", playerID, func(e *engine.Engine, p engine.Player) (engine.Player, struct{}, error) {
		next, err := e.SetActiveCar(p, carID)
		return next, struct{}{}, err
	})
	if err != nil {
		return nil, err
	}
	return &res.Player, nil
}

func (s *Service) Deposit(ctx context.Context, playerID string, amount int64) (*engine.Player, error) {
	res, err := simple(ctx, s, "deposit", playerID, func(e *engine.Engine, p engine.Player) (engine.Player, struct{}, error) {
		next, err := e.Deposit(p, amount, s.clock.Now())
		return next, struct{}{}, err
	})
	if err != nil {
		return nil, err
	}
	return &res.Player, nil
}

func (s *Service) Withdraw(ctx context.Context, playerID string, amount int64) (*engine.Player, error) {
	res, err := simple(ctx, s, "withdraw", playerID, func(e *engine.Engine, p engine.Player) (engine.Player, struct{}, error) {
		next, err := e.Withdraw(p, amount, s.clock.Now())
		return next, struct{}{}, err
	})
	if err != nil {
		return nil, err
	}
	return &res.Player, nil
}

func (s *Service) playerAndFactory(ctx context.Context, playerID string, cityID int) (engine.Player, *engine.BulletFactory, error) {
	var (
		p engine.Player
		f *engine.BulletFactory
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		p, err = s.player(gctx, playerID)
		return err
	})
	g.Go(func() error {
		var err error
		f, err = s.factory(gctx, cityID)
		return err
	})
	err := g.Wait()
	return p, f, err
}

func (s *Service) TakeoverFactory(ctx context.Context, playerID string, cityID int) (*Result[engine.FactoryOutcome], error) {
	e, err := s.engine(ctx)
	if err != nil {
		return nil, err
	}
	if !e.Tables().ValidCity(cityID) {
		return nil, engine.Validation("invalid city id %d", cityID)
	}
	p, f, err := s.playerAndFactory(ctx, playerID, cityID)
	if err != nil {
		return nil, err
	}
	res, err := e.TakeoverFactory(p, f, cityID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, "takeover_factory", ChangeSet{Players: []engine.Player{res.Player}, Factory: &res.Factory}); err != nil {
		return nil, err
	}
	slog.Info("Factory taken over",
		slog.String("type", "game"),
		slog.String("player", playerID),
		slog.Int("city", cityID))
	return &Result[engine.FactoryOutcome]{Player: res.Player, Outcome: res.Outcome}, nil
}

func (s *Service) CollectBullets(ctx context.Context, playerID string, cityID int) (*Result[engine.FactoryOutcome], error) {
	e, err := s.engine(ctx)
	if err != nil {
		return nil, err
	}
	if !e.Tables().ValidCity(cityID) {
		return nil, engine.Validation("invalid city id %d", cityID)
	}
	p, f, err := s.playerAndFactory(ctx, playerID, cityID)
	if err != nil {
		return nil, err
	}
	res, err := e.CollectBullets(p, f, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, "collect_bullets", ChangeSet{Players: []engine.Player{res.Player}, Factory: &res.Factory}); err != nil {
		return nil, err
	}
	return &Result[engine.FactoryOutcome]{Player: res.Player, Outcome: res.Outcome}, nil
}

func (s *Service) Factories(ctx context.Context) ([]*engine.BulletFactory, error) {
	fs, err := s.repo.ListFactories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list factories: %w", err)
	}
	return fs, nil
}
