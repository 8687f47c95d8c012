package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/gangland/server/internal/clock"
	"github.com/gangland/server/internal/domain/engine"
)

// Result is what every player action returns: the state after the action and
// what happened.
type Result[T any] struct {
	Player  engine.Player `json:"player"`
	Outcome T             `json:"outcome"`
}

// Service runs player actions: load, resolve with the engine, persist.
type Service struct {
	repo       Repository
	tables     TablesSource
	clock      clock.Clock
	feed       Announcer
	engineOpts []engine.Option
	current    atomic.Pointer[engine.Engine]
	metrics    metrics
}

type ServiceOption func(*Service)

func WithAnnouncer(a Announcer) ServiceOption {
	return func(s *Service) { s.feed = a }
}

func WithEngineOptions(opts ...engine.Option) ServiceOption {
	return func(s *Service) { s.engineOpts = append(s.engineOpts, opts...) }
}

func NewService(repo Repository, tables TablesSource, clk clock.Clock, opts ...ServiceOption) *Service {
	s := &Service{
		repo:    repo,
		tables:  tables,
		clock:   clk,
		metrics: newMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// engine returns an engine bound to the current tables, rebuilding it when the
// source hands out a new table set.
func (s *Service) engine(ctx context.Context) (*engine.Engine, error) {
	t, err := s.tables.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load game tables: %w", err)
	}
	if e := s.current.Load(); e != nil && e.Tables() == t {
		return e, nil
	}
	e := engine.New(t, s.engineOpts...)
	s.current.Store(e)
	return e, nil
}

func (s *Service) player(ctx context.Context, id string) (engine.Player, error) {
	p, err := s.repo.GetPlayer(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return engine.Player{}, engine.NotFound("player not found")
	}
	if err != nil {
		return engine.Player{}, fmt.Errorf("failed to load player %s: %w", id, err)
	}
	return *p, nil
}

func (s *Service) factory(ctx context.Context, cityID int) (*engine.BulletFactory, error) {
	f, err := s.repo.GetFactory(ctx, cityID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load factory %d: %w", cityID, err)
	}
	return f, nil
}

func (s *Service) listing(ctx context.Context, id string) (engine.CarListing, error) {
	l, err := s.repo.GetListing(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return engine.CarListing{}, engine.NotFound("listing not found")
	}
	if err != nil {
		return engine.CarListing{}, fmt.Errorf("failed to load listing %s: %w", id, err)
	}
	return *l, nil
}

func (s *Service) apply(ctx context.Context, operation string, cs ChangeSet) error {
	op := metric.WithAttributes(attribute.String("operation", operation))
	err := s.repo.Apply(ctx, cs)
	if errors.Is(err, ErrStale) {
		s.metrics.conflicts.Add(ctx, 1, op)
		slog.Warn("Concurrent update rejected",
			slog.String("type", "db"),
			slog.String("operation", operation))
		return engine.Conflict("your state changed while this was processed, try again")
	}
	if err != nil {
		slog.Error("Failed to persist action",
			slog.String("type", "db"),
			slog.String("operation", operation),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to persist %s: %w", operation, err)
	}
	s.metrics.actions.Add(ctx, 1, op)
	return nil
}

// simple covers the actions that only read and write the acting player.
func simple[T any](ctx context.Context, s *Service, operation, playerID string, resolve func(*engine.Engine, engine.Player) (engine.Player, T, error)) (*Result[T], error) {
	e, err := s.engine(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.player(ctx, playerID)
	if err != nil {
		return nil, err
	}
	next, out, err := resolve(e, p)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, operation, ChangeSet{Players: []engine.Player{next}}); err != nil {
		return nil, err
	}
	slog.Debug("Action resolved",
		slog.String("type", "game"),
		slog.String("operation", operation),
		slog.String("player", playerID))
	return &Result[T]{Player: next, Outcome: out}, nil
}
