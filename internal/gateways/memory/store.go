package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gangland/server/internal/domain/engine"
	"github.com/gangland/server/internal/domain/game"
)

type cooldownKey struct {
	playerID string
	actionID string
}

// Store keeps all game state in process. It follows the same version and
// listing rules as the Postgres repository, so it can stand in for it in
// development and tests.
type Store struct {
	players   map[string]*engine.Player
	usernames map[string]string // lowercased username -> player id
	wallets   map[string]string
	factories map[int]*engine.BulletFactory
	cooldowns map[cooldownKey]time.Time
	listings  map[string]*engine.CarListing
	attempts  []engine.CrimeAttempt

	mu sync.RWMutex
}

func New() *Store {
	return &Store{
		players:   make(map[string]*engine.Player),
		usernames: make(map[string]string),
		wallets:   make(map[string]string),
		factories: make(map[int]*engine.BulletFactory),
		cooldowns: make(map[cooldownKey]time.Time),
		listings:  make(map[string]*engine.CarListing),
	}
}

var _ game.Repository = (*Store)(nil)

func (s *Store) CreatePlayer(_ context.Context, p *engine.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.ToLower(p.Username)
	if _, ok := s.players[p.ID]; ok {
		return fmt.Errorf("player %s: %w", p.ID, game.ErrDuplicate)
	}
	if _, ok := s.usernames[name]; ok {
		return fmt.Errorf("username %s: %w", p.Username, game.ErrDuplicate)
	}
	if p.Wallet != nil {
		if _, ok := s.wallets[*p.Wallet]; ok {
			return fmt.Errorf("wallet %s: %w", *p.Wallet, game.ErrDuplicate)
		}
		s.wallets[*p.Wallet] = p.ID
	}
	stored := p.Clone()
	s.players[p.ID] = &stored
	s.usernames[name] = p.ID
	return nil
}

func (s *Store) GetPlayer(_ context.Context, id string) (*engine.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	if !ok {
		return nil, fmt.Errorf("player %s: %w", id, game.ErrNotFound)
	}
	c := p.Clone()
	return &c, nil
}

func (s *Store) GetPlayerByUsername(ctx context.Context, username string) (*engine.Player, error) {
	s.mu.RLock()
	id, ok := s.usernames[strings.ToLower(username)]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("username %s: %w", username, game.ErrNotFound)
	}
	return s.GetPlayer(ctx, id)
}

func (s *Store) ListPlayerRefs(context.Context) ([]game.PlayerRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	refs := make([]game.PlayerRef, 0, len(s.players))
	for _, p := range s.players {
		refs = append(refs, game.PlayerRef{ID: p.ID, Username: p.Username, Rank: p.Rank})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Username < refs[j].Username })
	return refs, nil
}

func (s *Store) GetFactory(_ context.Context, cityID int) (*engine.BulletFactory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.factories[cityID]
	if !ok {
		return nil, fmt.Errorf("factory %d: %w", cityID, game.ErrNotFound)
	}
	c := f.Clone()
	return &c, nil
}

func (s *Store) ListFactories(context.Context) ([]*engine.BulletFactory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fs := make([]*engine.BulletFactory, 0, len(s.factories))
	for _, f := range s.factories {
		c := f.Clone()
		fs = append(fs, &c)
	}
	sort.Slice(fs, func(i, j int) bool { return fs[i].CityID < fs[j].CityID })
	return fs, nil
}

func (s *Store) GetCooldown(_ context.Context, playerID, actionID string) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exp, ok := s.cooldowns[cooldownKey{playerID, actionID}]
	if !ok {
		return nil, nil
	}
	return &exp, nil
}

func (s *Store) PruneCooldowns(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, exp := range s.cooldowns {
		if exp.Before(before) {
			delete(s.cooldowns, k)
			n++
		}
	}
	return n, nil
}

func (s *Store) GetListing(_ context.Context, id string) (*engine.CarListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.listings[id]
	if !ok {
		return nil, fmt.Errorf("listing %s: %w", id, game.ErrNotFound)
	}
	c := *l
	return &c, nil
}

func (s *Store) HasActiveListing(_ context.Context, carID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.activeListing(carID) != nil, nil
}

func (s *Store) activeListing(carID string) *engine.CarListing {
	for _, l := range s.listings {
		if l.Active && l.CarID == carID {
			return l
		}
	}
	return nil
}

func (s *Store) ListListings(_ context.Context, filter game.ListingFilter) ([]*engine.CarListing, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*engine.CarListing
	for _, l := range s.listings {
		switch {
		case !l.Active:
		case filter.CarType != nil && l.CarType != *filter.CarType:
		case filter.MaxPrice > 0 && l.Price > filter.MaxPrice:
		case filter.SellerID != "" && l.SellerID != filter.SellerID:
		default:
			c := *l
			matched = append(matched, &c)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := min(filter.Offset, total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}
	return matched[start:end], total, nil
}

// Apply validates every compare-and-swap before writing anything, so a stale
// change set leaves the store untouched.
func (s *Store) Apply(_ context.Context, cs game.ChangeSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range cs.Players {
		stored, ok := s.players[p.ID]
		if !ok || stored.Version != p.Version {
			return game.ErrStale
		}
	}
	if f := cs.Factory; f != nil {
		stored, ok := s.factories[f.CityID]
		if (f.Version == 0 && ok) || (f.Version != 0 && (!ok || stored.Version != f.Version)) {
			return game.ErrStale
		}
	}
	if l := cs.CreateListing; l != nil {
		if _, ok := s.listings[l.ID]; ok || s.activeListing(l.CarID) != nil {
			return game.ErrStale
		}
	}
	if l := cs.CloseListing; l != nil {
		stored, ok := s.listings[l.ID]
		if !ok || !stored.Active {
			return game.ErrStale
		}
	}

	for _, p := range cs.Players {
		next := p.Clone()
		next.Version++
		s.players[p.ID] = &next
	}
	if cs.Factory != nil {
		next := cs.Factory.Clone()
		next.Version++
		s.factories[next.CityID] = &next
	}
	if cd := cs.Cooldown; cd != nil {
		s.cooldowns[cooldownKey{cd.PlayerID, cd.ActionID}] = cd.ExpiresAt
	}
	if cs.Attempt != nil {
		s.attempts = append(s.attempts, *cs.Attempt)
	}
	if l := cs.CreateListing; l != nil {
		c := *l
		s.listings[l.ID] = &c
	}
	if l := cs.CloseListing; l != nil {
		stored := s.listings[l.ID]
		stored.Active = false
		stored.BuyerID = l.BuyerID
		stored.ClosedAt = l.ClosedAt
	}
	if w := cs.Withdraw; w != nil {
		for _, l := range s.listings {
			if l.Active && l.SellerID == w.SellerID {
				at := w.At
				l.Active = false
				l.ClosedAt = &at
			}
		}
	}
	return nil
}

// Attempts returns the crime audit log of one player, oldest first.
func (s *Store) Attempts(playerID string) []engine.CrimeAttempt {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []engine.CrimeAttempt
	for _, a := range s.attempts {
		if a.PlayerID == playerID {
			out = append(out, a)
		}
	}
	return out
}
