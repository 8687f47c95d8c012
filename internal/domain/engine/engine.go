package engine

import (
	"math/rand/v2"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/gangland/server/internal/domain/tables"
)

// RNG is the randomness source consumed by resolutions. Tests inject a
// scripted implementation.
type RNG interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// IntN returns a value in [0, n).
	IntN(n int) int
}

type globalRNG struct{}

func (globalRNG) Float64() float64 { return rand.Float64() }
func (globalRNG) IntN(n int) int   { return rand.IntN(n) }

// SeededRNG returns a deterministic source. It is not safe for concurrent use.
func SeededRNG(seed uint64) RNG {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type IDGenerator interface {
	NewID() string
}

type uuidGenerator struct{}

func (uuidGenerator) NewID() string { return uuid.NewString() }

// Engine resolves player actions against the static tables. It holds no
// mutable state and is safe for concurrent use when its RNG is.
type Engine struct {
	tables *tables.Tables
	policy CrimePolicy
	rng    RNG
	ids    IDGenerator
}

type Option func(*Engine)

func WithRNG(r RNG) Option {
	return func(e *Engine) { e.rng = r }
}

func WithIDs(g IDGenerator) Option {
	return func(e *Engine) { e.ids = g }
}

func WithCrimePolicy(p CrimePolicy) Option {
	return func(e *Engine) { e.policy = p }
}

func New(t *tables.Tables, opts ...Option) *Engine {
	e := &Engine{
		tables: t,
		policy: FixedRatePolicy{HospitalGate: true},
		rng:    globalRNG{},
		ids:    uuidGenerator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Tables() *tables.Tables { return e.tables }

func (e *Engine) Policy() CrimePolicy { return e.policy }

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

// NewPlayer builds a fresh account with the starting tunables.
func (e *Engine) NewPlayer(id, username string, wallet *string, now time.Time) (Player, error) {
	if id == "" {
		return Player{}, Validation("player id is required")
	}
	if !usernamePattern.MatchString(username) {
		return Player{}, Validation("username must be 3-20 letters, digits or underscores")
	}
	tu := e.tables.Tunables
	p := Player{
		ID:             id,
		Wallet:         clonePtr(wallet),
		Username:       username,
		Money:          tu.StartingMoney,
		Respect:        tu.StartingRespect,
		Bullets:        tu.StartingBullets,
		Nerve:          tu.StartingNerve,
		NerveUpdatedAt: ptr(now),
		City:           tu.StartingCity,
		Cars:           []PlayerCar{},
		CreatedAt:      now,
	}
	p.Rank = RecalculateRank(e.tables.Ranks, p.Respect)
	return p, nil
}

// roll draws a percentage in [0, 100).
func (e *Engine) roll() float64 {
	return e.rng.Float64() * 100
}

// between draws an integer uniformly from [lo, hi].
func (e *Engine) between(lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	return lo + int64(e.rng.IntN(int(hi-lo+1)))
}

// CityName names a city, or "unknown" when the tables no longer have it.
func (e *Engine) CityName(id int) string {
	if e.tables.ValidCity(id) {
		return e.tables.Cities[id].Name
	}
	return "unknown"
}
