package game

import (
	"context"
	"errors"
	"time"

	"github.com/gangland/server/internal/domain/engine"
	"github.com/gangland/server/internal/domain/tables"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrStale is returned by Apply when a record changed after it was loaded.
	ErrStale = errors.New("record changed concurrently")
	// ErrDuplicate is returned by CreatePlayer for a taken id or username.
	ErrDuplicate = errors.New("record already exists")
)

// ChangeSet is everything one action writes. Apply persists it all or
// nothing. Players and Factory carry the version they were loaded with.
type ChangeSet struct {
	Players       []engine.Player
	Factory       *engine.BulletFactory
	Cooldown      *engine.Cooldown
	Attempt       *engine.CrimeAttempt
	CreateListing *engine.CarListing
	// CloseListing is only written while the stored listing is still active.
	CloseListing *engine.CarListing
	// Withdraw closes every active listing of one seller.
	Withdraw *Withdrawal
}

// Withdrawal takes a seller's cars off the market after they changed hands
// outside a sale.
type Withdrawal struct {
	SellerID string
	At       time.Time
}

type ListingFilter struct {
	CarType  *int
	MaxPrice int64
	SellerID string
	Offset   int
	Limit    int
}

type PlayerRef struct {
	ID       string `json:"worldId"`
	Username string `json:"username"`
	Rank     int    `json:"rank"`
}

type Repository interface {
	CreatePlayer(ctx context.Context, p *engine.Player) error
	GetPlayer(ctx context.Context, id string) (*engine.Player, error)
	GetPlayerByUsername(ctx context.Context, username string) (*engine.Player, error)
	ListPlayerRefs(ctx context.Context) ([]PlayerRef, error)

	GetFactory(ctx context.Context, cityID int) (*engine.BulletFactory, error)
	ListFactories(ctx context.Context) ([]*engine.BulletFactory, error)

	// GetCooldown returns nil when no cooldown was ever recorded.
	GetCooldown(ctx context.Context, playerID, actionID string) (*time.Time, error)

	GetListing(ctx context.Context, id string) (*engine.CarListing, error)
	HasActiveListing(ctx context.Context, carID string) (bool, error)
	ListListings(ctx context.Context, filter ListingFilter) ([]*engine.CarListing, int, error)

	Apply(ctx context.Context, cs ChangeSet) error
}

// TablesSource hands out the current balance tables.
type TablesSource interface {
	Tables(ctx context.Context) (*tables.Tables, error)
}

type staticTables struct {
	t *tables.Tables
}

func StaticTables(t *tables.Tables) TablesSource {
	return staticTables{t: t}
}

func (s staticTables) Tables(context.Context) (*tables.Tables, error) {
	return s.t, nil
}

// Announcer publishes notable events to players outside the request.
type Announcer interface {
	AnnounceKill(ctx context.Context, kill Kill) error
}

// Announcers fans a kill out to every announcer and joins their errors.
func Announcers(as ...Announcer) Announcer {
	return multiAnnouncer(as)
}

type multiAnnouncer []Announcer

func (m multiAnnouncer) AnnounceKill(ctx context.Context, kill Kill) error {
	var errs []error
	for _, a := range m {
		if err := a.AnnounceKill(ctx, kill); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Kill struct {
	Killer      engine.Player
	Victim      engine.Player
	VictimRank  int
	BulletsUsed int64
	CarsLooted  int
	CityName    string
	At          time.Time
}
