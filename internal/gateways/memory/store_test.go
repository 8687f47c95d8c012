package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gangland/server/internal/clock"
	"github.com/gangland/server/internal/domain/engine"
	"github.com/gangland/server/internal/domain/game"
	"github.com/gangland/server/internal/domain/tables"
	"github.com/gangland/server/internal/gateways/memory"
)

var now = time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)

func seed(t *testing.T, s *memory.Store, ids ...string) {
	t.Helper()
	for _, id := range ids {
		p := &engine.Player{ID: id, Username: "user_" + id, Cars: []engine.PlayerCar{}, CreatedAt: now}
		if err := s.CreatePlayer(context.Background(), p); err != nil {
			t.Fatalf("CreatePlayer(%s) error = %v", id, err)
		}
	}
}

func TestCreatePlayerDuplicates(t *testing.T) {
	s := memory.New()
	seed(t, s, "p1")
	ctx := context.Background()

	tests := []struct {
		name string
		p    engine.Player
	}{
		{"same id", engine.Player{ID: "p1", Username: "other"}},
		{"same username, other case", engine.Player{ID: "p2", Username: "USER_p1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.CreatePlayer(ctx, &tt.p); !errors.Is(err, game.ErrDuplicate) {
				t.Errorf("CreatePlayer() error = %v, want ErrDuplicate", err)
			}
		})
	}

	got, err := s.GetPlayerByUsername(ctx, "User_P1")
	if err != nil || got.ID != "p1" {
		t.Errorf("GetPlayerByUsername() = %v, %v", got, err)
	}
}

func TestApplyIsAllOrNothing(t *testing.T) {
	s := memory.New()
	seed(t, s, "a", "b")
	ctx := context.Background()

	a, _ := s.GetPlayer(ctx, "a")
	b, _ := s.GetPlayer(ctx, "b")
	b.Money = 10
	if err := s.Apply(ctx, game.ChangeSet{Players: []engine.Player{*b}}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	// b is now one version ahead of the copy below.
	a.Money = 500
	b.Money = 999
	err := s.Apply(ctx, game.ChangeSet{Players: []engine.Player{*a, *b}})
	if !errors.Is(err, game.ErrStale) {
		t.Fatalf("Apply() error = %v, want ErrStale", err)
	}
	if got, _ := s.GetPlayer(ctx, "a"); got.Money != 0 {
		t.Errorf("a.Money = %d, want 0 after rollback", got.Money)
	}
	if got, _ := s.GetPlayer(ctx, "b"); got.Money != 10 || got.Version != 1 {
		t.Errorf("b = money %d version %d, want 10 and 1", got.Money, got.Version)
	}
}

func TestApplyFactoryInsertOnce(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	f := engine.BulletFactory{CityID: 2, LastCollectionTime: now}

	if err := s.Apply(ctx, game.ChangeSet{Factory: &f}); err != nil {
		t.Fatalf("first insert error = %v", err)
	}
	if err := s.Apply(ctx, game.ChangeSet{Factory: &f}); !errors.Is(err, game.ErrStale) {
		t.Errorf("second insert error = %v, want ErrStale", err)
	}
	got, err := s.GetFactory(ctx, 2)
	if err != nil || got.Version != 1 {
		t.Fatalf("GetFactory() = %+v, %v", got, err)
	}
	if _, err := s.GetFactory(ctx, 3); !errors.Is(err, game.ErrNotFound) {
		t.Errorf("GetFactory(3) error = %v, want ErrNotFound", err)
	}
}

func TestListingLifecycle(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	l := engine.CarListing{ID: "l1", SellerID: "a", CarID: "c1", Price: 100, Active: true, CreatedAt: now}

	if err := s.Apply(ctx, game.ChangeSet{CreateListing: &l}); err != nil {
		t.Fatalf("create error = %v", err)
	}
	dup := l
	dup.ID = "l2"
	if err := s.Apply(ctx, game.ChangeSet{CreateListing: &dup}); !errors.Is(err, game.ErrStale) {
		t.Errorf("second listing for the same car error = %v, want ErrStale", err)
	}
	if ok, _ := s.HasActiveListing(ctx, "c1"); !ok {
		t.Error("HasActiveListing(c1) = false")
	}

	closed := l
	closed.Active = false
	closed.BuyerID = ptr("b")
	closed.ClosedAt = ptr(now.Add(time.Minute))
	if err := s.Apply(ctx, game.ChangeSet{CloseListing: &closed}); err != nil {
		t.Fatalf("close error = %v", err)
	}
	if err := s.Apply(ctx, game.ChangeSet{CloseListing: &closed}); !errors.Is(err, game.ErrStale) {
		t.Errorf("double close error = %v, want ErrStale", err)
	}
	got, _ := s.GetListing(ctx, "l1")
	if got.Active || got.BuyerID == nil || *got.BuyerID != "b" {
		t.Errorf("listing = %+v", got)
	}
}

func TestListListingsFiltersAndPages(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	for i, price := range []int64{100, 200, 300, 400} {
		l := engine.CarListing{
			ID:        string(rune('a' + i)),
			SellerID:  "s",
			CarID:     string(rune('w' + i)),
			CarType:   i % 2,
			Price:     price,
			Active:    true,
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		}
		if err := s.Apply(ctx, game.ChangeSet{CreateListing: &l}); err != nil {
			t.Fatal(err)
		}
	}

	page, total, _ := s.ListListings(ctx, game.ListingFilter{Limit: 2})
	if total != 4 || len(page) != 2 || page[0].ID != "d" {
		t.Errorf("first page = %d of %d, first %s", len(page), total, page[0].ID)
	}
	page, total, _ = s.ListListings(ctx, game.ListingFilter{CarType: ptr(0), MaxPrice: 250, Limit: 10})
	if total != 1 || page[0].ID != "a" {
		t.Errorf("filtered = %d, want only a", total)
	}
	page, _, _ = s.ListListings(ctx, game.ListingFilter{Offset: 10, Limit: 10})
	if len(page) != 0 {
		t.Errorf("offset past end returned %d listings", len(page))
	}
}

func TestServiceOverStore(t *testing.T) {
	s := memory.New()
	clk := clock.NewManual(now)
	svc := game.NewService(s, game.StaticTables(tables.Default()), clk)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "p1", "vito", nil); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := svc.CommitCrime(ctx, "p1", 0); err != nil {
		t.Fatalf("CommitCrime() error = %v", err)
	}

	_, err := svc.CommitCrime(ctx, "p1", 0)
	var ee *engine.Error
	if !errors.As(err, &ee) || ee.Kind != engine.KindPrecondition || ee.Remaining != 30*time.Second {
		t.Fatalf("second CommitCrime() error = %v, want 30s cooldown", err)
	}

	clk.Advance(30 * time.Second)
	if _, err := svc.CommitCrime(ctx, "p1", 0); err != nil {
		t.Fatalf("CommitCrime() after cooldown error = %v", err)
	}
	if got := len(s.Attempts("p1")); got != 2 {
		t.Errorf("attempts = %d, want 2", got)
	}
	p, _ := s.GetPlayer(ctx, "p1")
	if p.Stats.CrimesAttempted != 2 || p.Version != 2 {
		t.Errorf("stats = %+v, version %d", p.Stats, p.Version)
	}
}

func ptr[T any](v T) *T { return &v }

func TestPruneCooldowns(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, exp := range []time.Time{now.Add(-time.Hour), now.Add(time.Hour)} {
		cd := engine.Cooldown{PlayerID: "p1", ActionID: engine.CrimeActionID(i), ExpiresAt: exp}
		if err := s.Apply(ctx, game.ChangeSet{Cooldown: &cd}); err != nil {
			t.Fatal(err)
		}
	}
	n, err := s.PruneCooldowns(ctx, now)
	if err != nil || n != 1 {
		t.Fatalf("PruneCooldowns() = %d, %v; want 1", n, err)
	}
	if cd, _ := s.GetCooldown(ctx, "p1", engine.CrimeActionID(0)); cd != nil {
		t.Errorf("expired cooldown still stored: %v", cd)
	}
	if cd, _ := s.GetCooldown(ctx, "p1", engine.CrimeActionID(1)); cd == nil {
		t.Error("live cooldown was pruned")
	}
}

func TestKillWithdrawsVictimListings(t *testing.T) {
	s := memory.New()
	svc := game.NewService(s, game.StaticTables(tables.Default()), clock.NewManual(now))
	ctx := context.Background()

	attacker := &engine.Player{
		ID:        "a",
		Username:  "attacker",
		GunID:     ptr(0),
		Bullets:   5000,
		Cars:      []engine.PlayerCar{{ID: "own", CarType: 0}},
		ActiveCar: ptr("own"),
		Search:    &engine.Search{TargetID: "v", StartedAt: now.Add(-6 * time.Minute), EndsAt: now.Add(-time.Minute)},
		CreatedAt: now,
	}
	victim := &engine.Player{
		ID:        "v",
		Username:  "victim",
		Cars:      []engine.PlayerCar{{ID: "car-1", CarType: 3}},
		CreatedAt: now,
	}
	for _, p := range []*engine.Player{attacker, victim} {
		if err := s.CreatePlayer(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	listing, err := svc.ListCar(ctx, "v", "car-1", 900)
	if err != nil {
		t.Fatalf("ListCar() error = %v", err)
	}
	res, err := svc.Shoot(ctx, "a", "v")
	if err != nil {
		t.Fatalf("Shoot() error = %v", err)
	}

	if got, _ := s.GetListing(ctx, listing.ID); got.Active || got.ClosedAt == nil {
		t.Errorf("victim listing after kill = %+v, want closed", got)
	}
	if _, total, _ := s.ListListings(ctx, game.ListingFilter{}); total != 0 {
		t.Errorf("active listings = %d, want 0", total)
	}
	if len(res.Outcome.Looted) != 1 {
		t.Fatalf("looted = %+v", res.Outcome.Looted)
	}
	looted := res.Outcome.Looted[0].ID
	if looted == "car-1" {
		t.Fatal("looted car kept the victim's id")
	}

	relisted, err := svc.ListCar(ctx, "a", looted, 1200)
	if err != nil {
		t.Fatalf("ListCar() of looted car error = %v", err)
	}
	if _, err := svc.CancelListing(ctx, "a", relisted.ID); err != nil {
		t.Fatalf("CancelListing() error = %v", err)
	}
	if _, err := svc.MeltCar(ctx, "a", looted); err != nil {
		t.Fatalf("MeltCar() of looted car error = %v", err)
	}
}

func TestListingOrdersAgainstMelt(t *testing.T) {
	s := memory.New()
	svc := game.NewService(s, game.StaticTables(tables.Default()), clock.NewManual(now))
	ctx := context.Background()
	p := &engine.Player{ID: "p1", Username: "seller", Cars: []engine.PlayerCar{{ID: "c1", CarType: 2}}, CreatedAt: now}
	if err := s.CreatePlayer(ctx, p); err != nil {
		t.Fatal(err)
	}

	// A melt resolved from the state read before the listing was written.
	before, _ := s.GetPlayer(ctx, "p1")
	melted := before.Clone()
	melted.Cars = []engine.PlayerCar{}

	if _, err := svc.ListCar(ctx, "p1", "c1", 500); err != nil {
		t.Fatalf("ListCar() error = %v", err)
	}
	if err := s.Apply(ctx, game.ChangeSet{Players: []engine.Player{melted}}); !errors.Is(err, game.ErrStale) {
		t.Errorf("melt after listing error = %v, want ErrStale", err)
	}
	got, _ := s.GetPlayer(ctx, "p1")
	if len(got.Cars) != 1 || got.Version != 1 {
		t.Errorf("seller = %d cars at version %d, want 1 car at version 1", len(got.Cars), got.Version)
	}
}
