package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/gangland/server/internal/domain/tables"
)

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

// scriptedRNG replays fixed draws. IntN falls back to 0 when its script runs out.
type scriptedRNG struct {
	floats []float64
	ints   []int
}

func (s *scriptedRNG) Float64() float64 {
	if len(s.floats) == 0 {
		panic("scriptedRNG: no float draws left")
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scriptedRNG) IntN(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v >= n {
		v = n - 1
	}
	return v
}

type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

func newTestEngine(rng RNG, opts ...Option) *Engine {
	return New(tables.Default(), append([]Option{WithRNG(rng), WithIDs(&seqIDs{})}, opts...)...)
}

func newTestPlayer(id string) Player {
	return Player{
		ID:             id,
		Username:       "user_" + id,
		Nerve:          100,
		NerveUpdatedAt: ptr(testNow),
		Cars:           []PlayerCar{},
		CreatedAt:      testNow.Add(-24 * time.Hour),
	}
}

func wantKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got, ok := KindOf(err); !ok || got != kind {
		t.Fatalf("error = %v, want kind %s", err, kind)
	}
}

func TestNewPlayer(t *testing.T) {
	e := newTestEngine(&scriptedRNG{})
	tests := []struct {
		name     string
		id       string
		username string
		wantErr  bool
	}{
		{"valid", "w1", "don_vito", false},
		{"short username", "w1", "ab", true},
		{"bad characters", "w1", "don vito!", true},
		{"missing id", "", "don_vito", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := e.NewPlayer(tt.id, tt.username, nil, testNow)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewPlayer() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				wantKind(t, err, KindValidation)
				return
			}
			if p.Nerve != 100 || p.Rank != 0 || p.City != 0 || p.Cars == nil {
				t.Errorf("unexpected starting state: %+v", p)
			}
		})
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	p := newTestPlayer("a")
	p.Cars = []PlayerCar{{ID: "c1", CarType: 1}}
	p.GunID = ptr(0)
	c := p.Clone()
	c.Cars[0].Damage = 50
	*c.GunID = 3
	if p.Cars[0].Damage != 0 || *p.GunID != 0 {
		t.Fatal("Clone() shares memory with the original")
	}
}

func TestGate(t *testing.T) {
	future := testNow.Add(time.Minute)
	past := testNow.Add(-time.Minute)
	tests := []struct {
		name       string
		jail       *time.Time
		hospital   *time.Time
		opts       []GateOption
		wantReason string
	}{
		{"free", nil, nil, nil, ""},
		{"expired timers", &past, &past, nil, ""},
		{"jailed", &future, nil, nil, ReasonInJail},
		{"jail checked before hospital", &future, &future, nil, ReasonInJail},
		{"hospitalised", nil, &future, nil, ReasonInHospital},
		{"hospital skipped", nil, &future, []GateOption{SkipHospital()}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPlayer("a")
			p.JailUntil, p.HospitalUntil = tt.jail, tt.hospital
			d := CanAct(&p, testNow, tt.opts...)
			if d.Reason != tt.wantReason || d.Allowed != (tt.wantReason == "") {
				t.Fatalf("CanAct() = %+v, want reason %q", d, tt.wantReason)
			}
			if !d.Allowed && d.Remaining != time.Minute {
				t.Errorf("Remaining = %v, want 1m", d.Remaining)
			}
		})
	}
}

func TestCooldownActive(t *testing.T) {
	if active, _ := CooldownActive(nil, testNow); active {
		t.Error("nil expiry must be inactive")
	}
	exp := testNow.Add(1500 * time.Millisecond)
	active, left := CooldownActive(&exp, testNow)
	if !active || left != 1500*time.Millisecond {
		t.Errorf("CooldownActive() = %v, %v", active, left)
	}
	if active, _ := CooldownActive(&testNow, testNow); active {
		t.Error("expiry equal to now must be inactive")
	}
}

func TestRecalculateRank(t *testing.T) {
	ranks := tables.Default().Ranks
	prev := 0
	for r := int64(0); r <= 70000; r += 7 {
		got := RecalculateRank(ranks, r)
		if got < prev {
			t.Fatalf("rank decreased at respect %d: %d < %d", r, got, prev)
		}
		if r < ranks[1].RequiredRespect && got != 0 {
			t.Fatalf("RecalculateRank(%d) = %d, want 0", r, got)
		}
		prev = got
	}
	if got := RecalculateRank(ranks, 600); got != 3 {
		t.Errorf("RecalculateRank(600) = %d, want 3", got)
	}
	if got := RecalculateRank(ranks, 1<<40); got != len(ranks)-1 {
		t.Errorf("RecalculateRank(huge) = %d, want max rank", got)
	}
}

func TestRegenerateNerve(t *testing.T) {
	e := newTestEngine(&scriptedRNG{})
	p := newTestPlayer("a")
	p.Nerve = 10
	p.NerveUpdatedAt = ptr(testNow.Add(-5*time.Minute - 30*time.Second))
	e.RegenerateNerve(&p, testNow)
	if p.Nerve != 15 {
		t.Errorf("Nerve = %d, want 15", p.Nerve)
	}
	if want := testNow.Add(-30 * time.Second); !p.NerveUpdatedAt.Equal(want) {
		t.Errorf("NerveUpdatedAt = %v, want %v", p.NerveUpdatedAt, want)
	}

	p.Nerve = 98
	p.NerveUpdatedAt = ptr(testNow.Add(-time.Hour))
	e.RegenerateNerve(&p, testNow)
	if p.Nerve != 100 || !p.NerveUpdatedAt.Equal(testNow) {
		t.Errorf("nerve not capped: %d at %v", p.Nerve, p.NerveUpdatedAt)
	}
}

func tableDefaults() *tables.Tables {
	return tables.Default()
}
