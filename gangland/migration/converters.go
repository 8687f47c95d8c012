package migration

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/gangland/server/internal/domain/engine"
	"github.com/gangland/server/internal/domain/tables"
)

const maxUsernameLength = 20

var (
	errNoID       = errors.New("document has no world id")
	errNoUsername = errors.New("document has no usable username")
)

// convertPlayer maps a legacy document onto the current player model. Values
// the current tables cannot represent are clamped or cleared; adjusted reports
// whether anything had to change.
func convertPlayer(lp LegacyPlayer, t *tables.Tables, now time.Time) (p engine.Player, adjusted bool, err error) {
	id := strings.TrimSpace(lp.WorldID)
	if id == "" {
		return p, false, errNoID
	}
	username := cleanseUsername(lp.Username)
	if username == "" {
		return p, false, fmt.Errorf("%s: %w", id, errNoUsername)
	}
	adjusted = username != lp.Username

	fix := func(v int64, changed bool) int64 {
		adjusted = adjusted || changed
		return v
	}

	p = engine.Player{
		ID:        id,
		Username:  username,
		Money:     fix(nonNegative(lp.Money)),
		SwissBank: fix(nonNegative(lp.SwissBank)),
		Respect:   fix(nonNegative(lp.Respect)),
		Bullets:   fix(nonNegative(lp.Bullets)),
		Kills:     fix(nonNegative(lp.Kills)),
		Deaths:    fix(nonNegative(lp.Deaths)),
		Stats:     convertStats(lp.Stats),
		CreatedAt: lp.CreatedAt.UTC(),
		Version:   1,
	}
	if w := strings.TrimSpace(lp.Wallet); w != "" {
		p.Wallet = &w
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = lp.ObjectID.Timestamp().UTC()
		if lp.ObjectID.IsZero() {
			p.CreatedAt = now
		}
	}

	p.Rank = engine.RecalculateRank(t.Ranks, p.Respect)
	adjusted = adjusted || p.Rank != int(lp.Rank)

	p.City = int(lp.City)
	if !t.ValidCity(p.City) {
		p.City = t.Tunables.StartingCity
		adjusted = true
	}

	p.Nerve = t.Tunables.StartingNerve
	if lp.Nerve != nil {
		p.Nerve = min(fix(nonNegative(*lp.Nerve)), t.Tunables.MaxNerve)
	}
	p.NerveUpdatedAt = &now

	if lp.GunID != nil {
		if gun := int(*lp.GunID); validIndex(gun, len(t.Guns)) {
			p.GunID = &gun
		} else {
			adjusted = true
		}
	}
	if lp.ProtectionID != nil {
		if prot := int(*lp.ProtectionID); validIndex(prot, len(t.Protections)) {
			p.ProtectionID = &prot
		} else {
			adjusted = true
		}
	}

	p.Cars = make([]engine.PlayerCar, 0, len(lp.Cars))
	seen := make(map[string]bool, len(lp.Cars))
	for _, lc := range lp.Cars {
		car, ok := convertCar(lc, t)
		if !ok {
			adjusted = true
			continue
		}
		if seen[car.ID] {
			car.ID = uuid.NewString()
			adjusted = true
		}
		seen[car.ID] = true
		p.Cars = append(p.Cars, car)
	}
	if lp.ActiveCar != "" && seen[lp.ActiveCar] {
		active := lp.ActiveCar
		p.ActiveCar = &active
	} else if len(p.Cars) > 0 {
		first := p.Cars[0].ID
		p.ActiveCar = &first
		adjusted = adjusted || lp.ActiveCar != first
	}

	// Sentences that ran out in the old deployment are not worth keeping.
	p.JailUntil = future(lp.JailUntil, now)
	p.HospitalUntil = future(lp.HospitalUntil, now)
	if lp.LastMeltTime != nil {
		melt := lp.LastMeltTime.UTC()
		p.LastMeltTime = &melt
	}
	return p, adjusted, nil
}

func convertCar(lc LegacyCar, t *tables.Tables) (engine.PlayerCar, bool) {
	carType := int(lc.CarType)
	if _, ok := t.Car(carType); !ok {
		return engine.PlayerCar{}, false
	}
	car := engine.PlayerCar{
		ID:      strings.TrimSpace(lc.ID),
		CarType: carType,
		Damage:  int(math.Max(0, math.Min(100, lc.Damage))),
		Source:  engine.CarSource(lc.Source),
	}
	if car.ID == "" {
		car.ID = uuid.NewString()
	}
	switch car.Source {
	case engine.SourcePurchased, engine.SourceCrime, engine.SourceLooted:
	default:
		car.Source = engine.SourcePurchased
	}
	return car, true
}

func convertStats(s LegacyStats) engine.Stats {
	n := func(v float64) int64 {
		out, _ := nonNegative(v)
		return out
	}
	return engine.Stats{
		CrimesAttempted:   n(s.CrimesAttempted),
		CrimesSucceeded:   n(s.CrimesSucceeded),
		CrimesFailed:      n(s.CrimesFailed),
		TimesJailed:       n(s.TimesJailed),
		TimesHospitalized: n(s.TimesHospitalized),
		MoneyEarned:       n(s.MoneyEarned),
		RespectEarned:     n(s.RespectEarned),
		RankUps:           n(s.RankUps),
		CarsMelted:        n(s.CarsMelted),
		BulletsCollected:  n(s.BulletsCollected),
	}
}

// nonNegative truncates v to an integer and floors it at zero. changed is set
// when the stored value was negative, fractional or not a number.
func nonNegative(v float64) (out int64, changed bool) {
	if math.IsNaN(v) || v <= 0 {
		return 0, v != 0
	}
	if v >= math.MaxInt64 {
		return math.MaxInt64, true
	}
	out = int64(v)
	return out, float64(out) != v
}

func validIndex(i, n int) bool {
	return i >= 0 && i < n
}

func future(t *time.Time, now time.Time) *time.Time {
	if t == nil || !t.After(now) {
		return nil
	}
	u := t.UTC()
	return &u
}

// cleanseUsername drops control characters and surrounding space and caps the
// length in runes.
func cleanseUsername(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > maxUsernameLength {
		s = strings.TrimSpace(string(r[:maxUsernameLength]))
	}
	return s
}
