package engine

import (
	"time"

	"github.com/gangland/server/internal/domain/tables"
)

// BulletCost is the price in bullets of killing a target. A missing gun or
// protection counts as a neutral x1.00 factor.
func BulletCost(t *tables.Tables, attackerRank, targetRank int, gunID, protectionID *int) int64 {
	rm := t.RankDiffMultiplier(attackerRank - targetRank)
	pm := tables.One
	if protectionID != nil {
		if p, ok := t.Protection(*protectionID); ok {
			pm = p.Multiplier
		}
	}
	gd := tables.One
	if gunID != nil {
		if g, ok := t.Gun(*gunID); ok {
			gd = g.Divisor
		}
	}
	num := t.Tunables.BulletCostBase * int64(rm) * int64(pm)
	den := int64(tables.One) * int64(gd)
	return ceilDiv(num, den)
}

func ceilDiv(a, b int64) int64 {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

type SearchOutcome struct {
	TargetID string    `json:"targetId"`
	EndsAt   time.Time `json:"endsAt"`
	ExpireAt time.Time `json:"expiresAt"`
}

type SearchResult struct {
	Player  Player
	Outcome SearchOutcome
}

// StartSearch begins reconnaissance on target. A completed search may be
// replaced, a running one may not.
func (e *Engine) StartSearch(current Player, target Player, now time.Time) (SearchResult, error) {
	if current.ID == target.ID {
		return SearchResult{}, Validation("you cannot search for yourself")
	}
	p := current.Clone()
	if err := Gate(&p, now); err != nil {
		return SearchResult{}, err
	}
	if p.Search != nil && now.Before(p.Search.EndsAt) {
		return SearchResult{}, &Error{
			Kind:      KindConflict,
			Reason:    "search already in progress",
			Remaining: p.Search.EndsAt.Sub(now),
		}
	}
	tu := e.tables.Tunables
	s := Search{TargetID: target.ID, StartedAt: now, EndsAt: now.Add(tu.SearchDuration.Duration)}
	p.Search = &s
	return SearchResult{
		Player: p,
		Outcome: SearchOutcome{
			TargetID: target.ID,
			EndsAt:   s.EndsAt,
			ExpireAt: s.EndsAt.Add(tu.SearchValidity.Duration),
		},
	}, nil
}

// CancelSearch clears the search record.
func (e *Engine) CancelSearch(current Player) (Player, error) {
	if current.Search == nil {
		return Player{}, Precondition("you are not searching for anyone")
	}
	p := current.Clone()
	p.Search = nil
	return p, nil
}

type ShootOutcome struct {
	VictimID    string      `json:"victimId"`
	BulletsUsed int64       `json:"bulletsUsed"`
	Looted      []PlayerCar `json:"looted"`
	VictimRank  int         `json:"victimRank"`
}

type ShootResult struct {
	Attacker Player
	Victim   Player
	Outcome  ShootOutcome
}

// Shoot kills victim. Looted cars are reissued under fresh ids. Both returned
// players must be persisted atomically.
func (e *Engine) Shoot(attacker, victim Player, now time.Time) (ShootResult, error) {
	if attacker.ID == victim.ID {
		return ShootResult{}, Validation("you cannot shoot yourself")
	}
	a := attacker.Clone()
	v := victim.Clone()
	if err := Gate(&a, now); err != nil {
		return ShootResult{}, err
	}
	if a.GunID == nil {
		return ShootResult{}, Precondition("you need a gun")
	}
	if a.Search == nil || a.Search.TargetID != v.ID {
		return ShootResult{}, Precondition("you must search for %s first", v.Username)
	}
	if now.Before(a.Search.EndsAt) {
		return ShootResult{}, Waiting("search still in progress", a.Search.EndsAt.Sub(now))
	}
	if now.After(a.Search.EndsAt.Add(e.tables.Tunables.SearchValidity.Duration)) {
		return ShootResult{}, Precondition("search expired, search again")
	}
	cost := BulletCost(e.tables, a.Rank, v.Rank, a.GunID, v.ProtectionID)
	if a.Bullets < cost {
		return ShootResult{}, Precondition("not enough bullets: need %d, have %d", cost, a.Bullets)
	}

	out := ShootOutcome{VictimID: v.ID, BulletsUsed: cost, VictimRank: v.Rank, Looted: []PlayerCar{}}
	a.Bullets -= cost
	a.Kills++
	a.Search = nil
	for _, car := range v.Cars {
		car.ID = e.ids.NewID()
		car.Source = SourceLooted
		a.addCar(car)
		out.Looted = append(out.Looted, car)
	}
	e.resetVictim(&v, now)

	return ShootResult{Attacker: a, Victim: v, Outcome: out}, nil
}

// resetVictim returns a killed player to starting values. SwissBank survives.
func (e *Engine) resetVictim(v *Player, now time.Time) {
	tu := e.tables.Tunables
	v.Money = tu.StartingMoney
	v.Respect = tu.StartingRespect
	v.Rank = RecalculateRank(e.tables.Ranks, v.Respect)
	v.Bullets = tu.StartingBullets
	v.Nerve = tu.StartingNerve
	v.NerveUpdatedAt = ptr(now)
	v.GunID = nil
	v.ProtectionID = nil
	v.Cars = []PlayerCar{}
	v.ActiveCar = nil
	v.Deaths++
}
