package engine

import (
	"time"

	"github.com/gangland/server/internal/domain/tables"
)

const msPerDay = 24 * 60 * 60 * 1000

// Accrued splits the production since last into the owner's share and the
// city pool share. Both are floored; the fractions are discarded.
func Accrued(tu tables.Tunables, last, now time.Time) (owner, pool int64) {
	elapsed := now.Sub(last).Milliseconds()
	if elapsed <= 0 {
		return 0, 0
	}
	pct := tu.FactoryOwnerPercentage
	owner = tu.FactoryDailyProduction * pct * elapsed / (100 * msPerDay)
	pool = tu.FactoryDailyProduction * (100 - pct) * elapsed / (100 * msPerDay)
	return owner, pool
}

type FactoryOutcome struct {
	CityID    int   `json:"cityId"`
	Collected int64 `json:"collected"`
	PoolAdded int64 `json:"poolAdded"`
}

type FactoryResult struct {
	Player  Player
	Factory BulletFactory
	Outcome FactoryOutcome
}

// TakeoverFactory claims the factory of cityID. factory is nil when the city
// has never had one; it is created here.
func (e *Engine) TakeoverFactory(current Player, factory *BulletFactory, cityID int, now time.Time) (FactoryResult, error) {
	if !e.tables.ValidCity(cityID) {
		return FactoryResult{}, Validation("invalid city id %d", cityID)
	}
	p := current.Clone()
	if err := Gate(&p, now); err != nil {
		return FactoryResult{}, err
	}
	if p.BulletFactoryID != nil {
		return FactoryResult{}, Precondition("you already own a factory")
	}
	f := BulletFactory{CityID: cityID, LastCollectionTime: now}
	if factory != nil {
		f = factory.Clone()
		if f.OwnerID != nil {
			return FactoryResult{}, Conflict("the factory in %s is already owned", e.CityName(cityID))
		}
		// nobody owned it, so the whole output went to the pool
		owner, pool := Accrued(e.tables.Tunables, f.LastCollectionTime, now)
		f.StoredBullets += owner + pool
		f.LastCollectionTime = now
	}
	f.OwnerID = ptr(p.ID)
	p.BulletFactoryID = ptr(cityID)
	return FactoryResult{Player: p, Factory: f, Outcome: FactoryOutcome{CityID: cityID}}, nil
}

// CollectBullets pays the owner's accrued share and moves the pool share
// into the factory's store.
func (e *Engine) CollectBullets(current Player, factory *BulletFactory, now time.Time) (FactoryResult, error) {
	p := current.Clone()
	if err := Gate(&p, now); err != nil {
		return FactoryResult{}, err
	}
	if factory == nil || factory.OwnerID == nil || *factory.OwnerID != p.ID {
		return FactoryResult{}, Precondition("you do not own this factory")
	}
	f := factory.Clone()
	owner, pool := Accrued(e.tables.Tunables, f.LastCollectionTime, now)
	p.Bullets += owner
	p.Stats.BulletsCollected += owner
	f.StoredBullets += pool
	f.LastCollectionTime = now
	return FactoryResult{
		Player:  p,
		Factory: f,
		Outcome: FactoryOutcome{CityID: f.CityID, Collected: owner, PoolAdded: pool},
	}, nil
}
