package engine

import (
	"time"

	"github.com/gangland/server/internal/domain/tables"
)

// TravelTime interpolates linearly between the configured anchors: the
// fastest catalog car gets the minimum time and the slowest the maximum.
func TravelTime(t *tables.Tables, speed int64) time.Duration {
	lo, hi := t.Tunables.TravelMinTime.Duration, t.Tunables.TravelMaxTime.Duration
	slowest, fastest := t.SpeedRange()
	if fastest <= slowest {
		return lo
	}
	speed = max(slowest, min(fastest, speed))
	return time.Duration(int64(hi-lo)*(fastest-speed)/(fastest-slowest)) + lo
}

type TravelOutcome struct {
	From      int           `json:"from"`
	To        int           `json:"to"`
	Cost      int64         `json:"cost"`
	Duration  time.Duration `json:"duration"`
	ArrivesAt time.Time     `json:"arrivesAt"`
	CarID     string        `json:"carId"`
	CarDamage int           `json:"carDamage"`
}

type TravelResult struct {
	Player  Player
	Outcome TravelOutcome
}

// Travel moves the player to cityID. The city changes immediately; the
// duration is reported to the client only.
func (e *Engine) Travel(current Player, cityID int, now time.Time) (TravelResult, error) {
	if !e.tables.ValidCity(cityID) {
		return TravelResult{}, Validation("invalid city id %d", cityID)
	}
	p := current.Clone()
	if err := Gate(&p, now); err != nil {
		return TravelResult{}, err
	}
	if p.City == cityID {
		return TravelResult{}, Precondition("you are already in %s", e.CityName(cityID))
	}
	tu := e.tables.Tunables
	if err := requireFunds(p.Money, tu.TravelCostBase); err != nil {
		return TravelResult{}, err
	}
	car, idx, ok := p.ActiveCarInstance()
	if !ok {
		return TravelResult{}, Precondition("you need an active car to travel")
	}
	if car.Damage >= 100 {
		return TravelResult{}, Precondition("your car is wrecked")
	}
	model, _ := e.tables.Car(car.CarType)
	d := TravelTime(e.tables, model.Speed)

	p.Money -= tu.TravelCostBase
	p.Cars[idx].Damage = min(100, car.Damage+tu.TravelDamage)
	from := p.City
	p.City = cityID

	return TravelResult{
		Player: p,
		Outcome: TravelOutcome{
			From:      from,
			To:        cityID,
			Cost:      tu.TravelCostBase,
			Duration:  d,
			ArrivesAt: now.Add(d),
			CarID:     car.ID,
			CarDamage: p.Cars[idx].Damage,
		},
	}, nil
}
