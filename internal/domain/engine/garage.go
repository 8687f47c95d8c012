package engine

import (
	"math"
	"time"

	"github.com/gangland/server/internal/domain/tables"
)

// RepairChance is the success chance in percent for a car at the given damage.
func RepairChance(car tables.Car, damage int) float64 {
	if car.Rare {
		return math.Max(0, 50-float64(damage)*0.5)
	}
	return float64(100 - damage)
}

// MeltValue is the bullets paid for melting a car.
func MeltValue(car tables.Car, damage int) int64 {
	if damage >= 100 {
		return 0
	}
	return car.BaseBullets * int64(100-damage) / 100
}

type RepairOutcome struct {
	CarID   string  `json:"carId"`
	Success bool    `json:"success"`
	Chance  float64 `json:"chance"`
	Damage  int     `json:"damage"`
}

type RepairResult struct {
	Player  Player
	Outcome RepairOutcome
}

func (e *Engine) RepairCar(current Player, carID string, now time.Time) (RepairResult, error) {
	p := current.Clone()
	if err := Gate(&p, now); err != nil {
		return RepairResult{}, err
	}
	car, idx, ok := p.Car(carID)
	if !ok {
		return RepairResult{}, NotFound("you do not own that car")
	}
	if car.Damage == 0 {
		return RepairResult{}, Precondition("car is not damaged")
	}
	model, _ := e.tables.Car(car.CarType)
	out := RepairOutcome{CarID: car.ID, Chance: RepairChance(model, car.Damage), Damage: car.Damage}
	if e.roll() < out.Chance {
		out.Success = true
		out.Damage = 0
		p.Cars[idx].Damage = 0
	}
	return RepairResult{Player: p, Outcome: out}, nil
}

type MeltOutcome struct {
	CarID           string    `json:"carId"`
	Bullets         int64     `json:"bullets"`
	NextMeltAllowed time.Time `json:"nextMeltAllowed"`
}

type MeltResult struct {
	Player  Player
	Outcome MeltOutcome
}

func (e *Engine) MeltCar(current Player, carID string, now time.Time) (MeltResult, error) {
	p := current.Clone()
	if err := Gate(&p, now); err != nil {
		return MeltResult{}, err
	}
	cd := e.tables.Tunables.MeltCooldown.Duration
	if p.LastMeltTime != nil {
		next := p.LastMeltTime.Add(cd)
		if active, left := CooldownActive(&next, now); active {
			return MeltResult{}, Waiting("melt on cooldown", left)
		}
	}
	car, idx, ok := p.Car(carID)
	if !ok {
		return MeltResult{}, NotFound("you do not own that car")
	}
	if p.ActiveCar != nil && *p.ActiveCar == car.ID {
		return MeltResult{}, Precondition("you cannot melt your active car")
	}
	model, _ := e.tables.Car(car.CarType)
	value := MeltValue(model, car.Damage)
	p.removeCar(idx)
	p.Bullets += value
	p.LastMeltTime = ptr(now)
	p.Stats.CarsMelted++
	return MeltResult{
		Player:  p,
		Outcome: MeltOutcome{CarID: car.ID, Bullets: value, NextMeltAllowed: now.Add(cd)},
	}, nil
}

// SetActiveCar selects which owned car is used for travel.
func (e *Engine) SetActiveCar(current Player, carID string) (Player, error) {
	p := current.Clone()
	if _, _, ok := p.Car(carID); !ok {
		return Player{}, NotFound("you do not own that car")
	}
	p.ActiveCar = ptr(carID)
	return p, nil
}
