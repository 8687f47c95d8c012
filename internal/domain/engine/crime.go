package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/gangland/server/internal/domain/tables"
)

const (
	PolicyAugmented = "augmented"
	PolicyFixed     = "fixed"
)

// CrimePolicy decides how an attempted crime plays out.
type CrimePolicy interface {
	Name() string
	// GatesHospital reports whether hospitalised players are kept from crimes.
	GatesHospital() bool
	// Check runs the policy specific preconditions after the shared gate.
	Check(e *Engine, p *Player, crime tables.Crime, now time.Time) error
	// Resolve draws the outcome and applies it to p.
	Resolve(e *Engine, p *Player, crime tables.Crime, now time.Time) CrimeOutcome
}

// PolicyByName maps a configuration value to a policy.
func PolicyByName(name string, hospitalGate bool) (CrimePolicy, error) {
	switch name {
	case PolicyAugmented:
		return AugmentedPolicy{}, nil
	case PolicyFixed, "":
		return FixedRatePolicy{HospitalGate: hospitalGate}, nil
	}
	return nil, fmt.Errorf("unknown crime policy %q", name)
}

type CrimeOutcome struct {
	CrimeID      int        `json:"crimeId"`
	Success      bool       `json:"success"`
	Chance       float64    `json:"chance"`
	Roll         float64    `json:"roll"`
	Money        int64      `json:"money"`
	Respect      int64      `json:"respect"`
	NerveSpent   int64      `json:"nerveSpent,omitempty"`
	Car          *PlayerCar `json:"car,omitempty"`
	Jailed       bool       `json:"jailed"`
	Hospitalized bool       `json:"hospitalized"`
	Until        *time.Time `json:"until,omitempty"`
	RankedUp     bool       `json:"rankedUp"`
	Rank         int        `json:"rank"`
}

type CrimeResult struct {
	Player   Player
	Outcome  CrimeOutcome
	Cooldown Cooldown
	Attempt  CrimeAttempt
}

// CommitCrime resolves one crime attempt. cooldown is the stored expiry for
// (player, crime) or nil when none exists.
func (e *Engine) CommitCrime(current Player, crimeID int, cooldown *time.Time, now time.Time) (CrimeResult, error) {
	crime, ok := e.tables.Crime(crimeID)
	if !ok {
		return CrimeResult{}, Validation("invalid crime id %d", crimeID)
	}
	p := current.Clone()

	var opts []GateOption
	if !e.policy.GatesHospital() {
		opts = append(opts, SkipHospital())
	}
	if err := Gate(&p, now, opts...); err != nil {
		return CrimeResult{}, err
	}
	if p.Rank < crime.RequiredRank {
		return CrimeResult{}, Precondition("%s requires rank %s", crime.Name, e.tables.Ranks[crime.RequiredRank].Name)
	}
	if active, left := CooldownActive(cooldown, now); active {
		return CrimeResult{}, Waiting("crime on cooldown", left)
	}
	if err := e.policy.Check(e, &p, crime, now); err != nil {
		return CrimeResult{}, err
	}

	out := e.policy.Resolve(e, &p, crime, now)
	out.CrimeID = crime.ID
	out.Rank = p.Rank

	p.Stats.CrimesAttempted++
	if out.Success {
		p.Stats.CrimesSucceeded++
		p.Stats.MoneyEarned += out.Money
	} else {
		p.Stats.CrimesFailed++
	}
	if out.Jailed {
		p.Stats.TimesJailed++
	}
	if out.Hospitalized {
		p.Stats.TimesHospitalized++
	}

	attempt := CrimeAttempt{
		ID:       e.ids.NewID(),
		PlayerID: p.ID,
		CrimeID:  crime.ID,
		Policy:   e.policy.Name(),
		Success:  out.Success,
		Money:    out.Money,
		Respect:  out.Respect,
		Jailed:   out.Jailed,
		At:       now,
	}
	if out.Car != nil {
		attempt.CarType = ptr(out.Car.CarType)
	}
	return CrimeResult{
		Player:  p,
		Outcome: out,
		Cooldown: Cooldown{
			PlayerID:  p.ID,
			ActionID:  CrimeActionID(crime.ID),
			ExpiresAt: now.Add(crime.Cooldown.Duration),
		},
		Attempt: attempt,
	}, nil
}

// AugmentedPolicy boosts the base chance with rank and nerve and spends nerve
// on every attempt. Failures may jail or hospitalise.
type AugmentedPolicy struct{}

func (AugmentedPolicy) Name() string        { return PolicyAugmented }
func (AugmentedPolicy) GatesHospital() bool { return true }

func (AugmentedPolicy) Check(e *Engine, p *Player, crime tables.Crime, now time.Time) error {
	e.RegenerateNerve(p, now)
	if p.Nerve < crime.NerveCost {
		return Precondition("not enough nerve: need %d, have %d", crime.NerveCost, p.Nerve)
	}
	return nil
}

// AugmentedChance is the success chance in percent, capped by the tunables.
func AugmentedChance(t *tables.Tables, crime tables.Crime, rank int, nerve int64) float64 {
	rankBonus := math.Min(float64(rank)*2, 20)
	nerveBonus := math.Min(float64(nerve)/100*10, 10)
	return math.Min(t.Tunables.MaxSuccessChance, crime.BaseSuccess+rankBonus+nerveBonus)
}

func (AugmentedPolicy) Resolve(e *Engine, p *Player, crime tables.Crime, now time.Time) CrimeOutcome {
	out := CrimeOutcome{Chance: AugmentedChance(e.tables, crime, p.Rank, p.Nerve)}
	p.Nerve -= crime.NerveCost
	out.NerveSpent = crime.NerveCost

	out.Roll = e.roll()
	if out.Roll <= out.Chance {
		out.Success = true
		out.Money = e.between(crime.Payout.Min, crime.Payout.Max)
		out.Respect = crime.Respect
		p.Money += out.Money
		out.RankedUp = e.grantRespect(p, out.Respect)
		return out
	}

	tu := e.tables.Tunables
	switch second := e.roll(); {
	case second < 30:
		until := now.Add(e.randomised(tu.JailTimeBase.Duration))
		p.JailUntil = &until
		out.Jailed, out.Until = true, ptr(until)
	case second < 50:
		until := now.Add(e.randomised(tu.HospitalTimeBase.Duration))
		p.HospitalUntil = &until
		out.Hospitalized, out.Until = true, ptr(until)
	}
	return out
}

// randomised returns base plus a uniform extra of up to base, in whole seconds.
func (e *Engine) randomised(base time.Duration) time.Duration {
	secs := int64(base / time.Second)
	return time.Duration(secs+e.between(0, secs)) * time.Second
}

// FixedRatePolicy uses the crime's base chance as is. Failures always jail and
// car-reward crimes pay a vehicle instead of money.
type FixedRatePolicy struct {
	HospitalGate bool
}

func (FixedRatePolicy) Name() string          { return PolicyFixed }
func (f FixedRatePolicy) GatesHospital() bool { return f.HospitalGate }

func (FixedRatePolicy) Check(*Engine, *Player, tables.Crime, time.Time) error { return nil }

func (FixedRatePolicy) Resolve(e *Engine, p *Player, crime tables.Crime, now time.Time) CrimeOutcome {
	out := CrimeOutcome{Chance: crime.BaseSuccess}
	out.Roll = e.roll()
	if out.Roll > out.Chance {
		jail := crime.JailTime.Duration
		if jail <= 0 {
			jail = e.tables.Tunables.DefaultJailTime.Duration
		}
		until := now.Add(jail)
		p.JailUntil = &until
		out.Jailed, out.Until = true, ptr(until)
		return out
	}

	out.Success = true
	if crime.CarReward {
		if carType, ok := e.drawCar(); ok {
			car := PlayerCar{ID: e.ids.NewID(), CarType: carType, Source: SourceCrime}
			p.addCar(car)
			out.Car = &car
		}
		return out
	}
	out.Money = e.between(crime.Payout.Min, crime.Payout.Max)
	p.Money += out.Money
	if p.Rank < e.tables.MaxRank() {
		out.Respect = crime.Respect
		out.RankedUp = e.grantRespect(p, out.Respect)
	}
	return out
}

// drawCar picks a tier by weight, then a car uniformly inside that tier.
func (e *Engine) drawCar() (int, bool) {
	total := 0
	for _, tier := range e.tables.CarTiers {
		total += tier.Weight
	}
	if total <= 0 {
		return 0, false
	}
	remaining := e.rng.IntN(total) + 1
	for _, tier := range e.tables.CarTiers {
		remaining -= tier.Weight
		if remaining <= 0 {
			return tier.CarIDs[e.rng.IntN(len(tier.CarIDs))], true
		}
	}
	last := e.tables.CarTiers[len(e.tables.CarTiers)-1]
	return last.CarIDs[e.rng.IntN(len(last.CarIDs))], true
}
