package engine

import "time"

type gateConfig struct {
	skipHospital bool
}

type GateOption func(*gateConfig)

// SkipHospital lets an action proceed while the player is hospitalised.
func SkipHospital() GateOption {
	return func(c *gateConfig) { c.skipHospital = true }
}

// Gate applies the shared timer checks in a fixed order: jail first, then
// hospital. Action specific checks run after it.
func Gate(p *Player, now time.Time, opts ...GateOption) error {
	var cfg gateConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if Active(p.JailUntil, now) {
		return Waiting(ReasonInJail, p.JailUntil.Sub(now))
	}
	if !cfg.skipHospital && Active(p.HospitalUntil, now) {
		return Waiting(ReasonInHospital, p.HospitalUntil.Sub(now))
	}
	return nil
}

// Decision is the read-only form of Gate used for status display.
type Decision struct {
	Allowed   bool          `json:"allowed"`
	Reason    string        `json:"reason,omitempty"`
	Remaining time.Duration `json:"remaining,omitempty"`
}

func CanAct(p *Player, now time.Time, opts ...GateOption) Decision {
	err := Gate(p, now, opts...)
	if err == nil {
		return Decision{Allowed: true}
	}
	e := err.(*Error)
	return Decision{Reason: e.Reason, Remaining: e.Remaining}
}

func requireFunds(have, cost int64) error {
	if have < cost {
		return Precondition("not enough money: need %d, have %d", cost, have)
	}
	return nil
}
