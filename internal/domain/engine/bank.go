package engine

import "time"

// Deposit moves cash into the Swiss bank, where combat cannot reach it.
func (e *Engine) Deposit(current Player, amount int64, now time.Time) (Player, error) {
	if amount <= 0 {
		return Player{}, Validation("amount must be positive")
	}
	p := current.Clone()
	if err := Gate(&p, now, SkipHospital()); err != nil {
		return Player{}, err
	}
	if err := requireFunds(p.Money, amount); err != nil {
		return Player{}, err
	}
	p.Money -= amount
	p.SwissBank += amount
	return p, nil
}

func (e *Engine) Withdraw(current Player, amount int64, now time.Time) (Player, error) {
	if amount <= 0 {
		return Player{}, Validation("amount must be positive")
	}
	p := current.Clone()
	if err := Gate(&p, now, SkipHospital()); err != nil {
		return Player{}, err
	}
	if p.SwissBank < amount {
		return Player{}, Precondition("not enough in the bank: need %d, have %d", amount, p.SwissBank)
	}
	p.SwissBank -= amount
	p.Money += amount
	return p, nil
}
