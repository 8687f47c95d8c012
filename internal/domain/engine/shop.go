package engine

import "time"

type PurchaseOutcome struct {
	ItemID int    `json:"itemId"`
	Name   string `json:"name"`
	Price  int64  `json:"price"`
}

type PurchaseResult struct {
	Player  Player
	Outcome PurchaseOutcome
}

// catalogItem is the common view of guns and protection.
type catalogItem struct {
	name  string
	price int64
}

// checkSequence enforces that item n is only bought by the owner of n-1.
func checkSequence(owned *int, want int, prevName string) error {
	if owned != nil && *owned >= want {
		return Precondition("you already own this or a better item")
	}
	if want > 0 && (owned == nil || *owned != want-1) {
		return Precondition("you must own %s first", prevName)
	}
	return nil
}

func (e *Engine) buySequential(current Player, id int, slot func(*Player) **int, lookup func(int) (catalogItem, bool), now time.Time) (PurchaseResult, error) {
	item, ok := lookup(id)
	if !ok {
		return PurchaseResult{}, Validation("invalid item id %d", id)
	}
	p := current.Clone()
	if err := Gate(&p, now); err != nil {
		return PurchaseResult{}, err
	}
	owned := slot(&p)
	prev, _ := lookup(id - 1)
	if err := checkSequence(*owned, id, prev.name); err != nil {
		return PurchaseResult{}, err
	}
	if err := requireFunds(p.Money, item.price); err != nil {
		return PurchaseResult{}, err
	}
	p.Money -= item.price
	*owned = ptr(id)
	return PurchaseResult{Player: p, Outcome: PurchaseOutcome{ItemID: id, Name: item.name, Price: item.price}}, nil
}

func (e *Engine) BuyGun(current Player, gunID int, now time.Time) (PurchaseResult, error) {
	return e.buySequential(current, gunID,
		func(p *Player) **int { return &p.GunID },
		func(id int) (catalogItem, bool) {
			g, ok := e.tables.Gun(id)
			return catalogItem{name: g.Name, price: g.Price}, ok
		}, now)
}

func (e *Engine) BuyProtection(current Player, protectionID int, now time.Time) (PurchaseResult, error) {
	return e.buySequential(current, protectionID,
		func(p *Player) **int { return &p.ProtectionID },
		func(id int) (catalogItem, bool) {
			pr, ok := e.tables.Protection(id)
			return catalogItem{name: pr.Name, price: pr.Price}, ok
		}, now)
}
