package engine

import "time"

type ListingResult struct {
	Listing CarListing
}

// ListCar offers an owned car for sale. listed reports whether the car is
// already on an active listing.
func (e *Engine) ListCar(current Player, carID string, price int64, listed bool, now time.Time) (ListingResult, error) {
	if price <= 0 {
		return ListingResult{}, Validation("price must be positive")
	}
	p := current.Clone()
	if err := Gate(&p, now); err != nil {
		return ListingResult{}, err
	}
	car, _, ok := p.Car(carID)
	if !ok {
		return ListingResult{}, NotFound("you do not own that car")
	}
	if listed {
		return ListingResult{}, Conflict("car is already listed")
	}
	return ListingResult{Listing: CarListing{
		ID:        e.ids.NewID(),
		SellerID:  p.ID,
		CarID:     car.ID,
		CarType:   car.CarType,
		Damage:    car.Damage,
		Price:     price,
		Active:    true,
		CreatedAt: now,
	}}, nil
}

type BuyCarOutcome struct {
	ListingID string    `json:"listingId"`
	Price     int64     `json:"price"`
	Car       PlayerCar `json:"car"`
}

type BuyCarResult struct {
	Buyer   Player
	Seller  Player
	Listing CarListing
	Outcome BuyCarOutcome
}

// BuyCar transfers a listed car. The three returned records must be written
// atomically. expectedPrice is the price the buyer saw.
func (e *Engine) BuyCar(buyer, seller Player, listing CarListing, expectedPrice int64, now time.Time) (BuyCarResult, error) {
	b := buyer.Clone()
	if err := Gate(&b, now); err != nil {
		return BuyCarResult{}, err
	}
	if !listing.Active {
		return BuyCarResult{}, Conflict("listing is no longer active")
	}
	if listing.Price != expectedPrice {
		return BuyCarResult{}, Conflict("price changed to %d", listing.Price)
	}
	if listing.SellerID == b.ID {
		return BuyCarResult{}, Precondition("you cannot buy your own listing")
	}
	if err := requireFunds(b.Money, listing.Price); err != nil {
		return BuyCarResult{}, err
	}
	s := seller.Clone()
	sold, idx, ok := s.Car(listing.CarID)
	if !ok {
		return BuyCarResult{}, Conflict("car is no longer available")
	}

	s.removeCar(idx)
	s.Money += listing.Price
	b.Money -= listing.Price
	car := PlayerCar{ID: e.ids.NewID(), CarType: sold.CarType, Damage: sold.Damage, Source: SourcePurchased}
	b.addCar(car)

	l := listing
	l.Active = false
	l.BuyerID = ptr(b.ID)
	l.ClosedAt = ptr(now)
	return BuyCarResult{
		Buyer:   b,
		Seller:  s,
		Listing: l,
		Outcome: BuyCarOutcome{ListingID: l.ID, Price: l.Price, Car: car},
	}, nil
}

// CancelListing withdraws an active listing. Only the seller may cancel.
func (e *Engine) CancelListing(current Player, listing CarListing, now time.Time) (CarListing, error) {
	if listing.SellerID != current.ID {
		return CarListing{}, Precondition("this is not your listing")
	}
	if !listing.Active {
		return CarListing{}, Conflict("listing is no longer active")
	}
	l := listing
	l.Active = false
	l.ClosedAt = ptr(now)
	return l, nil
}
