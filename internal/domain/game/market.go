package game

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/gangland/server/internal/domain/engine"
)

const (
	defaultListingPage = 20
	maxListingPage     = 100
)

func (s *Service) ListCar(ctx context.Context, playerID, carID string, price int64) (*engine.CarListing, error) {
	if price <= 0 {
		return nil, engine.Validation("price must be positive")
	}
	e, err := s.engine(ctx)
	if err != nil {
		return nil, err
	}
	var (
		p      engine.Player
		listed bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		p, err = s.player(gctx, playerID)
		return err
	})
	g.Go(func() error {
		var err error
		listed, err = s.repo.HasActiveListing(gctx, carID)
		if err != nil {
			return fmt.Errorf("failed to check listings: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	res, err := e.ListCar(p, carID, price, listed, s.clock.Now())
	if err != nil {
		return nil, err
	}
	// The seller is written unchanged so the version check orders this
	// against a concurrent melt or sale of the same car.
	cs := ChangeSet{Players: []engine.Player{p}, CreateListing: &res.Listing}
	if err := s.apply(ctx, "list_car", cs); err != nil {
		return nil, err
	}
	return &res.Listing, nil
}

// BuyCar buys a listing at the price the buyer saw. Buyer, seller and listing
// are written in one transaction.
func (s *Service) BuyCar(ctx context.Context, playerID, listingID string, expectedPrice int64) (*Result[engine.BuyCarOutcome], error) {
	e, err := s.engine(ctx)
	if err != nil {
		return nil, err
	}
	var (
		buyer   engine.Player
		listing engine.CarListing
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		buyer, err = s.player(gctx, playerID)
		return err
	})
	g.Go(func() error {
		var err error
		listing, err = s.listing(gctx, listingID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seller := buyer
	if listing.SellerID != buyer.ID {
		if seller, err = s.player(ctx, listing.SellerID); err != nil {
			if engine.IsKind(err, engine.KindNotFound) {
				return nil, engine.Conflict("seller no longer exists")
			}
			return nil, err
		}
	}

	res, err := e.BuyCar(buyer, seller, listing, expectedPrice, s.clock.Now())
	if err != nil {
		return nil, err
	}
	cs := ChangeSet{
		Players:      []engine.Player{res.Buyer, res.Seller},
		CloseListing: &res.Listing,
	}
	if err := s.apply(ctx, "buy_car", cs); err != nil {
		return nil, err
	}
	slog.Info("Car sold",
		slog.String("type", "game"),
		slog.String("listing", listingID),
		slog.String("buyer", buyer.ID),
		slog.String("seller", seller.ID),
		slog.Int64("price", listing.Price))
	return &Result[engine.BuyCarOutcome]{Player: res.Buyer, Outcome: res.Outcome}, nil
}

func (s *Service) CancelListing(ctx context.Context, playerID, listingID string) (*engine.CarListing, error) {
	e, err := s.engine(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.player(ctx, playerID)
	if err != nil {
		return nil, err
	}
	listing, err := s.listing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	closed, err := e.CancelListing(p, listing, s.clock.Now())
	if err != nil {
		return nil, err
	}
	cs := ChangeSet{Players: []engine.Player{p}, CloseListing: &closed}
	if err := s.apply(ctx, "cancel_listing", cs); err != nil {
		return nil, err
	}
	return &closed, nil
}

// Listings pages through active listings. It returns the page and the total
// number of matches.
func (s *Service) Listings(ctx context.Context, filter ListingFilter) ([]*engine.CarListing, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListingPage
	}
	filter.Limit = min(filter.Limit, maxListingPage)
	filter.Offset = max(filter.Offset, 0)
	ls, total, err := s.repo.ListListings(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list listings: %w", err)
	}
	return ls, total, nil
}
