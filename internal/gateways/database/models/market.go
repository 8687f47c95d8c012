package models

import (
	"time"

	"github.com/uptrace/bun"
)

type CarListing struct {
	bun.BaseModel `bun:"table:car_listings,alias:cl"`

	ID        string     `bun:"id,pk"`
	SellerID  string     `bun:"seller_id,notnull"`
	CarID     string     `bun:"car_id,notnull"`
	CarType   int        `bun:"car_type,notnull"`
	Damage    int        `bun:"damage,notnull,default:0"`
	Price     int64      `bun:"price,notnull"`
	Active    bool       `bun:"active,notnull,default:true"`
	BuyerID   *string    `bun:"buyer_id"`
	CreatedAt time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	ClosedAt  *time.Time `bun:"closed_at,nullzero"`
}
