package models

import (
	"time"

	"github.com/uptrace/bun"
)

// BulletFactory is one row per city. A city without a row has never been
// taken over.
type BulletFactory struct {
	bun.BaseModel `bun:"table:bullet_factories,alias:bf"`

	CityID             int       `bun:"city_id,pk"`
	OwnerID            *string   `bun:"owner_id"`
	LastCollectionTime time.Time `bun:"last_collection_time,notnull"`
	StoredBullets      int64     `bun:"stored_bullets,notnull,default:0"`
	Version            int64     `bun:"version,notnull,default:0"`
}
