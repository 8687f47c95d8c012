package models

import (
	"time"

	"github.com/uptrace/bun"
)

// PlayerCooldown holds the latest expiry per (player, action). Rows are
// upserted, never appended.
type PlayerCooldown struct {
	bun.BaseModel `bun:"table:player_cooldowns,alias:pc"`

	PlayerID  string    `bun:"player_id,pk"`
	ActionID  string    `bun:"action_id,pk"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
}

type CrimeAttempt struct {
	bun.BaseModel `bun:"table:crime_attempts,alias:ca"`

	ID       string    `bun:"id,pk"`
	PlayerID string    `bun:"player_id,notnull"`
	CrimeID  int       `bun:"crime_id,notnull"`
	Policy   string    `bun:"policy,notnull"`
	Success  bool      `bun:"success,notnull"`
	Money    int64     `bun:"money,notnull,default:0"`
	Respect  int64     `bun:"respect,notnull,default:0"`
	CarType  *int      `bun:"car_type"`
	Jailed   bool      `bun:"jailed,notnull"`
	At       time.Time `bun:"at,notnull"`
}
