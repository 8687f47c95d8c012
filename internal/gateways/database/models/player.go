package models

import (
	"time"

	"github.com/uptrace/bun"
)

type PlayerCar struct {
	ID      string `json:"id"`
	CarType int    `json:"carType"`
	Damage  int    `json:"damage"`
	Source  string `json:"source"`
}

type Search struct {
	TargetID  string    `json:"targetId"`
	StartedAt time.Time `json:"startedAt"`
	EndsAt    time.Time `json:"endsAt"`
}

type PlayerStats struct {
	CrimesAttempted   int64 `json:"crimesAttempted"`
	CrimesSucceeded   int64 `json:"crimesSucceeded"`
	CrimesFailed      int64 `json:"crimesFailed"`
	TimesJailed       int64 `json:"timesJailed"`
	TimesHospitalized int64 `json:"timesHospitalized"`
	MoneyEarned       int64 `json:"moneyEarned"`
	RespectEarned     int64 `json:"respectEarned"`
	RankUps           int64 `json:"rankUps"`
	CarsMelted        int64 `json:"carsMelted"`
	BulletsCollected  int64 `json:"bulletsCollected"`
}

type Player struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID       string  `bun:"id,pk"`
	Wallet   *string `bun:"wallet,unique"`
	Username string  `bun:"username,notnull,unique"`

	Money     int64 `bun:"money,notnull,default:0"`
	SwissBank int64 `bun:"swiss_bank,notnull,default:0"`
	Respect   int64 `bun:"respect,notnull,default:0"`
	Bullets   int64 `bun:"bullets,notnull,default:0"`

	Nerve          int64      `bun:"nerve,notnull,default:0"`
	NerveUpdatedAt *time.Time `bun:"nerve_updated_at,nullzero"`

	Rank int `bun:"rank,notnull,default:0"`
	City int `bun:"city,notnull,default:0"`

	GunID        *int        `bun:"gun_id"`
	ProtectionID *int        `bun:"protection_id"`
	Cars         []PlayerCar `bun:"cars,type:jsonb,notnull"`
	ActiveCar    *string     `bun:"active_car"`

	JailUntil     *time.Time `bun:"jail_until,nullzero"`
	HospitalUntil *time.Time `bun:"hospital_until,nullzero"`
	LastMeltTime  *time.Time `bun:"last_melt_time,nullzero"`
	Search        *Search    `bun:"search,type:jsonb"`

	Kills  int64       `bun:"kills,notnull,default:0"`
	Deaths int64       `bun:"deaths,notnull,default:0"`
	Stats  PlayerStats `bun:"stats,type:jsonb,notnull"`

	BulletFactoryID *int `bun:"bullet_factory_id"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
	Version   int64     `bun:"version,notnull,default:0"`
}
