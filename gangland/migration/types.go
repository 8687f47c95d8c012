package migration

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LegacyPlayer is a player document from the old Mongo deployment. Numbers
// were written by a JavaScript client, so they arrive as doubles or ints.
type LegacyPlayer struct {
	ObjectID      primitive.ObjectID `bson:"_id"`
	WorldID       string             `bson:"worldId"`
	Wallet        string             `bson:"wallet,omitempty"`
	Username      string             `bson:"username"`
	Money         float64            `bson:"money"`
	SwissBank     float64            `bson:"swissBank"`
	Respect       float64            `bson:"respect"`
	Bullets       float64            `bson:"bullets"`
	Nerve         *float64           `bson:"nerve,omitempty"`
	Rank          float64            `bson:"rank"`
	City          float64            `bson:"city"`
	GunID         *float64           `bson:"gunId,omitempty"`
	ProtectionID  *float64           `bson:"protectionId,omitempty"`
	Cars          []LegacyCar        `bson:"cars"`
	ActiveCar     string             `bson:"activeCar,omitempty"`
	JailUntil     *time.Time         `bson:"jailUntil,omitempty"`
	HospitalUntil *time.Time         `bson:"hospitalUntil,omitempty"`
	LastMeltTime  *time.Time         `bson:"lastMeltTime,omitempty"`
	Kills         float64            `bson:"kills"`
	Deaths        float64            `bson:"deaths"`
	Stats         LegacyStats        `bson:"stats"`
	CreatedAt     time.Time          `bson:"createdAt"`
}

type LegacyCar struct {
	ID      string  `bson:"id"`
	CarType float64 `bson:"carType"`
	Damage  float64 `bson:"damage"`
	Source  string  `bson:"source"`
}

type LegacyStats struct {
	CrimesAttempted   float64 `bson:"crimesAttempted"`
	CrimesSucceeded   float64 `bson:"crimesSucceeded"`
	CrimesFailed      float64 `bson:"crimesFailed"`
	TimesJailed       float64 `bson:"timesJailed"`
	TimesHospitalized float64 `bson:"timesHospitalized"`
	MoneyEarned       float64 `bson:"moneyEarned"`
	RespectEarned     float64 `bson:"respectEarned"`
	RankUps           float64 `bson:"rankUps"`
	CarsMelted        float64 `bson:"carsMelted"`
	BulletsCollected  float64 `bson:"bulletsCollected"`
}

// Stats counts what happened to each document during a run.
type Stats struct {
	Read     int
	Skipped  int
	Adjusted int
	Written  int64
	Start    time.Time
	Duration time.Duration
}
