package tables

import (
	"fmt"
	"time"
)

// Multiplier is a fixed-point factor in hundredths: 100 means x1.00.
type Multiplier int64

const One Multiplier = 100

type Rank struct {
	ID              int    `toml:"id"`
	Name            string `toml:"name"`
	RequiredRespect int64  `toml:"required_respect"`
}

type City struct {
	ID   int    `toml:"id"`
	Name string `toml:"name"`
}

type Payout struct {
	Min int64 `toml:"min"`
	Max int64 `toml:"max"`
}

type Crime struct {
	ID           int      `toml:"id"`
	Name         string   `toml:"name"`
	BaseSuccess  float64  `toml:"base_success"`
	Payout       Payout   `toml:"payout"`
	Respect      int64    `toml:"respect"`
	NerveCost    int64    `toml:"nerve_cost"`
	RequiredRank int      `toml:"required_rank"`
	Cooldown     Duration `toml:"cooldown"`
	JailTime     Duration `toml:"jail_time"`
	CarReward    bool     `toml:"car_reward"`
}

type Gun struct {
	ID      int        `toml:"id"`
	Name    string     `toml:"name"`
	Price   int64      `toml:"price"`
	Divisor Multiplier `toml:"divisor"`
}

type Protection struct {
	ID         int        `toml:"id"`
	Name       string     `toml:"name"`
	Price      int64      `toml:"price"`
	Multiplier Multiplier `toml:"multiplier"`
}

type Car struct {
	ID          int    `toml:"id"`
	Name        string `toml:"name"`
	Speed       int64  `toml:"speed"`
	BaseBullets int64  `toml:"base_bullets"`
	Rare        bool   `toml:"rare"`
}

// CarTier is one rarity band of the car reward draw.
type CarTier struct {
	Name   string `toml:"name"`
	Weight int    `toml:"weight"`
	CarIDs []int  `toml:"car_ids"`
}

// Tunables are the game-wide balance knobs.
type Tunables struct {
	StartingMoney   int64 `toml:"starting_money"`
	StartingRespect int64 `toml:"starting_respect"`
	StartingBullets int64 `toml:"starting_bullets"`
	StartingNerve   int64 `toml:"starting_nerve"`
	StartingCity    int   `toml:"starting_city"`

	MaxNerve            int64 `toml:"max_nerve"`
	NerveRegenPerMinute int64 `toml:"nerve_regen_per_minute"`

	BulletsOnRankup int64 `toml:"bullets_on_rankup"`
	BulletCostBase  int64 `toml:"bullet_cost_base"`
	MaxRankDiff     int   `toml:"max_rank_diff"`

	JailTimeBase     Duration `toml:"jail_time_base"`
	HospitalTimeBase Duration `toml:"hospital_time_base"`
	DefaultJailTime  Duration `toml:"default_jail_time"`
	MaxSuccessChance float64  `toml:"max_success_chance"`

	SearchDuration Duration `toml:"search_duration"`
	SearchValidity Duration `toml:"search_validity"`
	MeltCooldown   Duration `toml:"melt_cooldown"`

	FactoryDailyProduction int64 `toml:"factory_daily_production"`
	FactoryOwnerPercentage int64 `toml:"factory_owner_percentage"`

	TravelCostBase int64    `toml:"travel_cost_base"`
	TravelDamage   int      `toml:"travel_damage"`
	TravelMinTime  Duration `toml:"travel_min_time"`
	TravelMaxTime  Duration `toml:"travel_max_time"`
}

// Tables is the complete static configuration the engine reads from.
// It is immutable after Validate succeeds.
type Tables struct {
	Ranks        []Rank       `toml:"ranks"`
	Cities       []City       `toml:"cities"`
	Crimes       []Crime      `toml:"crimes"`
	Guns         []Gun        `toml:"guns"`
	Protections  []Protection `toml:"protections"`
	Cars         []Car        `toml:"cars"`
	CarTiers     []CarTier    `toml:"car_tiers"`
	RankDiffMult []Multiplier `toml:"rank_diff_multipliers"`
	Tunables     Tunables     `toml:"tunables"`
}

func (t *Tables) Crime(id int) (Crime, bool) {
	if id < 0 || id >= len(t.Crimes) {
		return Crime{}, false
	}
	return t.Crimes[id], true
}

func (t *Tables) Gun(id int) (Gun, bool) {
	if id < 0 || id >= len(t.Guns) {
		return Gun{}, false
	}
	return t.Guns[id], true
}

func (t *Tables) Protection(id int) (Protection, bool) {
	if id < 0 || id >= len(t.Protections) {
		return Protection{}, false
	}
	return t.Protections[id], true
}

func (t *Tables) Car(id int) (Car, bool) {
	if id < 0 || id >= len(t.Cars) {
		return Car{}, false
	}
	return t.Cars[id], true
}

func (t *Tables) ValidCity(id int) bool {
	return id >= 0 && id < len(t.Cities)
}

func (t *Tables) MaxRank() int {
	return len(t.Ranks) - 1
}

// RankDiffMultiplier returns the multiplier for an absolute rank difference,
// capped at the last configured entry.
func (t *Tables) RankDiffMultiplier(diff int) Multiplier {
	if diff < 0 {
		diff = -diff
	}
	if t.Tunables.MaxRankDiff > 0 && diff > t.Tunables.MaxRankDiff {
		diff = t.Tunables.MaxRankDiff
	}
	if diff >= len(t.RankDiffMult) {
		diff = len(t.RankDiffMult) - 1
	}
	return t.RankDiffMult[diff]
}

// SpeedRange returns the slowest and fastest car speeds in the catalog.
func (t *Tables) SpeedRange() (slowest, fastest int64) {
	for i, c := range t.Cars {
		if i == 0 || c.Speed < slowest {
			slowest = c.Speed
		}
		if i == 0 || c.Speed > fastest {
			fastest = c.Speed
		}
	}
	return slowest, fastest
}

// Validate checks the structural invariants every engine function relies on.
func (t *Tables) Validate() error {
	if len(t.Ranks) == 0 || t.Ranks[0].RequiredRespect != 0 {
		return fmt.Errorf("ranks: first rank must exist with required_respect 0")
	}
	for i := 1; i < len(t.Ranks); i++ {
		if t.Ranks[i].RequiredRespect <= t.Ranks[i-1].RequiredRespect {
			return fmt.Errorf("ranks: threshold of rank %d is not increasing", i)
		}
	}
	if len(t.Cities) == 0 {
		return fmt.Errorf("cities: at least one city required")
	}
	if !t.ValidCity(t.Tunables.StartingCity) {
		return fmt.Errorf("tunables: starting_city %d out of range", t.Tunables.StartingCity)
	}
	for i, c := range t.Crimes {
		if c.ID != i {
			return fmt.Errorf("crimes: entry %d has id %d", i, c.ID)
		}
		if c.Payout.Min > c.Payout.Max || c.Payout.Min < 0 {
			return fmt.Errorf("crimes: %q has invalid payout range", c.Name)
		}
		if c.RequiredRank < 0 || c.RequiredRank >= len(t.Ranks) {
			return fmt.Errorf("crimes: %q requires unknown rank %d", c.Name, c.RequiredRank)
		}
	}
	for i, g := range t.Guns {
		if g.ID != i || g.Divisor <= 0 {
			return fmt.Errorf("guns: entry %d invalid", i)
		}
	}
	for i, p := range t.Protections {
		if p.ID != i || p.Multiplier <= 0 {
			return fmt.Errorf("protections: entry %d invalid", i)
		}
	}
	for i, c := range t.Cars {
		if c.ID != i {
			return fmt.Errorf("cars: entry %d has id %d", i, c.ID)
		}
	}
	total := 0
	for _, tier := range t.CarTiers {
		if tier.Weight < 0 || len(tier.CarIDs) == 0 {
			return fmt.Errorf("car_tiers: tier %q invalid", tier.Name)
		}
		for _, id := range tier.CarIDs {
			if _, ok := t.Car(id); !ok {
				return fmt.Errorf("car_tiers: tier %q references unknown car %d", tier.Name, id)
			}
		}
		total += tier.Weight
	}
	if len(t.CarTiers) > 0 && total <= 0 {
		return fmt.Errorf("car_tiers: total weight must be positive")
	}
	if len(t.RankDiffMult) == 0 {
		return fmt.Errorf("rank_diff_multipliers: at least one entry required")
	}
	if p := t.Tunables.FactoryOwnerPercentage; p < 0 || p > 100 {
		return fmt.Errorf("tunables: factory_owner_percentage %d out of range", p)
	}
	return nil
}

// Duration is a time.Duration that decodes from strings such as "90s".
type Duration struct {
	time.Duration
}

func Seconds(n int) Duration {
	return Duration{time.Duration(n) * time.Second}
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
