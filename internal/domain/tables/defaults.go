package tables

import (
	"fmt"
	"io"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default returns the built-in balance tables. Callers get a fresh copy they may
// modify freely.
func Default() *Tables {
	return &Tables{
		Ranks: []Rank{
			{0, "Thug", 0},
			{1, "Hustler", 50},
			{2, "Soldier", 200},
			{3, "Enforcer", 600},
			{4, "Capo", 1500},
			{5, "Underboss", 4000},
			{6, "Consigliere", 10000},
			{7, "Boss", 25000},
			{8, "Godfather", 60000},
		},
		Cities: []City{
			{0, "New York"},
			{1, "Chicago"},
			{2, "Las Vegas"},
			{3, "Miami"},
			{4, "Detroit"},
			{5, "Los Angeles"},
		},
		Crimes: []Crime{
			{ID: 0, Name: "Pickpocket", BaseSuccess: 100, Payout: Payout{10, 50}, Respect: 1, NerveCost: 2, Cooldown: Seconds(30), JailTime: Seconds(60)},
			{ID: 1, Name: "Rob a Store", BaseSuccess: 70, Payout: Payout{100, 400}, Respect: 3, NerveCost: 5, Cooldown: Seconds(90), JailTime: Seconds(90)},
			{ID: 2, Name: "Steal Jewelry", BaseSuccess: 50, Payout: Payout{500, 1500}, Respect: 8, NerveCost: 10, RequiredRank: 2, Cooldown: Seconds(180), JailTime: Seconds(180)},
			{ID: 3, Name: "Grand Theft Auto", BaseSuccess: 35, Respect: 10, NerveCost: 15, RequiredRank: 3, Cooldown: Seconds(300), JailTime: Seconds(300), CarReward: true},
			{ID: 4, Name: "Rob a Bank", BaseSuccess: 20, Payout: Payout{5000, 15000}, Respect: 25, NerveCost: 25, RequiredRank: 5, Cooldown: Seconds(900), JailTime: Seconds(600)},
		},
		Guns: []Gun{
			{0, "Glock", 2500, 120},
			{1, "Desert Eagle", 10000, 150},
			{2, "Uzi", 30000, 200},
			{3, "AK-47", 75000, 300},
			{4, "Barrett M82", 200000, 500},
		},
		Protections: []Protection{
			{0, "Leather Jacket", 2000, 120},
			{1, "Kevlar Vest", 8000, 150},
			{2, "Ceramic Plates", 25000, 200},
			{3, "Bodyguard", 60000, 300},
			{4, "Armored Suit", 150000, 500},
		},
		Cars: []Car{
			{0, "Fiat Panda", 90, 50, false},
			{1, "Volkswagen Golf", 110, 100, false},
			{2, "Ford Mustang", 150, 250, false},
			{3, "BMW M3", 170, 400, false},
			{4, "Cadillac Escalade", 130, 300, false},
			{5, "Porsche 911", 200, 800, false},
			{6, "Ferrari F40", 240, 1500, true},
			{7, "Lamborghini Countach", 250, 2000, true},
			{8, "Bugatti Veyron", 300, 5000, true},
			{9, "Chevrolet Impala", 120, 150, false},
		},
		CarTiers: []CarTier{
			{"common", 50, []int{0, 1, 9}},
			{"uncommon", 25, []int{2, 4}},
			{"rare", 15, []int{3}},
			{"epic", 8, []int{5, 6}},
			{"legendary", 2, []int{7, 8}},
		},
		RankDiffMult: []Multiplier{100, 110, 120, 135, 150, 170, 190, 215, 240, 270, 300},
		Tunables: Tunables{
			StartingNerve:          100,
			MaxNerve:               100,
			NerveRegenPerMinute:    1,
			BulletsOnRankup:        50,
			BulletCostBase:         1000,
			MaxRankDiff:            10,
			JailTimeBase:           Seconds(60),
			HospitalTimeBase:       Seconds(120),
			DefaultJailTime:        Seconds(60),
			MaxSuccessChance:       95,
			SearchDuration:         Duration{5 * time.Minute},
			SearchValidity:         Duration{10 * time.Minute},
			MeltCooldown:           Duration{10 * time.Minute},
			FactoryDailyProduction: 14400,
			FactoryOwnerPercentage: 70,
			TravelCostBase:         1000,
			TravelDamage:           5,
			TravelMinTime:          Seconds(30),
			TravelMaxTime:          Duration{5 * time.Minute},
		},
	}
}

// Decode reads a TOML tables document. Sections missing from the document keep
// their built-in defaults.
func Decode(r io.Reader) (*Tables, error) {
	t := Default()
	overlay := &Tables{Tunables: t.Tunables}
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(overlay); err != nil {
		return nil, fmt.Errorf("failed to decode tables: %w", err)
	}

	t.Tunables = overlay.Tunables
	if overlay.Ranks != nil {
		t.Ranks = overlay.Ranks
	}
	if overlay.Cities != nil {
		t.Cities = overlay.Cities
	}
	if overlay.Crimes != nil {
		t.Crimes = overlay.Crimes
	}
	if overlay.Guns != nil {
		t.Guns = overlay.Guns
	}
	if overlay.Protections != nil {
		t.Protections = overlay.Protections
	}
	if overlay.Cars != nil {
		t.Cars = overlay.Cars
	}
	if overlay.CarTiers != nil {
		t.CarTiers = overlay.CarTiers
	}
	if overlay.RankDiffMult != nil {
		t.RankDiffMult = overlay.RankDiffMult
	}

	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tables: %w", err)
	}
	return t, nil
}
