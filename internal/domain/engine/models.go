package engine

import "time"

type CarSource string

const (
	SourcePurchased CarSource = "purchased"
	SourceCrime     CarSource = "crime"
	SourceLooted    CarSource = "looted"
)

// PlayerCar is one owned vehicle instance. ID is unique per instance, not per
// catalog entry.
type PlayerCar struct {
	ID      string    `json:"id"`
	CarType int       `json:"carType"`
	Damage  int       `json:"damage"`
	Source  CarSource `json:"source"`
}

// Search is a targeted reconnaissance window. An attack on TargetID is allowed
// between EndsAt and EndsAt plus the configured validity.
type Search struct {
	TargetID  string    `json:"targetId"`
	StartedAt time.Time `json:"startedAt"`
	EndsAt    time.Time `json:"endsAt"`
}

type Stats struct {
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
	ID       string  `json:"worldId"`
	Wallet   *string `json:"wallet,omitempty"`
	Username string  `json:"username"`

	Money     int64 `json:"money"`
	SwissBank int64 `json:"swissBank"`
	Respect   int64 `json:"respect"`
	Bullets   int64 `json:"bullets"`

	Nerve          int64      `json:"nerve"`
	NerveUpdatedAt *time.Time `json:"nerveUpdatedAt,omitempty"`

	Rank int `json:"rank"`
	City int `json:"city"`

	GunID        *int        `json:"gunId,omitempty"`
	ProtectionID *int        `json:"protectionId,omitempty"`
	Cars         []PlayerCar `json:"cars"`
	ActiveCar    *string     `json:"activeCar,omitempty"`

	JailUntil     *time.Time `json:"jailUntil,omitempty"`
	HospitalUntil *time.Time `json:"hospitalUntil,omitempty"`
	LastMeltTime  *time.Time `json:"lastMeltTime,omitempty"`
	Search        *Search    `json:"searchingFor,omitempty"`

	Kills  int64 `json:"kills"`
	Deaths int64 `json:"deaths"`
	Stats  Stats `json:"stats"`

	BulletFactoryID *int `json:"bulletFactoryId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	Version   int64     `json:"-"`
}

// Clone returns a deep copy so a resolution never aliases the caller's state.
func (p Player) Clone() Player {
	c := p
	c.Wallet = clonePtr(p.Wallet)
	c.NerveUpdatedAt = clonePtr(p.NerveUpdatedAt)
	c.GunID = clonePtr(p.GunID)
	c.ProtectionID = clonePtr(p.ProtectionID)
	c.ActiveCar = clonePtr(p.ActiveCar)
	c.JailUntil = clonePtr(p.JailUntil)
	c.HospitalUntil = clonePtr(p.HospitalUntil)
	c.LastMeltTime = clonePtr(p.LastMeltTime)
	c.Search = clonePtr(p.Search)
	c.BulletFactoryID = clonePtr(p.BulletFactoryID)
	if p.Cars != nil {
		c.Cars = make([]PlayerCar, len(p.Cars))
		copy(c.Cars, p.Cars)
	}
	return c
}

// Car returns the owned car with the given instance id and its index.
func (p *Player) Car(id string) (PlayerCar, int, bool) {
	for i, c := range p.Cars {
		if c.ID == id {
			return c, i, true
		}
	}
	return PlayerCar{}, -1, false
}

// ActiveCarInstance returns the currently selected car, if any.
func (p *Player) ActiveCarInstance() (PlayerCar, int, bool) {
	if p.ActiveCar == nil {
		return PlayerCar{}, -1, false
	}
	return p.Car(*p.ActiveCar)
}

func (p *Player) addCar(car PlayerCar) {
	p.Cars = append(p.Cars, car)
	if p.ActiveCar == nil {
		p.ActiveCar = ptr(car.ID)
	}
}

// removeCar drops the car at idx and keeps ActiveCar pointing at an owned car.
func (p *Player) removeCar(idx int) PlayerCar {
	car := p.Cars[idx]
	p.Cars = append(p.Cars[:idx:idx], p.Cars[idx+1:]...)
	if p.ActiveCar != nil && *p.ActiveCar == car.ID {
		p.ActiveCar = nil
		if len(p.Cars) > 0 {
			p.ActiveCar = ptr(p.Cars[0].ID)
		}
	}
	return car
}

type BulletFactory struct {
	CityID             int       `json:"cityId"`
	OwnerID            *string   `json:"ownerId,omitempty"`
	LastCollectionTime time.Time `json:"lastCollectionTime"`
	StoredBullets      int64     `json:"storedBullets"`
	Version            int64     `json:"-"`
}

func (f BulletFactory) Clone() BulletFactory {
	c := f
	c.OwnerID = clonePtr(f.OwnerID)
	return c
}

type CarListing struct {
	ID        string     `json:"id"`
	SellerID  string     `json:"sellerId"`
	CarID     string     `json:"carId"`
	CarType   int        `json:"carType"`
	Damage    int        `json:"damage"`
	Price     int64      `json:"price"`
	Active    bool       `json:"active"`
	BuyerID   *string    `json:"buyerId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	ClosedAt  *time.Time `json:"closedAt,omitempty"`
}

// CrimeAttempt is an append-only audit entry.
type CrimeAttempt struct {
	ID       string    `json:"id"`
	PlayerID string    `json:"playerId"`
	CrimeID  int       `json:"crimeId"`
	Policy   string    `json:"policy"`
	Success  bool      `json:"success"`
	Money    int64     `json:"money"`
	Respect  int64     `json:"respect"`
	CarType  *int      `json:"carType,omitempty"`
	Jailed   bool      `json:"jailed"`
	At       time.Time `json:"at"`
}

// Cooldown is the per-(player, action) expiry record. It is overwritten on
// every commit.
type Cooldown struct {
	PlayerID  string    `json:"playerId"`
	ActionID  string    `json:"actionId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func ptr[T any](v T) *T {
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
