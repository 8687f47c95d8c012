package repositories

import (
	"github.com/gangland/server/internal/domain/engine"
	"github.com/gangland/server/internal/gateways/database/models"
)

func toPlayerModel(p *engine.Player) *models.Player {
	m := &models.Player{
		ID:              p.ID,
		Wallet:          p.Wallet,
		Username:        p.Username,
		Money:           p.Money,
		SwissBank:       p.SwissBank,
		Respect:         p.Respect,
		Bullets:         p.Bullets,
		Nerve:           p.Nerve,
		NerveUpdatedAt:  p.NerveUpdatedAt,
		Rank:            p.Rank,
		City:            p.City,
		GunID:           p.GunID,
		ProtectionID:    p.ProtectionID,
		Cars:            make([]models.PlayerCar, len(p.Cars)),
		ActiveCar:       p.ActiveCar,
		JailUntil:       p.JailUntil,
		HospitalUntil:   p.HospitalUntil,
		LastMeltTime:    p.LastMeltTime,
		Kills:           p.Kills,
		Deaths:          p.Deaths,
		Stats:           models.PlayerStats(p.Stats),
		BulletFactoryID: p.BulletFactoryID,
		CreatedAt:       p.CreatedAt,
		Version:         p.Version,
	}
	for i, c := range p.Cars {
		m.Cars[i] = models.PlayerCar{ID: c.ID, CarType: c.CarType, Damage: c.Damage, Source: string(c.Source)}
	}
	if p.Search != nil {
		m.Search = &models.Search{TargetID: p.Search.TargetID, StartedAt: p.Search.StartedAt, EndsAt: p.Search.EndsAt}
	}
	return m
}

func toPlayer(m *models.Player) *engine.Player {
	p := &engine.Player{
		ID:              m.ID,
		Wallet:          m.Wallet,
		Username:        m.Username,
		Money:           m.Money,
		SwissBank:       m.SwissBank,
		Respect:         m.Respect,
		Bullets:         m.Bullets,
		Nerve:           m.Nerve,
		NerveUpdatedAt:  m.NerveUpdatedAt,
		Rank:            m.Rank,
		City:            m.City,
		GunID:           m.GunID,
		ProtectionID:    m.ProtectionID,
		Cars:            make([]engine.PlayerCar, len(m.Cars)),
		ActiveCar:       m.ActiveCar,
		JailUntil:       m.JailUntil,
		HospitalUntil:   m.HospitalUntil,
		LastMeltTime:    m.LastMeltTime,
		Kills:           m.Kills,
		Deaths:          m.Deaths,
		Stats:           engine.Stats(m.Stats),
		BulletFactoryID: m.BulletFactoryID,
		CreatedAt:       m.CreatedAt,
		Version:         m.Version,
	}
	for i, c := range m.Cars {
		p.Cars[i] = engine.PlayerCar{ID: c.ID, CarType: c.CarType, Damage: c.Damage, Source: engine.CarSource(c.Source)}
	}
	if m.Search != nil {
		p.Search = &engine.Search{TargetID: m.Search.TargetID, StartedAt: m.Search.StartedAt, EndsAt: m.Search.EndsAt}
	}
	return p
}

func toFactoryModel(f *engine.BulletFactory) *models.BulletFactory {
	return &models.BulletFactory{
		CityID:             f.CityID,
		OwnerID:            f.OwnerID,
		LastCollectionTime: f.LastCollectionTime,
		StoredBullets:      f.StoredBullets,
		Version:            f.Version,
	}
}

func toFactory(m *models.BulletFactory) *engine.BulletFactory {
	return &engine.BulletFactory{
		CityID:             m.CityID,
		OwnerID:            m.OwnerID,
		LastCollectionTime: m.LastCollectionTime,
		StoredBullets:      m.StoredBullets,
		Version:            m.Version,
	}
}

func toListingModel(l *engine.CarListing) *models.CarListing {
	return &models.CarListing{
		ID:        l.ID,
		SellerID:  l.SellerID,
		CarID:     l.CarID,
		CarType:   l.CarType,
		Damage:    l.Damage,
		Price:     l.Price,
		Active:    l.Active,
		BuyerID:   l.BuyerID,
		CreatedAt: l.CreatedAt,
		ClosedAt:  l.ClosedAt,
	}
}

func toListing(m *models.CarListing) *engine.CarListing {
	return &engine.CarListing{
		ID:        m.ID,
		SellerID:  m.SellerID,
		CarID:     m.CarID,
		CarType:   m.CarType,
		Damage:    m.Damage,
		Price:     m.Price,
		Active:    m.Active,
		BuyerID:   m.BuyerID,
		CreatedAt: m.CreatedAt,
		ClosedAt:  m.ClosedAt,
	}
}

func toAttemptModel(a *engine.CrimeAttempt) *models.CrimeAttempt {
	return &models.CrimeAttempt{
		ID:       a.ID,
		PlayerID: a.PlayerID,
		CrimeID:  a.CrimeID,
		Policy:   a.Policy,
		Success:  a.Success,
		Money:    a.Money,
		Respect:  a.Respect,
		CarType:  a.CarType,
		Jailed:   a.Jailed,
		At:       a.At,
	}
}
