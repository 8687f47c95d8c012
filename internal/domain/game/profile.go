package game

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/gangland/server/internal/domain/engine"
)

type Profile struct {
	Player          engine.Player         `json:"player"`
	RankName        string                `json:"rankName"`
	CityName        string                `json:"cityName"`
	NextRankRespect *int64                `json:"nextRankRespect,omitempty"`
	Status          engine.Decision       `json:"status"`
	Factory         *engine.BulletFactory `json:"factory,omitempty"`
}

// Profile is a read-only view. Nerve is shown regenerated but not persisted;
// the next action that spends nerve writes it.
func (s *Service) Profile(ctx context.Context, playerID string) (*Profile, error) {
	e, err := s.engine(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.player(ctx, playerID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	e.RegenerateNerve(&p, now)

	t := e.Tables()
	prof := &Profile{
		Player:   p,
		RankName: t.Ranks[p.Rank].Name,
		Status:   engine.CanAct(&p, now),
	}
	if t.ValidCity(p.City) {
		prof.CityName = t.Cities[p.City].Name
	}
	if p.Rank < t.MaxRank() {
		next := t.Ranks[p.Rank+1].RequiredRespect
		prof.NextRankRespect = &next
	}
	if p.BulletFactoryID != nil {
		if prof.Factory, err = s.factory(ctx, *p.BulletFactoryID); err != nil {
			return nil, err
		}
	}
	return prof, nil
}

type playerRefs []PlayerRef

func (r playerRefs) Len() int            { return len(r) }
func (r playerRefs) String(i int) string { return strings.ToLower(r[i].Username) }

// FindPlayers fuzzy matches usernames, best match first.
func (s *Service) FindPlayers(ctx context.Context, query string, limit int) ([]PlayerRef, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, engine.Validation("query is required")
	}
	refs, err := s.repo.ListPlayerRefs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	matches := fuzzy.FindFrom(query, playerRefs(refs))
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]PlayerRef, len(matches))
	for i, m := range matches {
		out[i] = refs[m.Index]
	}
	return out, nil
}

func (s *Service) PlayerByUsername(ctx context.Context, username string) (*PlayerRef, error) {
	p, err := s.repo.GetPlayerByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, engine.NotFound("no player named %s", username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load player %s: %w", username, err)
	}
	return &PlayerRef{ID: p.ID, Username: p.Username, Rank: p.Rank}, nil
}
