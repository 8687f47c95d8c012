package engine

import (
	"time"

	"github.com/gangland/server/internal/domain/tables"
)

// RecalculateRank returns the highest rank whose threshold respect meets.
func RecalculateRank(ranks []tables.Rank, respect int64) int {
	for i := len(ranks) - 1; i >= 0; i-- {
		if respect >= ranks[i].RequiredRespect {
			return i
		}
	}
	return 0
}

// grantRespect adds respect and moves the player up the ladder. A rank
// increase pays the rank-up bullet bonus once.
func (e *Engine) grantRespect(p *Player, amount int64) (rankedUp bool) {
	if amount <= 0 {
		return false
	}
	p.Respect += amount
	p.Stats.RespectEarned += amount
	next := RecalculateRank(e.tables.Ranks, p.Respect)
	if next <= p.Rank {
		return false
	}
	p.Rank = next
	p.Bullets += e.tables.Tunables.BulletsOnRankup
	p.Stats.RankUps++
	return true
}

// RegenerateNerve credits whole minutes elapsed since the last update. The
// remainder carries over to the next call.
func (e *Engine) RegenerateNerve(p *Player, now time.Time) {
	tu := e.tables.Tunables
	if p.NerveUpdatedAt == nil || p.Nerve >= tu.MaxNerve || tu.NerveRegenPerMinute <= 0 {
		p.NerveUpdatedAt = ptr(now)
		return
	}
	minutes := int64(now.Sub(*p.NerveUpdatedAt) / time.Minute)
	if minutes <= 0 {
		return
	}
	p.Nerve += minutes * tu.NerveRegenPerMinute
	if p.Nerve >= tu.MaxNerve {
		p.Nerve = tu.MaxNerve
		p.NerveUpdatedAt = ptr(now)
		return
	}
	p.NerveUpdatedAt = ptr(p.NerveUpdatedAt.Add(time.Duration(minutes) * time.Minute))
}
