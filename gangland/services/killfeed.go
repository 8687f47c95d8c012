package services

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/gangland/server/internal/domain/game"
)

const killFeedColor = 0x8B0000

type messageCreator interface {
	CreateMessage(channelID snowflake.ID, messageCreate discord.MessageCreate, opts ...rest.RequestOpt) (*discord.Message, error)
}

// KillFeed posts kill announcements to a Discord channel.
type KillFeed struct {
	rest      messageCreator
	channelID snowflake.ID
	timeout   time.Duration
}

func NewKillFeed(token string, channelID snowflake.ID) *KillFeed {
	return &KillFeed{
		rest:      rest.New(rest.NewClient(token)),
		channelID: channelID,
		timeout:   5 * time.Second,
	}
}

func (f *KillFeed) AnnounceKill(ctx context.Context, kill game.Kill) error {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	_, err := f.rest.CreateMessage(f.channelID, discord.MessageCreate{
		Embeds: []discord.Embed{killEmbed(kill)},
	}, rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to post kill to channel %s: %w", f.channelID, err)
	}
	return nil
}

func killEmbed(kill game.Kill) discord.Embed {
	desc := fmt.Sprintf("**%s** gunned down **%s** in %s.", kill.Killer.Username, kill.Victim.Username, kill.CityName)
	b := discord.NewEmbedBuilder().
		SetTitle("Kill confirmed").
		SetDescription(desc).
		SetColor(killFeedColor).
		AddField("Bullets", fmt.Sprintf("%d", kill.BulletsUsed), true).
		AddField("Victim rank", fmt.Sprintf("%d", kill.VictimRank), true).
		SetTimestamp(kill.At)
	if kill.CarsLooted > 0 {
		b.AddField("Cars looted", fmt.Sprintf("%d", kill.CarsLooted), true)
	}
	return b.Build()
}
