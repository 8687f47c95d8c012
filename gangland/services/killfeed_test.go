package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/gangland/server/internal/domain/engine"
	"github.com/gangland/server/internal/domain/game"
)

type fakeChannel struct {
	channelID snowflake.ID
	sent      []discord.MessageCreate
	err       error
}

func (f *fakeChannel) CreateMessage(channelID snowflake.ID, m discord.MessageCreate, _ ...rest.RequestOpt) (*discord.Message, error) {
	f.channelID = channelID
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, m)
	return &discord.Message{}, nil
}

func testKill(looted int) game.Kill {
	return game.Kill{
		Killer:      engine.Player{ID: "a", Username: "vito"},
		Victim:      engine.Player{ID: "b", Username: "sonny"},
		VictimRank:  2,
		BulletsUsed: 834,
		CarsLooted:  looted,
		CityName:    "Chicago",
		At:          time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC),
	}
}

func TestKillFeedPostsEmbed(t *testing.T) {
	ch := &fakeChannel{}
	feed := &KillFeed{rest: ch, channelID: snowflake.ID(42), timeout: time.Second}

	if err := feed.AnnounceKill(context.Background(), testKill(2)); err != nil {
		t.Fatalf("AnnounceKill() error = %v", err)
	}
	if ch.channelID != 42 || len(ch.sent) != 1 {
		t.Fatalf("sent %d messages to %s", len(ch.sent), ch.channelID)
	}
	embed := ch.sent[0].Embeds[0]
	if !strings.Contains(embed.Description, "**vito** gunned down **sonny** in Chicago") {
		t.Errorf("description = %q", embed.Description)
	}
	if len(embed.Fields) != 3 || embed.Fields[0].Value != "834" {
		t.Errorf("fields = %+v", embed.Fields)
	}
}

func TestKillFeedOmitsLootWhenNone(t *testing.T) {
	if got := killEmbed(testKill(0)); len(got.Fields) != 2 {
		t.Errorf("fields = %d, want 2", len(got.Fields))
	}
}

func TestKillFeedWrapsError(t *testing.T) {
	boom := errors.New("missing access")
	feed := &KillFeed{rest: &fakeChannel{err: boom}, channelID: snowflake.ID(42), timeout: time.Second}

	if err := feed.AnnounceKill(context.Background(), testKill(0)); !errors.Is(err, boom) {
		t.Errorf("AnnounceKill() error = %v, want wrapped %v", err, boom)
	}
}
