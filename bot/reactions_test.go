package bot

import (
	"context"
	"testing"

	"economy/application"
	"economy/domain/entities"
	"economy/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmojiKey(t *testing.T) {
	assert.Equal(t, "👍", emojiKey(discordgo.Emoji{Name: "👍"}))
	assert.Equal(t, "<custom:1234>", emojiKey(discordgo.Emoji{ID: "1234", Name: "pepe"}))
}

func TestAuthorOf(t *testing.T) {
	t.Run("member message", func(t *testing.T) {
		a := authorOf(&discordgo.Message{Author: &discordgo.User{ID: "42"}})
		require.NotNil(t, a.authorID)
		assert.Equal(t, int64(42), *a.authorID)
		assert.False(t, a.skip)
	})

	t.Run("channel post has no author", func(t *testing.T) {
		a := authorOf(&discordgo.Message{WebhookID: "9", Author: &discordgo.User{ID: "9", Bot: true}})
		assert.Nil(t, a.authorID)
		assert.False(t, a.skip)
	})

	t.Run("bot message is skipped", func(t *testing.T) {
		a := authorOf(&discordgo.Message{Author: &discordgo.User{ID: "7", Bot: true}})
		assert.True(t, a.skip)
	})
}

func TestAuthorCacheEvictsOldest(t *testing.T) {
	c := newAuthorCache(2)
	one, two := int64(1), int64(2)
	c.put("a", messageAuthor{authorID: &one})
	c.put("b", messageAuthor{authorID: &two})

	_, ok := c.get("a")
	require.True(t, ok)

	c.put("c", messageAuthor{skip: true})

	_, ok = c.get("b")
	assert.False(t, ok, "least recently used entry is evicted")
	_, ok = c.get("a")
	assert.True(t, ok)
	got, ok := c.get("c")
	assert.True(t, ok)
	assert.True(t, got.skip)
}

func TestParsePollOptions(t *testing.T) {
	assert.Equal(t, []string{"red", "blue", "green"}, parsePollOptions(" red | blue || green "))
	assert.Empty(t, parsePollOptions(" | "))
}

type recordingReactions struct {
	interfaces.ReactionService
	changes []*entities.ReactionChange
}

func (r *recordingReactions) Process(ctx context.Context, change *entities.ReactionChange) (*entities.ReactionOutcome, error) {
	r.changes = append(r.changes, change)
	return entities.Rejected(entities.RejectZeroDelta), nil
}

func newReactionTestBot(scoring []int64) (*Bot, *recordingReactions) {
	reactions := &recordingReactions{}
	author := int64(1)
	b := &Bot{
		config:  Config{GuildID: "10", ScoringChannels: scoring},
		session: &discordgo.Session{State: discordgo.NewState()},
		services: Services{
			Reactions: application.NewReactionHandler(reactions, nil),
		},
		authors: newAuthorCache(8),
	}
	b.authors.put("500", messageAuthor{authorID: &author})
	return b, reactions
}

func TestHandleReactionScoringChannels(t *testing.T) {
	reaction := func(channelID string) *discordgo.MessageReaction {
		return &discordgo.MessageReaction{
			GuildID:   "10",
			ChannelID: channelID,
			MessageID: "500",
			UserID:    "2",
			Emoji:     discordgo.Emoji{Name: "👍"},
		}
	}

	t.Run("every channel scores by default", func(t *testing.T) {
		b, reactions := newReactionTestBot(nil)
		b.handleReaction(reaction("31"), true)
		require.Len(t, reactions.changes, 1)
		assert.Equal(t, []string{"👍"}, reactions.changes[0].Added)
	})

	t.Run("listed channel scores", func(t *testing.T) {
		b, reactions := newReactionTestBot([]int64{30})
		b.handleReaction(reaction("30"), false)
		require.Len(t, reactions.changes, 1)
		assert.Equal(t, []string{"👍"}, reactions.changes[0].Removed)
	})

	t.Run("other channels are ignored", func(t *testing.T) {
		b, reactions := newReactionTestBot([]int64{30})
		b.handleReaction(reaction("31"), true)
		assert.Empty(t, reactions.changes)
	})
}
