package bot

import (
	"strings"
	"testing"
	"time"

	"economy/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPollEmbed(t *testing.T) {
	winner := 0
	view := &entities.PollView{
		Poll: &entities.Poll{ID: 3, Question: "Rain tomorrow?", Status: entities.PollStatusSettled, WinnerIdx: &winner},
		Options: []*entities.PollOption{
			{Idx: 0, Text: "yes", Total: 300},
			{Idx: 1, Text: "no", Total: 0},
		},
	}

	embed := buildPollEmbed(view)

	assert.Equal(t, "Rain tomorrow?", embed.Title)
	assert.Contains(t, embed.Description, "settled")
	assert.Equal(t, colorGreen, embed.Color)
	require.Len(t, embed.Fields, 2)
	assert.True(t, strings.HasPrefix(embed.Fields[0].Name, "🏆"))
	assert.Contains(t, embed.Fields[0].Value, "x1.00")
	assert.NotContains(t, embed.Fields[1].Value, "x", "no coefficient without stakes")
}

func TestBuildGiveawayResultEmbedTruncates(t *testing.T) {
	result := &entities.GiveawayResult{Round: &entities.GiveawayRound{Pool: 5000}}
	for i := 0; i < maxResultLines+5; i++ {
		result.Shares = append(result.Shares, entities.GiveawayShare{UserID: int64(i + 1), Amount: 10})
	}

	embed := buildGiveawayResultEmbed(result)

	assert.Contains(t, embed.Title, "5.000")
	assert.Contains(t, embed.Description, "<@1>")
	assert.Contains(t, embed.Description, "and 5 more")
}

func TestBuildGiveawayEmbed(t *testing.T) {
	embed := buildGiveawayEmbed(5000, 5*time.Minute)
	assert.Contains(t, embed.Description, "5.000")
	assert.Contains(t, embed.Description, "5m0s")
}

func TestFormatSpin(t *testing.T) {
	win := &entities.SlotSpin{Reels: [3]int{3, 3, 3}, Won: true, Multiplier: 30, Stake: 10, Payout: 300, NewBalance: 1290}
	assert.Contains(t, formatSpin(win), "7️⃣ | 7️⃣ | 7️⃣")
	assert.Contains(t, formatSpin(win), "x30")
	assert.Contains(t, formatSpin(win), "1.290")

	loss := &entities.SlotSpin{Reels: [3]int{0, 1, 2}, Stake: 10, NewBalance: 90}
	assert.Contains(t, formatSpin(loss), "BAR | 🍇 | 🍋")
	assert.Contains(t, formatSpin(loss), "No luck")
}
