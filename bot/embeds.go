package bot

import (
	"fmt"
	"strings"
	"time"

	"economy/bot/common"
	"economy/domain/entities"
	"economy/domain/utils"

	"github.com/bwmarrin/discordgo"
)

const (
	colorGold  = 0xF1C40F
	colorBlue  = 0x3498DB
	colorGreen = 0x2ECC71
	colorRed   = 0xE74C3C
	colorGrey  = 0x95A5A6

	maxResultLines = 25
)

var slotSymbols = [...]string{"BAR", "🍇", "🍋", "7️⃣"}

// buildPollEmbed renders a poll with per-option stakes and coefficients
func buildPollEmbed(view *entities.PollView) *discordgo.MessageEmbed {
	color := colorBlue
	switch view.Poll.Status {
	case entities.PollStatusClosed:
		color = colorGrey
	case entities.PollStatusSettled:
		color = colorGreen
	}

	fields := make([]*discordgo.MessageEmbedField, 0, len(view.Options))
	for _, opt := range view.Options {
		name := fmt.Sprintf("%d. %s", opt.Idx+1, opt.Text)
		if view.Poll.WinnerIdx != nil && *view.Poll.WinnerIdx == opt.Idx {
			name = "🏆 " + name
		}
		value := fmt.Sprintf("%s staked", utils.FormatCoins(opt.Total))
		if coef := view.Coefficient(opt.Idx); coef > 0 {
			value += fmt.Sprintf(" · x%.2f", coef)
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: name, Value: value})
	}

	return &discordgo.MessageEmbed{
		Title:       view.Poll.Question,
		Description: fmt.Sprintf("Poll #%d · %s · pool %s", view.Poll.ID, view.Poll.Status, utils.FormatCoins(view.TotalStaked())),
		Color:       color,
		Fields:      fields,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("/bet poll:%d option:<n> amount:<coins>", view.Poll.ID)},
	}
}

func buildSettlementEmbed(view *entities.PollView, settlement *entities.Settlement) *discordgo.MessageEmbed {
	winner := fmt.Sprintf("option %d", settlement.WinnerIdx+1)
	for _, opt := range view.Options {
		if opt.Idx == settlement.WinnerIdx {
			winner = opt.Text
		}
	}
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Poll #%d settled", settlement.PollID),
		Description: fmt.Sprintf("Winner: **%s**\n%d winners share %s (house keeps %s)",
			winner, len(settlement.Payouts), utils.FormatCoins(settlement.TotalLose), utils.FormatCoins(settlement.Remainder)),
		Color: colorGreen,
	}
}

func buildGiveawayEmbed(pool int64, window time.Duration) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🎁 Giveaway!",
		Description: fmt.Sprintf("%s will be split among everyone who joins in the next %s.", utils.FormatCoins(pool), window),
		Color:       colorGold,
	}
}

func giveawayComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Join",
					Style:    discordgo.SuccessButton,
					CustomID: giveawayJoinID,
					Emoji:    &discordgo.ComponentEmoji{Name: "🎉"},
				},
			},
		},
	}
}

func buildGiveawayResultEmbed(result *entities.GiveawayResult) *discordgo.MessageEmbed {
	var sb strings.Builder
	for i, share := range result.Shares {
		if i == maxResultLines {
			fmt.Fprintf(&sb, "…and %d more", len(result.Shares)-maxResultLines)
			break
		}
		name := share.DisplayName
		if name == "" {
			name = common.Mention(share.UserID)
		}
		fmt.Fprintf(&sb, "%d. %s: %s\n", i+1, name, utils.FormatCoins(share.Amount))
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🎁 Giveaway results (%s)", utils.FormatCoins(result.Round.Pool)),
		Description: sb.String(),
		Color:       colorGold,
	}
}

func formatSpin(spin *entities.SlotSpin) string {
	reels := make([]string, 0, len(spin.Reels))
	for _, r := range spin.Reels {
		reels = append(reels, slotSymbols[r%len(slotSymbols)])
	}
	line := strings.Join(reels, " | ")
	if spin.Won {
		return fmt.Sprintf("%s\nx%d! You win %s. Balance: %s", line, spin.Multiplier, utils.FormatCoins(spin.Payout), utils.FormatCoins(spin.NewBalance))
	}
	return fmt.Sprintf("%s\nNo luck, %s lost. Balance: %s", line, utils.FormatCoins(spin.Stake), utils.FormatCoins(spin.NewBalance))
}

func buildRatingEmbed(userID int64, total, neri, global, coins int64) *discordgo.MessageEmbed {
	color := colorGreen
	if total < 0 {
		color = colorRed
	}
	return &discordgo.MessageEmbed{
		Description: common.Mention(userID),
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Rating", Value: fmt.Sprintf("%d", total), Inline: true},
			{Name: "Neri", Value: fmt.Sprintf("%d", neri), Inline: true},
			{Name: "Lifetime", Value: fmt.Sprintf("%d", global), Inline: true},
			{Name: "Coins", Value: utils.FormatCoins(coins), Inline: true},
		},
	}
}
