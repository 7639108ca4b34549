package bot

import (
	"context"
	"fmt"

	"economy/bot/common"
	"economy/domain/entities"

	"github.com/bwmarrin/discordgo"
)

// RenderPoll edits the poll's message in place
func (b *Bot) RenderPoll(ctx context.Context, view *entities.PollView) error {
	if !view.Poll.HasMessage() {
		return nil
	}
	embeds := []*discordgo.MessageEmbed{buildPollEmbed(view)}
	_, err := b.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:      common.FormatID(*view.Poll.MessageID),
		Channel: common.FormatID(*view.Poll.ChatID),
		Embeds:  &embeds,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to render poll %d: %w", view.Poll.ID, err)
	}
	return nil
}

// postPoll sends a new poll message and records where it lives
func (b *Bot) postPoll(ctx context.Context, channelID string, view *entities.PollView) error {
	msg, err := b.session.ChannelMessageSendEmbed(channelID, buildPollEmbed(view), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to post poll: %w", err)
	}
	chatID, err := common.ParseID(msg.ChannelID)
	if err != nil {
		return err
	}
	messageID, err := common.ParseID(msg.ID)
	if err != nil {
		return err
	}
	return b.services.Market.AttachMessage(ctx, view.Poll.ID, chatID, messageID)
}
