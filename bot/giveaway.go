package bot

import (
	"context"
	"errors"
	"time"

	"economy/bot/common"
	"economy/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const giveawayJoinID = "giveaway_join"

// AnnounceGiveaway posts the announcement with a join button into the economy channel
func (b *Bot) AnnounceGiveaway(ctx context.Context, pool int64, window time.Duration) (int64, int64, error) {
	msg, err := b.session.ChannelMessageSendComplex(b.config.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{buildGiveawayEmbed(pool, window)},
		Components: giveawayComponents(),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return 0, 0, err
	}

	channelID, err := common.ParseID(msg.ChannelID)
	if err != nil {
		return 0, 0, err
	}
	messageID, err := common.ParseID(msg.ID)
	if err != nil {
		return 0, 0, err
	}
	return channelID, messageID, nil
}

func (b *Bot) DeleteMessage(ctx context.Context, channelID, messageID int64) error {
	return b.session.ChannelMessageDelete(common.FormatID(channelID), common.FormatID(messageID), discordgo.WithContext(ctx))
}

func (b *Bot) StripJoinButton(ctx context.Context, channelID, messageID int64) error {
	components := []discordgo.MessageComponent{}
	_, err := b.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         common.FormatID(messageID),
		Channel:    common.FormatID(channelID),
		Components: &components,
	}, discordgo.WithContext(ctx))
	return err
}

func (b *Bot) PostGiveawayResult(ctx context.Context, channelID int64, result *entities.GiveawayResult) error {
	_, err := b.session.ChannelMessageSendEmbed(common.FormatID(channelID), buildGiveawayResultEmbed(result), discordgo.WithContext(ctx))
	return err
}

func (b *Bot) handleGiveawayJoin(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := common.InteractionUser(i)
	if user == nil || i.Message == nil || b.services.Giveaways == nil {
		return
	}
	userID, err := common.ParseID(user.ID)
	if err != nil {
		return
	}
	messageID, err := common.ParseID(i.Message.ID)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), reactionTimeout)
	defer cancel()

	joined, err := b.services.Giveaways.HandleJoin(ctx, messageID, userID, common.MemberDisplayName(i.Member, user))
	switch {
	case errors.Is(err, entities.ErrRoundClosed), entities.IsNotFound(err):
		common.RespondEphemeral(s, i, "This giveaway is over.")
	case err != nil:
		log.WithError(err).WithField("userID", userID).Error("Failed to join giveaway")
		common.HandleError(s, i, err, "giveaway_join")
	case joined:
		common.RespondEphemeral(s, i, "🎉 You're in! Results are posted when the giveaway ends.")
	default:
		common.RespondEphemeral(s, i, "You already joined this giveaway.")
	}
}
