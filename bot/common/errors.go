package common

import (
	"errors"
	"fmt"

	"economy/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// UserMessage turns a domain error into the text shown to the user. The
// second return is false for unexpected errors that should be logged.
func UserMessage(err error) (string, bool) {
	var insufficient *entities.InsufficientFundsError
	var limited *entities.RateLimitedError
	var validation *entities.ValidationError
	var notFound *entities.NotFoundError

	switch {
	case errors.As(err, &insufficient):
		return fmt.Sprintf("Not enough coins: you have %d, need %d.", insufficient.Balance, insufficient.Required), true
	case errors.As(err, &limited):
		return limited.Error(), true
	case errors.As(err, &validation):
		return validation.Message, true
	case errors.As(err, &notFound):
		return fmt.Sprintf("That %s does not exist.", notFound.Resource), true
	case errors.Is(err, entities.ErrPollNotOpen):
		return "This poll is not accepting bets.", true
	case errors.Is(err, entities.ErrPollNotClosed):
		return "Close the poll before settling it.", true
	case errors.Is(err, entities.ErrPollSettled):
		return "This poll was already settled.", true
	case errors.Is(err, entities.ErrSlotDisabled):
		return "The slot machine is turned off.", true
	case errors.Is(err, entities.ErrRoundClosed):
		return "This giveaway is over.", true
	default:
		return "Something went wrong. Please try again later.", false
	}
}

// RespondEphemeral sends a message only the invoking user can see
func RespondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending ephemeral response: %v", err)
	}
}

// RespondEmbed sends a public embed response
func RespondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
	if err != nil {
		log.Errorf("Error sending embed response: %v", err)
	}
}

// HandleError logs unexpected errors and replies with a user-facing message
func HandleError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, action string) {
	msg, expected := UserMessage(err)
	if !expected {
		log.WithError(err).WithField("action", action).Error("Interaction failed")
	}
	RespondEphemeral(s, i, "❌ "+msg)
}
