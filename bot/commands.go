package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"economy/bot/common"
	"economy/domain/utils"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const commandTimeout = 15 * time.Second

func intOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func userOption(description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: description,
		Required:    required,
	}
}

func stringOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    true,
	}
}

func subCommand(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: description,
		Options:     options,
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "balance",
			Description: "Check your coins",
		},
		{
			Name:        "rating",
			Description: "Show a member's reputation",
			Options:     []*discordgo.ApplicationCommandOption{userOption("Member to look up (defaults to you)", false)},
		},
		{
			Name:        "slot",
			Description: "Spin the slot machine",
			Options:     []*discordgo.ApplicationCommandOption{intOption("stake", "Coins to stake", false)},
		},
		{
			Name:        "bet",
			Description: "Bet coins on a poll option",
			Options: []*discordgo.ApplicationCommandOption{
				intOption("poll", "Poll number", true),
				intOption("option", "Option number", true),
				intOption("amount", "Coins to stake", true),
			},
		},
		{
			Name:        "poll",
			Description: "Manage betting polls (moderators only)",
			Options: []*discordgo.ApplicationCommandOption{
				subCommand("create", "Create a poll",
					stringOption("question", "The question"),
					stringOption("options", "Options separated by |")),
				subCommand("close", "Stop accepting bets", intOption("poll", "Poll number", true)),
				subCommand("settle", "Pay out the winners",
					intOption("poll", "Poll number", true),
					intOption("winner", "Winning option number", true)),
			},
		},
		{
			Name:        "admin",
			Description: "Economy administration (moderators only)",
			Options: []*discordgo.ApplicationCommandOption{
				subCommand("ban", "Exclude a member's reactions", userOption("Member", true)),
				subCommand("unban", "Count a member's reactions again", userOption("Member", true)),
				subCommand("adjust", "Change a member's manual rating and coins",
					userOption("Member", true), intOption("delta", "Signed change", true)),
				subCommand("slot", "Turn the slot machine on or off", &discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "enabled",
					Description: "Whether the slot machine is on",
					Required:    true,
				}),
				subCommand("helper-add", "Exempt a member from the slot rate limit", userOption("Member", true)),
				subCommand("helper-remove", "Remove a slot helper", userOption("Member", true)),
				subCommand("emoji-set", "Set an emoji weight",
					stringOption("emoji", "Emoji or <custom:ID>"), intOption("weight", "Signed weight", true)),
				subCommand("emoji-delete", "Reset an emoji weight to the default", stringOption("emoji", "Emoji or <custom:ID>")),
			},
		},
	}

	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.config.GuildID, commands)
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	log.WithField("count", len(commands)).Info("Slash commands registered")
	return nil
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

// parsePollOptions splits the "a | b | c" option syntax
func parsePollOptions(raw string) []string {
	parts := strings.Split(raw, "|")
	options := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			options = append(options, p)
		}
	}
	return options
}

func (b *Bot) invoker(i *discordgo.InteractionCreate) (int64, bool) {
	user := common.InteractionUser(i)
	if user == nil {
		return 0, false
	}
	id, err := common.ParseID(user.ID)
	return id, err == nil
}

func (b *Bot) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID, ok := b.invoker(i)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	coins, err := b.services.Coins.GetBalance(ctx, userID)
	if err != nil {
		common.HandleError(s, i, err, "balance")
		return
	}
	common.RespondEphemeral(s, i, fmt.Sprintf("💰 You have %s coins.", utils.FormatCoins(coins)))
}

func (b *Bot) handleRating(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID, ok := b.invoker(i)
	if !ok {
		return
	}
	if opt, ok := optionMap(i.ApplicationCommandData().Options)["user"]; ok {
		if id, err := common.ParseID(opt.UserValue(nil).ID); err == nil {
			userID = id
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	total, err := b.services.Ratings.TotalRating(ctx, userID)
	if err != nil {
		common.HandleError(s, i, err, "rating")
		return
	}
	neri, err := b.services.Ratings.NeriRating(ctx, userID)
	if err != nil {
		common.HandleError(s, i, err, "rating")
		return
	}
	global, err := b.services.Ratings.GlobalRating(ctx, userID)
	if err != nil {
		common.HandleError(s, i, err, "rating")
		return
	}
	coins, err := b.services.Coins.GetBalance(ctx, userID)
	if err != nil {
		common.HandleError(s, i, err, "rating")
		return
	}
	common.RespondEmbed(s, i, buildRatingEmbed(userID, total, neri, global, coins))
}

func (b *Bot) handleSlot(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID, ok := b.invoker(i)
	if !ok {
		return
	}
	var stake int64
	if opt, ok := optionMap(i.ApplicationCommandData().Options)["stake"]; ok {
		stake = opt.IntValue()
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	spin, err := b.services.Slots.Roll(ctx, userID, stake)
	if err != nil {
		common.HandleError(s, i, err, "slot")
		return
	}
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: formatSpin(spin)},
	})
	if err != nil {
		log.Errorf("Error responding to slot roll: %v", err)
	}
}

func (b *Bot) handleBet(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID, ok := b.invoker(i)
	if !ok {
		return
	}
	opts := optionMap(i.ApplicationCommandData().Options)
	pollID := opts["poll"].IntValue()
	optionIdx := int(opts["option"].IntValue()) - 1
	amount := opts["amount"].IntValue()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	bet, err := b.services.Market.PlaceBet(ctx, pollID, userID, optionIdx, amount)
	if err != nil {
		common.HandleError(s, i, err, "bet")
		return
	}
	common.RespondEphemeral(s, i, fmt.Sprintf("✅ Your stake on option %d is now %s.", bet.OptionIdx+1, utils.FormatCoins(bet.Amount)))
	b.refreshPoll(pollID)
}

func (b *Bot) handlePoll(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireModerator(s, i) {
		return
	}
	sub := i.ApplicationCommandData().Options[0]
	opts := optionMap(sub.Options)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch sub.Name {
	case "create":
		view, err := b.services.Market.CreatePoll(ctx, opts["question"].StringValue(), parsePollOptions(opts["options"].StringValue()))
		if err != nil {
			common.HandleError(s, i, err, "poll_create")
			return
		}
		if err := b.postPoll(ctx, i.ChannelID, view); err != nil {
			common.HandleError(s, i, err, "poll_create")
			return
		}
		common.RespondEphemeral(s, i, fmt.Sprintf("Poll #%d created.", view.Poll.ID))

	case "close":
		pollID := opts["poll"].IntValue()
		if err := b.services.Market.ClosePoll(ctx, pollID); err != nil {
			common.HandleError(s, i, err, "poll_close")
			return
		}
		common.RespondEphemeral(s, i, fmt.Sprintf("Poll #%d closed.", pollID))
		b.refreshPoll(pollID)

	case "settle":
		pollID := opts["poll"].IntValue()
		settlement, err := b.services.Market.Settle(ctx, pollID, int(opts["winner"].IntValue())-1)
		if err != nil {
			common.HandleError(s, i, err, "poll_settle")
			return
		}
		view, err := b.services.Market.GetPollView(ctx, pollID)
		if err != nil {
			common.HandleError(s, i, err, "poll_settle")
			return
		}
		common.RespondEmbed(s, i, buildSettlementEmbed(view, settlement))
		b.refreshPoll(pollID)
	}
}

func (b *Bot) handleAdmin(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireModerator(s, i) {
		return
	}
	sub := i.ApplicationCommandData().Options[0]
	opts := optionMap(sub.Options)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var target int64
	if opt, ok := opts["user"]; ok {
		id, err := common.ParseID(opt.UserValue(nil).ID)
		if err != nil {
			common.RespondEphemeral(s, i, "❌ Unknown member.")
			return
		}
		target = id
	}

	var err error
	reply := "Done."
	switch sub.Name {
	case "ban", "unban":
		err = b.services.Ratings.SetBanned(ctx, target, sub.Name == "ban")
	case "adjust":
		delta := opts["delta"].IntValue()
		e, adjErr := b.services.Ratings.AdjustManual(ctx, target, delta)
		err = adjErr
		if err == nil {
			reply = fmt.Sprintf("%s rating is now %d (%s).", common.Mention(target), e.TotalRating, utils.FormatDelta(delta))
		}
	case "slot":
		err = b.services.Slots.SetEnabled(ctx, opts["enabled"].BoolValue())
	case "helper-add":
		err = b.services.Slots.AddHelper(ctx, target)
	case "helper-remove":
		err = b.services.Slots.RemoveHelper(ctx, target)
	case "emoji-set":
		err = b.services.Emoji.Set(ctx, opts["emoji"].StringValue(), opts["weight"].IntValue())
	case "emoji-delete":
		err = b.services.Emoji.Delete(ctx, opts["emoji"].StringValue())
	}
	if err != nil {
		common.HandleError(s, i, err, "admin_"+sub.Name)
		return
	}

	log.WithFields(log.Fields{
		"command": sub.Name,
		"target":  target,
	}).Info("Admin command applied")
	common.RespondEphemeral(s, i, reply)
}

func (b *Bot) requireModerator(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	userID, ok := b.invoker(i)
	if ok && b.config.IsModerator(userID) {
		return true
	}
	common.RespondEphemeral(s, i, "❌ This command is for moderators only.")
	return false
}

// refreshPoll re-renders a poll after its stakes or state changed
func (b *Bot) refreshPoll(pollID int64) {
	if b.services.Polls == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		if err := b.services.Polls.RefreshPoll(ctx, pollID); err != nil {
			log.WithError(err).WithField("pollID", pollID).Debug("Poll refresh failed")
		}
	}()
}
