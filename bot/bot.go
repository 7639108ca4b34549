package bot

import (
	"fmt"
	"strings"

	"economy/application"
	"economy/bot/common"
	"economy/domain/interfaces"
	"economy/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token     string
	GuildID   string
	ChannelID string

	// ScoringChannels limits reaction scoring to these channels; empty scores every channel
	ScoringChannels []int64

	// IsModerator gates admin commands
	IsModerator func(userID int64) bool
}

// Services are the application components the bot drives
type Services struct {
	Reactions  *application.ReactionHandler
	Membership *application.MembershipHandler
	Giveaways  *application.GiveawayWorker
	Polls      *application.PollRefreshWorker
	Market     interfaces.MarketService
	Coins      interfaces.CoinService
	Ratings    interfaces.RatingService
	Slots      interfaces.SlotService
	Emoji      *services.EmojiWeights
}

// Bot adapts Discord events to the economy and implements the chat-facing
// collaborators (giveaway poster, poll renderer, membership lookup).
type Bot struct {
	config   Config
	session  *discordgo.Session
	services Services
	authors  *authorCache
}

// New creates the Discord session. Handlers are registered but nothing is
// delivered until Open.
func New(config Config) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions
	dg.State.MaxMessageCount = 500

	if config.IsModerator == nil {
		config.IsModerator = func(int64) bool { return false }
	}

	bot := &Bot{
		config:  config,
		session: dg,
		authors: newAuthorCache(4096),
	}

	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleInteractions)
	dg.AddHandler(bot.handleReactionAdd)
	dg.AddHandler(bot.handleReactionRemove)
	dg.AddHandler(bot.handleMessageCreate)
	dg.AddHandler(bot.handleMemberAdd)
	dg.AddHandler(bot.handleMemberRemove)
	return bot, nil
}

// SetServices wires the application layer; call before Open
func (b *Bot) SetServices(svcs Services) {
	b.services = svcs
}

// Open connects to the gateway and registers slash commands
func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	if err := b.registerCommands(); err != nil {
		b.session.Close()
		return fmt.Errorf("error registering commands: %w", err)
	}
	log.WithField("guild", b.config.GuildID).Info("Discord bot connected")
	return nil
}

// Close gracefully shuts down the bot
func (b *Bot) Close() error {
	return b.session.Close()
}

// handleCommands routes slash commands to appropriate handlers
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "balance":
		b.handleBalance(s, i)
	case "rating":
		b.handleRating(s, i)
	case "slot":
		b.handleSlot(s, i)
	case "bet":
		b.handleBet(s, i)
	case "poll":
		b.handlePoll(s, i)
	case "admin":
		b.handleAdmin(s, i)
	}
}

// handleInteractions routes component interactions
func (b *Bot) handleInteractions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	customID := i.MessageComponentData().CustomID
	switch {
	case strings.HasPrefix(customID, giveawayJoinID):
		b.handleGiveawayJoin(s, i)
	default:
		log.WithField("customID", customID).Debug("Unhandled component interaction")
	}
}

func (b *Bot) isSelf(userID string) bool {
	return b.session.State != nil && b.session.State.User != nil && b.session.State.User.ID == userID
}

// scoresChannel reports whether reactions in channelID count
func (b *Bot) scoresChannel(channelID string) bool {
	if len(b.config.ScoringChannels) == 0 {
		return true
	}
	id, err := common.ParseID(channelID)
	if err != nil {
		return false
	}
	for _, allowed := range b.config.ScoringChannels {
		if allowed == id {
			return true
		}
	}
	return false
}

func (b *Bot) channelID() (int64, error) {
	return common.ParseID(b.config.ChannelID)
}
