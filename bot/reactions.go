package bot

import (
	"container/list"
	"context"
	"sync"
	"time"

	"economy/bot/common"
	"economy/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const reactionTimeout = 10 * time.Second

// messageAuthor is what the reaction path needs to know about a message
type messageAuthor struct {
	// authorID is nil for channel posts (webhooks, crossposts)
	authorID *int64
	// skip marks bot-authored messages that never score
	skip bool
}

// authorCache remembers message authors so reactions on recent messages do
// not cost a REST call each
type authorCache struct {
	mu    sync.Mutex
	max   int
	order *list.List
	items map[string]*list.Element
}

type authorEntry struct {
	messageID string
	author    messageAuthor
}

func newAuthorCache(max int) *authorCache {
	return &authorCache{
		max:   max,
		order: list.New(),
		items: make(map[string]*list.Element),
	}
}

func (c *authorCache) get(messageID string) (messageAuthor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[messageID]
	if !ok {
		return messageAuthor{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*authorEntry).author, true
}

func (c *authorCache) put(messageID string, author messageAuthor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[messageID]; ok {
		el.Value.(*authorEntry).author = author
		c.order.MoveToFront(el)
		return
	}
	c.items[messageID] = c.order.PushFront(&authorEntry{messageID: messageID, author: author})
	for c.order.Len() > c.max {
		last := c.order.Back()
		c.order.Remove(last)
		delete(c.items, last.Value.(*authorEntry).messageID)
	}
}

// emojiKey returns the weight table key of a reaction emoji
func emojiKey(e discordgo.Emoji) string {
	if e.ID != "" {
		return entities.CustomEmojiKey(e.ID)
	}
	return e.Name
}

// authorOf classifies a message author for scoring
func authorOf(m *discordgo.Message) messageAuthor {
	if m.WebhookID != "" || m.Author == nil {
		return messageAuthor{}
	}
	if m.Author.Bot {
		return messageAuthor{skip: true}
	}
	id, err := common.ParseID(m.Author.ID)
	if err != nil {
		return messageAuthor{skip: true}
	}
	return messageAuthor{authorID: &id}
}

func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.GuildID != b.config.GuildID {
		return
	}
	b.authors.put(m.ID, authorOf(m.Message))
}

func (b *Bot) handleReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	b.handleReaction(r.MessageReaction, true)
}

func (b *Bot) handleReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	b.handleReaction(r.MessageReaction, false)
}

func (b *Bot) handleReaction(r *discordgo.MessageReaction, added bool) {
	if r.GuildID != b.config.GuildID || b.isSelf(r.UserID) || b.services.Reactions == nil {
		return
	}
	if !b.scoresChannel(r.ChannelID) {
		return
	}

	reactorID, err := common.ParseID(r.UserID)
	if err != nil {
		return
	}
	messageID, err := common.ParseID(r.MessageID)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), reactionTimeout)
	defer cancel()

	author, err := b.lookupAuthor(ctx, r.ChannelID, r.MessageID)
	if err != nil {
		log.WithError(err).WithField("messageID", r.MessageID).Error("Failed to resolve message author")
		return
	}
	if author.skip {
		return
	}

	change := &entities.ReactionChange{
		AuthorID:  author.authorID,
		ReactorID: reactorID,
		MessageID: messageID,
	}
	key := emojiKey(r.Emoji)
	if added {
		change.Added = []string{key}
	} else {
		change.Removed = []string{key}
	}

	outcome, err := b.services.Reactions.HandleReactionChange(ctx, change)
	if err != nil {
		log.WithError(err).WithField("messageID", r.MessageID).Error("Failed to process reaction")
		return
	}
	log.WithFields(log.Fields{
		"reactor":  reactorID,
		"emoji":    key,
		"accepted": outcome.Accepted,
		"reason":   outcome.Reason,
		"delta":    outcome.Delta,
	}).Debug("Reaction processed")
}

func (b *Bot) lookupAuthor(ctx context.Context, channelID, messageID string) (messageAuthor, error) {
	if author, ok := b.authors.get(messageID); ok {
		return author, nil
	}
	if m, err := b.session.State.Message(channelID, messageID); err == nil {
		author := authorOf(m)
		b.authors.put(messageID, author)
		return author, nil
	}
	m, err := b.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return messageAuthor{}, err
	}
	author := authorOf(m)
	b.authors.put(messageID, author)
	return author, nil
}
