package bot

import (
	"context"
	"errors"
	"net/http"
	"time"

	"economy/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const membersPageSize = 1000

func (b *Bot) handleMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.GuildID != b.config.GuildID || m.User == nil || b.services.Membership == nil {
		return
	}
	userID, err := common.ParseID(m.User.ID)
	if err != nil {
		return
	}
	joinedAt := m.JoinedAt
	if joinedAt.IsZero() {
		joinedAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), reactionTimeout)
	defer cancel()
	if err := b.services.Membership.HandleJoin(ctx, userID, joinedAt); err != nil {
		log.WithError(err).WithField("userID", userID).Error("Failed to record member join")
	}
}

func (b *Bot) handleMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	if m.GuildID != b.config.GuildID || m.User == nil || b.services.Membership == nil {
		return
	}
	userID, err := common.ParseID(m.User.ID)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), reactionTimeout)
	defer cancel()
	if err := b.services.Membership.HandleLeave(ctx, userID); err != nil {
		log.WithError(err).WithField("userID", userID).Error("Failed to record member leave")
	}
}

// GetJoinDate returns when the user joined the guild, nil for non-members
func (b *Bot) GetJoinDate(ctx context.Context, userID int64) (*time.Time, error) {
	id := common.FormatID(userID)

	member, err := b.session.State.Member(b.config.GuildID, id)
	if err != nil {
		member, err = b.session.GuildMember(b.config.GuildID, id, discordgo.WithContext(ctx))
		if err != nil {
			if isNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
	}
	if member.JoinedAt.IsZero() {
		return nil, nil
	}
	joined := member.JoinedAt
	return &joined, nil
}

// LiveBoosts returns the boost count of every current booster. Discord only
// reports whether a member boosts, so the count is 0 or 1.
func (b *Bot) LiveBoosts(ctx context.Context) (map[int64]int64, error) {
	boosts := make(map[int64]int64)
	after := ""
	for {
		members, err := b.session.GuildMembers(b.config.GuildID, after, membersPageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			if m.User == nil {
				continue
			}
			after = m.User.ID
			if m.PremiumSince == nil {
				continue
			}
			if id, err := common.ParseID(m.User.ID); err == nil {
				boosts[id] = 1
			}
		}
		if len(members) < membersPageSize {
			return boosts, nil
		}
	}
}

func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}
