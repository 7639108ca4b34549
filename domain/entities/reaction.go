package entities

import (
	"fmt"
	"time"
)

const (
	// MinReactorRating is the lowest TotalRating a reactor may have
	MinReactorRating int64 = -100
	// MinMembershipAge is how long a reactor must have been a member
	MinMembershipAge = 3 * 24 * time.Hour
	// BrigadingThreshold is the counted total where the cap starts to apply
	BrigadingThreshold int64 = 50
	// BrigadingShare is the largest fraction of counted reacts one reactor may hold
	BrigadingShare = 0.25
)

// ReactionChange is a normalized reaction event on a message
type ReactionChange struct {
	// AuthorID is nil for channel posts
	AuthorID  *int64
	ReactorID int64
	MessageID int64
	Added     []string
	Removed   []string
}

// CustomEmojiKey returns the weight table key for a custom emoji
func CustomEmojiKey(id string) string {
	return fmt.Sprintf("<custom:%s>", id)
}

// NewReactionChangeFromSets diffs the old and new reaction sets of a message
func NewReactionChangeFromSets(authorID *int64, reactorID, messageID int64, oldReactions, newReactions []string) *ReactionChange {
	oldSet := make(map[string]struct{}, len(oldReactions))
	for _, e := range oldReactions {
		oldSet[e] = struct{}{}
	}
	newSet := make(map[string]struct{}, len(newReactions))
	for _, e := range newReactions {
		newSet[e] = struct{}{}
	}

	change := &ReactionChange{AuthorID: authorID, ReactorID: reactorID, MessageID: messageID}
	for e := range newSet {
		if _, ok := oldSet[e]; !ok {
			change.Added = append(change.Added, e)
		}
	}
	for e := range oldSet {
		if _, ok := newSet[e]; !ok {
			change.Removed = append(change.Removed, e)
		}
	}
	return change
}

// RejectReason names why a reaction was dropped
type RejectReason string

const (
	RejectNone         RejectReason = ""
	RejectSelfReaction RejectReason = "self_reaction"
	RejectLowRating    RejectReason = "low_rating"
	RejectNewMember    RejectReason = "new_member"
	RejectZeroDelta    RejectReason = "zero_delta"
	RejectRateLimited  RejectReason = "rate_limited"
	RejectBrigading    RejectReason = "brigading_cap"
)

// ReactionOutcome reports what processing a reaction did
type ReactionOutcome struct {
	Accepted bool
	Reason   RejectReason
	AuthorID int64
	Delta    int64
	Coins    int64
	Category RatingCategory
}

// Rejected builds an outcome for a dropped reaction
func Rejected(reason RejectReason) *ReactionOutcome {
	return &ReactionOutcome{Reason: reason}
}
