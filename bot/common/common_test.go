package common

import (
	"fmt"
	"testing"
	"time"

	"economy/domain/entities"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
		expected bool
	}{
		{"insufficient", &entities.InsufficientFundsError{Balance: 3, Required: 10}, "you have 3, need 10", true},
		{"wrapped not found", fmt.Errorf("failed: %w", &entities.NotFoundError{Resource: "poll", ID: 1}), "poll", true},
		{"rate limited", &entities.RateLimitedError{Operation: "slot", RetryAfter: time.Minute}, "retry in 1m0s", true},
		{"validation", entities.NewValidationError("amount must be positive"), "amount must be positive", true},
		{"poll not open", entities.ErrPollNotOpen, "not accepting bets", true},
		{"slot disabled", entities.ErrSlotDisabled, "turned off", true},
		{"unexpected", fmt.Errorf("connection reset"), "Something went wrong", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, expected := UserMessage(tt.err)
			assert.Contains(t, msg, tt.contains)
			assert.Equal(t, tt.expected, expected)
		})
	}
}

func TestMemberDisplayName(t *testing.T) {
	user := &discordgo.User{Username: "neri", GlobalName: "Neri"}

	assert.Equal(t, "boss", MemberDisplayName(&discordgo.Member{Nick: "boss", User: user}, nil))
	assert.Equal(t, "Neri", MemberDisplayName(&discordgo.Member{User: user}, nil))
	assert.Equal(t, "plain", MemberDisplayName(nil, &discordgo.User{Username: "plain"}))
	assert.Equal(t, "Unknown", MemberDisplayName(nil, nil))
}

func TestIDs(t *testing.T) {
	id, err := ParseID("123456789012345678")
	assert.NoError(t, err)
	assert.Equal(t, "123456789012345678", FormatID(id))
	assert.Equal(t, "<@42>", Mention(42))

	_, err = ParseID("abc")
	assert.Error(t, err)
}
