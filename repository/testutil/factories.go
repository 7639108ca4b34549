package testutil

import (
	"time"

	"economy/domain/entities"
)

// CreateTestBalanceHistory creates a test balance history entry
func CreateTestBalanceHistory(userID int64, transactionType entities.TransactionType) *entities.BalanceHistory {
	return &entities.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   1000,
		BalanceAfter:    900,
		ChangeAmount:    -100,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
		CreatedAt: time.Now(),
	}
}

// CreateTestPoll creates an open poll value ready for insertion
func CreateTestPoll(question string) *entities.Poll {
	return &entities.Poll{
		Question: question,
		Status:   entities.PollStatusOpen,
	}
}

// CreateTestGiveawayRound creates an open round announced now
func CreateTestGiveawayRound(messageID int64) *entities.GiveawayRound {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &entities.GiveawayRound{
		MessageID:   messageID,
		ChannelID:   789012,
		State:       entities.GiveawayStateOpen,
		Pool:        entities.GiveawayPool,
		ScheduledAt: now,
		AnnouncedAt: now,
		ExpiresAt:   now.Add(entities.GiveawayWindow),
	}
}
