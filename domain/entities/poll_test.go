package entities

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateSettlement_ProportionalPayout(t *testing.T) {
	bets := []*Bet{
		{PollID: 1, UserID: 10, OptionIdx: 0, Amount: 100},
		{PollID: 1, UserID: 20, OptionIdx: 1, Amount: 300},
	}

	s := CalculateSettlement(1, 0, bets)

	require.Len(t, s.Payouts, 1)
	assert.Equal(t, int64(10), s.Payouts[0].UserID)
	assert.Equal(t, int64(400), s.Payouts[0].Amount)
	assert.Equal(t, int64(100), s.TotalWin)
	assert.Equal(t, int64(300), s.TotalLose)
	assert.Equal(t, int64(0), s.Remainder)
}

func TestCalculateSettlement_NoWinningStake(t *testing.T) {
	bets := []*Bet{
		{PollID: 1, UserID: 10, OptionIdx: 1, Amount: 50},
		{PollID: 1, UserID: 20, OptionIdx: 2, Amount: 70},
	}

	s := CalculateSettlement(1, 0, bets)

	assert.Empty(t, s.Payouts)
	assert.Equal(t, int64(0), s.TotalWin)
	assert.Equal(t, int64(120), s.Remainder)
}

func TestCalculateSettlement_FloorRemainderIsHouseEdge(t *testing.T) {
	bets := []*Bet{
		{UserID: 1, OptionIdx: 0, Amount: 1},
		{UserID: 2, OptionIdx: 0, Amount: 1},
		{UserID: 3, OptionIdx: 0, Amount: 1},
		{UserID: 4, OptionIdx: 1, Amount: 10},
	}

	s := CalculateSettlement(1, 0, bets)

	// each winner gets floor(1 + 10/3) = 4
	for _, p := range s.Payouts {
		assert.Equal(t, int64(4), p.Amount)
	}
	assert.Equal(t, int64(1), s.Remainder)
}

func TestCalculateSettlement_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		var bets []*Bet
		n := int64(rng.Intn(12) + 1)
		for u := int64(1); u <= n; u++ {
			bets = append(bets, &Bet{UserID: u, OptionIdx: rng.Intn(3), Amount: rng.Int63n(1000) + 1})
		}
		s := CalculateSettlement(1, 0, bets)

		var paid int64
		for _, p := range s.Payouts {
			assert.GreaterOrEqual(t, p.Amount, p.Stake)
			paid += p.Amount
		}
		assert.LessOrEqual(t, paid, s.TotalWin+s.TotalLose)
		assert.Equal(t, s.TotalWin+s.TotalLose, paid+s.Remainder)
	}
}

func TestPollView_Coefficient(t *testing.T) {
	view := &PollView{
		Poll: &Poll{ID: 1},
		Options: []*PollOption{
			{Idx: 0, Text: "yes", Total: 100},
			{Idx: 1, Text: "no", Total: 300},
			{Idx: 2, Text: "maybe", Total: 0},
		},
	}

	assert.Equal(t, int64(400), view.TotalStaked())
	assert.InDelta(t, 4.0, view.Coefficient(0), 0.0001)
	assert.InDelta(t, 1.3333, view.Coefficient(1), 0.0001)
	assert.Equal(t, 0.0, view.Coefficient(2))
}

func TestPollStatus_Transitions(t *testing.T) {
	open := &Poll{Status: PollStatusOpen}
	closed := &Poll{Status: PollStatusClosed}
	settled := &Poll{Status: PollStatusSettled}

	assert.True(t, open.CanClose())
	assert.False(t, open.CanSettle())
	assert.True(t, closed.CanSettle())
	assert.False(t, closed.CanClose())
	assert.False(t, settled.CanClose())
	assert.False(t, settled.CanSettle())
	assert.Equal(t, "settled", settled.Status.String())
}
