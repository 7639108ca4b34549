package entities

import (
	"time"
)

const (
	// DefaultSlotStake is used when a roll does not name a stake
	DefaultSlotStake int64 = 10
	// SlotValueRange is the size of the uniform draw
	SlotValueRange = 64
	// SlotMaxRolls is how many rolls fit in one rate-limit window
	SlotMaxRolls = 5
	// SlotWindow is the trailing rate-limit window for non-privileged users
	SlotWindow = 30 * time.Minute
)

// SlotMultipliers maps a winning reel symbol to its payout multiplier
var SlotMultipliers = map[int]int64{
	0: 15,
	1: 5,
	2: 10,
	3: 30,
}

// SlotSpin is the result of a single slot roll
type SlotSpin struct {
	Value      int
	Reels      [3]int
	Won        bool
	Multiplier int64
	Stake      int64
	Payout     int64
	NewBalance int64
}

// Net is the balance change caused by the spin
func (s *SlotSpin) Net() int64 {
	return s.Payout - s.Stake
}

// DecodeSlotValue splits a draw in [0,64) into three 2-bit reels and evaluates it
func DecodeSlotValue(value int, stake int64) *SlotSpin {
	spin := &SlotSpin{
		Value: value,
		Reels: [3]int{(value >> 4) & 0b11, (value >> 2) & 0b11, value & 0b11},
		Stake: stake,
	}
	if spin.Reels[0] == spin.Reels[1] && spin.Reels[1] == spin.Reels[2] {
		spin.Won = true
		spin.Multiplier = SlotMultipliers[spin.Reels[0]]
		spin.Payout = spin.Multiplier * stake
	}
	return spin
}

// SlotRateLimited reports whether a new roll at now is blocked by recent rolls,
// given newest first. The check is against the oldest of the last SlotMaxRolls.
func SlotRateLimited(recent []time.Time, now time.Time) (bool, time.Duration) {
	if len(recent) < SlotMaxRolls {
		return false, 0
	}
	oldest := recent[SlotMaxRolls-1]
	if elapsed := now.Sub(oldest); elapsed < SlotWindow {
		return true, SlotWindow - elapsed
	}
	return false, 0
}
