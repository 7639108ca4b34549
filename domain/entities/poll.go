package entities

import (
	"sort"
	"time"
)

// PollStatus is the lifecycle state of a pari-mutuel poll
type PollStatus int16

const (
	PollStatusOpen    PollStatus = 0
	PollStatusClosed  PollStatus = 1
	PollStatusSettled PollStatus = 2
)

// String returns the API name of the status
func (s PollStatus) String() string {
	switch s {
	case PollStatusOpen:
		return "open"
	case PollStatusClosed:
		return "closed"
	case PollStatusSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// Poll is a betting market over a fixed list of options
type Poll struct {
	ID        int64      `db:"id"`
	Question  string     `db:"question"`
	Status    PollStatus `db:"status"`
	ChatID    *int64     `db:"chat_id"`
	MessageID *int64     `db:"message_id"`
	WinnerIdx *int       `db:"winner_idx"`
	CreatedAt time.Time  `db:"created_at"`
}

// IsOpen reports whether the poll accepts stakes
func (p *Poll) IsOpen() bool {
	return p.Status == PollStatusOpen
}

// CanClose reports whether the poll can move to CLOSED
func (p *Poll) CanClose() bool {
	return p.Status == PollStatusOpen
}

// CanSettle reports whether the poll can move to SETTLED
func (p *Poll) CanSettle() bool {
	return p.Status == PollStatusClosed
}

// HasMessage reports whether the poll has been rendered into a chat
func (p *Poll) HasMessage() bool {
	return p.ChatID != nil && p.MessageID != nil
}

// PollOption is one outcome of a poll with its staked total
type PollOption struct {
	PollID int64  `db:"poll_id"`
	Idx    int    `db:"idx"`
	Text   string `db:"option"`
	Total  int64  `db:"-"`
}

// Bet is a user's stake on a poll; one option per user per poll
type Bet struct {
	PollID    int64 `db:"poll_id"`
	UserID    int64 `db:"user_id"`
	OptionIdx int   `db:"option_idx"`
	Amount    int64 `db:"amount"`
}

// PollView is a poll with its options and totals
type PollView struct {
	Poll    *Poll
	Options []*PollOption
}

// TotalStaked sums stakes across every option
func (v *PollView) TotalStaked() int64 {
	var total int64
	for _, opt := range v.Options {
		total += opt.Total
	}
	return total
}

// Coefficient is total/optionTotal for display, 0 for an option with no stake
func (v *PollView) Coefficient(idx int) float64 {
	total := v.TotalStaked()
	for _, opt := range v.Options {
		if opt.Idx == idx && opt.Total > 0 {
			return float64(total) / float64(opt.Total)
		}
	}
	return 0
}

// Payout is a winner's settlement credit
type Payout struct {
	UserID int64
	Stake  int64
	Amount int64
}

// Settlement is the outcome of settling a poll
type Settlement struct {
	PollID    int64
	WinnerIdx int
	TotalWin  int64
	TotalLose int64
	Payouts   []Payout
	// Remainder is what floor truncation leaves undistributed (house edge)
	Remainder int64
}

// CalculateSettlement splits the losing pool among winners in proportion to stake.
// Each payout is floor(stake + stake/totalWin*totalLose). With no winning stake
// nothing is paid and the whole pool is forfeited.
func CalculateSettlement(pollID int64, winnerIdx int, bets []*Bet) *Settlement {
	s := &Settlement{PollID: pollID, WinnerIdx: winnerIdx}

	var winners []*Bet
	for _, bet := range bets {
		if bet.OptionIdx == winnerIdx {
			winners = append(winners, bet)
			s.TotalWin += bet.Amount
		} else {
			s.TotalLose += bet.Amount
		}
	}

	if s.TotalWin == 0 {
		s.Remainder = s.TotalLose
		return s
	}

	sort.Slice(winners, func(i, j int) bool {
		if winners[i].Amount != winners[j].Amount {
			return winners[i].Amount > winners[j].Amount
		}
		return winners[i].UserID < winners[j].UserID
	})

	var paid int64
	for _, bet := range winners {
		amount := bet.Amount + bet.Amount*s.TotalLose/s.TotalWin
		s.Payouts = append(s.Payouts, Payout{UserID: bet.UserID, Stake: bet.Amount, Amount: amount})
		paid += amount
	}
	s.Remainder = s.TotalWin + s.TotalLose - paid

	return s
}
