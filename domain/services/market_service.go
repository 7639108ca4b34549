package services

import (
	"context"
	"fmt"
	"strings"

	"economy/domain/entities"
	"economy/domain/events"
	"economy/domain/interfaces"
	"economy/domain/utils"

	log "github.com/sirupsen/logrus"
)

type marketService struct {
	uowFactory interfaces.UnitOfWorkFactory
}

// NewMarketService creates a new pari-mutuel market service
func NewMarketService(uowFactory interfaces.UnitOfWorkFactory) interfaces.MarketService {
	return &marketService{uowFactory: uowFactory}
}

func (s *marketService) CreatePoll(ctx context.Context, question string, options []string) (*entities.PollView, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, entities.NewValidationError("poll question must not be empty")
	}
	cleaned := make([]string, 0, len(options))
	for _, opt := range options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			return nil, entities.NewValidationError("poll options must not be empty")
		}
		cleaned = append(cleaned, opt)
	}
	if len(cleaned) < 2 {
		return nil, entities.NewValidationError("a poll needs at least 2 options")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	poll := &entities.Poll{Question: question, Status: entities.PollStatusOpen}
	if err := uow.PollRepository().Create(ctx, poll, cleaned); err != nil {
		return nil, fmt.Errorf("failed to create poll: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	view := &entities.PollView{Poll: poll}
	for idx, text := range cleaned {
		view.Options = append(view.Options, &entities.PollOption{PollID: poll.ID, Idx: idx, Text: text})
	}
	log.WithFields(log.Fields{
		"pollID":  poll.ID,
		"options": len(cleaned),
	}).Info("Poll created")
	return view, nil
}

func (s *marketService) AttachMessage(ctx context.Context, pollID, chatID, messageID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	poll, err := uow.PollRepository().GetByID(ctx, pollID)
	if err != nil {
		return fmt.Errorf("failed to get poll: %w", err)
	}
	if poll == nil {
		return &entities.NotFoundError{Resource: "poll", ID: pollID}
	}
	if err := uow.PollRepository().SetMessage(ctx, pollID, chatID, messageID); err != nil {
		return fmt.Errorf("failed to attach poll message: %w", err)
	}

	return uow.Commit()
}

func (s *marketService) ClosePoll(ctx context.Context, pollID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	poll, err := uow.PollRepository().GetByIDForUpdate(ctx, pollID)
	if err != nil {
		return fmt.Errorf("failed to get poll: %w", err)
	}
	if poll == nil {
		return &entities.NotFoundError{Resource: "poll", ID: pollID}
	}
	if !poll.CanClose() {
		return entities.ErrPollNotOpen
	}

	if err := uow.PollRepository().UpdateStatus(ctx, pollID, entities.PollStatusClosed, nil); err != nil {
		return fmt.Errorf("failed to close poll: %w", err)
	}
	s.publish(uow, events.PollStateChangeEvent{
		PollID:   pollID,
		OldState: poll.Status.String(),
		NewState: entities.PollStatusClosed.String(),
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// PlaceBet adds amount to the user's stake on an OPEN poll. A user holds one
// option per poll; the debit and the stake land in the same transaction.
func (s *marketService) PlaceBet(ctx context.Context, pollID, userID int64, optionIdx int, amount int64) (*entities.Bet, error) {
	if amount <= 0 {
		return nil, entities.NewValidationError("amount must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	poll, err := uow.PollRepository().GetByIDForUpdate(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}
	if poll == nil {
		return nil, &entities.NotFoundError{Resource: "poll", ID: pollID}
	}
	if !poll.IsOpen() {
		return nil, entities.ErrPollNotOpen
	}

	option, err := uow.PollRepository().GetOption(ctx, pollID, optionIdx)
	if err != nil {
		return nil, fmt.Errorf("failed to get option: %w", err)
	}
	if option == nil {
		return nil, &entities.NotFoundError{Resource: "option", ID: optionIdx}
	}

	existing, err := uow.BetRepository().Get(ctx, pollID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if existing != nil && existing.OptionIdx != optionIdx {
		return nil, entities.NewValidationError("you already bet on option %d of this poll", existing.OptionIdx+1)
	}

	if _, err := utils.DebitStake(ctx, uow, userID, amount, entities.TransactionTypeBetPlaced, map[string]any{
		"poll_id":    pollID,
		"option_idx": optionIdx,
	}); err != nil {
		return nil, err
	}

	bet, err := uow.BetRepository().AddStake(ctx, pollID, userID, optionIdx, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to store bet: %w", err)
	}

	s.publish(uow, events.BetPlacedEvent{
		PollID:    pollID,
		UserID:    userID,
		OptionIdx: optionIdx,
		Amount:    amount,
		Stake:     bet.Amount,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return bet, nil
}

func (s *marketService) GetBet(ctx context.Context, pollID, userID int64) (*entities.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bet, err := uow.BetRepository().Get(ctx, pollID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil {
		return nil, &entities.NotFoundError{Resource: "bet", ID: fmt.Sprintf("%d/%d", pollID, userID)}
	}
	return bet, nil
}

func (s *marketService) GetPollView(ctx context.Context, pollID int64) (*entities.PollView, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return s.loadView(ctx, uow, pollID)
}

func (s *marketService) ListOpenPolls(ctx context.Context) ([]*entities.PollView, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	polls, err := uow.PollRepository().ListByStatus(ctx, entities.PollStatusOpen)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}

	views := make([]*entities.PollView, 0, len(polls))
	for _, poll := range polls {
		options, err := uow.PollRepository().GetOptions(ctx, poll.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get options for poll %d: %w", poll.ID, err)
		}
		views = append(views, &entities.PollView{Poll: poll, Options: options})
	}
	return views, nil
}

// Settle pays out a CLOSED poll. Each winner receives
// floor(stake + stake*totalLose/totalWin); the truncated remainder stays unpaid.
func (s *marketService) Settle(ctx context.Context, pollID int64, winnerIdx int) (*entities.Settlement, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	poll, err := uow.PollRepository().GetByIDForUpdate(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}
	if poll == nil {
		return nil, &entities.NotFoundError{Resource: "poll", ID: pollID}
	}
	switch poll.Status {
	case entities.PollStatusSettled:
		return nil, entities.ErrPollSettled
	case entities.PollStatusOpen:
		return nil, entities.ErrPollNotClosed
	}

	option, err := uow.PollRepository().GetOption(ctx, pollID, winnerIdx)
	if err != nil {
		return nil, fmt.Errorf("failed to get option: %w", err)
	}
	if option == nil {
		return nil, &entities.NotFoundError{Resource: "option", ID: winnerIdx}
	}

	bets, err := uow.BetRepository().GetByPoll(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets: %w", err)
	}

	settlement := entities.CalculateSettlement(pollID, winnerIdx, bets)
	for _, payout := range settlement.Payouts {
		if _, err := utils.AdjustAndRecord(ctx, uow, payout.UserID, payout.Amount, entities.TransactionTypeBetPayout, map[string]any{
			"poll_id": pollID,
			"stake":   payout.Stake,
		}); err != nil {
			return nil, fmt.Errorf("failed to pay user %d: %w", payout.UserID, err)
		}
	}

	if err := uow.PollRepository().UpdateStatus(ctx, pollID, entities.PollStatusSettled, &winnerIdx); err != nil {
		return nil, fmt.Errorf("failed to settle poll: %w", err)
	}

	s.publish(uow, events.PollStateChangeEvent{
		PollID:   pollID,
		OldState: poll.Status.String(),
		NewState: entities.PollStatusSettled.String(),
	})
	s.publish(uow, events.PollSettledEvent{
		PollID:      pollID,
		WinnerIdx:   winnerIdx,
		TotalWin:    settlement.TotalWin,
		TotalLose:   settlement.TotalLose,
		WinnerCount: len(settlement.Payouts),
		Remainder:   settlement.Remainder,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"pollID":    pollID,
		"winnerIdx": winnerIdx,
		"winners":   len(settlement.Payouts),
		"totalWin":  settlement.TotalWin,
		"totalLose": settlement.TotalLose,
		"remainder": settlement.Remainder,
	}).Info("Poll settled")
	return settlement, nil
}

func (s *marketService) loadView(ctx context.Context, uow interfaces.UnitOfWork, pollID int64) (*entities.PollView, error) {
	poll, err := uow.PollRepository().GetByID(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}
	if poll == nil {
		return nil, &entities.NotFoundError{Resource: "poll", ID: pollID}
	}
	options, err := uow.PollRepository().GetOptions(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get options: %w", err)
	}
	return &entities.PollView{Poll: poll, Options: options}, nil
}

func (s *marketService) publish(uow interfaces.UnitOfWork, event events.Event) {
	if err := uow.EventBus().Publish(event); err != nil {
		log.WithError(err).WithField("event", event.Type()).Error("Failed to publish event")
	}
}
