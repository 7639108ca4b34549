package repository

import (
	"context"
	"errors"
	"fmt"

	"economy/database"
	"economy/domain/entities"

	"github.com/jackc/pgx/v5"
)

// BetRepository stores stakes keyed by (poll, user)
type BetRepository struct {
	q Queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

func newBetRepositoryWithTx(tx Queryable) *BetRepository {
	return &BetRepository{q: tx}
}

// Get retrieves a user's bet on a poll, nil if none
func (r *BetRepository) Get(ctx context.Context, pollID, userID int64) (*entities.Bet, error) {
	query := `
		SELECT poll_id, user_id, option_idx, amount
		FROM bets
		WHERE poll_id = $1 AND user_id = $2
	`

	var bet entities.Bet
	err := r.q.QueryRow(ctx, query, pollID, userID).Scan(&bet.PollID, &bet.UserID, &bet.OptionIdx, &bet.Amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet of user %d on poll %d: %w", userID, pollID, err)
	}
	return &bet, nil
}

// AddStake creates the bet or tops it up. The option is only kept when it
// matches, so a conflicting top-up returns a ValidationError.
func (r *BetRepository) AddStake(ctx context.Context, pollID, userID int64, optionIdx int, amount int64) (*entities.Bet, error) {
	query := `
		INSERT INTO bets (poll_id, user_id, option_idx, amount)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (poll_id, user_id) DO UPDATE
		SET amount = bets.amount + EXCLUDED.amount
		WHERE bets.option_idx = EXCLUDED.option_idx
		RETURNING poll_id, user_id, option_idx, amount
	`

	var bet entities.Bet
	err := r.q.QueryRow(ctx, query, pollID, userID, optionIdx, amount).Scan(&bet.PollID, &bet.UserID, &bet.OptionIdx, &bet.Amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entities.NewValidationError("user %d already bet on another option of poll %d", userID, pollID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add stake for user %d on poll %d: %w", userID, pollID, err)
	}
	return &bet, nil
}

// GetByPoll returns every bet on a poll
func (r *BetRepository) GetByPoll(ctx context.Context, pollID int64) ([]*entities.Bet, error) {
	query := `
		SELECT poll_id, user_id, option_idx, amount
		FROM bets
		WHERE poll_id = $1
		ORDER BY user_id
	`

	rows, err := r.q.Query(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets for poll %d: %w", pollID, err)
	}
	defer rows.Close()

	var bets []*entities.Bet
	for rows.Next() {
		var bet entities.Bet
		if err := rows.Scan(&bet.PollID, &bet.UserID, &bet.OptionIdx, &bet.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, &bet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bets: %w", err)
	}

	return bets, nil
}
