package repository

import (
	"context"
	"errors"
	"fmt"

	"economy/database"
	"economy/domain/entities"

	"github.com/jackc/pgx/v5"
)

// PollRepository stores polls and their options
type PollRepository struct {
	q Queryable
}

// NewPollRepository creates a new poll repository
func NewPollRepository(db *database.DB) *PollRepository {
	return &PollRepository{q: db.Pool}
}

func newPollRepositoryWithTx(tx Queryable) *PollRepository {
	return &PollRepository{q: tx}
}

const pollColumns = `id, question, status, chat_id, message_id, winner_idx, created_at`

func scanPoll(row pgx.Row) (*entities.Poll, error) {
	var poll entities.Poll
	err := row.Scan(
		&poll.ID,
		&poll.Question,
		&poll.Status,
		&poll.ChatID,
		&poll.MessageID,
		&poll.WinnerIdx,
		&poll.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &poll, nil
}

// Create inserts the poll and its options and sets poll.ID
func (r *PollRepository) Create(ctx context.Context, poll *entities.Poll, options []string) error {
	query := `
		INSERT INTO poll (question, status)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	if err := r.q.QueryRow(ctx, query, poll.Question, poll.Status).Scan(&poll.ID, &poll.CreatedAt); err != nil {
		return fmt.Errorf("failed to create poll: %w", err)
	}

	for idx, text := range options {
		_, err := r.q.Exec(ctx, `INSERT INTO poll_option (poll_id, idx, option) VALUES ($1, $2, $3)`, poll.ID, idx, text)
		if err != nil {
			return fmt.Errorf("failed to create option %d for poll %d: %w", idx, poll.ID, err)
		}
	}

	return nil
}

// GetByID retrieves a poll, nil if missing
func (r *PollRepository) GetByID(ctx context.Context, pollID int64) (*entities.Poll, error) {
	poll, err := scanPoll(r.q.QueryRow(ctx, `SELECT `+pollColumns+` FROM poll WHERE id = $1`, pollID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get poll %d: %w", pollID, err)
	}
	return poll, nil
}

// GetByIDForUpdate retrieves a poll with a row lock held until the transaction ends
func (r *PollRepository) GetByIDForUpdate(ctx context.Context, pollID int64) (*entities.Poll, error) {
	poll, err := scanPoll(r.q.QueryRow(ctx, `SELECT `+pollColumns+` FROM poll WHERE id = $1 FOR UPDATE`, pollID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get poll %d for update: %w", pollID, err)
	}
	return poll, nil
}

// GetOptions returns the options with staked totals, ordered by index
func (r *PollRepository) GetOptions(ctx context.Context, pollID int64) ([]*entities.PollOption, error) {
	query := `
		SELECT o.poll_id, o.idx, o.option, COALESCE(SUM(b.amount), 0)
		FROM poll_option o
		LEFT JOIN bets b ON b.poll_id = o.poll_id AND b.option_idx = o.idx
		WHERE o.poll_id = $1
		GROUP BY o.poll_id, o.idx, o.option
		ORDER BY o.idx
	`

	rows, err := r.q.Query(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get options for poll %d: %w", pollID, err)
	}
	defer rows.Close()

	var options []*entities.PollOption
	for rows.Next() {
		var option entities.PollOption
		if err := rows.Scan(&option.PollID, &option.Idx, &option.Text, &option.Total); err != nil {
			return nil, fmt.Errorf("failed to scan poll option: %w", err)
		}
		options = append(options, &option)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate poll options: %w", err)
	}

	return options, nil
}

// GetOption retrieves a single option with its staked total, nil if missing
func (r *PollRepository) GetOption(ctx context.Context, pollID int64, idx int) (*entities.PollOption, error) {
	query := `
		SELECT o.poll_id, o.idx, o.option,
		       COALESCE((SELECT SUM(b.amount) FROM bets b WHERE b.poll_id = o.poll_id AND b.option_idx = o.idx), 0)
		FROM poll_option o
		WHERE o.poll_id = $1 AND o.idx = $2
	`

	var option entities.PollOption
	err := r.q.QueryRow(ctx, query, pollID, idx).Scan(&option.PollID, &option.Idx, &option.Text, &option.Total)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get option %d of poll %d: %w", idx, pollID, err)
	}
	return &option, nil
}

// UpdateStatus moves the poll to a new status and records the winner if given
func (r *PollRepository) UpdateStatus(ctx context.Context, pollID int64, status entities.PollStatus, winnerIdx *int) error {
	query := `
		UPDATE poll
		SET status = $2, winner_idx = COALESCE($3, winner_idx)
		WHERE id = $1
	`
	result, err := r.q.Exec(ctx, query, pollID, status, winnerIdx)
	if err != nil {
		return fmt.Errorf("failed to update status of poll %d: %w", pollID, err)
	}
	if result.RowsAffected() == 0 {
		return &entities.NotFoundError{Resource: "poll", ID: pollID}
	}
	return nil
}

// SetMessage records where the poll is rendered
func (r *PollRepository) SetMessage(ctx context.Context, pollID int64, chatID, messageID int64) error {
	result, err := r.q.Exec(ctx, `UPDATE poll SET chat_id = $2, message_id = $3 WHERE id = $1`, pollID, chatID, messageID)
	if err != nil {
		return fmt.Errorf("failed to set message for poll %d: %w", pollID, err)
	}
	if result.RowsAffected() == 0 {
		return &entities.NotFoundError{Resource: "poll", ID: pollID}
	}
	return nil
}

// ListByStatus returns polls in the given status, oldest first
func (r *PollRepository) ListByStatus(ctx context.Context, status entities.PollStatus) ([]*entities.Poll, error) {
	rows, err := r.q.Query(ctx, `SELECT `+pollColumns+` FROM poll WHERE status = $1 ORDER BY id`, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls with status %s: %w", status, err)
	}
	defer rows.Close()

	var polls []*entities.Poll
	for rows.Next() {
		poll, err := scanPoll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, poll)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate polls: %w", err)
	}

	return polls, nil
}
