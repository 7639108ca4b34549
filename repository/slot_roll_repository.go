package repository

import (
	"context"
	"fmt"
	"time"

	"economy/database"
)

// SlotRollRepository stores recent slot roll timestamps
type SlotRollRepository struct {
	q Queryable
}

// NewSlotRollRepository creates a new slot roll repository
func NewSlotRollRepository(db *database.DB) *SlotRollRepository {
	return &SlotRollRepository{q: db.Pool}
}

func newSlotRollRepositoryWithTx(tx Queryable) *SlotRollRepository {
	return &SlotRollRepository{q: tx}
}

// GetRecent returns up to limit timestamps, newest first
func (r *SlotRollRepository) GetRecent(ctx context.Context, userID int64, limit int) ([]time.Time, error) {
	query := `
		SELECT ts
		FROM slot_rolls
		WHERE user_id = $1
		ORDER BY ts DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get slot rolls for user %d: %w", userID, err)
	}
	defer rows.Close()

	var rolls []time.Time
	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return nil, fmt.Errorf("failed to scan slot roll: %w", err)
		}
		rolls = append(rolls, ts)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate slot rolls: %w", err)
	}

	return rolls, nil
}

// Record stores a roll and prunes the user down to the keep newest entries
func (r *SlotRollRepository) Record(ctx context.Context, userID int64, at time.Time, keep int) error {
	if _, err := r.q.Exec(ctx, `INSERT INTO slot_rolls (user_id, ts) VALUES ($1, $2)`, userID, at); err != nil {
		return fmt.Errorf("failed to record slot roll for user %d: %w", userID, err)
	}

	query := `
		DELETE FROM slot_rolls
		WHERE user_id = $1 AND ctid NOT IN (
			SELECT ctid FROM slot_rolls
			WHERE user_id = $1
			ORDER BY ts DESC
			LIMIT $2
		)
	`
	if _, err := r.q.Exec(ctx, query, userID, keep); err != nil {
		return fmt.Errorf("failed to prune slot rolls for user %d: %w", userID, err)
	}
	return nil
}
