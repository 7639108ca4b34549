package repository

import (
	"context"
	"errors"
	"fmt"

	"economy/database"

	"github.com/jackc/pgx/v5"
)

// SettingsRepository stores the slot switch and the helper list
type SettingsRepository struct {
	q Queryable
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{q: db.Pool}
}

func newSettingsRepositoryWithTx(tx Queryable) *SettingsRepository {
	return &SettingsRepository{q: tx}
}

// IsSlotEnabled reports the global slot switch, enabled when no row exists
func (r *SettingsRepository) IsSlotEnabled(ctx context.Context) (bool, error) {
	var enabled bool
	err := r.q.QueryRow(ctx, `SELECT slot_enabled FROM settings WHERE id = 1`).Scan(&enabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get slot switch: %w", err)
	}
	return enabled, nil
}

// SetSlotEnabled updates the global slot switch
func (r *SettingsRepository) SetSlotEnabled(ctx context.Context, enabled bool) error {
	query := `
		INSERT INTO settings (id, slot_enabled)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET slot_enabled = EXCLUDED.slot_enabled
	`
	if _, err := r.q.Exec(ctx, query, enabled); err != nil {
		return fmt.Errorf("failed to set slot switch: %w", err)
	}
	return nil
}

// IsHelper reports whether a user is privileged
func (r *SettingsRepository) IsHelper(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM helper WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check helper %d: %w", userID, err)
	}
	return exists, nil
}

// AddHelper grants privileges
func (r *SettingsRepository) AddHelper(ctx context.Context, userID int64) error {
	if _, err := r.q.Exec(ctx, `INSERT INTO helper (id) VALUES ($1) ON CONFLICT DO NOTHING`, userID); err != nil {
		return fmt.Errorf("failed to add helper %d: %w", userID, err)
	}
	return nil
}

// RemoveHelper revokes privileges
func (r *SettingsRepository) RemoveHelper(ctx context.Context, userID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM helper WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("failed to remove helper %d: %w", userID, err)
	}
	return nil
}
