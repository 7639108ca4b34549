package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"economy/database"
	"economy/domain/entities"

	"github.com/jackc/pgx/v5"
)

// UserRepository implements the coin ledger on the "user" table
type UserRepository struct {
	q Queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx Queryable) *UserRepository {
	return &UserRepository{q: tx}
}

// GetByID retrieves an account, nil if the user has never held coins
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*entities.UserAccount, error) {
	query := `
		SELECT id, coins, alias, note, left_cnt, chat_joined, created_at, updated_at
		FROM "user"
		WHERE id = $1
	`

	var user entities.UserAccount
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.Coins,
		&user.Alias,
		&user.Note,
		&user.LeftCount,
		&user.ChatJoined,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	return &user, nil
}

// GetBalance returns the user's coins, 0 for unknown users
func (r *UserRepository) GetBalance(ctx context.Context, userID int64) (int64, error) {
	var coins int64
	err := r.q.QueryRow(ctx, `SELECT coins FROM "user" WHERE id = $1`, userID).Scan(&coins)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get balance for user %d: %w", userID, err)
	}
	return coins, nil
}

// AdjustBalance adds delta to the balance, creating the row if needed
func (r *UserRepository) AdjustBalance(ctx context.Context, userID int64, delta int64) (int64, error) {
	query := `
		INSERT INTO "user" (id, coins)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE
		SET coins = "user".coins + EXCLUDED.coins, updated_at = NOW()
		RETURNING coins
	`

	var coins int64
	if err := r.q.QueryRow(ctx, query, userID, delta).Scan(&coins); err != nil {
		return 0, fmt.Errorf("failed to adjust balance for user %d: %w", userID, err)
	}
	return coins, nil
}

// DeductBalance removes amount in one conditional update so concurrent
// debits can never take the balance below zero
func (r *UserRepository) DeductBalance(ctx context.Context, userID int64, amount int64) (int64, error) {
	query := `
		UPDATE "user"
		SET coins = coins - $2, updated_at = NOW()
		WHERE id = $1 AND coins >= $2
		RETURNING coins
	`

	var coins int64
	err := r.q.QueryRow(ctx, query, userID, amount).Scan(&coins)
	if err == nil {
		return coins, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to deduct balance for user %d: %w", userID, err)
	}

	err = r.q.QueryRow(ctx, `SELECT coins FROM "user" WHERE id = $1`, userID).Scan(&coins)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, &entities.NotFoundError{Resource: "user", ID: userID}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get balance for user %d: %w", userID, err)
	}
	return 0, &entities.InsufficientFundsError{Balance: coins, Required: amount}
}

// Count returns the number of accounts
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM "user"`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// SeedBalances inserts accounts for users that do not exist yet and returns how many were created
func (r *UserRepository) SeedBalances(ctx context.Context, balances map[int64]int64) (int, error) {
	query := `
		INSERT INTO "user" (id, coins)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`

	created := 0
	for userID, coins := range balances {
		tag, err := r.q.Exec(ctx, query, userID, coins)
		if err != nil {
			return created, fmt.Errorf("failed to seed balance for user %d: %w", userID, err)
		}
		created += int(tag.RowsAffected())
	}
	return created, nil
}

// MarkJoined records when a user joined the chat
func (r *UserRepository) MarkJoined(ctx context.Context, userID int64, joinedAt time.Time) error {
	query := `
		INSERT INTO "user" (id, chat_joined)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE
		SET chat_joined = EXCLUDED.chat_joined, updated_at = NOW()
	`
	if _, err := r.q.Exec(ctx, query, userID, joinedAt); err != nil {
		return fmt.Errorf("failed to mark user %d joined: %w", userID, err)
	}
	return nil
}

// IncrementLeftCount records that a user left the chat
func (r *UserRepository) IncrementLeftCount(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO "user" (id, left_cnt)
		VALUES ($1, 1)
		ON CONFLICT (id) DO UPDATE
		SET left_cnt = "user".left_cnt + 1, updated_at = NOW()
	`
	if _, err := r.q.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to increment left count for user %d: %w", userID, err)
	}
	return nil
}
