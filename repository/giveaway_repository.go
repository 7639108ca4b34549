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

// GiveawayRepository stores the pending schedule and giveaway rounds
type GiveawayRepository struct {
	q Queryable
}

// NewGiveawayRepository creates a new giveaway repository
func NewGiveawayRepository(db *database.DB) *GiveawayRepository {
	return &GiveawayRepository{q: db.Pool}
}

func newGiveawayRepositoryWithTx(tx Queryable) *GiveawayRepository {
	return &GiveawayRepository{q: tx}
}

const roundColumns = `id, message_id, channel_id, state, pool, scheduled_at, announced_at, expires_at, finalized_at`

func scanRound(row pgx.Row) (*entities.GiveawayRound, error) {
	var round entities.GiveawayRound
	err := row.Scan(
		&round.ID,
		&round.MessageID,
		&round.ChannelID,
		&round.State,
		&round.Pool,
		&round.ScheduledAt,
		&round.AnnouncedAt,
		&round.ExpiresAt,
		&round.FinalizedAt,
	)
	if err != nil {
		return nil, err
	}
	return &round, nil
}

// GetSchedule returns the pending giveaway time, nil if none
func (r *GiveawayRepository) GetSchedule(ctx context.Context) (*time.Time, error) {
	var ts time.Time
	err := r.q.QueryRow(ctx, `SELECT ts FROM random_deposit ORDER BY ts LIMIT 1`).Scan(&ts)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get giveaway schedule: %w", err)
	}
	return &ts, nil
}

// ReplaceSchedule keeps a single pending schedule row
func (r *GiveawayRepository) ReplaceSchedule(ctx context.Context, at time.Time) error {
	if err := r.ClearSchedule(ctx); err != nil {
		return err
	}
	if _, err := r.q.Exec(ctx, `INSERT INTO random_deposit (ts) VALUES ($1)`, at); err != nil {
		return fmt.Errorf("failed to store giveaway schedule: %w", err)
	}
	return nil
}

// ClearSchedule removes the pending schedule
func (r *GiveawayRepository) ClearSchedule(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM random_deposit`); err != nil {
		return fmt.Errorf("failed to clear giveaway schedule: %w", err)
	}
	return nil
}

// CreateRound inserts a round and sets round.ID
func (r *GiveawayRepository) CreateRound(ctx context.Context, round *entities.GiveawayRound) error {
	query := `
		INSERT INTO giveaway_round (message_id, channel_id, state, pool, scheduled_at, announced_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.q.QueryRow(ctx, query,
		round.MessageID,
		round.ChannelID,
		round.State,
		round.Pool,
		round.ScheduledAt,
		round.AnnouncedAt,
		round.ExpiresAt,
	).Scan(&round.ID)
	if err != nil {
		return fmt.Errorf("failed to create giveaway round for message %d: %w", round.MessageID, err)
	}
	return nil
}

// GetRoundByMessageID retrieves a round by its announcement, nil if missing
func (r *GiveawayRepository) GetRoundByMessageID(ctx context.Context, messageID int64) (*entities.GiveawayRound, error) {
	round, err := scanRound(r.q.QueryRow(ctx, `SELECT `+roundColumns+` FROM giveaway_round WHERE message_id = $1`, messageID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get giveaway round for message %d: %w", messageID, err)
	}
	return round, nil
}

// GetRoundByMessageIDForUpdate retrieves and locks a round
func (r *GiveawayRepository) GetRoundByMessageIDForUpdate(ctx context.Context, messageID int64) (*entities.GiveawayRound, error) {
	round, err := scanRound(r.q.QueryRow(ctx, `SELECT `+roundColumns+` FROM giveaway_round WHERE message_id = $1 FOR UPDATE`, messageID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock giveaway round for message %d: %w", messageID, err)
	}
	return round, nil
}

// GetOpenRounds returns rounds that are not finalized yet, oldest first
func (r *GiveawayRepository) GetOpenRounds(ctx context.Context) ([]*entities.GiveawayRound, error) {
	rows, err := r.q.Query(ctx, `SELECT `+roundColumns+` FROM giveaway_round WHERE state <> $1 ORDER BY expires_at`, entities.GiveawayStateFinalized)
	if err != nil {
		return nil, fmt.Errorf("failed to get open giveaway rounds: %w", err)
	}
	defer rows.Close()

	var rounds []*entities.GiveawayRound
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan giveaway round: %w", err)
		}
		rounds = append(rounds, round)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate giveaway rounds: %w", err)
	}

	return rounds, nil
}

// AddParticipant adds a user to a round; false if they had already joined
func (r *GiveawayRepository) AddParticipant(ctx context.Context, participant *entities.GiveawayParticipant) (bool, error) {
	query := `
		INSERT INTO giveaway_participant (round_id, user_id, display_name, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (round_id, user_id) DO NOTHING
	`
	joinedAt := participant.JoinedAt
	if joinedAt.IsZero() {
		joinedAt = time.Now()
	}
	tag, err := r.q.Exec(ctx, query, participant.RoundID, participant.UserID, participant.DisplayName, joinedAt)
	if err != nil {
		return false, fmt.Errorf("failed to add participant %d to round %d: %w", participant.UserID, participant.RoundID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetParticipants returns participants in join order
func (r *GiveawayRepository) GetParticipants(ctx context.Context, roundID int64) ([]*entities.GiveawayParticipant, error) {
	query := `
		SELECT round_id, user_id, display_name, joined_at
		FROM giveaway_participant
		WHERE round_id = $1
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants for round %d: %w", roundID, err)
	}
	defer rows.Close()

	var participants []*entities.GiveawayParticipant
	for rows.Next() {
		var p entities.GiveawayParticipant
		if err := rows.Scan(&p.RoundID, &p.UserID, &p.DisplayName, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return participants, nil
}

// MarkFinalized transitions a round to finalized
func (r *GiveawayRepository) MarkFinalized(ctx context.Context, roundID int64, at time.Time) error {
	query := `
		UPDATE giveaway_round
		SET state = $2, finalized_at = $3
		WHERE id = $1
	`
	result, err := r.q.Exec(ctx, query, roundID, entities.GiveawayStateFinalized, at)
	if err != nil {
		return fmt.Errorf("failed to finalize round %d: %w", roundID, err)
	}
	if result.RowsAffected() == 0 {
		return &entities.NotFoundError{Resource: "giveaway round", ID: roundID}
	}
	return nil
}
