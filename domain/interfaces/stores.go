package interfaces

import (
	"context"

	"economy/domain/entities"
)

// RatingView is a consistent read-only view of the reputation ledger
type RatingView interface {
	// Lookup returns the stored record; callers must not mutate it
	Lookup(userID int64) (*entities.RatingRecord, bool)

	// TotalRating computes the full rating, 0 for unknown users
	TotalRating(userID int64) int64

	// NeriRating computes the origin-granted rating, 0 for unknown users
	NeriRating(userID int64) int64

	// IsBanned reports whether the user's reactions are excluded
	IsBanned(userID int64) bool

	// Users returns every user id in the ledger
	Users() []int64
}

// RatingTx is a read-write view; changes apply only if the callback succeeds
type RatingTx interface {
	RatingView

	// Record returns a mutable copy of the user's record, creating it if missing
	Record(userID int64) *entities.RatingRecord
}

// RatingLedger is the per-user reputation store
type RatingLedger interface {
	// View runs fn against a consistent snapshot
	View(ctx context.Context, fn func(RatingView) error) error

	// Update runs fn serially against the ledger and persists what it touched
	Update(ctx context.Context, fn func(RatingTx) error) error

	// Snapshot returns a deep copy of every record
	Snapshot(ctx context.Context) (map[int64]*entities.RatingRecord, error)

	// Reset clears the live ledger
	Reset(ctx context.Context) error

	// Rotate hands fn a deep copy of every record and clears the ledger only if fn succeeds.
	// No update can land between the copy and the reset.
	Rotate(ctx context.Context, fn func(map[int64]*entities.RatingRecord) error) error

	// Flush writes every record to durable storage
	Flush(ctx context.Context) error
}

// EmojiWeightStore persists the emoji weight table
type EmojiWeightStore interface {
	// LoadWeights returns every weight
	LoadWeights(ctx context.Context) (map[string]int64, error)

	// PutWeight stores a single weight
	PutWeight(ctx context.Context, key string, weight int64) error

	// DeleteWeight removes a weight
	DeleteWeight(ctx context.Context, key string) error
}

// ArchiveStore persists dated rating snapshots
type ArchiveStore interface {
	// SaveArchive stores an archive under its period, replacing any previous one
	SaveArchive(ctx context.Context, archive *entities.RatingArchive) error

	// ListPeriods returns archived periods in ascending order
	ListPeriods(ctx context.Context) ([]string, error)

	// GetArchive returns an archive, nil if missing
	GetArchive(ctx context.Context, period string) (*entities.RatingArchive, error)
}

// Leaderboard caches the rating ranking
type Leaderboard interface {
	// Replace rebuilds the ranking from entries
	Replace(ctx context.Context, entries []entities.RatingEntry) error

	// Top returns the n best entries
	Top(ctx context.Context, n int) ([]entities.RatingEntry, error)
}
