package store

import (
	"context"
	"encoding/json"
	"fmt"

	"economy/domain/entities"

	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

// ArchiveStore keeps monthly rating snapshots keyed by period
type ArchiveStore struct {
	db *bolt.DB
}

// NewArchiveStore creates a new archive store
func NewArchiveStore(db *bolt.DB) *ArchiveStore {
	return &ArchiveStore{db: db}
}

// SaveArchive stores the archive, replacing an earlier one for the same period
func (s *ArchiveStore) SaveArchive(ctx context.Context, archive *entities.RatingArchive) error {
	data, err := json.Marshal(archive)
	if err != nil {
		return fmt.Errorf("failed to encode archive: %w", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketArchives)
		if err != nil {
			return err
		}
		return b.Put([]byte(archive.Period), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save archive %s: %w", archive.Period, err)
	}
	return nil
}

// ListPeriods returns the archived periods in ascending order
func (s *ArchiveStore) ListPeriods(ctx context.Context) ([]string, error) {
	var periods []string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketArchives)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			periods = append(periods, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list archives: %w", err)
	}
	return periods, nil
}

// GetArchive returns the archive for period, nil if missing or unreadable
func (s *ArchiveStore) GetArchive(ctx context.Context, period string) (*entities.RatingArchive, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketArchives)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(period)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read archive %s: %w", period, err)
	}
	if data == nil {
		return nil, nil
	}

	var archive entities.RatingArchive
	if err := json.Unmarshal(data, &archive); err != nil {
		log.WithError(err).WithField("period", period).Warn("Ignoring unparsable rating archive")
		return nil, nil
	}
	if archive.Records == nil {
		archive.Records = make(map[int64]*entities.RatingRecord)
	}
	for _, rec := range archive.Records {
		normalizeRating(rec)
	}
	return &archive, nil
}
