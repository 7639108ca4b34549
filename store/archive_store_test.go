package store

import (
	"context"
	"testing"
	"time"

	"economy/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func TestArchiveStore(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	s := NewArchiveStore(db)

	rec := entities.NewRatingRecord(1)
	rec.AdditionalChat = 12
	for _, period := range []string{"2026-02", "2025-12", "2026-01"} {
		require.NoError(t, s.SaveArchive(ctx, &entities.RatingArchive{
			Period:     period,
			ArchivedAt: time.Now().UTC(),
			Records:    map[int64]*entities.RatingRecord{1: rec},
		}))
	}

	periods, err := s.ListPeriods(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-12", "2026-01", "2026-02"}, periods)

	archive, err := s.GetArchive(ctx, "2026-01")
	require.NoError(t, err)
	require.NotNil(t, archive)
	assert.Equal(t, map[int64]int64{1: 12}, archive.Totals())

	missing, err := s.GetArchive(ctx, "1999-01")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketArchives).Put([]byte("2026-03"), []byte("{broken"))
	}))
	broken, err := s.GetArchive(ctx, "2026-03")
	require.NoError(t, err)
	assert.Nil(t, broken)
}
