package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmojiWeightStore(t *testing.T) {
	ctx := context.Background()
	s := NewEmojiWeightStore(openTestDB(t))

	require.NoError(t, s.PutWeight(ctx, "👍", 1))
	require.NoError(t, s.PutWeight(ctx, "<custom:77>", -3))
	require.NoError(t, s.PutWeight(ctx, "👍", 2))

	weights, err := s.LoadWeights(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"👍": 2, "<custom:77>": -3}, weights)

	require.NoError(t, s.DeleteWeight(ctx, "<custom:77>"))
	require.NoError(t, s.DeleteWeight(ctx, "missing"))

	weights, err = s.LoadWeights(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"👍": 2}, weights)
}

func TestSeedEmojiWeights(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "weights.toml")
	seed := "[weights]\n\"👍\" = 1\n\"🔥\" = 3\n\"<custom:9>\" = 20\n"
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	t.Run("keeps existing keys", func(t *testing.T) {
		s := NewEmojiWeightStore(openTestDB(t))
		require.NoError(t, s.PutWeight(ctx, "👍", 5))

		written, err := SeedEmojiWeights(ctx, s, path, false)
		require.NoError(t, err)
		assert.Equal(t, 2, written)

		weights, err := s.LoadWeights(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(5), weights["👍"])
		assert.Equal(t, int64(20), weights["<custom:9>"])
	})

	t.Run("overwrite replaces keys", func(t *testing.T) {
		s := NewEmojiWeightStore(openTestDB(t))
		require.NoError(t, s.PutWeight(ctx, "👍", 5))

		written, err := SeedEmojiWeights(ctx, s, path, true)
		require.NoError(t, err)
		assert.Equal(t, 3, written)

		weights, err := s.LoadWeights(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), weights["👍"])
	})

	t.Run("missing file", func(t *testing.T) {
		s := NewEmojiWeightStore(openTestDB(t))
		_, err := SeedEmojiWeights(ctx, s, filepath.Join(t.TempDir(), "nope.toml"), false)
		assert.ErrorIs(t, err, ErrSeedFileNotFound)
	})
}
