package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("DISCORD_TOKEN", "")
		t.Setenv("DATABASE_URL", "postgres://localhost:5432")

		_, err := load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DISCORD_TOKEN is required")
	})

	t.Run("missing origin", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("DISCORD_TOKEN", "token")
		t.Setenv("DATABASE_URL", "postgres://localhost:5432")
		t.Setenv("ORIGIN_USER_IDS", "")
		t.Setenv("ORIGIN_CHANNEL_ID", "")

		_, err := load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ORIGIN_USER_IDS")
	})

	t.Run("full config", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("DISCORD_TOKEN", "token")
		t.Setenv("DATABASE_URL", "postgres://localhost:5432")
		t.Setenv("DATABASE_NAME", "economy")
		t.Setenv("ORIGIN_USER_IDS", "100, 101,bad")
		t.Setenv("ORIGIN_CHANNEL_ID", "200")
		t.Setenv("MODERATOR_IDS", "7")
		t.Setenv("APPROVED_KEY_HASHES", "sha256:aa, sha256:bb")
		t.Setenv("GIVEAWAY_POOL", "7000")
		t.Setenv("TIMEZONE", "Europe/Moscow")
		t.Setenv("SCORING_CHANNEL_IDS", "300,301")
		t.Setenv("DB_MAX_CONNS", "4")

		cfg, err := load()
		require.NoError(t, err)
		assert.Equal(t, []int64{100, 101}, cfg.OriginUserIDs)
		assert.Equal(t, []int64{100, 101, 200}, cfg.OriginIDs())
		assert.True(t, cfg.IsModerator(7))
		assert.False(t, cfg.IsModerator(100))
		assert.Equal(t, []string{"sha256:aa", "sha256:bb"}, cfg.ApprovedKeyHashes)
		assert.Equal(t, int64(7000), cfg.GiveawayPool)
		assert.Equal(t, []int64{300, 301}, cfg.ScoringChannels)
		assert.Equal(t, int32(4), cfg.PoolOptions().MaxConns)
		assert.Equal(t, 30*time.Second, cfg.PoolOptions().HealthCheckPeriod)
		assert.Equal(t, int64(10), cfg.SlotDefaultStake)
		assert.Equal(t, "Europe/Moscow", cfg.Location().String())
		assert.Equal(t, "postgres://localhost:5432/economy?sslmode=disable", cfg.GetDatabaseURL())
	})

	t.Run("malformed integer", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "test")
		t.Setenv("GIVEAWAY_POOL", "lots")

		_, err := load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GIVEAWAY_POOL")
	})
}

func TestGetUsesTestConfig(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	cfg := NewTestConfig()
	cfg.GiveawayPool = 42
	SetTestConfig(cfg)

	assert.Same(t, cfg, Get())
	assert.Equal(t, time.UTC, Get().Location())
}
