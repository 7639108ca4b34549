package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestArchivePeriod(t *testing.T) {
	assert.Equal(t, "2025-02", ArchivePeriod(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-12", ArchivePeriod(time.Date(2025, 1, 1, 0, 0, 1, 0, time.UTC)))
}

func TestIsFirstDayOfMonth(t *testing.T) {
	assert.True(t, IsFirstDayOfMonth(time.Date(2025, 5, 1, 23, 59, 0, 0, time.UTC)))
	assert.False(t, IsFirstDayOfMonth(time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)))
}

func TestNextDailyCheck(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC), NextDailyCheck(now, 0))
	assert.Equal(t, time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC), NextDailyCheck(now, 12))
}
