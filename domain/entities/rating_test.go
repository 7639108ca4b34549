package entities

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingRecord_TotalRating(t *testing.T) {
	rec := NewRatingRecord(1)
	rec.AdditionalChat = 3
	rec.AdditionalNeri = 2
	rec.Boosts = 1
	rec.ManualRating = -4
	rec.Tally(10).Value = 7
	rec.Tally(11).Value = 100

	banned := map[int64]bool{11: true}
	isBanned := func(id int64) bool { return banned[id] }

	assert.Equal(t, int64(2*15+1*5-4), rec.NeriRating())
	assert.Equal(t, int64(3+30+5-4+7), rec.TotalRating(isBanned))
	assert.Equal(t, int64(3+30+5-4+7+100), rec.TotalRating(nil))
}

func TestRatingRecord_TotalRatingMatchesRecomputation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		ledger := make(map[int64]*RatingRecord)
		for id := int64(1); id <= 8; id++ {
			rec := NewRatingRecord(id)
			rec.AdditionalChat = rng.Int63n(200) - 100
			rec.AdditionalNeri = rng.Int63n(20) - 10
			rec.Boosts = rng.Int63n(4)
			rec.ManualRating = rng.Int63n(50) - 25
			rec.Banned = rng.Intn(4) == 0
			for r := int64(1); r <= 8; r++ {
				if r != id && rng.Intn(2) == 0 {
					rec.Tally(r).Value = rng.Int63n(40) - 20
					rec.Tally(r).Count = rng.Int63n(5)
				}
			}
			ledger[id] = rec
		}
		isBanned := func(id int64) bool { return ledger[id] != nil && ledger[id].Banned }

		for id, rec := range ledger {
			expected := rec.AdditionalChat + rec.AdditionalNeri*15 + rec.Boosts*5 + rec.ManualRating
			for r, tally := range rec.ReactorCounts {
				if !ledger[r].Banned {
					expected += tally.Value
				}
			}
			require.Equal(t, expected, rec.TotalRating(isBanned), "user %d", id)
		}
	}
}

func TestRatingRecord_PushReactorDate(t *testing.T) {
	rec := NewRatingRecord(1)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 15; i++ {
		rec.PushReactorDate(base.Add(time.Duration(i) * time.Minute))
	}

	assert.Len(t, rec.ReactorDates, ReactorDatesCap)
	assert.Equal(t, int64(15), rec.ReactorTotal)

	newest, ok := rec.RecentReaction(1)
	require.True(t, ok)
	assert.Equal(t, base.Add(14*time.Minute), newest)

	third, ok := rec.RecentReaction(3)
	require.True(t, ok)
	assert.Equal(t, base.Add(12*time.Minute), third)

	_, ok = rec.RecentReaction(11)
	assert.False(t, ok)
}

func TestRatingRecord_CloneIsDeep(t *testing.T) {
	rec := NewRatingRecord(1)
	rec.Tally(2).Count = 3
	rec.PushReactorDate(time.Now())

	clone := rec.Clone()
	clone.Tally(2).Count = 99
	clone.PushReactorDate(time.Now())

	assert.Equal(t, int64(3), rec.ReactorCounts[2].Count)
	assert.Len(t, rec.ReactorDates, 1)
}

func TestRatingArchive_Totals(t *testing.T) {
	a := NewRatingRecord(1)
	a.Tally(2).Value = 10
	a.Tally(3).Value = 5
	b := NewRatingRecord(2)
	b.ManualRating = 4
	c := NewRatingRecord(3)
	c.Banned = true

	archive := &RatingArchive{Period: "2025-01", Records: map[int64]*RatingRecord{1: a, 2: b, 3: c}}
	totals := archive.Totals()

	assert.Equal(t, int64(10), totals[1])
	assert.Equal(t, int64(4), totals[2])
	assert.Equal(t, int64(0), totals[3])
}
