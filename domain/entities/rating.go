package entities

import (
	"time"
)

const (
	// NeriMultiplier weights origin-given reputation in ratings and coins
	NeriMultiplier int64 = 15
	// BoostMultiplier weights each active boost
	BoostMultiplier int64 = 5
	// ReactorDatesCap is the size of the per-reactor timestamp ring
	ReactorDatesCap = 10
	// RatingSchemaVersion is the current on-disk shape of RatingRecord
	RatingSchemaVersion = 2
)

// ReactorTally is what a single reactor has contributed to an author
type ReactorTally struct {
	Count int64 `json:"count"`
	Value int64 `json:"value"`
}

// RatingRecord is the per-user reputation aggregate
type RatingRecord struct {
	UserID         int64                   `json:"user_id"`
	AdditionalChat int64                   `json:"additional_chat"`
	AdditionalNeri int64                   `json:"additional_neri"`
	AdditionalSelf int64                   `json:"additional_self"`
	Boosts         int64                   `json:"boosts"`
	ManualRating   int64                   `json:"manual_rating"`
	ReactorCounts  map[int64]*ReactorTally `json:"reactor_counts"`
	// ReactorDates holds the most recent gated reactions made by this user, newest first
	ReactorDates []time.Time `json:"reactor_dates"`
	// ReactorTotal counts every gated reaction this user has ever made
	ReactorTotal int64 `json:"reactor_total"`
	TotalReacts  int64 `json:"total_reacts"`
	Banned       bool  `json:"banned"`
}

// NewRatingRecord creates an empty record for a user
func NewRatingRecord(userID int64) *RatingRecord {
	return &RatingRecord{
		UserID:        userID,
		ReactorCounts: make(map[int64]*ReactorTally),
		ReactorDates:  make([]time.Time, 0, ReactorDatesCap),
	}
}

// Clone returns a deep copy
func (r *RatingRecord) Clone() *RatingRecord {
	c := *r
	c.ReactorCounts = make(map[int64]*ReactorTally, len(r.ReactorCounts))
	for id, t := range r.ReactorCounts {
		tally := *t
		c.ReactorCounts[id] = &tally
	}
	c.ReactorDates = append(make([]time.Time, 0, ReactorDatesCap), r.ReactorDates...)
	return &c
}

// NeriRating is the origin-granted part of the rating
func (r *RatingRecord) NeriRating() int64 {
	return r.AdditionalNeri*NeriMultiplier + r.Boosts*BoostMultiplier + r.ManualRating
}

// TotalRating computes the full rating. isBanned reports whether a reactor's
// contributions are excluded.
func (r *RatingRecord) TotalRating(isBanned func(reactorID int64) bool) int64 {
	total := r.AdditionalChat + r.NeriRating()
	for reactorID, tally := range r.ReactorCounts {
		if isBanned != nil && isBanned(reactorID) {
			continue
		}
		total += tally.Value
	}
	return total
}

// CountedReacts sums the counted reactions of all reactors toward this user
func (r *RatingRecord) CountedReacts() int64 {
	var total int64
	for _, tally := range r.ReactorCounts {
		total += tally.Count
	}
	return total
}

// Tally returns the reactor's tally, creating it if missing
func (r *RatingRecord) Tally(reactorID int64) *ReactorTally {
	if r.ReactorCounts == nil {
		r.ReactorCounts = make(map[int64]*ReactorTally)
	}
	tally, ok := r.ReactorCounts[reactorID]
	if !ok {
		tally = &ReactorTally{}
		r.ReactorCounts[reactorID] = tally
	}
	return tally
}

// PriorCount returns how many reactions from reactorID were counted so far
func (r *RatingRecord) PriorCount(reactorID int64) int64 {
	if tally, ok := r.ReactorCounts[reactorID]; ok {
		return tally.Count
	}
	return 0
}

// RecentReaction returns the n-th most recent reaction time (1-based)
func (r *RatingRecord) RecentReaction(n int) (time.Time, bool) {
	if n < 1 || n > len(r.ReactorDates) {
		return time.Time{}, false
	}
	return r.ReactorDates[n-1], true
}

// PushReactorDate records a new gated reaction and trims the ring
func (r *RatingRecord) PushReactorDate(at time.Time) {
	dates := append([]time.Time{at}, r.ReactorDates...)
	if len(dates) > ReactorDatesCap {
		dates = dates[:ReactorDatesCap]
	}
	r.ReactorDates = dates
	r.ReactorTotal++
}

// IsEmpty reports whether the record carries no reputation at all
func (r *RatingRecord) IsEmpty() bool {
	return r.AdditionalChat == 0 && r.AdditionalNeri == 0 && r.AdditionalSelf == 0 &&
		r.Boosts == 0 && r.ManualRating == 0 && len(r.ReactorCounts) == 0 && !r.Banned
}

// RatingEntry is a user and their computed ratings
type RatingEntry struct {
	UserID      int64
	TotalRating int64
	NeriRating  int64
	GlobalTotal int64
}

// RatingArchive is a dated read-only snapshot of the ledger
type RatingArchive struct {
	// Period is the archived month, formatted 2006-01
	Period     string                  `json:"period"`
	ArchivedAt time.Time               `json:"archived_at"`
	Records    map[int64]*RatingRecord `json:"records"`
}

// Totals returns TotalRating per user as computed inside the archive
func (a *RatingArchive) Totals() map[int64]int64 {
	isBanned := func(id int64) bool {
		rec, ok := a.Records[id]
		return ok && rec.Banned
	}
	totals := make(map[int64]int64, len(a.Records))
	for id, rec := range a.Records {
		totals[id] = rec.TotalRating(isBanned)
	}
	return totals
}
