package services

import (
	"context"
	"fmt"
	"sync"

	"economy/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// ArchivedTotalsCache is the lifetime accumulator: every user's TotalRating
// summed over all archived months. It is only used for display.
type ArchivedTotalsCache struct {
	mu     sync.RWMutex
	totals map[int64]int64
}

// NewArchivedTotalsCache creates an empty accumulator
func NewArchivedTotalsCache() *ArchivedTotalsCache {
	return &ArchivedTotalsCache{totals: make(map[int64]int64)}
}

// Recompute rebuilds the accumulator from every archive in store
func (c *ArchivedTotalsCache) Recompute(ctx context.Context, store interfaces.ArchiveStore) error {
	periods, err := store.ListPeriods(ctx)
	if err != nil {
		return fmt.Errorf("failed to list archives: %w", err)
	}

	totals := make(map[int64]int64)
	for _, period := range periods {
		archive, err := store.GetArchive(ctx, period)
		if err != nil {
			return fmt.Errorf("failed to read archive %s: %w", period, err)
		}
		if archive == nil {
			continue
		}
		for userID, total := range archive.Totals() {
			totals[userID] += total
		}
	}

	c.mu.Lock()
	c.totals = totals
	c.mu.Unlock()

	log.WithFields(log.Fields{
		"archives": len(periods),
		"users":    len(totals),
	}).Debug("Recomputed archived rating totals")
	return nil
}

// ArchivedTotal returns the user's archived sum
func (c *ArchivedTotalsCache) ArchivedTotal(userID int64) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.totals[userID]
}
