package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"economy/domain/interfaces"

	log "github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"
)

const variationSelector16 = "\uFE0F"

// EmojiWeights caches the emoji weight table and resolves reaction keys against it
type EmojiWeights struct {
	store   interfaces.EmojiWeightStore
	mu      sync.RWMutex
	weights map[string]int64
}

// NewEmojiWeights loads the table from store. A failed load leaves the table empty.
func NewEmojiWeights(ctx context.Context, store interfaces.EmojiWeightStore) *EmojiWeights {
	w := &EmojiWeights{store: store, weights: make(map[string]int64)}
	if err := w.Reload(ctx); err != nil {
		log.WithError(err).Warn("Failed to load emoji weights, starting with an empty table")
	}
	return w
}

// Reload replaces the cached table with the stored one
func (w *EmojiWeights) Reload(ctx context.Context) error {
	weights, err := w.store.LoadWeights(ctx)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.weights = weights
	w.mu.Unlock()
	return nil
}

// Weight resolves an emoji key, trying the exact key, its NFC form, the NFC form
// with VS16 appended and the NFC form with VS16 stripped. Unknown emoji weigh 0.
func (w *EmojiWeights) Weight(key string) int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if weight, ok := w.weights[key]; ok {
		return weight
	}
	nfc := norm.NFC.String(key)
	for _, candidate := range []string{
		nfc,
		nfc + variationSelector16,
		strings.TrimRight(nfc, variationSelector16),
	} {
		if weight, ok := w.weights[candidate]; ok {
			return weight
		}
	}
	return 0
}

// Sum adds up the weights of keys
func (w *EmojiWeights) Sum(keys []string) int64 {
	var total int64
	for _, key := range keys {
		total += w.Weight(key)
	}
	return total
}

// Set stores a weight
func (w *EmojiWeights) Set(ctx context.Context, key string, weight int64) error {
	if key == "" {
		return fmt.Errorf("emoji key must not be empty")
	}
	if err := w.store.PutWeight(ctx, key, weight); err != nil {
		return err
	}
	w.mu.Lock()
	w.weights[key] = weight
	w.mu.Unlock()
	return nil
}

// Delete removes a weight
func (w *EmojiWeights) Delete(ctx context.Context, key string) error {
	if err := w.store.DeleteWeight(ctx, key); err != nil {
		return err
	}
	w.mu.Lock()
	delete(w.weights, key)
	w.mu.Unlock()
	return nil
}

// All returns a copy of the table
func (w *EmojiWeights) All() map[string]int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make(map[string]int64, len(w.weights))
	for k, v := range w.weights {
		out[k] = v
	}
	return out
}
