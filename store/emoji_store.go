package store

import (
	"context"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

// EmojiWeightStore persists emoji weights in the emoji_weights bucket
type EmojiWeightStore struct {
	db *bolt.DB
}

// NewEmojiWeightStore creates a new emoji weight store
func NewEmojiWeightStore(db *bolt.DB) *EmojiWeightStore {
	return &EmojiWeightStore{db: db}
}

// LoadWeights returns every stored weight. Unparsable values are skipped.
func (s *EmojiWeightStore) LoadWeights(ctx context.Context) (map[string]int64, error) {
	weights := make(map[string]int64)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEmojiWeights)
		if b == nil {
			log.Warn("Emoji weights bucket missing, using an empty table")
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			weight, err := strconv.ParseInt(string(v), 10, 64)
			if err != nil {
				log.WithField("emoji", string(k)).Warn("Skipping unparsable emoji weight")
				return nil
			}
			weights[string(k)] = weight
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load emoji weights: %w", err)
	}
	return weights, nil
}

// PutWeight stores a weight, replacing any previous value
func (s *EmojiWeightStore) PutWeight(ctx context.Context, key string, weight int64) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketEmojiWeights)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), []byte(strconv.FormatInt(weight, 10)))
	})
	if err != nil {
		return fmt.Errorf("failed to store emoji weight: %w", err)
	}
	return nil
}

// DeleteWeight removes a weight; missing keys are ignored
func (s *EmojiWeightStore) DeleteWeight(ctx context.Context, key string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEmojiWeights)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("failed to delete emoji weight: %w", err)
	}
	return nil
}
