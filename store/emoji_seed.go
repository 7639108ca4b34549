package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"economy/domain/interfaces"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

// ErrSeedFileNotFound is returned when the weight seed file does not exist
var ErrSeedFileNotFound = errors.New("emoji weight seed file not found")

// emojiSeed is the layout of the weight seed file:
//
//	[weights]
//	"👍" = 1
//	"<custom:1234>" = 5
type emojiSeed struct {
	Weights map[string]int64 `koanf:"weights"`
}

// LoadEmojiSeed reads the [weights] table from a TOML file
func LoadEmojiSeed(path string) (map[string]int64, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrSeedFileNotFound
		}
		return nil, fmt.Errorf("failed to stat seed file: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load seed file: %w", err)
	}

	var seed emojiSeed
	if err := k.Unmarshal("", &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if seed.Weights == nil {
		seed.Weights = make(map[string]int64)
	}
	return seed.Weights, nil
}

// SeedEmojiWeights merges the seed file into the store. Existing keys are kept
// unless overwrite is set. Returns how many keys were written.
func SeedEmojiWeights(ctx context.Context, weights interfaces.EmojiWeightStore, path string, overwrite bool) (int, error) {
	seed, err := LoadEmojiSeed(path)
	if err != nil {
		return 0, err
	}

	existing, err := weights.LoadWeights(ctx)
	if err != nil {
		return 0, err
	}

	written := 0
	for key, weight := range seed {
		if _, ok := existing[key]; ok && !overwrite {
			continue
		}
		if err := weights.PutWeight(ctx, key, weight); err != nil {
			return written, err
		}
		written++
	}

	log.WithFields(log.Fields{
		"file":    path,
		"seeded":  written,
		"entries": len(seed),
	}).Info("Merged emoji weight seed")
	return written, nil
}
