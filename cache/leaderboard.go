package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"economy/domain/entities"

	"github.com/go-redis/redis/v8"
)

const (
	defaultKeyPrefix = "economy:leaderboard"
)

// RedisLeaderboard keeps the rating ranking in a sorted set scored by
// TotalRating, with the remaining columns in a companion hash
type RedisLeaderboard struct {
	client     *redis.Client
	rankingKey string
	detailKey  string
}

type leaderboardDetail struct {
	NeriRating  int64 `json:"neri"`
	GlobalTotal int64 `json:"global"`
}

// NewRedisLeaderboard creates a leaderboard under keyPrefix, or the default prefix when empty
func NewRedisLeaderboard(client *redis.Client, keyPrefix string) *RedisLeaderboard {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisLeaderboard{
		client:     client,
		rankingKey: keyPrefix + ":ranking",
		detailKey:  keyPrefix + ":detail",
	}
}

// Replace rebuilds the ranking in a single MULTI so readers never see a partial board
func (l *RedisLeaderboard) Replace(ctx context.Context, entries []entities.RatingEntry) error {
	members := make([]*redis.Z, 0, len(entries))
	details := make(map[string]any, len(entries))
	for _, entry := range entries {
		member := strconv.FormatInt(entry.UserID, 10)
		members = append(members, &redis.Z{
			Score:  float64(entry.TotalRating),
			Member: member,
		})
		detail, err := json.Marshal(leaderboardDetail{NeriRating: entry.NeriRating, GlobalTotal: entry.GlobalTotal})
		if err != nil {
			return fmt.Errorf("failed to encode leaderboard entry %d: %w", entry.UserID, err)
		}
		details[member] = detail
	}

	pipe := l.client.TxPipeline()
	pipe.Del(ctx, l.rankingKey, l.detailKey)
	if len(members) > 0 {
		pipe.ZAdd(ctx, l.rankingKey, members...)
		pipe.HSet(ctx, l.detailKey, details)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to replace leaderboard: %w", err)
	}
	return nil
}

// Top returns the n best entries, highest TotalRating first
func (l *RedisLeaderboard) Top(ctx context.Context, n int) ([]entities.RatingEntry, error) {
	if n <= 0 {
		return nil, nil
	}

	ranked, err := l.client.ZRevRangeWithScores(ctx, l.rankingKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}
	if len(ranked) == 0 {
		return nil, nil
	}

	fields := make([]string, len(ranked))
	for i, z := range ranked {
		fields[i] = z.Member.(string)
	}
	raw, err := l.client.HMGet(ctx, l.detailKey, fields...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard details: %w", err)
	}

	entries := make([]entities.RatingEntry, 0, len(ranked))
	for i, z := range ranked {
		userID, err := strconv.ParseInt(fields[i], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid leaderboard member %q: %w", fields[i], err)
		}
		entry := entities.RatingEntry{
			UserID:      userID,
			TotalRating: int64(z.Score),
		}
		if s, ok := raw[i].(string); ok {
			var detail leaderboardDetail
			if err := json.Unmarshal([]byte(s), &detail); err == nil {
				entry.NeriRating = detail.NeriRating
				entry.GlobalTotal = detail.GlobalTotal
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
