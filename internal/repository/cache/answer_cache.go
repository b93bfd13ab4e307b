package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"voice-shopping-be/pkg/agent/graph"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "shopping:answer:"

// AnswerCache stores finished pipeline states keyed by the normalized query
type AnswerCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewAnswerCache(rdb *redis.Client, ttl time.Duration) *AnswerCache {
	return &AnswerCache{rdb: rdb, ttl: ttl}
}

// NormalizeQuery lowercases and collapses whitespace so trivial variants share a key
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

func Key(query string) string {
	sum := sha256.Sum256([]byte(NormalizeQuery(query)))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached state. A miss is (nil, false, nil).
func (c *AnswerCache) Get(ctx context.Context, query string) (*graph.State, bool, error) {
	raw, err := c.rdb.Get(ctx, Key(query)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("answer cache get: %w", err)
	}

	var state graph.State
	if err := json.Unmarshal(raw, &state); err != nil {
		// Corrupt entry, drop it and treat as a miss
		c.rdb.Del(ctx, Key(query))
		return nil, false, nil
	}
	return &state, true, nil
}

func (c *AnswerCache) Set(ctx context.Context, query string, state *graph.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("answer cache encode: %w", err)
	}
	if err := c.rdb.Set(ctx, Key(query), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("answer cache set: %w", err)
	}
	return nil
}

// Flush drops every cached answer, used after the catalog changes
func (c *AnswerCache) Flush(ctx context.Context) (int, error) {
	var cursor uint64
	deleted := 0
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("answer cache scan: %w", err)
		}
		if len(keys) > 0 {
			n, err := c.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("answer cache delete: %w", err)
			}
			deleted += int(n)
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}
