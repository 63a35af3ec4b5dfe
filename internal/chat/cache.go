package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// HistoryCache is a read-through Redis cache for chat histories. A nil
// *HistoryCache is valid and behaves as a permanent miss, so callers
// need no special handling when Redis is not configured.
type HistoryCache struct {
	client     *redisv9.Client
	historyTTL time.Duration
}

func NewHistoryCache(client *redisv9.Client, historyTTL time.Duration) *HistoryCache {
	if historyTTL <= 0 {
		historyTTL = 60 * time.Second
	}
	return &HistoryCache{client: client, historyTTL: historyTTL}
}

func (c *HistoryCache) GetHistory(ctx context.Context, documentID string) ([]Entry, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, historyKey(documentID)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get history failed: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached history failed: %w", err)
	}
	return entries, true, nil
}

func (c *HistoryCache) SetHistory(ctx context.Context, documentID string, entries []Entry) error {
	if c == nil {
		return nil
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal history cache failed: %w", err)
	}
	if err := c.client.Set(ctx, historyKey(documentID), payload, c.historyTTL).Err(); err != nil {
		return fmt.Errorf("redis set history failed: %w", err)
	}
	return nil
}

func (c *HistoryCache) DeleteHistory(ctx context.Context, documentID string) error {
	if c == nil {
		return nil
	}
	if err := c.client.Del(ctx, historyKey(documentID)).Err(); err != nil {
		return fmt.Errorf("redis delete history failed: %w", err)
	}
	return nil
}

func historyKey(documentID string) string {
	return fmt.Sprintf("chat:history:%s", documentID)
}
