package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"tourdesk-service/internal/domain/entity"
	"tourdesk-service/pkg/logger"
)

// SummaryCache keeps resolved reference summaries in redis so bulk reads do
// not refetch the same agent for every booking. Cache failures degrade to a
// store fetch, never to an error.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewSummaryCache creates a new summary cache
func NewSummaryCache(client *redis.Client, ttl time.Duration, logger logger.Logger) *SummaryCache {
	return &SummaryCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func cacheKey(kind, id string) string {
	return "summary:" + kind + ":" + id
}

// Get returns a cached summary, or false on miss or cache trouble
func (c *SummaryCache) Get(ctx context.Context, kind, id string) (*entity.RefSummary, bool) {
	raw, err := c.client.Get(ctx, cacheKey(kind, id)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Debug("Summary cache read failed", "kind", kind, "id", id, "error", err)
		return nil, false
	}
	var summary entity.RefSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		c.logger.Debug("Summary cache entry corrupt", "kind", kind, "id", id, "error", err)
		return nil, false
	}
	return &summary, true
}

// Set stores a summary with the configured TTL, best effort
func (c *SummaryCache) Set(ctx context.Context, kind, id string, summary *entity.RefSummary) {
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(kind, id), raw, c.ttl).Err(); err != nil {
		c.logger.Debug("Summary cache write failed", "kind", kind, "id", id, "error", err)
	}
}

// Invalidate drops a cached summary after the referenced document mutates
func (c *SummaryCache) Invalidate(ctx context.Context, kind, id string) {
	if err := c.client.Del(ctx, cacheKey(kind, id)).Err(); err != nil {
		c.logger.Debug("Summary cache delete failed", "kind", kind, "id", id, "error", err)
	}
}
