package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/pennypilot/pennypilot-backend/internal/usecase/dashboard"
)

// SummaryCache stores computed month summaries in Redis. Cache failures
// are logged and treated as misses; the dashboard always falls through to
// the database.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

// NewSummaryCache pings Redis once so a misconfigured address surfaces
// at startup rather than as a stream of per-request misses.
func NewSummaryCache(addr string, ttl time.Duration, log *logrus.Logger) (*SummaryCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &SummaryCache{client: client, ttl: ttl, log: log}, nil
}

func key(userID uuid.UUID, year int, month time.Month) string {
	return fmt.Sprintf("dashboard:%s:%d-%02d", userID, year, int(month))
}

// Get implements dashboard.SummaryCache
func (c *SummaryCache) Get(ctx context.Context, userID uuid.UUID, year int, month time.Month) (*dashboard.MonthSummary, bool) {
	raw, err := c.client.Get(ctx, key(userID, year, month)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.WithError(err).Warn("summary cache read failed")
		}
		return nil, false
	}

	var summary dashboard.MonthSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		c.log.WithError(err).Warn("summary cache entry corrupt")
		return nil, false
	}
	return &summary, true
}

// Set implements dashboard.SummaryCache
func (c *SummaryCache) Set(ctx context.Context, userID uuid.UUID, year int, month time.Month, summary *dashboard.MonthSummary) {
	raw, err := json.Marshal(summary)
	if err != nil {
		c.log.WithError(err).Warn("summary cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, key(userID, year, month), raw, c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("summary cache write failed")
	}
}

// InvalidateMonthSummary implements transaction.SummaryInvalidator
func (c *SummaryCache) InvalidateMonthSummary(ctx context.Context, userID uuid.UUID, year int, month time.Month) {
	if err := c.client.Del(ctx, key(userID, year, month)).Err(); err != nil {
		c.log.WithError(err).Warn("summary cache invalidation failed")
	}
}

// Close releases the underlying Redis connection
func (c *SummaryCache) Close() error {
	return c.client.Close()
}
