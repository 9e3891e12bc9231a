package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/chatty-edu-api/internal/dto"
	"github.com/noah-isme/chatty-edu-api/internal/observability"
)

// DashboardCacheKey holds the cached teacher dashboard rows.
const DashboardCacheKey = "dashboard:submissions"

// DashboardCache is an optional Redis cache for dashboard rows. A nil client
// turns every call into a no-op; Redis errors are logged and swallowed.
type DashboardCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewDashboardCache wraps client. client may be nil.
func NewDashboardCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *DashboardCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DashboardCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "dashboard_cache").Logger(),
	}
}

func (c *DashboardCache) get(ctx context.Context) ([]dto.SubmissionSummaryResponse, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	cached, err := c.client.Get(ctx, DashboardCacheKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
		observability.DashboardCacheEvents().WithLabelValues("miss").Inc()
		return nil, false
	}

	var rows []dto.SubmissionSummaryResponse
	if err := json.Unmarshal([]byte(cached), &rows); err != nil {
		c.logger.Warn().Err(err).Msg("discarding unreadable dashboard cache")
		observability.DashboardCacheEvents().WithLabelValues("miss").Inc()
		return nil, false
	}

	observability.DashboardCacheEvents().WithLabelValues("hit").Inc()
	return rows, true
}

func (c *DashboardCache) set(ctx context.Context, rows []dto.SubmissionSummaryResponse) {
	if c == nil || c.client == nil {
		return
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to encode dashboard cache")
		return
	}
	if err := c.client.Set(ctx, DashboardCacheKey, payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to store dashboard cache")
	}
}

// Invalidate drops the cached rows.
func (c *DashboardCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, DashboardCacheKey).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to invalidate dashboard cache")
	}
}
