package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"form-builder-api/internal/dto"
	"form-builder-api/internal/metrics"
)

const publicFormKeyPrefix = "public_form:"

// FormCache stores rendered public forms in Redis. Cache failures degrade to
// a database read and are logged at debug level only.
type FormCache struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewFormCache creates a new FormCache
func NewFormCache(client *redis.Client, ttl time.Duration, m *metrics.Metrics, logger *zap.Logger) *FormCache {
	return &FormCache{
		client:  client,
		ttl:     ttl,
		metrics: m,
		logger:  logger,
	}
}

func (c *FormCache) key(formID uuid.UUID) string {
	return publicFormKeyPrefix + formID.String()
}

// Get returns the cached public form, if any
func (c *FormCache) Get(ctx context.Context, formID uuid.UUID) (*dto.FormResponse, bool) {
	raw, err := c.client.Get(ctx, c.key(formID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("Form cache read failed", zap.Error(err))
		}
		if c.metrics != nil {
			c.metrics.RecordCacheMiss("public_form")
		}
		return nil, false
	}

	var form dto.FormResponse
	if err := json.Unmarshal(raw, &form); err != nil {
		c.logger.Debug("Form cache entry corrupt", zap.Error(err))
		return nil, false
	}
	if c.metrics != nil {
		c.metrics.RecordCacheHit("public_form")
	}
	return &form, true
}

// Set stores the public form with the configured TTL
func (c *FormCache) Set(ctx context.Context, formID uuid.UUID, form *dto.FormResponse) {
	raw, err := json.Marshal(form)
	if err != nil {
		c.logger.Debug("Form cache marshal failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.key(formID), raw, c.ttl).Err(); err != nil {
		c.logger.Debug("Form cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached entry after a form changes
func (c *FormCache) Invalidate(ctx context.Context, formID uuid.UUID) {
	if err := c.client.Del(ctx, c.key(formID)).Err(); err != nil {
		c.logger.Debug("Form cache invalidation failed", zap.Error(err))
	}
}
