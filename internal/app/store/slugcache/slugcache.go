// Package slugcache caches published invitations in Redis, keyed by slug.
//
// Published invitations never change, so entries are written once and only
// expire by TTL. Every Redis failure is logged and treated as a miss; the
// cache is never on the error path of a request.
package slugcache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dalemusser/gatherly/internal/app/system/metrics"
	"github.com/dalemusser/gatherly/internal/domain/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultTTL is used when New is given a non-positive ttl.
const DefaultTTL = time.Hour

// Cache implements lifecycle.PublishedCache over Redis.
type Cache struct {
	r       redis.Cmdable
	ttl     time.Duration
	prefix  string
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New creates a Cache. m may be nil.
func New(r redis.Cmdable, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{r: r, ttl: ttl, prefix: "gatherly:published:", logger: logger, metrics: m}
}

func (c *Cache) key(slug string) string { return c.prefix + slug }

// Get returns the cached invitation for slug.
func (c *Cache) Get(ctx context.Context, slug string) (*models.Invitation, bool) {
	b, err := c.r.Get(ctx, c.key(slug)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("published cache read failed", zap.String("slug", slug), zap.Error(err))
		}
		c.metrics.ObserveCache(false)
		return nil, false
	}

	var inv models.Invitation
	if err := json.Unmarshal(b, &inv); err != nil || !inv.IsPublished() || inv.SlugValue() != slug {
		c.logger.Warn("published cache entry unusable", zap.String("slug", slug), zap.Error(err))
		c.metrics.ObserveCache(false)
		return nil, false
	}
	c.metrics.ObserveCache(true)
	return &inv, true
}

// Put stores a published invitation. Drafts and records without a slug are ignored.
func (c *Cache) Put(ctx context.Context, inv *models.Invitation) {
	if inv == nil || !inv.IsPublished() || inv.SlugValue() == "" {
		return
	}
	b, err := json.Marshal(inv)
	if err != nil {
		c.logger.Warn("published cache encode failed", zap.String("invitation_id", inv.ID), zap.Error(err))
		return
	}
	if err := c.r.Set(ctx, c.key(inv.SlugValue()), b, c.ttl).Err(); err != nil {
		c.logger.Warn("published cache write failed", zap.String("slug", inv.SlugValue()), zap.Error(err))
	}
}
