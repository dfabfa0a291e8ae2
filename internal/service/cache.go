package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/godilite/eduinsight-server/pkg/cache"
)

const (
	generationKey     = "analytics:generation"
	defaultSetTimeout = 5 * time.Second
)

// Cacher is the subset of pkg/cache used by CachedAnalytics.
type Cacher interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Generation(ctx context.Context, key string) (int64, error)
	Bump(ctx context.Context, key string) (int64, error)
}

type fetchFunc[T any] func(ctx context.Context) (T, error)

// CachedAnalytics serves analytics from a shared cache. Entries are keyed by
// a generation counter that every committed write bumps, so a read never
// returns totals older than the last write it could observe.
//
// When a bump fails the cache is marked stale and reads go straight to the
// store until a later bump succeeds.
type CachedAnalytics struct {
	next   AnalyticsReader
	cache  Cacher
	ttl    time.Duration
	sf     singleflight.Group
	stale  atomic.Bool
	logger *zap.Logger
}

// NewCachedAnalytics wraps next with a generation-keyed read-through cache.
func NewCachedAnalytics(next AnalyticsReader, c Cacher, ttl time.Duration, logger *zap.Logger) *CachedAnalytics {
	if next == nil || c == nil {
		panic("analytics and cache must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedAnalytics{
		next:   next,
		cache:  c,
		ttl:    ttl,
		logger: logger.Named("analytics_cache"),
	}
}

// addTTLJitter spreads expiry by up to ±15s.
func addTTLJitter(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	jittered := ttl + time.Duration(rand.Intn(30)-15)*time.Second
	if jittered <= 0 {
		return ttl
	}
	return jittered
}

// Invalidate moves readers to a fresh generation. Old entries expire on
// their own.
func (c *CachedAnalytics) Invalidate(ctx context.Context) error {
	gen, err := c.cache.Bump(ctx, generationKey)
	if err != nil {
		c.stale.Store(true)
		return fmt.Errorf("bump generation: %w", err)
	}
	c.stale.Store(false)
	c.logger.Debug("analytics generation bumped", zap.Int64("generation", gen))
	return nil
}

// Stale reports whether a write went unrecorded in the cache.
func (c *CachedAnalytics) Stale() bool {
	return c.stale.Load()
}

// settle retries the missed bump. It reports whether the cache may be read.
func (c *CachedAnalytics) settle(ctx context.Context) bool {
	if !c.stale.Load() {
		return true
	}
	if err := c.Invalidate(ctx); err != nil {
		c.logger.Debug("cache still stale", zap.Error(err))
		return false
	}
	c.logger.Info("cache generation recovered")
	return true
}

func findAndCache[T any](ctx context.Context, c *CachedAnalytics, name string, fn fetchFunc[T]) (T, error) {
	var zero T

	if !c.settle(ctx) {
		return fn(ctx)
	}

	gen, err := c.cache.Generation(ctx, generationKey)
	if err != nil {
		c.logger.Warn("generation lookup failed, bypassing cache", zap.String("view", name), zap.Error(err))
		return fn(ctx)
	}
	key := fmt.Sprintf("analytics:%s:g%d", name, gen)

	var cached T
	err = c.cache.Get(ctx, key, &cached)
	switch {
	case err == nil:
		c.logger.Debug("cache hit", zap.String("key", key))
		return cached, nil
	case errors.Is(err, cache.ErrMiss):
		c.logger.Debug("cache miss", zap.String("key", key))
	default:
		c.logger.Warn("cache get error (treating as miss)", zap.String("key", key), zap.Error(err))
	}

	v, err, shared := c.sf.Do(key, func() (any, error) {
		value, err := fn(ctx)
		if err != nil {
			return nil, err
		}

		go func(v T) {
			setCtx, cancel := context.WithTimeout(context.Background(), defaultSetTimeout)
			defer cancel()

			ttl := addTTLJitter(c.ttl)
			if err := c.cache.Set(setCtx, key, v, ttl); err != nil {
				c.logger.Warn("failed to set cache on miss", zap.String("key", key), zap.Error(err))
			}
		}(value)

		return value, nil
	})
	if err != nil {
		return zero, err
	}

	value, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("type mismatch for key %q", key)
	}
	if shared {
		c.logger.Debug("singleflight shared result", zap.String("key", key))
	}
	return value, nil
}

func (c *CachedAnalytics) GetCourseAnalytics(ctx context.Context) ([]CourseSummary, error) {
	return findAndCache(ctx, c, "course", c.next.GetCourseAnalytics)
}

func (c *CachedAnalytics) GetInstructorAnalytics(ctx context.Context) ([]InstructorSummary, error) {
	return findAndCache(ctx, c, "instructor", c.next.GetInstructorAnalytics)
}

func (c *CachedAnalytics) GetComparisonAnalytics(ctx context.Context) ([]ComparisonRow, error) {
	return findAndCache(ctx, c, "compare", c.next.GetComparisonAnalytics)
}

func (c *CachedAnalytics) GetDepartmentAnalytics(ctx context.Context) ([]DepartmentSummary, error) {
	return findAndCache(ctx, c, "department", c.next.GetDepartmentAnalytics)
}

func (c *CachedAnalytics) GetTrendAnalytics(ctx context.Context) ([]SemesterTrendPoint, error) {
	return findAndCache(ctx, c, "trend", c.next.GetTrendAnalytics)
}

func (c *CachedAnalytics) GetForecastSummary(ctx context.Context) (*ForecastSummary, error) {
	return findAndCache(ctx, c, "forecast", c.next.GetForecastSummary)
}

func (c *CachedAnalytics) GetDashboard(ctx context.Context) (Dashboard, error) {
	return findAndCache(ctx, c, "dashboard", c.next.GetDashboard)
}
