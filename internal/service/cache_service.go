package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/oneday-labs/intake-api/pkg/errors"
)

// cacheStore is the slice of the cache repository the service depends on.
type cacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// CacheService wraps the cache repository with metrics and logging so
// callers never have to care whether Redis is reachable.
type CacheService struct {
	store   cacheStore
	metrics *MetricsService
	logger  *zap.Logger
}

// NewCacheService constructs the cache service.
func NewCacheService(store cacheStore, metrics *MetricsService, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{store: store, metrics: metrics, logger: logger}
}

// Get looks up a key, recording hit/miss metrics. Returns false on miss.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if s.store == nil {
		return false, nil
	}

	start := time.Now()
	err := s.store.Get(ctx, key, dest)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			s.metrics.RecordCacheOperation(false, elapsed)
			return false, nil
		}
		s.metrics.RecordCacheOperation(false, elapsed)
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false, err
	}

	s.metrics.RecordCacheOperation(true, elapsed)
	return true, nil
}

// Set stores a value with a TTL. Failures are logged, not fatal.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.store == nil {
		return
	}

	start := time.Now()
	if err := s.store.Set(ctx, key, value, ttl); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		return
	}
	s.metrics.ObserveCacheWrite(time.Since(start))
}

// Claim atomically marks a key as taken. Returns false when another
// request already holds it.
func (s *CacheService) Claim(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	if s.store == nil {
		return true, nil
	}
	return s.store.SetNX(ctx, key, value, ttl)
}

// Invalidate drops a key, logging failures.
func (s *CacheService) Invalidate(ctx context.Context, key string) {
	if s.store == nil {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("key", key), zap.Error(err))
	}
}
