package pkg

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DistributedLimiter combines a local rate.Limiter with a Redis counter per subject for global enforcement.
type DistributedLimiter struct {
	localLimiter *rate.Limiter
	redisClient  *redis.Client
	keyPrefix    string        // e.g: "ratelimit:login"
	window       time.Duration // counter expiry, e.g: 1m
	maxPerWindow int64
	logger       *zap.Logger
}

// NewDistributedLimiter creates a limiter allowing maxPerWindow hits per subject per window across replicas.
// localRate caps this replica regardless of subject; if localRate=0 the local guard is disabled.
// If maxPerWindow=0 the limiter is unlimited.
func NewDistributedLimiter(redisClient *redis.Client, keyPrefix string, localRate, burst int, maxPerWindow int64, window time.Duration, logger *zap.Logger) *DistributedLimiter {
	var local *rate.Limiter
	if localRate > 0 {
		local = rate.NewLimiter(rate.Limit(localRate), burst)
	}
	return &DistributedLimiter{
		localLimiter: local,
		redisClient:  redisClient,
		keyPrefix:    keyPrefix,
		window:       window,
		maxPerWindow: maxPerWindow,
		logger:       logger,
	}
}

// Allow checks if subject (e.g. a client IP) may proceed. Redis failures fall back to the local limiter.
func (d *DistributedLimiter) Allow(ctx context.Context, subject string) bool {
	if d.maxPerWindow <= 0 {
		return true // Unlimited
	}

	// Local check first (fast path)
	if d.localLimiter != nil && !d.localLimiter.Allow() {
		return false
	}

	key := d.keyPrefix + ":" + subject
	pipe := d.redisClient.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, d.window)
	_, err := pipe.Exec(ctx)
	if err != nil {
		d.logger.Error("redis_rate_limit_error_falling_back_to_local", zap.Error(err))
		return true
	}

	count := incr.Val()
	if count > d.maxPerWindow {
		d.logger.Warn("rate_limit_exceeded", zap.String("key", key), zap.Int64("count", count))
		return false
	}
	return true
}
