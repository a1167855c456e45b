package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis options.
// - Addr: "redis:6379" or "prod-redis.example.com:6379"
// - Username/Password for ACL-auth setups
// - DB: logical DB index (0 by default)
// - UseTLS: true for managed Redis providers
type Config struct {
	Addr            string
	Username        string
	Password        string
	DB              int
	UseTLS          bool
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	PoolSize        int
	MinIdleConns    int
	MaxRetries      int
	MaxRetryBackoff time.Duration
	MinRetryBackoff time.Duration
}

// New returns a configured redis.Client and verifies connectivity with PING.
// Call the returned closer during shutdown.
func New(ctx context.Context, cfg Config) (*redis.Client, func(), error) {
	opts := &redis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  defaultDuration(cfg.DialTimeout, 3*time.Second),
		ReadTimeout:  defaultDuration(cfg.ReadTimeout, 2*time.Second),
		WriteTimeout: defaultDuration(cfg.WriteTimeout, 2*time.Second),
		PoolSize:     defaultInt(cfg.PoolSize, 10),
		MinIdleConns: defaultInt(cfg.MinIdleConns, 2),
		MaxRetries:   defaultInt(cfg.MaxRetries, 3),
	}

	opts.MinRetryBackoff = defaultDuration(cfg.MinRetryBackoff, 50*time.Millisecond)
	opts.MaxRetryBackoff = defaultDuration(cfg.MaxRetryBackoff, 500*time.Millisecond)

	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewClient(opts)

	// Health check
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	closer := func() {
		_ = client.Close()
	}

	return client, closer, nil
}

// IdempotencyStore reserves request keys so a replayed request can be rejected before it has side effects.
type IdempotencyStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, prefix string, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *IdempotencyStore) Key(scope, key string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, scope, key)
}

// Reserve returns true the first time key is seen within the TTL, false on replays.
func (s *IdempotencyStore) Reserve(ctx context.Context, scope, key string) (bool, error) {
	return s.rdb.SetNX(ctx, s.Key(scope, key), "1", s.ttl).Result()
}

// Release drops a reservation so the caller may retry after a failure that had no side effects.
func (s *IdempotencyStore) Release(ctx context.Context, scope, key string) error {
	return s.rdb.Del(ctx, s.Key(scope, key)).Err()
}

func defaultDuration(v, d time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return d
}

func defaultInt(v, d int) int {
	if v > 0 {
		return v
	}
	return d
}
