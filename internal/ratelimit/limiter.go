// Package ratelimit caps how often one client may submit registrations.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type Limiter interface {
	// Allow records one hit for key and reports whether it is within the limit.
	Allow(ctx context.Context, key string) (bool, error)
}

type Config struct {
	Limit  int
	Window time.Duration
}

// RedisLimiter is a fixed-window counter shared by every instance.
type RedisLimiter struct {
	client redis.Cmdable
	cfg    Config
	prefix string
	now    func() time.Time
}

func NewRedisLimiter(client redis.Cmdable, cfg Config) *RedisLimiter {
	return &RedisLimiter{client: client, cfg: cfg, prefix: "ratelimit:register:", now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := l.prefix + key + ":" + windowIndex(l.now(), l.cfg.Window)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, l.cfg.Window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit counter: %w", err)
	}
	return incr.Val() <= int64(l.cfg.Limit), nil
}

func windowIndex(t time.Time, window time.Duration) string {
	return strconv.FormatInt(t.UnixNano()/int64(window), 10)
}

// MemoryLimiter keeps counters in process; used when Redis is not configured.
type MemoryLimiter struct {
	cfg Config
	now func() time.Time

	mu        sync.Mutex
	visitors  map[string]int
	lastReset time.Time
}

func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	return &MemoryLimiter{
		cfg:       cfg,
		now:       time.Now,
		visitors:  make(map[string]int),
		lastReset: time.Now(),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now := l.now(); now.Sub(l.lastReset) >= l.cfg.Window {
		l.visitors = make(map[string]int)
		l.lastReset = now
	}
	if l.visitors[key] >= l.cfg.Limit {
		return false, nil
	}
	l.visitors[key]++
	return true, nil
}
