package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"subtitle-credit/domain/repository"
)

// RateLimiter is a fixed-window counter keyed by caller and window start.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter falls back to a per-process limiter when Redis is not configured.
func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) repository.IRateLimiter {
	if client == nil {
		return NewLocalRateLimiter(limit, window)
	}
	return &RateLimiter{client: client, limit: limit, window: window, now: time.Now}
}

func (l *RateLimiter) windowKey(key string) string {
	start := l.now().UTC().Truncate(l.window).Unix()
	return "ratelimit:" + key + ":" + strconv.FormatInt(start, 10)
}

func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, int64, error) {
	k := l.windowKey(key)
	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, l.limit, err
	}
	count := incr.Val()
	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= l.limit, remaining, nil
}

// LocalRateLimiter counts in memory. Each replica enforces its own limit.
type LocalRateLimiter struct {
	mu     sync.Mutex
	limit  int64
	window time.Duration
	now    func() time.Time
	counts map[string]int64
	start  time.Time
}

func NewLocalRateLimiter(limit int64, window time.Duration) *LocalRateLimiter {
	return &LocalRateLimiter{limit: limit, window: window, now: time.Now, counts: map[string]int64{}}
}

func (l *LocalRateLimiter) Allow(_ context.Context, key string) (bool, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := l.now().UTC().Truncate(l.window)
	if !start.Equal(l.start) {
		l.start = start
		l.counts = map[string]int64{}
	}
	l.counts[key]++
	remaining := l.limit - l.counts[key]
	if remaining < 0 {
		remaining = 0
	}
	return l.counts[key] <= l.limit, remaining, nil
}
