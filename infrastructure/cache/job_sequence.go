package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"subtitle-credit/domain/repository"
	"subtitle-credit/infrastructure/logger"
)

const sequenceTTL = 48 * time.Hour

// JobSequence hands out per-day counters from Redis so ids stay unique across
// instances. A Redis failure is returned, never papered over with a local count.
type JobSequence struct {
	client *redis.Client
}

// NewJobSequence falls back to LocalSequence only when no client is configured,
// which is safe for a single instance only.
func NewJobSequence(client *redis.Client) repository.IJobSequence {
	if client == nil {
		return NewLocalSequence()
	}
	return &JobSequence{client: client}
}

func (s *JobSequence) Next(ctx context.Context, day string) (int64, error) {
	key := "job_seq:" + day
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		logger.FromContext(ctx).WithField("error", err).Error("Redis job sequence unavailable")
		return 0, fmt.Errorf("incr %s: %w", key, err)
	}
	if n == 1 {
		if err := s.client.Expire(ctx, key, sequenceTTL).Err(); err != nil {
			logger.FromContext(ctx).WithField("error", err).Warn("Failed to set job sequence expiry")
		}
	}
	return n, nil
}

// LocalSequence is an in-process per-day counter.
type LocalSequence struct {
	mu      sync.Mutex
	day     string
	counter int64
}

func NewLocalSequence() *LocalSequence {
	return &LocalSequence{}
}

func (s *LocalSequence) Next(_ context.Context, day string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.day != day {
		s.day = day
		s.counter = 0
	}
	s.counter++
	return s.counter, nil
}
