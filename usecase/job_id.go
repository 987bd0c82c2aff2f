package usecase

import (
	"context"
	"fmt"
	"time"

	"subtitle-credit/domain/repository"
)

const jobIDLayout = "20060102150405"

// JobIDGenerator issues ids of the form JOB-<UTC timestamp>-<sequence>.
// The sequence restarts every UTC day, so ids sort by creation time.
type JobIDGenerator struct {
	seq repository.IJobSequence
	now func() time.Time
}

func NewJobIDGenerator(seq repository.IJobSequence) *JobIDGenerator {
	return &JobIDGenerator{seq: seq, now: time.Now}
}

func (g *JobIDGenerator) WithClock(now func() time.Time) *JobIDGenerator {
	g.now = now
	return g
}

func (g *JobIDGenerator) Next(ctx context.Context) (string, error) {
	now := g.now().UTC()
	n, err := g.seq.Next(ctx, now.Format("20060102"))
	if err != nil {
		return "", fmt.Errorf("job sequence: %w", err)
	}
	return fmt.Sprintf("JOB-%s-%06d", now.Format(jobIDLayout), n), nil
}
