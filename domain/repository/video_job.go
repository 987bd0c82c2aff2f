package repository

import (
	"context"

	"subtitle-credit/domain/model"
)

type IVideoJob interface {
	// Create returns ErrDuplicateJob when the job id is taken.
	Create(ctx context.Context, job *model.VideoJob) error
	GetByJobID(ctx context.Context, jobID string) (model.VideoJob, error)
	ListByUser(ctx context.Context, userID string, status model.JobStatus) ([]model.VideoJob, error)
	// Transition moves a job from one status to another and reports whether it matched.
	Transition(ctx context.Context, jobID string, from, to model.JobStatus, reason string) (bool, error)
	// Release deletes a job that is still waiting, freeing its id.
	Release(ctx context.Context, jobID string) error
}

type IJobSequence interface {
	Next(ctx context.Context, day string) (int64, error)
}
