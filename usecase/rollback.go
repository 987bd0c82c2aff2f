package usecase

import "context"

type compensation struct {
	step string
	fn   func(ctx context.Context) error
}

// CompensationError reports a compensation step that did not complete.
type CompensationError struct {
	Step string
	Err  error
}

// rollback records compensating actions before a risky call and undoes them newest first.
type rollback struct {
	steps []compensation
}

func (r *rollback) Record(step string, fn func(ctx context.Context) error) {
	r.steps = append(r.steps, compensation{step: step, fn: fn})
}

// Compensate runs every step even if an earlier one fails.
func (r *rollback) Compensate(ctx context.Context) []CompensationError {
	var failed []CompensationError
	for i := len(r.steps) - 1; i >= 0; i-- {
		if err := r.steps[i].fn(ctx); err != nil {
			failed = append(failed, CompensationError{Step: r.steps[i].step, Err: err})
		}
	}
	return failed
}
