package usecase

import (
	"context"
	"errors"

	"subtitle-credit/domain/repository"
	"subtitle-credit/infrastructure/logger"
)

// publish is best effort: state has already been committed when events go out.
func publish(ctx context.Context, pub repository.IEventPublisher, eventType string, payload interface{}) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, eventType, payload); err != nil {
		logger.FromContext(ctx).WithField("error", err).WithField("event", eventType).Warn("Failed to publish event")
	}
}

type fanout []repository.IEventPublisher

// NewFanout publishes every event to each non-nil publisher.
func NewFanout(pubs ...repository.IEventPublisher) repository.IEventPublisher {
	var f fanout
	for _, p := range pubs {
		if p != nil {
			f = append(f, p)
		}
	}
	return f
}

func (f fanout) Publish(ctx context.Context, eventType string, payload interface{}) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, eventType, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
