package repository

import (
	"context"

	"subtitle-credit/domain/model"
)

type IVideoInfo interface {
	GetVideoInfo(ctx context.Context, videoURL string) (model.VideoInfo, error)
}

type ISubtitleDispatcher interface {
	Dispatch(ctx context.Context, req model.DispatchRequest) (model.DispatchResult, error)
}

type PaymentInit struct {
	Email       string
	AmountKobo  int64
	Currency    string
	CallbackURL string
	Credits     int
	PackageType string
}

type PaymentAuthorization struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type IPaymentGateway interface {
	Initialize(ctx context.Context, req PaymentInit) (PaymentAuthorization, error)
}

// IEventPublisher fans domain events out to the message bus.
type IEventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

type IRateLimiter interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining int64, err error)
}
