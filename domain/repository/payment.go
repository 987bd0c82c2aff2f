package repository

import (
	"context"

	"subtitle-credit/domain/model"
)

type IPayment interface {
	Create(ctx context.Context, payment *model.Payment) error
	GetByReference(ctx context.Context, reference string) (model.Payment, error)
	ListByUser(ctx context.Context, userID string) ([]model.Payment, error)
	// Settle flips a pending payment to success and credits the ledger in one transaction.
	// It reports false when the payment was no longer pending.
	Settle(ctx context.Context, s model.Settlement) (bool, error)
	// MarkFailed flips a pending payment to failed; false when it was already terminal.
	MarkFailed(ctx context.Context, reference string) (bool, error)
}

type IWebhookEvent interface {
	// Record stores the event once and reports whether an earlier delivery was fully processed.
	Record(ctx context.Context, evt *model.WebhookEvent) (alreadyProcessed bool, err error)
	MarkProcessed(ctx context.Context, evt *model.WebhookEvent) error
}
