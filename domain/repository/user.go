package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"subtitle-credit/domain/model"
)

type IUser interface {
	GetByID(ctx context.Context, id string) (model.User, error)
	// EnsureUser creates the user with signupCredits on first sight and returns the stored row.
	EnsureUser(ctx context.Context, id, email string, signupCredits decimal.Decimal) (model.User, error)
}

// ICreditLedger owns the spendable balance. Debit and Credit are single
// conditional statements against the stored balance.
type ICreditLedger interface {
	Balance(ctx context.Context, userID string) (decimal.Decimal, error)
	// Debit returns ErrInsufficientCredits when the balance is below amount and ErrNotFound for unknown users.
	Debit(ctx context.Context, userID string, amount decimal.Decimal, reference string) (decimal.Decimal, error)
	Credit(ctx context.Context, userID string, amount decimal.Decimal, kind model.LedgerEntryKind, reference string) (decimal.Decimal, error)
}
