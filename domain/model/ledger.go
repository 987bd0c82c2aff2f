package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type LedgerEntryKind string

const (
	LedgerDebit  LedgerEntryKind = "debit"
	LedgerRefund LedgerEntryKind = "refund"
	LedgerTopUp  LedgerEntryKind = "topup"
)

// LedgerEntry is the audit row written alongside every balance mutation.
type LedgerEntry struct {
	ID           int64           `json:"id"`
	UserID       string          `json:"userId"`
	Kind         LedgerEntryKind `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
	Reference    string          `json:"reference"`
	CreatedAt    time.Time       `json:"createdAt"`
}
