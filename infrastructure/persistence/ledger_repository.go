package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"
	"subtitle-credit/domain/model"
	"subtitle-credit/domain/repository"
	"subtitle-credit/infrastructure/logger"
)

// LedgerRepository keeps balances in users.credits. Every mutation is a single
// conditional UPDATE plus an audit row in ledger_entries, committed together.
type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) repository.ICreditLedger {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var credits decimal.Decimal
	err := r.db.QueryRowContext(ctx, `SELECT credits FROM users WHERE id = $1`, userID).Scan(&credits)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, repository.ErrNotFound
	}
	return credits, err
}

func (r *LedgerRepository) Debit(ctx context.Context, userID string, amount decimal.Decimal, reference string) (decimal.Decimal, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, err
	}
	defer func() { _ = tx.Rollback() }()

	var balance decimal.Decimal
	err = tx.QueryRowContext(ctx, `UPDATE users SET credits = credits - $1, updated_at = NOW()
	WHERE id = $2 AND credits >= $1
	RETURNING credits`, amount, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, r.missingOrShort(ctx, tx, userID)
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("user_id", userID).Error("Error while debiting credits")
		return decimal.Zero, err
	}
	if err := insertLedgerEntry(ctx, tx, userID, model.LedgerDebit, amount, balance, reference); err != nil {
		return decimal.Zero, err
	}
	return balance, tx.Commit()
}

func (r *LedgerRepository) missingOrShort(ctx context.Context, tx *sql.Tx, userID string) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = $1`, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	if err != nil {
		return err
	}
	return repository.ErrInsufficientCredits
}

func (r *LedgerRepository) Credit(ctx context.Context, userID string, amount decimal.Decimal, kind model.LedgerEntryKind, reference string) (decimal.Decimal, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, err
	}
	defer func() { _ = tx.Rollback() }()

	balance, err := creditTx(ctx, tx, userID, amount, kind, reference)
	if err != nil {
		return decimal.Zero, err
	}
	return balance, tx.Commit()
}

func creditTx(ctx context.Context, tx *sql.Tx, userID string, amount decimal.Decimal, kind model.LedgerEntryKind, reference string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := tx.QueryRowContext(ctx, `UPDATE users SET credits = credits + $1, updated_at = NOW()
	WHERE id = $2
	RETURNING credits`, amount, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, repository.ErrNotFound
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("user_id", userID).Error("Error while crediting credits")
		return decimal.Zero, err
	}
	if err := insertLedgerEntry(ctx, tx, userID, kind, amount, balance, reference); err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

func insertLedgerEntry(ctx context.Context, tx *sql.Tx, userID string, kind model.LedgerEntryKind, amount, balanceAfter decimal.Decimal, reference string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO ledger_entries (user_id, kind, amount, balance_after, reference, created_at)
	VALUES ($1, $2, $3, $4, $5, NOW())`, userID, string(kind), amount, balanceAfter, reference)
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("reference", reference).Error("Error while writing ledger entry")
	}
	return err
}
