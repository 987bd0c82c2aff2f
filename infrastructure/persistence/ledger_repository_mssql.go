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

// LedgerRepositoryMSSQL is the SQL Server ICreditLedger. OUTPUT inserted.credits
// plays the role of RETURNING.
type LedgerRepositoryMSSQL struct{ db *sql.DB }

func NewLedgerRepositoryMSSQL(db *sql.DB) repository.ICreditLedger { return &LedgerRepositoryMSSQL{db} }

func (r *LedgerRepositoryMSSQL) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var credits decimal.Decimal
	err := r.db.QueryRowContext(ctx, `SELECT credits FROM dbo.[users] WHERE id = @p1`, userID).Scan(&credits)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, repository.ErrNotFound
	}
	return credits, err
}

func (r *LedgerRepositoryMSSQL) Debit(ctx context.Context, userID string, amount decimal.Decimal, reference string) (decimal.Decimal, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, err
	}
	defer func() { _ = tx.Rollback() }()

	var balance decimal.Decimal
	err = tx.QueryRowContext(ctx, `UPDATE dbo.[users] SET credits = credits - @p1, updated_at = SYSDATETIME()
	OUTPUT inserted.credits
	WHERE id = @p2 AND credits >= @p1`, amount, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM dbo.[users] WHERE id = @p1`, userID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return decimal.Zero, repository.ErrNotFound
			}
			return decimal.Zero, err
		}
		return decimal.Zero, repository.ErrInsufficientCredits
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("user_id", userID).Error("mssql: debit credits failed")
		return decimal.Zero, err
	}
	if err := insertLedgerEntryMSSQL(ctx, tx, userID, model.LedgerDebit, amount, balance, reference); err != nil {
		return decimal.Zero, err
	}
	return balance, tx.Commit()
}

func (r *LedgerRepositoryMSSQL) Credit(ctx context.Context, userID string, amount decimal.Decimal, kind model.LedgerEntryKind, reference string) (decimal.Decimal, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, err
	}
	defer func() { _ = tx.Rollback() }()

	balance, err := creditTxMSSQL(ctx, tx, userID, amount, kind, reference)
	if err != nil {
		return decimal.Zero, err
	}
	return balance, tx.Commit()
}

func creditTxMSSQL(ctx context.Context, tx *sql.Tx, userID string, amount decimal.Decimal, kind model.LedgerEntryKind, reference string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := tx.QueryRowContext(ctx, `UPDATE dbo.[users] SET credits = credits + @p1, updated_at = SYSDATETIME()
	OUTPUT inserted.credits
	WHERE id = @p2`, amount, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, repository.ErrNotFound
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("user_id", userID).Error("mssql: credit credits failed")
		return decimal.Zero, err
	}
	if err := insertLedgerEntryMSSQL(ctx, tx, userID, kind, amount, balance, reference); err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

func insertLedgerEntryMSSQL(ctx context.Context, tx *sql.Tx, userID string, kind model.LedgerEntryKind, amount, balanceAfter decimal.Decimal, reference string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO dbo.[ledger_entries] (user_id, kind, amount, balance_after, reference, created_at)
	VALUES (@p1, @p2, @p3, @p4, @p5, SYSDATETIME())`, userID, string(kind), amount, balanceAfter, reference)
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("reference", reference).Error("mssql: write ledger entry failed")
	}
	return err
}
