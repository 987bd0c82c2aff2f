package persistence

import (
	"context"
	"database/sql"
	"errors"

	mssql "github.com/microsoft/go-mssqldb"
	"subtitle-credit/domain/model"
	"subtitle-credit/domain/repository"
	"subtitle-credit/infrastructure/logger"
)

type PaymentRepositoryMSSQL struct{ db *sql.DB }

func NewPaymentRepositoryMSSQL(db *sql.DB) repository.IPayment { return &PaymentRepositoryMSSQL{db} }

func isUniqueViolationMSSQL(err error) bool {
	var e mssql.Error
	return errors.As(err, &e) && (e.Number == 2627 || e.Number == 2601)
}

func (r *PaymentRepositoryMSSQL) Create(ctx context.Context, p *model.Payment) error {
	if p.Status == "" {
		p.Status = model.PaymentPending
	}
	err := r.db.QueryRowContext(ctx, `INSERT INTO dbo.[payments] (user_id, email, amount, credits_purchased, package_type, paystack_ref, status, created_at, updated_at)
	OUTPUT inserted.id, inserted.created_at, inserted.updated_at
	VALUES (@p1, @p2, @p3, @p4, @p5, @p6, @p7, SYSDATETIME(), SYSDATETIME())`,
		p.UserID, p.Email, p.Amount, p.CreditsPurchased, p.PackageType, p.PaystackRef, string(p.Status),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolationMSSQL(err) {
			return repository.ErrDuplicatePayment
		}
		logger.GetLogger().WithFields(map[string]interface{}{
			"error":     err,
			"reference": p.PaystackRef,
		}).Error("mssql: create payment failed")
	}
	return err
}

func (r *PaymentRepositoryMSSQL) GetByReference(ctx context.Context, reference string) (model.Payment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM dbo.[payments] WHERE paystack_ref = @p1`, reference)
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return p, repository.ErrNotFound
	}
	return p, err
}

func (r *PaymentRepositoryMSSQL) ListByUser(ctx context.Context, userID string) ([]model.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+paymentColumns+` FROM dbo.[payments] WHERE user_id = @p1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

func (r *PaymentRepositoryMSSQL) Settle(ctx context.Context, s model.Settlement) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE dbo.[payments] SET status = 'success', channel = @p1, country_code = @p2, updated_at = SYSDATETIME()
	WHERE paystack_ref = @p3 AND status = 'pending'`, s.Channel, s.CountryCode, s.Reference)
	if err != nil {
		return false, err
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return false, err
	}
	if _, err := creditTxMSSQL(ctx, tx, s.UserID, s.Credits, model.LedgerTopUp, s.Reference); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *PaymentRepositoryMSSQL) MarkFailed(ctx context.Context, reference string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE dbo.[payments] SET status = 'failed', updated_at = SYSDATETIME()
	WHERE paystack_ref = @p1 AND status = 'pending'`, reference)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}
