package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"subtitle-credit/domain/model"
	"subtitle-credit/domain/repository"
	"subtitle-credit/infrastructure/logger"
)

const paymentColumns = `id, user_id, email, amount, credits_purchased, package_type, paystack_ref, status, channel, country_code, created_at, updated_at`

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) repository.IPayment {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *model.Payment) error {
	if p.Status == "" {
		p.Status = model.PaymentPending
	}
	err := r.db.QueryRowContext(ctx, `INSERT INTO payments (user_id, email, amount, credits_purchased, package_type, paystack_ref, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	RETURNING id, created_at, updated_at`,
		p.UserID, p.Email, p.Amount, p.CreditsPurchased, p.PackageType, p.PaystackRef, string(p.Status),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return repository.ErrDuplicatePayment
		}
		logger.GetLogger().WithField("error", err).WithField("reference", p.PaystackRef).Error("Error while creating payment")
	}
	return err
}

func (r *PaymentRepository) GetByReference(ctx context.Context, reference string) (model.Payment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE paystack_ref = $1`, reference)
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return p, repository.ErrNotFound
	}
	return p, err
}

func (r *PaymentRepository) ListByUser(ctx context.Context, userID string) ([]model.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

func (r *PaymentRepository) Settle(ctx context.Context, s model.Settlement) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE payments SET status = 'success', channel = $1, country_code = $2, updated_at = NOW()
	WHERE paystack_ref = $3 AND status = 'pending'`, s.Channel, s.CountryCode, s.Reference)
	if err != nil {
		return false, err
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return false, err
	}
	if _, err := creditTx(ctx, tx, s.UserID, s.Credits, model.LedgerTopUp, s.Reference); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *PaymentRepository) MarkFailed(ctx context.Context, reference string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE payments SET status = 'failed', updated_at = NOW()
	WHERE paystack_ref = $1 AND status = 'pending'`, reference)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPayment(row rowScanner) (model.Payment, error) {
	var (
		p                    model.Payment
		status               string
		channel, countryCode sql.NullString
	)
	err := row.Scan(&p.ID, &p.UserID, &p.Email, &p.Amount, &p.CreditsPurchased, &p.PackageType,
		&p.PaystackRef, &status, &channel, &countryCode, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Payment{}, err
	}
	p.Status = model.PaymentStatus(status)
	p.Channel = channel.String
	p.CountryCode = countryCode.String
	return p, nil
}

func scanPayments(rows *sql.Rows) ([]model.Payment, error) {
	var list []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
