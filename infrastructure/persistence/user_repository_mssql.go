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

// UserRepositoryMSSQL is a SQL Server implementation of IUser using database/sql.
type UserRepositoryMSSQL struct{ db *sql.DB }

func NewUserRepositoryMSSQL(db *sql.DB) repository.IUser { return &UserRepositoryMSSQL{db} }

func (r *UserRepositoryMSSQL) GetByID(ctx context.Context, id string) (model.User, error) {
	var u model.User
	row := r.db.QueryRowContext(ctx, `SELECT id, email, credits, created_at, updated_at FROM dbo.[users] WHERE id = @p1`, id)
	if err := row.Scan(&u.ID, &u.Email, &u.Credits, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return u, repository.ErrNotFound
		}
		logger.GetLogger().WithField("error", err).Error("mssql: query user by id failed")
		return u, err
	}
	return u, nil
}

func (r *UserRepositoryMSSQL) EnsureUser(ctx context.Context, id, email string, signupCredits decimal.Decimal) (model.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.User{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `INSERT INTO dbo.[users] (id, email, credits, created_at, updated_at)
	SELECT @p1, @p2, @p3, SYSDATETIME(), SYSDATETIME()
	WHERE NOT EXISTS (SELECT 1 FROM dbo.[users] WITH (UPDLOCK, HOLDLOCK) WHERE id = @p1)`, id, email, signupCredits)
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"error":   err,
			"user_id": id,
		}).Error("mssql: create user failed")
		return model.User{}, err
	}
	if n, _ := res.RowsAffected(); n == 1 && signupCredits.IsPositive() {
		if err := insertLedgerEntryMSSQL(ctx, tx, id, model.LedgerTopUp, signupCredits, signupCredits, "signup"); err != nil {
			return model.User{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}
