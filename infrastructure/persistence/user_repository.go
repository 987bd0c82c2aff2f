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

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.IUser {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (model.User, error) {
	var u model.User
	stmt, err := r.db.PrepareContext(ctx, `SELECT u.id, u.email, u.credits, u.created_at, u.updated_at 
	FROM users AS u 
	WHERE u.id = $1`)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while preparing user query")
		return u, err
	}
	defer stmt.Close()

	if err := stmt.QueryRowContext(ctx, id).Scan(&u.ID, &u.Email, &u.Credits, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return u, repository.ErrNotFound
		}
		logger.GetLogger().WithField("error", err).Error("Error while querying user")
		return u, err
	}
	return u, nil
}

// EnsureUser inserts the user with the signup grant once; later calls only read.
func (r *UserRepository) EnsureUser(ctx context.Context, id, email string, signupCredits decimal.Decimal) (model.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.User{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `INSERT INTO users (id, email, credits, created_at, updated_at)
	VALUES ($1, $2, $3, NOW(), NOW())
	ON CONFLICT (id) DO NOTHING`, id, email, signupCredits)
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("user_id", id).Error("Error while creating user")
		return model.User{}, err
	}
	if n, _ := res.RowsAffected(); n == 1 && signupCredits.IsPositive() {
		if err := insertLedgerEntry(ctx, tx, id, model.LedgerTopUp, signupCredits, signupCredits, "signup"); err != nil {
			return model.User{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}
