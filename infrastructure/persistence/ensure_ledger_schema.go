package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"subtitle-credit/infrastructure/logger"
)

var ledgerDDL = []struct {
	name string
	ddl  string
}{
	{"users", `CREATE TABLE IF NOT EXISTS users (
        id TEXT PRIMARY KEY,
        email TEXT NOT NULL,
        credits NUMERIC(12,2) NOT NULL DEFAULT 0 CHECK (credits >= 0),
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`},
	{"payments", `CREATE TABLE IF NOT EXISTS payments (
        id BIGSERIAL PRIMARY KEY,
        user_id TEXT NOT NULL REFERENCES users(id),
        email TEXT NOT NULL,
        amount NUMERIC(12,2) NOT NULL,
        credits_purchased NUMERIC(12,2) NOT NULL,
        package_type TEXT NOT NULL,
        paystack_ref TEXT NOT NULL UNIQUE,
        status TEXT NOT NULL DEFAULT 'pending',
        channel TEXT,
        country_code TEXT,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`},
	{"ledger_entries", `CREATE TABLE IF NOT EXISTS ledger_entries (
        id BIGSERIAL PRIMARY KEY,
        user_id TEXT NOT NULL,
        kind TEXT NOT NULL,
        amount NUMERIC(12,2) NOT NULL,
        balance_after NUMERIC(12,2) NOT NULL,
        reference TEXT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`},
}

// EnsureLedgerSchema creates the ledger tables if they are missing. Safe to call at startup.
func EnsureLedgerSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, t := range ledgerDDL {
		if _, err := db.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("create %s table: %w", t.name, err)
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_payments_user_created ON payments (user_id, created_at DESC)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_payments_user_created")
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_ledger_entries_user ON ledger_entries (user_id, created_at DESC)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_ledger_entries_user")
	}
	return nil
}
