package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EnsureLedgerSchemaMSSQL creates the ledger tables in SQL Server when they do not exist.
func EnsureLedgerSchemaMSSQL(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	createIfMissing := func(table, ddl string) error {
		q := fmt.Sprintf(`IF OBJECT_ID(N'%s', N'U') IS NULL BEGIN %s END`, table, ddl)
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure table %s: %w", table, err)
		}
		return nil
	}
	if err := createIfMissing("dbo.users", `CREATE TABLE dbo.[users] (
        id NVARCHAR(64) NOT NULL PRIMARY KEY,
        email NVARCHAR(255) NOT NULL,
        credits DECIMAL(12,2) NOT NULL DEFAULT 0 CHECK (credits >= 0),
        created_at DATETIME2 NOT NULL DEFAULT SYSDATETIME(),
        updated_at DATETIME2 NOT NULL DEFAULT SYSDATETIME()
    )`); err != nil {
		return err
	}
	if err := createIfMissing("dbo.payments", `CREATE TABLE dbo.[payments] (
        id BIGINT IDENTITY(1,1) PRIMARY KEY,
        user_id NVARCHAR(64) NOT NULL REFERENCES dbo.[users](id),
        email NVARCHAR(255) NOT NULL,
        amount DECIMAL(12,2) NOT NULL,
        credits_purchased DECIMAL(12,2) NOT NULL,
        package_type NVARCHAR(32) NOT NULL,
        paystack_ref NVARCHAR(128) NOT NULL UNIQUE,
        status NVARCHAR(16) NOT NULL DEFAULT 'pending',
        channel NVARCHAR(32) NULL,
        country_code NVARCHAR(8) NULL,
        created_at DATETIME2 NOT NULL DEFAULT SYSDATETIME(),
        updated_at DATETIME2 NOT NULL DEFAULT SYSDATETIME()
    )`); err != nil {
		return err
	}
	return createIfMissing("dbo.ledger_entries", `CREATE TABLE dbo.[ledger_entries] (
        id BIGINT IDENTITY(1,1) PRIMARY KEY,
        user_id NVARCHAR(64) NOT NULL,
        kind NVARCHAR(16) NOT NULL,
        amount DECIMAL(12,2) NOT NULL,
        balance_after DECIMAL(12,2) NOT NULL,
        reference NVARCHAR(128) NOT NULL,
        created_at DATETIME2 NOT NULL DEFAULT SYSDATETIME()
    )`)
}
