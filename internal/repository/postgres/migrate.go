package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"duedesk-backend/internal/logger"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		number TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		amount_to_pay DOUBLE PRECISION NOT NULL DEFAULT 0,
		amount_paid DOUBLE PRECISION NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'Active',
		cycle INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS transaction_history (
		id BIGSERIAL PRIMARY KEY,
		customer_id BIGINT NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
		customer_name TEXT NOT NULL,
		customer_email TEXT NOT NULL,
		cycle INTEGER NOT NULL,
		transaction_type TEXT NOT NULL,
		amount DOUBLE PRECISION NOT NULL,
		previous_amount_paid DOUBLE PRECISION NOT NULL DEFAULT 0,
		new_amount_paid DOUBLE PRECISION NOT NULL DEFAULT 0,
		payment_mode TEXT NOT NULL DEFAULT 'cash',
		transaction_id TEXT,
		payment_status TEXT NOT NULL DEFAULT 'completed',
		description TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS payment_cycles (
		id BIGSERIAL PRIMARY KEY,
		customer_id BIGINT NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
		customer_name TEXT NOT NULL,
		customer_email TEXT NOT NULL,
		cycle_number INTEGER NOT NULL,
		amount_to_pay DOUBLE PRECISION NOT NULL,
		amount_paid DOUBLE PRECISION NOT NULL,
		status TEXT NOT NULL,
		started_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		completed_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS admin_users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		full_name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'admin',
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_login TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS email_logs (
		id BIGSERIAL PRIMARY KEY,
		customer_id BIGINT REFERENCES customers(id) ON DELETE SET NULL,
		email TEXT,
		subject TEXT,
		body TEXT,
		status TEXT,
		error TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transaction_history_customer ON transaction_history (customer_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_payment_cycles_customer ON payment_cycles (customer_id, cycle_number DESC)`,
}

// Migrate bootstraps the schema and runs the one-time cycle backfill.
// Legacy rows imported with a NULL or zero cycle are normalized to cycle 1
// here, once, so business logic never has to coalesce.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	res, err := db.ExecContext(ctx, `UPDATE customers SET cycle = 1 WHERE cycle IS NULL OR cycle < 1`)
	if err != nil {
		return fmt.Errorf("backfill cycle numbers: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		logger.Info("Backfilled cycle numbers for legacy customers", "rows", n)
	}
	return nil
}
