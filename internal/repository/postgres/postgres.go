package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"duedesk-backend/internal/repository"

	_ "github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so every repository works
// unchanged inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db        *sql.DB
	inTx      bool
	customers repository.CustomerRepository
	ledger    repository.TransactionRepository
	cycles    repository.CycleRepository
	emailLogs repository.EmailLogRepository
	admins    repository.AdminUserRepository
}

func NewStore(db *sql.DB) *Store {
	return newStore(db, db)
}

func newStore(db *sql.DB, q DBTX) *Store {
	_, inTx := q.(*sql.Tx)
	return &Store{
		db:        db,
		inTx:      inTx,
		customers: NewCustomerRepository(q),
		ledger:    NewTransactionRepository(q),
		cycles:    NewCycleRepository(q),
		emailLogs: NewEmailLogRepository(q),
		admins:    NewAdminUserRepository(q),
	}
}

func (s *Store) Customers() repository.CustomerRepository  { return s.customers }
func (s *Store) Ledger() repository.TransactionRepository  { return s.ledger }
func (s *Store) Cycles() repository.CycleRepository        { return s.cycles }
func (s *Store) EmailLogs() repository.EmailLogRepository  { return s.emailLogs }
func (s *Store) Admins() repository.AdminUserRepository    { return s.admins }

// Atomic runs fn against a store bound to one sql.Tx. Nested Atomic calls
// reuse the outer transaction.
func (s *Store) Atomic(ctx context.Context, fn func(repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	txStore := newStore(s.db, tx)
	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
