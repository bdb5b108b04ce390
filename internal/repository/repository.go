package repository

import (
	"context"

	"duedesk-backend/internal/domain"
)

// CustomerFilter narrows and orders customer listings. A zero Limit means no
// pagination. SortBy is validated against a whitelist by the implementation.
type CustomerFilter struct {
	SortBy string
	Order  string
	Limit  int
	Offset int
}

// TransactionFilter narrows the admin-wide transaction listing.
type TransactionFilter struct {
	CustomerID int64
	Type       domain.TransactionType
	Limit      int
	Offset     int
}

type CustomerRepository interface {
	Create(ctx context.Context, c *domain.Customer) error
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	Update(ctx context.Context, c *domain.Customer) error
	// UpdatePayment writes just the paid amount; callers hold the
	// per-customer lock and have already validated the new value.
	UpdatePayment(ctx context.Context, id int64, newAmountPaid float64) error
	// StartCycle moves the customer into a new billing cycle.
	StartCycle(ctx context.Context, id int64, cycle int32, amountToPay, amountPaid float64) error
	// ResetPayment zeroes the paid amount within the current cycle.
	ResetPayment(ctx context.Context, id int64, amountToPay float64) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter CustomerFilter) ([]domain.Customer, int64, error)
	// ListOutstanding returns reminder targets: customers with a remaining
	// balance and a known email address.
	ListOutstanding(ctx context.Context) ([]domain.Customer, error)
}

type TransactionRepository interface {
	Append(ctx context.Context, tx *domain.Transaction) error
	ListByCustomer(ctx context.Context, customerID int64, limit, offset int) ([]domain.Transaction, int64, error)
	List(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, int64, error)
}

type CycleRepository interface {
	Create(ctx context.Context, rec *domain.CycleRecord) error
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.CycleRecord, error)
}

type EmailLogRepository interface {
	Create(ctx context.Context, log *domain.EmailLog) error
	List(ctx context.Context, limit, offset int) ([]domain.EmailLog, error)
}

type AdminUserRepository interface {
	Create(ctx context.Context, admin *domain.AdminUser) error
	GetByID(ctx context.Context, id int64) (*domain.AdminUser, error)
	// GetByLogin matches an active admin by username or email.
	GetByLogin(ctx context.Context, login string) (*domain.AdminUser, error)
	Count(ctx context.Context) (int64, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id int64) error
}

// Store bundles the repositories over one database. Atomic runs fn against
// repositories bound to a single database transaction: either every write in
// fn commits or none do. A balance mutation and its ledger entry always go
// through Atomic.
type Store interface {
	Customers() CustomerRepository
	Ledger() TransactionRepository
	Cycles() CycleRepository
	EmailLogs() EmailLogRepository
	Admins() AdminUserRepository
	Atomic(ctx context.Context, fn func(Store) error) error
}
