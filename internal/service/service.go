package service

import (
	"context"
	"time"

	"duedesk-backend/internal/domain"
	"duedesk-backend/internal/repository"
)

// CustomerDraft is the validated input for creating or updating a customer.
type CustomerDraft struct {
	Name        string  `json:"name" validate:"required"`
	Number      string  `json:"number" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	AmountToPay float64 `json:"amountToPay" validate:"gte=0"`
	AmountPaid  float64 `json:"amountPaid" validate:"gte=0,ltefield=AmountToPay"`
}

// ListOptions controls customer listing. Status filters on the derived
// payment status and is applied after the rows are read.
type ListOptions struct {
	Status domain.PaymentStatus
	SortBy string
	Order  string
	Limit  int
	Offset int
}

// CustomerSummary aggregates the listed customers, monetary sums rounded to
// two decimals.
type CustomerSummary struct {
	TotalCustomers       int                          `json:"totalCustomers"`
	TotalAmountToPay     float64                      `json:"totalAmountToPay"`
	TotalAmountPaid      float64                      `json:"totalAmountPaid"`
	TotalAmountRemaining float64                      `json:"totalAmountRemaining"`
	TotalOverpayment     float64                      `json:"totalOverpayment"`
	StatusCounts         map[domain.PaymentStatus]int `json:"statusCounts"`
}

// PaymentResult reports a gateway-processed payment attempt.
type PaymentResult struct {
	Customer       *domain.CustomerDetails `json:"customer"`
	TransactionID  string                  `json:"transactionId,omitempty"`
	PaymentMode    domain.PaymentMode      `json:"paymentMode"`
	ProcessingTime time.Duration           `json:"-"`
	Instant        bool                    `json:"instant"`
	Status         domain.SettlementStatus `json:"status"`
}

// ReminderOutcome is the per-customer result of a reminder dispatch.
type ReminderOutcome struct {
	CustomerID int64              `json:"customerId"`
	Email      string             `json:"email"`
	Status     domain.EmailStatus `json:"status"`
	Error      string             `json:"error,omitempty"`
}

type ReminderReport struct {
	Count   int               `json:"count"`
	Results []ReminderOutcome `json:"results"`
}

type CustomerService interface {
	Create(ctx context.Context, draft CustomerDraft) (*domain.CustomerDetails, error)
	Update(ctx context.Context, id int64, draft CustomerDraft) (*domain.CustomerDetails, error)
	Get(ctx context.Context, id int64) (*domain.CustomerDetails, error)
	List(ctx context.Context, opts ListOptions) ([]domain.CustomerDetails, *CustomerSummary, int64, error)
	Delete(ctx context.Context, id int64) (*domain.CustomerDetails, error)
}

// PaymentService owns the billing-cycle state machine. All balance mutations
// for one customer are serialized behind a per-customer lock.
type PaymentService interface {
	ApplyPayment(ctx context.Context, customerID int64, amount float64, mode domain.PaymentMode, description string) (*domain.CustomerDetails, error)
	SetPayment(ctx context.Context, customerID int64, amount float64, mode domain.PaymentMode, description string) (*domain.CustomerDetails, error)
	ProcessPayment(ctx context.Context, customerID int64, amount float64, mode domain.PaymentMode, description string) (*PaymentResult, error)
	Reactivate(ctx context.Context, customerID int64, newAmountToPay float64, resetAmountPaid bool, description string) (*domain.CustomerDetails, error)
	Reset(ctx context.Context, customerID int64, newAmountToPay *float64, description string) (*domain.CustomerDetails, error)
}

type LedgerService interface {
	ListCustomerTransactions(ctx context.Context, customerID int64, limit, offset int) ([]domain.Transaction, int64, error)
	ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]domain.Transaction, int64, error)
	ListCycles(ctx context.Context, customerID int64) ([]domain.CycleRecord, error)
	DashboardSummary(ctx context.Context) (*domain.DashboardSummary, error)
}

type ReminderService interface {
	SendReminders(ctx context.Context) (*ReminderReport, error)
}

type AuthService interface {
	Login(ctx context.Context, login, password string) (string, *domain.AdminUser, error)
	ChangePassword(ctx context.Context, adminID int64, currentPassword, newPassword string) error
	Profile(ctx context.Context, adminID int64) (*domain.AdminUser, error)
	EnsureDefaultAdmin(ctx context.Context) error
}

// EmailService delivers reminder emails. The reminder service decides the
// targeting, this only knows how to send.
type EmailService interface {
	SendPaymentReminder(ctx context.Context, customer domain.CustomerDetails) (subject, body string, err error)
}
