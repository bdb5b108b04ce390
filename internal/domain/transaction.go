package domain

import "time"

type TransactionType string

const (
	TransactionTypePaymentAdded        TransactionType = "PAYMENT_ADDED"
	TransactionTypePaymentSet          TransactionType = "PAYMENT_SET"
	TransactionTypeCashPayment         TransactionType = "CASH_PAYMENT"
	TransactionTypePaymentProcessed    TransactionType = "PAYMENT_PROCESSED"
	TransactionTypePaymentFailed       TransactionType = "PAYMENT_FAILED"
	TransactionTypeCustomerReactivated TransactionType = "CUSTOMER_REACTIVATED"
	TransactionTypePaymentReset        TransactionType = "PAYMENT_RESET"
)

type PaymentMode string

const (
	PaymentModeCash PaymentMode = "cash"
	PaymentModeCard PaymentMode = "card"
	PaymentModeUPI  PaymentMode = "upi"
)

// ValidPaymentMode reports whether m is one of the supported channels.
func ValidPaymentMode(m PaymentMode) bool {
	switch m {
	case PaymentModeCash, PaymentModeCard, PaymentModeUPI:
		return true
	}
	return false
}

type SettlementStatus string

const (
	SettlementStatusCompleted SettlementStatus = "completed"
	SettlementStatusFailed    SettlementStatus = "failed"
)

// Transaction is an append-only audit entry for a balance-affecting event.
// Customer name, email and cycle are denormalized at write time so the log
// stays readable after the customer record moves on. Rows are never updated.
type Transaction struct {
	ID                 int64            `json:"id"`
	CustomerID         int64            `json:"customer_id"`
	CustomerName       string           `json:"customer_name"`
	CustomerEmail      string           `json:"customer_email"`
	Cycle              int32            `json:"cycle"`
	Type               TransactionType  `json:"transaction_type"`
	Amount             float64          `json:"amount"`
	PreviousAmountPaid float64          `json:"previous_amount_paid"`
	NewAmountPaid      float64          `json:"new_amount_paid"`
	PaymentMode        PaymentMode      `json:"payment_mode"`
	TransactionID      *string          `json:"transaction_id,omitempty"`
	PaymentStatus      SettlementStatus `json:"payment_status"`
	Description        string           `json:"description"`
	CreatedAt          time.Time        `json:"created_at"`
}
