package domain

import "time"

type CustomerStatus string

const (
	CustomerStatusActive CustomerStatus = "Active"
)

type PaymentStatus string

const (
	PaymentStatusNotPaid       PaymentStatus = "Not Paid"
	PaymentStatusPartiallyPaid PaymentStatus = "Partially Paid"
	PaymentStatusPaid          PaymentStatus = "Paid"
	PaymentStatusOverpaid      PaymentStatus = "Overpaid"
)

type Customer struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Number      string         `json:"number"`
	Email       string         `json:"email"`
	AmountToPay float64        `json:"amountToPay"`
	AmountPaid  float64        `json:"amountPaid"`
	Status      CustomerStatus `json:"status"`
	Cycle       int32          `json:"cycle"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// CustomerDetails is a customer snapshot plus the derived payment fields.
// The derived fields are never persisted.
type CustomerDetails struct {
	Customer
	AmountRemaining   float64       `json:"amountRemaining"`
	Overpayment       float64       `json:"overpayment"`
	PaymentStatus     PaymentStatus `json:"paymentStatus"`
	PaymentPercentage float64       `json:"paymentPercentage"`
}

// Derive computes the read-only payment view from a customer snapshot.
// Pure function: safe to call on any snapshot, outside any lock.
func (c Customer) Derive() CustomerDetails {
	d := CustomerDetails{Customer: c}
	if c.AmountToPay > c.AmountPaid {
		d.AmountRemaining = c.AmountToPay - c.AmountPaid
	}
	if c.AmountPaid > c.AmountToPay {
		d.Overpayment = c.AmountPaid - c.AmountToPay
	}
	switch {
	case c.AmountPaid == 0:
		d.PaymentStatus = PaymentStatusNotPaid
	case c.AmountPaid > c.AmountToPay:
		d.PaymentStatus = PaymentStatusOverpaid
	case c.AmountPaid >= c.AmountToPay:
		d.PaymentStatus = PaymentStatusPaid
	default:
		d.PaymentStatus = PaymentStatusPartiallyPaid
	}
	if c.AmountToPay > 0 {
		pct := c.AmountPaid / c.AmountToPay * 100
		if pct > 100 {
			pct = 100
		}
		d.PaymentPercentage = pct
	}
	return d
}

// EffectiveCycle normalizes legacy rows where the cycle column was never
// backfilled. Business logic always sees a positive cycle number.
func (c Customer) EffectiveCycle() int32 {
	if c.Cycle < 1 {
		return 1
	}
	return c.Cycle
}

type DashboardSummary struct {
	TotalCustomers       int                   `json:"totalCustomers"`
	TotalAmountToPay     float64               `json:"totalAmountToPay"`
	TotalAmountPaid      float64               `json:"totalAmountPaid"`
	TotalAmountRemaining float64               `json:"totalAmountRemaining"`
	TotalOverpayment     float64               `json:"totalOverpayment"`
	StatusCounts         map[PaymentStatus]int `json:"statusCounts"`
	RecentCustomers      []CustomerDetails     `json:"recentCustomers"`
	OverdueCustomers     []CustomerDetails     `json:"overdueCustomers"`
	CollectionEfficiency float64               `json:"collectionEfficiency"`
}
