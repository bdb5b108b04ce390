package domain

import "time"

type CycleOutcome string

const (
	CycleOutcomeCompleted  CycleOutcome = "Completed"
	CycleOutcomeIncomplete CycleOutcome = "Incomplete"
)

// CycleRecord captures a closed billing cycle. Written exactly once, at the
// moment a customer is reactivated into the next cycle.
type CycleRecord struct {
	ID            int64        `json:"id"`
	CustomerID    int64        `json:"customer_id"`
	CustomerName  string       `json:"customer_name"`
	CustomerEmail string       `json:"customer_email"`
	CycleNumber   int32        `json:"cycle_number"`
	AmountToPay   float64      `json:"amount_to_pay"`
	AmountPaid    float64      `json:"amount_paid"`
	Outcome       CycleOutcome `json:"status"`
	StartedAt     time.Time    `json:"started_at"`
	CompletedAt   time.Time    `json:"completed_at"`
}
