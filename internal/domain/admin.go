package domain

import "time"

type AdminUser struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FullName     string     `json:"fullName"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}

type EmailStatus string

const (
	EmailStatusSent    EmailStatus = "sent"
	EmailStatusSkipped EmailStatus = "skipped"
	EmailStatusFailed  EmailStatus = "failed"
)

// EmailLog is the notification audit stream. It is keyed by customer id and
// deliberately separate from the payment ledger: reminder outcomes are not
// balance-affecting events.
type EmailLog struct {
	ID         int64       `json:"id"`
	CustomerID *int64      `json:"customer_id,omitempty"`
	Email      string      `json:"email"`
	Subject    string      `json:"subject"`
	Body       string      `json:"body"`
	Status     EmailStatus `json:"status"`
	Error      string      `json:"error,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}
