package service

import (
	"context"
	"fmt"

	"duedesk-backend/internal/domain"

	"gopkg.in/gomail.v2"
)

type emailService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewEmailService(host string, port int, username, password, from string) EmailService {
	return &emailService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (s *emailService) SendPaymentReminder(ctx context.Context, customer domain.CustomerDetails) (string, string, error) {
	subject := fmt.Sprintf("Payment Reminder - Pending Amount ₹%.2f", customer.AmountRemaining)
	body := fmt.Sprintf(`Hello %s,

This is a friendly reminder that your payment status is "%s".
- Total Amount: ₹%.2f
- Amount Paid: ₹%.2f
- Amount Pending: ₹%.2f

You can pay online or visit our store to pay in cash.
If you have already completed the payment, please ignore this message.

Thank you,
DueDesk`,
		customer.Name, customer.PaymentStatus,
		customer.AmountToPay, customer.AmountPaid, customer.AmountRemaining)

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", customer.Email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)
	if err := d.DialAndSend(m); err != nil {
		return subject, body, fmt.Errorf("failed to send reminder email: %w", err)
	}
	return subject, body, nil
}
