package service

import (
	"context"

	"duedesk-backend/internal/domain"
	"duedesk-backend/internal/logger"
	"duedesk-backend/internal/repository"
)

type reminderService struct {
	store    repository.Store
	emailSvc EmailService
}

func NewReminderService(store repository.Store, emailSvc EmailService) ReminderService {
	return &reminderService{store: store, emailSvc: emailSvc}
}

// SendReminders emails every customer with a remaining balance and a known
// address. Each outcome lands in the email_logs audit stream; delivery
// failures never abort the batch.
func (s *reminderService) SendReminders(ctx context.Context) (*ReminderReport, error) {
	targets, err := s.store.Customers().ListOutstanding(ctx)
	if err != nil {
		return nil, domain.WrapStorage("list reminder targets", err)
	}

	report := &ReminderReport{Results: make([]ReminderOutcome, 0, len(targets))}
	for _, c := range targets {
		d := c.Derive()
		outcome := ReminderOutcome{CustomerID: c.ID, Email: c.Email}

		if d.PaymentStatus == domain.PaymentStatusPaid || d.PaymentStatus == domain.PaymentStatusOverpaid {
			outcome.Status = domain.EmailStatusSkipped
			s.audit(ctx, c.ID, c.Email, "", "", domain.EmailStatusSkipped, "")
			report.Results = append(report.Results, outcome)
			continue
		}

		subject, body, err := s.emailSvc.SendPaymentReminder(ctx, d)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to send payment reminder",
				"customer_id", c.ID, "email", c.Email, "error", err)
			outcome.Status = domain.EmailStatusFailed
			outcome.Error = err.Error()
			s.audit(ctx, c.ID, c.Email, subject, body, domain.EmailStatusFailed, err.Error())
		} else {
			outcome.Status = domain.EmailStatusSent
			s.audit(ctx, c.ID, c.Email, subject, body, domain.EmailStatusSent, "")
		}
		report.Results = append(report.Results, outcome)
	}

	report.Count = len(report.Results)
	logger.InfoContext(ctx, "Payment reminders dispatched", "count", report.Count)
	return report, nil
}

func (s *reminderService) audit(ctx context.Context, customerID int64, email, subject, body string, status domain.EmailStatus, errMsg string) {
	log := &domain.EmailLog{
		CustomerID: &customerID,
		Email:      email,
		Subject:    subject,
		Body:       body,
		Status:     status,
		Error:      errMsg,
	}
	if err := s.store.EmailLogs().Create(ctx, log); err != nil {
		logger.ErrorContext(ctx, "Failed to record email audit entry",
			"customer_id", customerID, "status", status, "error", err)
	}
}
