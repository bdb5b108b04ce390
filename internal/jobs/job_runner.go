package jobs

import (
	"context"
	"time"

	"duedesk-backend/internal/config"
	"duedesk-backend/internal/domain"
	"duedesk-backend/internal/logger"
	"duedesk-backend/internal/service"
)

// JobRunner coordinates the scheduled jobs.
type JobRunner struct {
	reminders service.ReminderService
	config    *config.Config
}

func NewJobRunner(reminders service.ReminderService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		reminders: reminders,
		config:    cfg,
	}
}

// Config exposes the scheduler configuration to the cron registrar.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery so a failing job
// never takes the scheduler down.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	start := time.Now()
	jobFunc()
	logger.Info("Job completed", "job", jobName, "duration_ms", time.Since(start).Milliseconds())
}

// SendPaymentReminders dispatches reminder emails to every customer with an
// outstanding balance.
func (jr *JobRunner) SendPaymentReminders() {
	jr.runWithRecovery("SendPaymentReminders", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		report, err := jr.reminders.SendReminders(ctx)
		if err != nil {
			logger.Error("Payment reminder job failed", "error", err)
			return
		}

		sent, failed, skipped := 0, 0, 0
		for _, res := range report.Results {
			switch res.Status {
			case domain.EmailStatusSent:
				sent++
			case domain.EmailStatusFailed:
				failed++
			default:
				skipped++
			}
		}
		logger.Info("Payment reminder job finished",
			"targets", report.Count, "sent", sent, "failed", failed, "skipped", skipped)
	})
}

// RunAll runs every job once, for manual execution from the cronjob binary.
func (jr *JobRunner) RunAll() {
	jr.SendPaymentReminders()
}
