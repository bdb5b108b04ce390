package postgres

import (
	"context"

	"duedesk-backend/internal/domain"
	"duedesk-backend/internal/repository"
)

type emailLogRepository struct {
	q DBTX
}

func NewEmailLogRepository(q DBTX) repository.EmailLogRepository {
	return &emailLogRepository{q: q}
}

func (r *emailLogRepository) Create(ctx context.Context, log *domain.EmailLog) error {
	query := `INSERT INTO email_logs (customer_id, email, subject, body, status, error)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	return r.q.QueryRowContext(ctx, query,
		log.CustomerID, log.Email, log.Subject, log.Body, log.Status, log.Error,
	).Scan(&log.ID, &log.CreatedAt)
}

func (r *emailLogRepository) List(ctx context.Context, limit, offset int) ([]domain.EmailLog, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT id, customer_id, COALESCE(email, ''), COALESCE(subject, ''), COALESCE(body, ''), COALESCE(status, ''), COALESCE(error, ''), created_at
	          FROM email_logs ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.EmailLog
	for rows.Next() {
		var l domain.EmailLog
		if err := rows.Scan(&l.ID, &l.CustomerID, &l.Email, &l.Subject, &l.Body, &l.Status, &l.Error, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
