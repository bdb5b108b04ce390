package postgres

import (
	"context"

	"duedesk-backend/internal/domain"
	"duedesk-backend/internal/repository"
)

type cycleRepository struct {
	q DBTX
}

func NewCycleRepository(q DBTX) repository.CycleRepository {
	return &cycleRepository{q: q}
}

func (r *cycleRepository) Create(ctx context.Context, rec *domain.CycleRecord) error {
	query := `INSERT INTO payment_cycles
		(customer_id, customer_name, customer_email, cycle_number, amount_to_pay, amount_paid, status, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		RETURNING id, started_at, completed_at`
	if rec.CycleNumber < 1 {
		rec.CycleNumber = 1
	}
	return r.q.QueryRowContext(ctx, query,
		rec.CustomerID, rec.CustomerName, rec.CustomerEmail, rec.CycleNumber,
		rec.AmountToPay, rec.AmountPaid, rec.Outcome,
	).Scan(&rec.ID, &rec.StartedAt, &rec.CompletedAt)
}

func (r *cycleRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.CycleRecord, error) {
	query := `SELECT id, customer_id, customer_name, customer_email, cycle_number, amount_to_pay, amount_paid, status, started_at, completed_at
	          FROM payment_cycles WHERE customer_id = $1 ORDER BY cycle_number DESC`
	rows, err := r.q.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.CycleRecord
	for rows.Next() {
		var rec domain.CycleRecord
		if err := rows.Scan(&rec.ID, &rec.CustomerID, &rec.CustomerName, &rec.CustomerEmail, &rec.CycleNumber,
			&rec.AmountToPay, &rec.AmountPaid, &rec.Outcome, &rec.StartedAt, &rec.CompletedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
