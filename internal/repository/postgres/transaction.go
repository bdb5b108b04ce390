package postgres

import (
	"context"
	"database/sql"
	"strconv"

	"duedesk-backend/internal/domain"
	"duedesk-backend/internal/repository"
)

type transactionRepository struct {
	q DBTX
}

func NewTransactionRepository(q DBTX) repository.TransactionRepository {
	return &transactionRepository{q: q}
}

const transactionColumns = `id, customer_id, customer_name, customer_email, cycle, transaction_type, amount,
	previous_amount_paid, new_amount_paid, payment_mode, transaction_id, payment_status, COALESCE(description, ''), created_at`

func (r *transactionRepository) Append(ctx context.Context, tx *domain.Transaction) error {
	query := `INSERT INTO transaction_history
		(customer_id, customer_name, customer_email, cycle, transaction_type, amount,
		 previous_amount_paid, new_amount_paid, payment_mode, transaction_id, payment_status, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`
	if tx.Cycle < 1 {
		tx.Cycle = 1
	}
	return r.q.QueryRowContext(ctx, query,
		tx.CustomerID, tx.CustomerName, tx.CustomerEmail, tx.Cycle, tx.Type, tx.Amount,
		tx.PreviousAmountPaid, tx.NewAmountPaid, tx.PaymentMode, tx.TransactionID, tx.PaymentStatus, tx.Description,
	).Scan(&tx.ID, &tx.CreatedAt)
}

func (r *transactionRepository) ListByCustomer(ctx context.Context, customerID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + transactionColumns + ` FROM transaction_history
	          WHERE customer_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.QueryContext(ctx, query, customerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	txs, err := scanTransactions(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.q.QueryRowContext(ctx, `SELECT count(*) FROM transaction_history WHERE customer_id = $1`, customerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

func (r *transactionRepository) List(ctx context.Context, filter repository.TransactionFilter) ([]domain.Transaction, int64, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	where := ` WHERE 1=1`
	args := []any{}
	if filter.CustomerID > 0 {
		args = append(args, filter.CustomerID)
		where += ` AND customer_id = $1`
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where += ` AND transaction_type = $` + itoa(len(args))
	}

	countQuery := `SELECT count(*) FROM transaction_history` + where
	var total int64
	if err := r.q.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, filter.Offset)
	query := `SELECT ` + transactionColumns + ` FROM transaction_history` + where +
		` ORDER BY created_at DESC, id DESC LIMIT $` + itoa(len(args)-1) + ` OFFSET $` + itoa(len(args))

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	txs, err := scanTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

func scanTransactions(rows *sql.Rows) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		if err := rows.Scan(&tx.ID, &tx.CustomerID, &tx.CustomerName, &tx.CustomerEmail, &tx.Cycle, &tx.Type, &tx.Amount,
			&tx.PreviousAmountPaid, &tx.NewAmountPaid, &tx.PaymentMode, &tx.TransactionID, &tx.PaymentStatus, &tx.Description, &tx.CreatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
