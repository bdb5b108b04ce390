package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"duedesk-backend/internal/domain"
	"duedesk-backend/internal/repository"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type customerRepository struct {
	q DBTX
}

func NewCustomerRepository(q DBTX) repository.CustomerRepository {
	return &customerRepository{q: q}
}

const customerColumns = `id, name, number, email, amount_to_pay, amount_paid, status, cycle, created_at, updated_at`

func (r *customerRepository) Create(ctx context.Context, c *domain.Customer) error {
	query := `INSERT INTO customers (name, number, email, amount_to_pay, amount_paid, status, cycle)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at, updated_at`
	if c.Status == "" {
		c.Status = domain.CustomerStatusActive
	}
	if c.Cycle < 1 {
		c.Cycle = 1
	}
	err := r.q.QueryRowContext(ctx, query,
		c.Name, c.Number, c.Email, c.AmountToPay, c.AmountPaid, c.Status, c.Cycle,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapUniqueViolation(err)
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE email = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, email))
}

func (r *customerRepository) Update(ctx context.Context, c *domain.Customer) error {
	query := `UPDATE customers SET name = $1, number = $2, email = $3, amount_to_pay = $4, amount_paid = $5, updated_at = now()
	          WHERE id = $6 RETURNING updated_at`
	err := r.q.QueryRowContext(ctx, query,
		c.Name, c.Number, c.Email, c.AmountToPay, c.AmountPaid, c.ID,
	).Scan(&c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return mapUniqueViolation(err)
}

func (r *customerRepository) UpdatePayment(ctx context.Context, id int64, newAmountPaid float64) error {
	query := `UPDATE customers SET amount_paid = $1, updated_at = now() WHERE id = $2`
	return r.mustAffect(ctx, query, newAmountPaid, id)
}

func (r *customerRepository) StartCycle(ctx context.Context, id int64, cycle int32, amountToPay, amountPaid float64) error {
	query := `UPDATE customers SET cycle = $1, amount_to_pay = $2, amount_paid = $3, status = $4, updated_at = now() WHERE id = $5`
	return r.mustAffect(ctx, query, cycle, amountToPay, amountPaid, domain.CustomerStatusActive, id)
}

func (r *customerRepository) ResetPayment(ctx context.Context, id int64, amountToPay float64) error {
	query := `UPDATE customers SET amount_to_pay = $1, amount_paid = 0, updated_at = now() WHERE id = $2`
	return r.mustAffect(ctx, query, amountToPay, id)
}

func (r *customerRepository) Delete(ctx context.Context, id int64) error {
	// transaction_history and payment_cycles cascade via FK
	return r.mustAffect(ctx, `DELETE FROM customers WHERE id = $1`, id)
}

var customerSortColumns = map[string]string{
	"name":        "name",
	"email":       "email",
	"amountToPay": "amount_to_pay",
	"amountPaid":  "amount_paid",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

func (r *customerRepository) List(ctx context.Context, filter repository.CustomerFilter) ([]domain.Customer, int64, error) {
	sortCol, ok := customerSortColumns[filter.SortBy]
	if !ok {
		sortCol = "name"
	}
	order := "ASC"
	if filter.Order == "DESC" || filter.Order == "desc" {
		order = "DESC"
	}

	query := fmt.Sprintf(`SELECT %s FROM customers ORDER BY %s %s`, customerColumns, sortCol, order)
	args := []any{}
	if filter.Limit > 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	customers, err := scanCustomers(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.q.QueryRowContext(ctx, `SELECT count(*) FROM customers`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

func (r *customerRepository) ListOutstanding(ctx context.Context) ([]domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers
	          WHERE amount_to_pay - amount_paid > 0 AND email <> '' ORDER BY id`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCustomers(rows)
}

func (r *customerRepository) scanOne(row *sql.Row) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Number, &c.Email, &c.AmountToPay, &c.AmountPaid, &c.Status, &c.Cycle, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepository) mustAffect(ctx context.Context, query string, args ...any) error {
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanCustomers(rows *sql.Rows) ([]domain.Customer, error) {
	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Number, &c.Email, &c.AmountToPay, &c.AmountPaid, &c.Status, &c.Cycle, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return domain.ErrDuplicateEmail
	}
	return err
}
