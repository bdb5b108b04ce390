package postgres

import (
	"context"
	"database/sql"
	"errors"

	"duedesk-backend/internal/domain"
	"duedesk-backend/internal/repository"
)

type adminUserRepository struct {
	q DBTX
}

func NewAdminUserRepository(q DBTX) repository.AdminUserRepository {
	return &adminUserRepository{q: q}
}

const adminColumns = `id, username, email, password, full_name, role, is_active, created_at, updated_at, last_login`

func (r *adminUserRepository) Create(ctx context.Context, admin *domain.AdminUser) error {
	query := `INSERT INTO admin_users (username, email, password, full_name, role)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id, is_active, created_at, updated_at`
	if admin.Role == "" {
		admin.Role = "admin"
	}
	return r.q.QueryRowContext(ctx, query,
		admin.Username, admin.Email, admin.PasswordHash, admin.FullName, admin.Role,
	).Scan(&admin.ID, &admin.IsActive, &admin.CreatedAt, &admin.UpdatedAt)
}

func (r *adminUserRepository) GetByID(ctx context.Context, id int64) (*domain.AdminUser, error) {
	query := `SELECT ` + adminColumns + ` FROM admin_users WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

func (r *adminUserRepository) GetByLogin(ctx context.Context, login string) (*domain.AdminUser, error) {
	query := `SELECT ` + adminColumns + ` FROM admin_users WHERE (username = $1 OR email = $1) AND is_active`
	return r.scanOne(r.q.QueryRowContext(ctx, query, login))
}

func (r *adminUserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.q.QueryRowContext(ctx, `SELECT count(*) FROM admin_users`).Scan(&count)
	return count, err
}

func (r *adminUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := `UPDATE admin_users SET password = $1, updated_at = now() WHERE id = $2`
	res, err := r.q.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *adminUserRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	_, err := r.q.ExecContext(ctx, `UPDATE admin_users SET last_login = now() WHERE id = $1`, id)
	return err
}

func (r *adminUserRepository) scanOne(row *sql.Row) (*domain.AdminUser, error) {
	var a domain.AdminUser
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.FullName, &a.Role, &a.IsActive, &a.CreatedAt, &a.UpdatedAt, &a.LastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
