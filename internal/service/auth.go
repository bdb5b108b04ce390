package service

import (
	"context"
	"errors"

	"duedesk-backend/internal/domain"
	"duedesk-backend/internal/logger"
	"duedesk-backend/internal/repository"
	"duedesk-backend/internal/security"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
)

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
	defaultAdminEmail    = "admin@duedesk.local"
)

type authService struct {
	store  repository.Store
	tokens security.TokenManager
}

func NewAuthService(store repository.Store, tokens security.TokenManager) AuthService {
	return &authService{store: store, tokens: tokens}
}

func (s *authService) Login(ctx context.Context, login, password string) (string, *domain.AdminUser, error) {
	admin, err := s.store.Admins().GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, domain.WrapStorage("look up admin", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(admin.ID, admin.Username, admin.Email, admin.FullName, admin.Role)
	if err != nil {
		return "", nil, err
	}

	// Last-login is bookkeeping only, a failed update must not fail the login.
	if err := s.store.Admins().UpdateLastLogin(ctx, admin.ID); err != nil {
		logger.WarnContext(ctx, "Failed to record admin last login", "admin_id", admin.ID, "error", err)
	}

	logger.InfoContext(ctx, "Admin logged in", "admin_id", admin.ID, "username", admin.Username)
	return token, admin, nil
}

func (s *authService) ChangePassword(ctx context.Context, adminID int64, currentPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return ErrWeakPassword
	}

	admin, err := s.store.Admins().GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return domain.WrapStorage("look up admin", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.store.Admins().UpdatePassword(ctx, adminID, string(hash)); err != nil {
		return domain.WrapStorage("update admin password", err)
	}

	logger.InfoContext(ctx, "Admin password changed", "admin_id", adminID)
	return nil
}

func (s *authService) Profile(ctx context.Context, adminID int64) (*domain.AdminUser, error) {
	admin, err := s.store.Admins().GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.WrapStorage("look up admin", err)
	}
	return admin, nil
}

// EnsureDefaultAdmin seeds the bootstrap admin account on an empty
// admin_users table so a fresh deployment is reachable.
func (s *authService) EnsureDefaultAdmin(ctx context.Context) error {
	count, err := s.store.Admins().Count(ctx)
	if err != nil {
		return domain.WrapStorage("count admins", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &domain.AdminUser{
		Username:     defaultAdminUsername,
		Email:        defaultAdminEmail,
		PasswordHash: string(hash),
		FullName:     "DueDesk Administrator",
		Role:         "admin",
		IsActive:     true,
	}
	if err := s.store.Admins().Create(ctx, admin); err != nil {
		return domain.WrapStorage("create default admin", err)
	}

	logger.Warn("Default admin account created, change the password immediately",
		"username", defaultAdminUsername)
	return nil
}
