package service

import (
	"context"
	"testing"
	"time"

	"duedesk-backend/internal/domain"
	"duedesk-backend/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-that-is-at-least-32-chars!!"

func newAuthFixture(t *testing.T) (*memStore, AuthService) {
	t.Helper()
	store := newMemStore()
	tokens := security.NewTokenManager(testSecret, time.Hour)
	return store, NewAuthService(store, tokens)
}

func seedAdmin(t *testing.T, store *memStore, username, password string) *domain.AdminUser {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	admin := &domain.AdminUser{
		Username:     username,
		Email:        username + "@duedesk.local",
		PasswordHash: string(hash),
		Role:         "admin",
		IsActive:     true,
	}
	require.NoError(t, store.Admins().Create(context.Background(), admin))
	return admin
}

func TestAuthService_Login(t *testing.T) {
	store, svc := newAuthFixture(t)
	seeded := seedAdmin(t, store, "admin", "secret-pass")
	ctx := context.Background()

	token, admin, err := svc.Login(ctx, "admin", "secret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, seeded.ID, admin.ID)

	// The bearer token round-trips through the validator.
	claims, err := security.NewTokenManager(testSecret, time.Hour).Validate(token)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, claims.AdminID)
	assert.Equal(t, "admin", claims.Username)

	stored, err := store.Admins().GetByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)
}

func TestAuthService_LoginByEmail(t *testing.T) {
	store, svc := newAuthFixture(t)
	seedAdmin(t, store, "admin", "secret-pass")

	_, admin, err := svc.Login(context.Background(), "admin@duedesk.local", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Username)
}

func TestAuthService_LoginRejections(t *testing.T) {
	store, svc := newAuthFixture(t)
	seedAdmin(t, store, "admin", "secret-pass")
	ctx := context.Background()

	_, _, err := svc.Login(ctx, "admin", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown users get the same error as bad passwords.
	_, _, err = svc.Login(ctx, "nobody", "secret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_ChangePassword(t *testing.T) {
	store, svc := newAuthFixture(t)
	seeded := seedAdmin(t, store, "admin", "secret-pass")
	ctx := context.Background()

	err := svc.ChangePassword(ctx, seeded.ID, "secret-pass", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	err = svc.ChangePassword(ctx, seeded.ID, "wrong-pass", "new-secret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, seeded.ID, "secret-pass", "new-secret-pass")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "admin", "secret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "admin", "new-secret-pass")
	assert.NoError(t, err)
}

func TestAuthService_EnsureDefaultAdmin(t *testing.T) {
	store, svc := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureDefaultAdmin(ctx))

	count, err := store.Admins().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, admin, err := svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Username)

	// Idempotent: a second call never creates another account.
	require.NoError(t, svc.EnsureDefaultAdmin(ctx))
	count, err = store.Admins().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAuthService_EnsureDefaultAdminSkipsWhenPopulated(t *testing.T) {
	store, svc := newAuthFixture(t)
	seedAdmin(t, store, "existing", "secret-pass")

	require.NoError(t, svc.EnsureDefaultAdmin(context.Background()))

	_, err := store.Admins().GetByLogin(context.Background(), "admin")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAuthService_Profile(t *testing.T) {
	store, svc := newAuthFixture(t)
	seeded := seedAdmin(t, store, "admin", "secret-pass")

	admin, err := svc.Profile(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Username)

	_, err = svc.Profile(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
