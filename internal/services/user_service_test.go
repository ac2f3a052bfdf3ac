package services

import (
	"context"
	"testing"

	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	svc := NewUserService(store, zap.NewNop())

	user, err := svc.Register(ctx, RegisterInput{Name: "Lu", Email: " Lu@Example.com ", Password: "secreto123"})
	require.NoError(t, err)
	assert.Equal(t, "lu@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "secreto123", user.PasswordHash)

	_, err = svc.Register(ctx, RegisterInput{Name: "Lu", Email: "lu@example.com", Password: "otraclave1"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Register(ctx, RegisterInput{Name: "X", Email: "x@example.com", Password: "corta"})
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = svc.Register(ctx, RegisterInput{Name: "X", Email: "no-es-email", Password: "secreto123"})
	assert.ErrorIs(t, err, ErrInvalidEmail)
	_, err = svc.Register(ctx, RegisterInput{Name: "X", Email: "X <x@example.com>", Password: "secreto123"})
	assert.ErrorIs(t, err, ErrInvalidEmail, "display-name addresses are rejected like the HTTP binding does")

	logged, err := svc.Authenticate(ctx, "LU@example.com", "secreto123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	_, err = svc.Authenticate(ctx, "lu@example.com", "incorrecta")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nadie@example.com", "secreto123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateUserRole(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	svc := NewUserService(store, zap.NewNop())

	admin, err := svc.Register(ctx, RegisterInput{Name: "Admin", Email: "admin@example.com", Password: "secreto123", Role: models.RoleAdmin})
	require.NoError(t, err)
	user, err := svc.Register(ctx, RegisterInput{Name: "User", Email: "user@example.com", Password: "secreto123"})
	require.NoError(t, err)

	_, err = svc.ValidateUserRole(ctx, admin.ID, models.RoleAdmin)
	assert.NoError(t, err)
	_, err = svc.ValidateUserRole(ctx, user.ID, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.ValidateUserRole(ctx, "missing", models.RoleAdmin)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
