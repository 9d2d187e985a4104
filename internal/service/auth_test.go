package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credenciamento/event-api/internal/domain"
)

func TestSignupFirstUserIsAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin, err := env.auth.Signup(ctx, domain.User{
		Email:    " Admin@Example.com ",
		Password: "Secret#123",
		Name:     "Admin",
		Role:     domain.RoleCoordinator,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.Equal(t, "admin@example.com", admin.Email)

	_, err = env.auth.Signup(ctx, domain.User{Email: "x@example.com", Password: "Secret#123", Role: domain.RoleCoordinator}, nil)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	coordinator, err := env.auth.Signup(ctx, domain.User{
		Email:    "coord@example.com",
		Password: "Secret#123",
		Name:     "Coord",
		Role:     domain.RoleCoordinator,
	}, &admin)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCoordinator, coordinator.Role)

	_, err = env.auth.Signup(ctx, domain.User{Email: "y@example.com", Password: "Secret#123", Role: domain.RoleAdmin}, &coordinator)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = env.auth.Signup(ctx, domain.User{Email: "z@example.com", Password: "Secret#123", Role: "root"}, &admin)
	assert.ErrorIs(t, err, ErrInvalidUserRole)

	_, err = env.auth.Signup(ctx, domain.User{Email: "coord@example.com", Password: "Secret#123", Role: domain.RoleCoordinator}, &admin)
	assert.ErrorIs(t, err, ErrUserEmailExists)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Signup(ctx, domain.User{Email: "admin@example.com", Password: "Secret#123", Name: "Admin"}, nil)
	require.NoError(t, err)

	user, err := env.auth.Login(ctx, "ADMIN@example.com", "Secret#123")
	require.NoError(t, err)
	assert.Equal(t, "Admin", user.Name)

	_, err = env.auth.Login(ctx, "admin@example.com", "wrong")
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, err = env.auth.Login(ctx, "nobody@example.com", "Secret#123")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = env.auth.LoginOperator(ctx, validCPF, "Secret#123")
	assert.ErrorIs(t, err, ErrOperatorNotFound)
}
