package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsantos1911/meritocracia-api/internal/domain"
	"github.com/vsantos1911/meritocracia-api/internal/repository"
)

type fakeUserRepo struct {
	users map[string]domain.User
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (domain.User, error) {
	user, ok := f.users[username]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}

	return user, nil
}

func TestAuthService_Login(t *testing.T) {
	svc := NewAuthService(&fakeUserRepo{users: map[string]domain.User{
		"admin": {ID: 1, Username: "admin", Password: "admin123", FullName: "Administrador", IsAdmin: true},
	}})
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.Login(ctx, "admin", "admin123")
		require.NoError(t, err)
		assert.Equal(t, "admin", user.Username)
		assert.True(t, user.IsAdmin)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "admin", "admin124")
		assert.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody", "admin123")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
