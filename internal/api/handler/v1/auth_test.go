package v1

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsantos1911/meritocracia-api/internal/domain"
	"github.com/vsantos1911/meritocracia-api/internal/service"
)

type stubAuthService struct {
	login func(ctx context.Context, username, password string) (domain.User, error)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (domain.User, error) {
	return s.login(ctx, username, password)
}

func newAuthRouter(svc AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/auth/login", NewAuthHandler(svc).HandleLogin)

	return router
}

func TestHandleLogin(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		router := newAuthRouter(&stubAuthService{
			login: func(_ context.Context, username, password string) (domain.User, error) {
				assert.Equal(t, "admin", username)
				assert.Equal(t, "admin123", password)
				return domain.User{ID: 1, Username: "admin", Password: "admin123", FullName: "Administrador", IsAdmin: true}, nil
			},
		})

		resp := perform(router, http.MethodPost, "/auth/login", `{"username":"admin","password":"admin123"}`)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"admin"`)
		assert.NotContains(t, resp.Body.String(), "admin123", "password must never leave the API")
	})

	t.Run("missing fields", func(t *testing.T) {
		router := newAuthRouter(&stubAuthService{})

		resp := perform(router, http.MethodPost, "/auth/login", `{"username":"admin"}`)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("unknown username", func(t *testing.T) {
		router := newAuthRouter(&stubAuthService{
			login: func(_ context.Context, _, _ string) (domain.User, error) {
				return domain.User{}, service.ErrUserNotFound
			},
		})

		resp := perform(router, http.MethodPost, "/auth/login", `{"username":"nobody","password":"x"}`)
		require.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Contains(t, resp.Body.String(), "Usuário não encontrado")
	})

	t.Run("wrong password", func(t *testing.T) {
		router := newAuthRouter(&stubAuthService{
			login: func(_ context.Context, _, _ string) (domain.User, error) {
				return domain.User{}, service.ErrWrongPassword
			},
		})

		resp := perform(router, http.MethodPost, "/auth/login", `{"username":"admin","password":"wrong"}`)
		require.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Contains(t, resp.Body.String(), "Senha incorreta")
	})
}
