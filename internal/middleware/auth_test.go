package middleware_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"human-connection/internal/config"
	"human-connection/internal/domain"
	"human-connection/internal/middleware"
	"human-connection/internal/mocks"
	"human-connection/internal/service/auth"
)

type env struct {
	app      *fiber.App
	userRepo *mocks.UserRepository
	authSvc  auth.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	userRepo := new(mocks.UserRepository)
	authSvc := auth.NewService(userRepo, new(mocks.EmailService), &config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour}, zap.NewNop())

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(zap.NewNop())})
	viewer := func(c *fiber.Ctx) error {
		v := middleware.GetViewer(c)
		return c.JSON(fiber.Map{"id": v.ID, "role": v.Role})
	}
	app.Get("/required", middleware.AuthRequired(authSvc), viewer)
	app.Get("/optional", middleware.OptionalAuth(authSvc), viewer)
	app.Get("/admin", middleware.AuthRequired(authSvc), middleware.RequireRole(domain.RoleAdmin), viewer)

	return &env{app: app, userRepo: userRepo, authSvc: authSvc}
}

// tokenFor logs u in and leaves GetByID answering with u.
func (e *env) tokenFor(t *testing.T, u *domain.User) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	login := *u
	login.PasswordHash = string(hash)
	login.Disabled = false

	e.userRepo.On("GetByEmail", mock.Anything, u.Email).Return(&login, nil).Once()
	_, token, err := e.authSvc.Login(context.Background(), domain.LoginInput{Email: u.Email, Password: "secret123"})
	require.NoError(t, err)

	e.userRepo.On("GetByID", mock.Anything, u.ID).Return(u, nil)
	return token.AccessToken
}

func (e *env) get(t *testing.T, path, token string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestAuthRequired(t *testing.T) {
	t.Run("Missing Header", func(t *testing.T) {
		e := newEnv(t)

		status, body := e.get(t, "/required", "")

		assert.Equal(t, fiber.StatusUnauthorized, status)
		assert.Equal(t, "UNAUTHORIZED", body["code"])
	})

	t.Run("Bad Token", func(t *testing.T) {
		e := newEnv(t)

		status, _ := e.get(t, "/required", "garbage")

		assert.Equal(t, fiber.StatusUnauthorized, status)
	})

	t.Run("Valid Token", func(t *testing.T) {
		e := newEnv(t)
		token := e.tokenFor(t, &domain.User{ID: "u1", Email: "u1@example.org", Role: string(domain.RoleUser)})

		status, body := e.get(t, "/required", token)

		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "u1", body["id"])
	})

	t.Run("Disabled User", func(t *testing.T) {
		e := newEnv(t)
		token := e.tokenFor(t, &domain.User{ID: "u1", Email: "u1@example.org", Disabled: true})

		status, body := e.get(t, "/required", token)

		assert.Equal(t, fiber.StatusUnauthorized, status)
		assert.Equal(t, "Account is disabled", body["message"])
	})
}

func TestOptionalAuth(t *testing.T) {
	e := newEnv(t)

	status, body := e.get(t, "/optional", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "", body["id"])

	token := e.tokenFor(t, &domain.User{ID: "u2", Email: "u2@example.org", Role: string(domain.RoleModerator)})
	status, body = e.get(t, "/optional", token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "u2", body["id"])
	assert.Equal(t, "moderator", body["role"])
}

func TestRequireRole(t *testing.T) {
	e := newEnv(t)

	userToken := e.tokenFor(t, &domain.User{ID: "u1", Email: "u1@example.org", Role: string(domain.RoleModerator)})
	status, body := e.get(t, "/admin", userToken)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body["code"])

	adminToken := e.tokenFor(t, &domain.User{ID: "a1", Email: "a1@example.org", Role: string(domain.RoleAdmin)})
	status, _ = e.get(t, "/admin", adminToken)
	assert.Equal(t, fiber.StatusOK, status)
}
