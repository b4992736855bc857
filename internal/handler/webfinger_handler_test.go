package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"human-connection/internal/domain"
	"human-connection/internal/mocks"
	"human-connection/internal/service/federation"
)

func newWebFingerApp(t *testing.T) (*fiber.App, *mocks.UserRepository) {
	t.Helper()
	userRepo := new(mocks.UserRepository)
	svc, err := federation.NewService(userRepo, "http://localhost:3000")
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/.well-known/webfinger", NewWebFingerHandler(svc).WebFinger)
	return app, userRepo
}

func decodeBody(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestWebFingerHandler(t *testing.T) {
	t.Run("Missing Resource", func(t *testing.T) {
		app, _ := newWebFingerApp(t)

		resp, err := app.Test(httptest.NewRequest("GET", "/.well-known/webfinger", nil))
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, `Query parameter "?resource=acct:<USER>@<DOMAIN>" is missing.`, decodeBody(t, resp.Body)["error"])
	})

	t.Run("Unknown User", func(t *testing.T) {
		app, userRepo := newWebFingerApp(t)
		userRepo.On("GetBySlug", mock.Anything, "nobody").Return(nil, nil).Once()

		resp, err := app.Test(httptest.NewRequest("GET", "/.well-known/webfinger?resource=acct:nobody@localhost", nil))
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		assert.Equal(t, `No record found for "nobody@localhost".`, decodeBody(t, resp.Body)["error"])
	})

	t.Run("Found", func(t *testing.T) {
		app, userRepo := newWebFingerApp(t)
		userRepo.On("GetBySlug", mock.Anything, "peter-lustig").Return(&domain.User{ID: "u1", Slug: "peter-lustig"}, nil).Once()

		resp, err := app.Test(httptest.NewRequest("GET", "/.well-known/webfinger?resource=acct:peter-lustig@localhost", nil))
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/jrd+json", resp.Header.Get(fiber.HeaderContentType))
		body := decodeBody(t, resp.Body)
		assert.Equal(t, "acct:peter-lustig@localhost:3000", body["subject"])
	})
}
