package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NeuralTrust/DoctourGate/pkg/infra/jwt"
	infraWebsocket "github.com/NeuralTrust/DoctourGate/pkg/infra/websocket"
	"github.com/NeuralTrust/DoctourGate/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminApp(t *testing.T, manager jwt.Manager) *fiber.App {
	t.Helper()
	logger, _ := test.NewNullLogger()
	app := fiber.New()
	app.Use(middleware.NewAdminAuthMiddleware(logger, manager).Middleware())
	app.Get("/admin/ping", func(c *fiber.Ctx) error {
		subject, _ := c.Locals(middleware.AdminSubjectKey).(string)
		return c.SendString(subject)
	})
	return app
}

func TestAdminAuthMiddleware(t *testing.T) {
	manager := jwt.NewJwtManager("s3cret", time.Hour)
	token, err := manager.CreateToken("apothecary")
	require.NoError(t, err)
	app := adminApp(t, manager)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "no header", header: "", status: fiber.StatusUnauthorized},
		{name: "basic scheme", header: "Basic abc", status: fiber.StatusUnauthorized},
		{name: "empty bearer", header: "Bearer ", status: fiber.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", status: fiber.StatusUnauthorized},
		{name: "valid token", header: "Bearer " + token, status: fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestMetricsMiddleware_RequestID(t *testing.T) {
	logger, _ := test.NewNullLogger()
	app := fiber.New()
	app.Use(middleware.NewMetricsMiddleware(logger).Middleware())
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "req-42", resp.Header.Get(middleware.RequestIDHeader))
}

func TestPanicRecoverMiddleware(t *testing.T) {
	logger, hook := test.NewNullLogger()
	app := fiber.New()
	app.Use(middleware.NewPanicRecoverMiddleware(logger).Middleware())
	app.Get("/boom", func(c *fiber.Ctx) error { panic("humours out of balance") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.NotEmpty(t, hook.AllEntries())
}

func TestWebsocketMiddleware(t *testing.T) {
	logger, _ := test.NewNullLogger()
	semaphore := infraWebsocket.NewSemaphore(1)
	app := fiber.New()
	app.Use(middleware.NewWebsocketMiddleware(logger, semaphore).Middleware())
	app.Get("/ws/consult", func(c *fiber.Ctx) error {
		_, ok := c.Locals(middleware.SemaphoreKey).(*infraWebsocket.Semaphore)
		assert.True(t, ok)
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/ws/broken", func(c *fiber.Ctx) error {
		return fiber.ErrUpgradeRequired
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ws/consult", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
	assert.Equal(t, 0, semaphore.Active())

	upgrade := func(path string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Connection", "Upgrade")
		req.Header.Set("Upgrade", "websocket")
		return req
	}

	resp, err = app.Test(upgrade("/ws/broken"), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
	assert.Equal(t, 0, semaphore.Active())

	resp, err = app.Test(upgrade("/ws/consult"), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, semaphore.Active())

	resp, err = app.Test(upgrade("/ws/consult"), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	semaphore.Release()
	assert.Equal(t, 0, semaphore.Active())
}
