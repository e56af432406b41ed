package router

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/NeuralTrust/DoctourGate/pkg/app/consultation"
	appSafety "github.com/NeuralTrust/DoctourGate/pkg/app/safety"
	handlers "github.com/NeuralTrust/DoctourGate/pkg/handlers/http"
	wsHandlers "github.com/NeuralTrust/DoctourGate/pkg/handlers/websocket"
	infraCache "github.com/NeuralTrust/DoctourGate/pkg/infra/cache"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/jwt"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/providers"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/providers/placeholder"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/repository"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/rules"
	infraWebsocket "github.com/NeuralTrust/DoctourGate/pkg/infra/websocket"
	"github.com/NeuralTrust/DoctourGate/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const routerRules = `{"toxic_substances": {"arsenic": {"status": "blocked"}}, "emergency_symptoms": ["cannot breathe"]}`

type fixture struct {
	middleware *middleware.Transport
	handlers   *handlers.HandlerTransportDTO
	ws         *wsHandlers.HandlerTransportDTO
	jwt        jwt.Manager
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logger, _ := test.NewNullLogger()

	path := filepath.Join(t.TempDir(), "blocklist.json")
	require.NoError(t, os.WriteFile(path, []byte(routerRules), 0600))
	loader := rules.NewLoader(logger)
	pipeline := appSafety.NewPipeline(logger, loader, loader.Load(path), appSafety.Options{})

	generator := consultation.NewProviderGenerator(placeholder.NewPlaceholderClient(), providers.Config{Model: "placeholder"}, nil)
	responder := consultation.NewResponder(logger, pipeline, generator, nil,
		repository.NewMemorySessionRepository(time.Minute), consultation.Options{})
	jwtManager := jwt.NewJwtManager("router-test-secret", time.Hour)

	return fixture{
		middleware: &middleware.Transport{
			AdminAuthMiddleware:    middleware.NewAdminAuthMiddleware(logger, jwtManager),
			MetricsMiddleware:      middleware.NewMetricsMiddleware(logger),
			PanicRecoverMiddleware: middleware.NewPanicRecoverMiddleware(logger),
			WebsocketMiddleware:    middleware.NewWebsocketMiddleware(logger, infraWebsocket.NewSemaphore(4)),
		},
		handlers: &handlers.HandlerTransportDTO{
			ValidateHandler:      handlers.NewValidateHandler(logger, pipeline),
			DetectHandler:        handlers.NewDetectHandler(logger, pipeline),
			GetRuleSetHandler:    handlers.NewGetRuleSetHandler(logger, pipeline),
			ConsultHandler:       handlers.NewConsultHandler(logger, responder),
			GetSessionHandler:    handlers.NewGetSessionHandler(logger, responder),
			DeleteSessionHandler: handlers.NewDeleteSessionHandler(logger, responder),
			ReloadRulesHandler:   handlers.NewReloadRulesHandler(logger, pipeline, infraCache.NewNoopPublisher(), "test"),
			GetVersionHandler:    handlers.NewGetVersionHandler(logger),
		},
		ws: &wsHandlers.HandlerTransportDTO{
			ConsultHandler: wsHandlers.NewConsultHandler(logger, responder, wsHandlers.Config{}),
		},
		jwt: jwtManager,
	}
}

func do(t *testing.T, app *fiber.App, method, path, body, token string) int {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp.StatusCode
}

func TestAPIRouter_Routes(t *testing.T) {
	f := newFixture(t)
	app := fiber.New()
	require.NoError(t, NewAPIRouter(f.middleware, f.handlers, f.ws).BuildRoutes(app))

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{"GET", "/version", "", fiber.StatusOK},
		{"POST", "/api/v1/safety/validate", `{"user_input": "headache", "candidate_response": "arsenic"}`, fiber.StatusOK},
		{"POST", "/api/v1/safety/detect/substances", `{"text": "arsenic"}`, fiber.StatusOK},
		{"GET", "/api/v1/safety/rules", "", fiber.StatusOK},
		{"POST", "/api/v1/consultations", `{"query": "I have a cough"}`, fiber.StatusOK},
		{"GET", "/api/v1/sessions/session_unknown", "", fiber.StatusNotFound},
		{"GET", "/ws/consult", "", fiber.StatusUpgradeRequired},
		{"POST", "/admin/rules/reload", "", fiber.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, do(t, app, tt.method, tt.path, tt.body, ""))
		})
	}
}

func TestAdminRouter_RequiresToken(t *testing.T) {
	f := newFixture(t)
	app := fiber.New()
	require.NoError(t, NewAdminRouter(f.middleware, f.handlers, "").BuildRoutes(app))

	assert.Equal(t, fiber.StatusOK, do(t, app, "GET", "/version", "", ""))
	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, "POST", "/admin/rules/reload", "", ""))
	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, "POST", "/admin/rules/reload", "", "not-a-token"))

	token, err := f.jwt.CreateToken("operator")
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, do(t, app, "POST", "/admin/rules/reload", "", token))
	assert.Equal(t, fiber.StatusOK, do(t, app, "GET", "/admin/rules", "", token))
	assert.Equal(t, fiber.StatusNotFound, do(t, app, "POST", "/api/v1/consultations", `{"query": "x"}`, token))
}

func TestRouters_RejectForeignTransport(t *testing.T) {
	f := newFixture(t)
	var bogus handlers.HandlerTransport = bogusTransport{}

	assert.ErrorIs(t, NewAPIRouter(f.middleware, bogus, f.ws).BuildRoutes(fiber.New()), ErrInvalidHandlerTransport)
	assert.ErrorIs(t, NewAdminRouter(f.middleware, bogus, "").BuildRoutes(fiber.New()), ErrInvalidHandlerTransport)
}

type bogusTransport struct{}

func (b bogusTransport) GetTransport() handlers.HandlerTransport { return b }
