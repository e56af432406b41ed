package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/NeuralTrust/DoctourGate/pkg/app/consultation"
	appSafety "github.com/NeuralTrust/DoctourGate/pkg/app/safety"
	"github.com/NeuralTrust/DoctourGate/pkg/domain/safety"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/repository"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/rules"
	infraWebsocket "github.com/NeuralTrust/DoctourGate/pkg/infra/websocket"
	"github.com/NeuralTrust/DoctourGate/pkg/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	gorilla "github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedGenerator struct {
	text string
	err  error
}

func (g fixedGenerator) Model() string { return "fixed" }

func (g fixedGenerator) Generate(context.Context, consultation.GenerateRequest) (string, error) {
	return g.text, g.err
}

func newHandler(t *testing.T, gen consultation.Generator) *consultHandler {
	t.Helper()
	logger, _ := test.NewNullLogger()
	rs := safety.NewRuleSet("test",
		[]safety.RuleEntry{{Term: "arsenic", Status: safety.StatusBlocked}},
		nil,
		[]string{"cannot breathe"},
	)
	pipeline := appSafety.NewPipeline(logger, rules.NewLoader(logger), rs, appSafety.Options{})
	responder := consultation.NewResponder(logger, pipeline, gen, nil,
		repository.NewMemorySessionRepository(time.Minute), consultation.Options{})
	h, ok := NewConsultHandler(logger, responder, Config{}).(*consultHandler)
	require.True(t, ok)
	return h
}

func TestConsultHandler_HandleMessage(t *testing.T) {
	tests := []struct {
		name      string
		gen       consultation.Generator
		raw       string
		wantType  infraWebsocket.MessageType
		wantError string
	}{
		{
			name:     "answered",
			gen:      fixedGenerator{text: "Rest by the fire."},
			raw:      `{"query": "I have a chill"}`,
			wantType: infraWebsocket.MessageTypeResult,
		},
		{
			name:     "emergency still produces a result",
			gen:      fixedGenerator{text: "Rest by the fire."},
			raw:      `{"type": "consult", "query": "I cannot breathe"}`,
			wantType: infraWebsocket.MessageTypeResult,
		},
		{
			name:      "generation failure",
			gen:       fixedGenerator{err: errors.New("boom")},
			raw:       `{"query": "I have a chill"}`,
			wantType:  infraWebsocket.MessageTypeError,
			wantError: consultation.OutcomeGenerationFailed,
		},
		{
			name:      "garbage frame",
			gen:       fixedGenerator{text: "unused"},
			raw:       `not json`,
			wantType:  infraWebsocket.MessageTypeError,
			wantError: "invalid message",
		},
		{
			name:      "missing query",
			gen:       fixedGenerator{text: "unused"},
			raw:       `{"query": "  "}`,
			wantType:  infraWebsocket.MessageTypeError,
			wantError: "query is required",
		},
		{
			name:      "ending an unknown session",
			gen:       fixedGenerator{text: "unused"},
			raw:       `{"type": "end_session", "session_id": "session_missing"}`,
			wantType:  infraWebsocket.MessageTypeError,
			wantError: "session not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandler(t, tt.gen)
			got := h.handleMessage(context.Background(), []byte(tt.raw))
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantError, got.Error)
		})
	}
}

func TestConsultHandler_EndSessionAfterConsult(t *testing.T) {
	h := newHandler(t, fixedGenerator{text: "Rest by the fire."})
	ctx := context.Background()

	res := h.handleMessage(ctx, []byte(`{"query": "I have a chill"}`))
	require.Equal(t, infraWebsocket.MessageTypeResult, res.Type)
	require.NotEmpty(t, res.SessionID)

	end := h.handleMessage(ctx, []byte(`{"type": "end_session", "session_id": "`+res.SessionID+`"}`))
	assert.Equal(t, infraWebsocket.MessageTypeEndSession, end.Type)
	assert.Empty(t, end.Error)
}

func TestConsultHandler_OverSocket(t *testing.T) {
	h := newHandler(t, fixedGenerator{text: "Rest by the fire."})
	logger, _ := test.NewNullLogger()
	semaphore := infraWebsocket.NewSemaphore(1)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use("/ws", middleware.NewWebsocketMiddleware(logger, semaphore).Middleware())
	app.Get("/ws/consult", websocket.New(h.Handle))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	defer func() { _ = app.Shutdown() }()

	url := "ws://" + ln.Addr().String() + "/ws/consult"
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var ready infraWebsocket.ResponseMessage
	require.NoError(t, conn.ReadJSON(&ready))
	assert.Equal(t, infraWebsocket.MessageTypeReady, ready.Type)

	_, resp, err := gorilla.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	}

	require.NoError(t, conn.WriteJSON(infraWebsocket.Message{Query: "I have a chill"}))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var got struct {
		Type    infraWebsocket.MessageType `json:"type"`
		Payload consultation.Result        `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, infraWebsocket.MessageTypeResult, got.Type)
	assert.Contains(t, got.Payload.Response, "Rest by the fire.")
	assert.Equal(t, "safe", got.Payload.Verdict.Level.String())
}
