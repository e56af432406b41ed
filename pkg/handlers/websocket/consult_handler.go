package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/NeuralTrust/DoctourGate/pkg/app/consultation"
	domain "github.com/NeuralTrust/DoctourGate/pkg/domain/errors"
	infraWebsocket "github.com/NeuralTrust/DoctourGate/pkg/infra/websocket"
	"github.com/NeuralTrust/DoctourGate/pkg/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/sirupsen/logrus"
)

const (
	defaultPongWait   = 45 * time.Second
	defaultPingPeriod = 30 * time.Second
	writeWait         = 10 * time.Second
)

type Config struct {
	PongWait   time.Duration
	PingPeriod time.Duration
}

type consultHandler struct {
	logger    *logrus.Logger
	responder *consultation.Responder
	cfg       Config
}

func NewConsultHandler(logger *logrus.Logger, responder *consultation.Responder, cfg Config) Handler {
	if cfg.PongWait <= 0 {
		cfg.PongWait = defaultPongWait
	}
	if cfg.PingPeriod <= 0 || cfg.PingPeriod >= cfg.PongWait {
		cfg.PingPeriod = cfg.PongWait * 9 / 10
	}
	return &consultHandler{
		logger:    logger,
		responder: responder,
		cfg:       cfg,
	}
}

// Handle serves one socket. Every text frame is a Message and gets exactly
// one ResponseMessage back, in order.
func (h *consultHandler) Handle(c *websocket.Conn) {
	if semaphore, ok := c.Locals(middleware.SemaphoreKey).(*infraWebsocket.Semaphore); ok {
		defer semaphore.Release()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := c.SetReadDeadline(time.Now().Add(h.cfg.PongWait)); err != nil {
		h.logger.WithError(err).Error("failed to set read deadline")
		return
	}
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	})

	var writeMu sync.Mutex
	write := func(msg infraWebsocket.ResponseMessage) error {
		payload, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := c.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}
		return c.WriteMessage(websocket.TextMessage, payload)
	}

	go h.keepAlive(ctx, c, &writeMu)

	if err := write(infraWebsocket.ResponseMessage{Type: infraWebsocket.MessageTypeReady}); err != nil {
		h.logger.WithError(err).Error("failed to send ready message to client")
		return
	}

	for {
		messageType, raw, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.WithError(err).Warn("websocket closed unexpectedly")
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		if err := write(h.handleMessage(ctx, raw)); err != nil {
			h.logger.WithError(err).Error("failed to write websocket response")
			return
		}
	}
}

func (h *consultHandler) handleMessage(ctx context.Context, raw []byte) infraWebsocket.ResponseMessage {
	var msg infraWebsocket.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return errorMessage("", "invalid message")
	}
	if err := msg.Normalize(); err != nil {
		return errorMessage(msg.SessionID, err.Error())
	}

	switch msg.Type {
	case infraWebsocket.MessageTypeEndSession:
		if err := h.responder.EndSession(ctx, msg.SessionID); err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				return errorMessage(msg.SessionID, "session not found")
			}
			h.logger.WithError(err).WithField("session_id", msg.SessionID).Error("failed to end session")
			return errorMessage(msg.SessionID, "failed to end session")
		}
		return infraWebsocket.ResponseMessage{Type: infraWebsocket.MessageTypeEndSession, SessionID: msg.SessionID}
	default:
		result, err := h.responder.Consult(ctx, msg.SessionID, msg.Query)
		if err != nil {
			if errors.Is(err, domain.ErrGenerationFailed) {
				return errorMessage(msg.SessionID, consultation.OutcomeGenerationFailed)
			}
			return errorMessage(msg.SessionID, err.Error())
		}
		return infraWebsocket.ResponseMessage{
			Type:      infraWebsocket.MessageTypeResult,
			SessionID: result.SessionID,
			Payload:   result,
		}
	}
}

func (h *consultHandler) keepAlive(ctx context.Context, c *websocket.Conn, writeMu *sync.Mutex) {
	ticker := time.NewTicker(h.cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			writeMu.Lock()
			err := c.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			writeMu.Unlock()
			if err != nil {
				h.logger.WithError(err).Debug("failed to send ping")
				return
			}
		}
	}
}

func errorMessage(sessionID, msg string) infraWebsocket.ResponseMessage {
	return infraWebsocket.ResponseMessage{
		Type:      infraWebsocket.MessageTypeError,
		SessionID: sessionID,
		Error:     msg,
	}
}
