package middleware

import (
	infra "github.com/NeuralTrust/DoctourGate/pkg/infra/websocket"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type websocketMiddleware struct {
	logger    *logrus.Logger
	semaphore *infra.Semaphore
}

func NewWebsocketMiddleware(logger *logrus.Logger, semaphore *infra.Semaphore) Middleware {
	return &websocketMiddleware{
		logger:    logger,
		semaphore: semaphore,
	}
}

// Middleware gates websocket routes. The slot it takes is released by the
// connection handler once the socket closes, or here when the upgrade fails.
func (m *websocketMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if !m.semaphore.Acquire() {
			m.logger.WithField("active", m.semaphore.Active()).Warn("maximum websocket connections reached, rejecting connection")
			return fiber.ErrTooManyRequests
		}
		c.Locals(SemaphoreKey, m.semaphore)
		if err := c.Next(); err != nil {
			// The handshake failed, so the connection handler never took the slot.
			m.semaphore.Release()
			return err
		}
		return nil
	}
}
