package http

import (
	"errors"

	"github.com/NeuralTrust/DoctourGate/pkg/app/consultation"
	domain "github.com/NeuralTrust/DoctourGate/pkg/domain/errors"
	"github.com/NeuralTrust/DoctourGate/pkg/handlers/http/response"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type getSessionHandler struct {
	logger    *logrus.Logger
	responder *consultation.Responder
}

func NewGetSessionHandler(logger *logrus.Logger, responder *consultation.Responder) Handler {
	return &getSessionHandler{
		logger:    logger,
		responder: responder,
	}
}

// Handle @Summary Get a conversation session
// @Tags Consultations
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} response.SessionOutput
// @Failure 404 {object} map[string]interface{} "Session not found"
// @Router /api/v1/sessions/{session_id} [get]
func (h *getSessionHandler) Handle(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")
	history, err := h.responder.Session(c.UserContext(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
		}
		h.logger.WithError(err).WithField("session_id", sessionID).Error("failed to load session")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load session"})
	}
	return c.Status(fiber.StatusOK).JSON(response.NewSessionOutput(history))
}
