package http

import (
	"errors"

	"github.com/NeuralTrust/DoctourGate/pkg/app/consultation"
	domain "github.com/NeuralTrust/DoctourGate/pkg/domain/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type deleteSessionHandler struct {
	logger    *logrus.Logger
	responder *consultation.Responder
}

func NewDeleteSessionHandler(logger *logrus.Logger, responder *consultation.Responder) Handler {
	return &deleteSessionHandler{
		logger:    logger,
		responder: responder,
	}
}

// Handle @Summary End a conversation session
// @Tags Consultations
// @Param session_id path string true "Session ID"
// @Success 204 "Session deleted"
// @Failure 404 {object} map[string]interface{} "Session not found"
// @Router /api/v1/sessions/{session_id} [delete]
func (h *deleteSessionHandler) Handle(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")
	if err := h.responder.EndSession(c.UserContext(), sessionID); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
		}
		h.logger.WithError(err).WithField("session_id", sessionID).Error("failed to delete session")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete session"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
