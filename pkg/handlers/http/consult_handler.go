package http

import (
	"errors"

	"github.com/NeuralTrust/DoctourGate/pkg/app/consultation"
	"github.com/NeuralTrust/DoctourGate/pkg/common"
	domain "github.com/NeuralTrust/DoctourGate/pkg/domain/errors"
	"github.com/NeuralTrust/DoctourGate/pkg/handlers/http/request"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type consultHandler struct {
	logger    *logrus.Logger
	responder *consultation.Responder
}

func NewConsultHandler(logger *logrus.Logger, responder *consultation.Responder) Handler {
	return &consultHandler{
		logger:    logger,
		responder: responder,
	}
}

// Handle @Summary Ask the historical physician
// @Description Generates, validates and records one consultation turn
// @Tags Consultations
// @Accept json
// @Produce json
// @Param request body request.ConsultRequest true "Consultation query"
// @Param X-Session-Id header string false "Session to continue when the body omits session_id"
// @Success 200 {object} consultation.Result
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 502 {object} map[string]interface{} "Generation failed"
// @Router /api/v1/consultations [post]
func (h *consultHandler) Handle(c *fiber.Ctx) error {
	var req request.ConsultRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.SessionID == "" {
		req.SessionID = c.Get(common.SessionIDHeader)
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := h.responder.Consult(c.UserContext(), req.SessionID, req.Query)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyQuery):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, domain.ErrGenerationFailed):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": consultation.OutcomeGenerationFailed})
		}
		h.logger.WithError(err).Error("consultation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "consultation failed"})
	}
	c.Set(common.SessionIDHeader, result.SessionID)
	return c.Status(fiber.StatusOK).JSON(result)
}
