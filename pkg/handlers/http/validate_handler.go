package http

import (
	appSafety "github.com/NeuralTrust/DoctourGate/pkg/app/safety"
	"github.com/NeuralTrust/DoctourGate/pkg/handlers/http/request"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type validateHandler struct {
	logger    *logrus.Logger
	validator appSafety.Validator
}

func NewValidateHandler(logger *logrus.Logger, validator appSafety.Validator) Handler {
	return &validateHandler{
		logger:    logger,
		validator: validator,
	}
}

// Handle @Summary Validate a candidate response
// @Description Runs the layered safety checks over a user input and a candidate response
// @Tags Safety
// @Accept json
// @Produce json
// @Param request body request.ValidateRequest true "Pair to validate"
// @Success 200 {object} safety.Verdict
// @Failure 400 {object} map[string]interface{} "Invalid request body"
// @Router /api/v1/safety/validate [post]
func (h *validateHandler) Handle(c *fiber.Ctx) error {
	var req request.ValidateRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).Debug("failed to parse validate request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	verdict := h.validator.Validate(c.UserContext(), *req.UserInput, *req.CandidateResponse)
	return c.Status(fiber.StatusOK).JSON(verdict)
}
