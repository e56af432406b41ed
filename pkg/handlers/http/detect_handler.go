package http

import (
	appSafety "github.com/NeuralTrust/DoctourGate/pkg/app/safety"
	"github.com/NeuralTrust/DoctourGate/pkg/handlers/http/request"
	"github.com/NeuralTrust/DoctourGate/pkg/handlers/http/response"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type detectHandler struct {
	logger   *logrus.Logger
	pipeline *appSafety.Pipeline
}

func NewDetectHandler(logger *logrus.Logger, pipeline *appSafety.Pipeline) Handler {
	return &detectHandler{
		logger:   logger,
		pipeline: pipeline,
	}
}

// Handle @Summary Run a single detector
// @Tags Safety
// @Accept json
// @Produce json
// @Param detector path string true "substances, practices or emergencies"
// @Param request body request.DetectRequest true "Text to scan"
// @Success 200 {object} response.DetectionOutput
// @Failure 404 {object} map[string]interface{} "Unknown detector"
// @Router /api/v1/safety/detect/{detector} [post]
func (h *detectHandler) Handle(c *fiber.Ctx) error {
	name := c.Params("detector")
	detector, ok := h.pipeline.Detector(name)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown detector: " + name})
	}

	var req request.DetectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	detection := detector.Detect(*req.Text, h.pipeline.RuleSet())
	matches := detection.Matches
	if matches == nil {
		matches = []string{}
	}
	return c.Status(fiber.StatusOK).JSON(response.DetectionOutput{
		Detector: detector.Name(),
		Clean:    detection.Clean,
		Matches:  matches,
	})
}
