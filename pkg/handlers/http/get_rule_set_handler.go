package http

import (
	appSafety "github.com/NeuralTrust/DoctourGate/pkg/app/safety"
	"github.com/NeuralTrust/DoctourGate/pkg/handlers/http/response"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type getRuleSetHandler struct {
	logger   *logrus.Logger
	pipeline *appSafety.Pipeline
}

func NewGetRuleSetHandler(logger *logrus.Logger, pipeline *appSafety.Pipeline) Handler {
	return &getRuleSetHandler{
		logger:   logger,
		pipeline: pipeline,
	}
}

// Handle @Summary Describe the active rule set
// @Tags Safety
// @Produce json
// @Success 200 {object} response.RuleSetOutput
// @Router /api/v1/safety/rules [get]
func (h *getRuleSetHandler) Handle(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(ruleSetOutput(h.pipeline))
}

func ruleSetOutput(p *appSafety.Pipeline) response.RuleSetOutput {
	return response.RuleSetOutput{
		RuleSetSummary: p.RuleSet().Summary(),
		FailMode:       string(p.FailMode()),
	}
}
