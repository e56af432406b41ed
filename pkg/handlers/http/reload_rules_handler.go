package http

import (
	"time"

	appSafety "github.com/NeuralTrust/DoctourGate/pkg/app/safety"
	"github.com/NeuralTrust/DoctourGate/pkg/handlers/http/request"
	"github.com/NeuralTrust/DoctourGate/pkg/handlers/http/response"
	infraCache "github.com/NeuralTrust/DoctourGate/pkg/infra/cache"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/cache/event"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type reloadRulesHandler struct {
	logger     *logrus.Logger
	pipeline   *appSafety.Pipeline
	publisher  infraCache.EventPublisher
	instanceID string
}

func NewReloadRulesHandler(
	logger *logrus.Logger,
	pipeline *appSafety.Pipeline,
	publisher infraCache.EventPublisher,
	instanceID string,
) Handler {
	return &reloadRulesHandler{
		logger:     logger,
		pipeline:   pipeline,
		publisher:  publisher,
		instanceID: instanceID,
	}
}

// Handle @Summary Reload the safety rule file
// @Description Reloads rules on this instance and asks peers to do the same
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body request.ReloadRulesRequest false "Optional replacement path"
// @Success 200 {object} response.ReloadOutput
// @Failure 422 {object} map[string]interface{} "Rule file rejected, active rules kept"
// @Router /admin/rules/reload [post]
func (h *reloadRulesHandler) Handle(c *fiber.Ctx) error {
	var req request.ReloadRulesRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
	}

	if _, err := h.pipeline.Reload(c.UserContext(), req.Path, appSafety.TriggerAdmin); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":    err.Error(),
			"rule_set": ruleSetOutput(h.pipeline),
		})
	}

	if err := h.publisher.Publish(c.UserContext(), event.RuleSetReloadEvent{
		Path:        req.Path,
		Origin:      h.instanceID,
		RequestedAt: time.Now().UTC(),
	}); err != nil {
		h.logger.WithError(err).Error("failed to publish rule set reload event")
	}

	return c.Status(fiber.StatusOK).JSON(response.ReloadOutput{
		Message: "rules reloaded",
		RuleSet: ruleSetOutput(h.pipeline),
	})
}
