package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/NeuralTrust/DoctourGate/pkg/infra/prometheus"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type metricsMiddleware struct {
	logger *logrus.Logger
}

// NewMetricsMiddleware tags every request with an ID and records request
// counts and latency per matched route.
func NewMetricsMiddleware(logger *logrus.Logger) Middleware {
	return &metricsMiddleware{logger: logger}
}

func (m *metricsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Locals(RequestIDKey, requestID)
		c.Set(RequestIDHeader, requestID)

		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		route := c.Route().Path
		elapsed := time.Since(start)

		prometheus.HTTPRequestsTotal.WithLabelValues(route, c.Method(), statusClass(status)).Inc()
		if prometheus.CurrentConfig().EnableLatency {
			prometheus.HTTPRequestLatency.WithLabelValues(route).Observe(float64(elapsed.Milliseconds()))
		}

		m.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Method(),
			"route":      route,
			"status":     status,
			"latency_ms": elapsed.Milliseconds(),
		}).Debug("request processed")
		return err
	}
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "5xx"
	}
	return fmt.Sprintf("%sxx", strconv.Itoa(code/100))
}
