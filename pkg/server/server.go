package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/NeuralTrust/DoctourGate/pkg/config"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/prometheus"
	"github.com/NeuralTrust/DoctourGate/pkg/server/router"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const (
	HealthPath      = "/health"
	AdminHealthPath = "/__/health"
	MetricsPath     = "/metrics"
)

// Server interface defines the common behavior for all servers
type Server interface {
	Run() error
	Shutdown() error
}

type BaseServer struct {
	Config     *config.Config
	Logger     *logrus.Logger
	Router     *fiber.App
	metricsApp *fiber.App
}

func NewBaseServer(config *config.Config, logger *logrus.Logger) *BaseServer {
	r := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReduceMemoryUsage:     true,
		Network:               fiber.NetworkTCP,
		BodyLimit:             1 * 1024 * 1024,
		ReadTimeout:           60 * time.Second,
		WriteTimeout:          120 * time.Second,
		IdleTimeout:           120 * time.Second,
	})

	r.Server().NoDefaultServerHeader = true

	return &BaseServer{
		Config: config,
		Logger: logger,
		Router: r,
	}
}

// setupHealthCheck adds a health check endpoint to the server
func (s *BaseServer) setupHealthCheck() {
	s.Router.Get(HealthPath, func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	s.Router.Get(AdminHealthPath, func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
}

func (s *BaseServer) WithRouters(routers ...router.ServerRouter) *BaseServer {
	for _, r := range routers {
		if err := r.BuildRoutes(s.Router); err != nil {
			s.Logger.WithError(err).Error("failed to build routes")
		}
	}
	return s
}

func (s *BaseServer) setupMetricsEndpoint() {
	if !s.Config.Metrics.Enabled {
		s.Logger.Info("prometheus metrics are disabled by configuration")
		return
	}
	if s.metricsApp != nil {
		return
	}

	s.metricsApp = fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	s.metricsApp.Use(recover.New())

	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(prometheus.Gatherer(), promhttp.HandlerOpts{}))
	s.metricsApp.Get(MetricsPath, func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	})

	go func() {
		addr := fmt.Sprintf(":%d", s.Config.Server.MetricsPort)
		s.Logger.WithField("addr", addr).Info("starting metrics server")
		if err := s.metricsApp.Listen(addr); err != nil {
			s.Logger.WithError(err).Error("failed to start metrics server")
		}
	}()
}

func (s *BaseServer) Shutdown() error {
	var errs []error
	if err := s.Router.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	if s.metricsApp != nil {
		if err := s.metricsApp.Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
