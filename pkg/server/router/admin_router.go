package router

import (
	handlers "github.com/NeuralTrust/DoctourGate/pkg/handlers/http"
	"github.com/NeuralTrust/DoctourGate/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

type adminRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    handlers.HandlerTransport
	docsPath            string
}

// NewAdminRouter serves rule administration behind bearer auth. docsPath
// points at the OpenAPI document; empty disables the docs routes.
func NewAdminRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport handlers.HandlerTransport,
	docsPath string,
) ServerRouter {
	return &adminRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
		docsPath:            docsPath,
	}
}

func (r *adminRouter) BuildRoutes(router *fiber.App) error {
	handlerTransport, ok := r.handlerTransport.GetTransport().(*handlers.HandlerTransportDTO)
	if !ok {
		return ErrInvalidHandlerTransport
	}

	if middlewares := r.middlewareTransport.GetMiddlewares(); len(middlewares) > 0 {
		router.Use(middlewares...)
	}

	if r.docsPath != "" {
		router.Static("/swagger.json", r.docsPath)
		router.Get("/docs/*", swagger.New(swagger.Config{
			URL: "/swagger.json",
		}))
	}

	router.Get(VersionPath, handlerTransport.GetVersionHandler.Handle)

	admin := router.Group("/admin")
	{
		if r.middlewareTransport.AdminAuthMiddleware != nil {
			admin.Use(r.middlewareTransport.AdminAuthMiddleware.Middleware())
		}
		rules := admin.Group("/rules")
		{
			rules.Get("", handlerTransport.GetRuleSetHandler.Handle)
			rules.Post("/reload", handlerTransport.ReloadRulesHandler.Handle)
		}
	}
	return nil
}
