package router

import (
	"time"

	handlers "github.com/NeuralTrust/DoctourGate/pkg/handlers/http"
	wsHandlers "github.com/NeuralTrust/DoctourGate/pkg/handlers/websocket"
	"github.com/NeuralTrust/DoctourGate/pkg/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const (
	VersionPath   = "/version"
	WebsocketPath = "/ws/consult"
)

type apiRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    handlers.HandlerTransport
	wsHandlerTransport  wsHandlers.HandlerTransport
}

func NewAPIRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport handlers.HandlerTransport,
	wsHandlerTransport wsHandlers.HandlerTransport,
) ServerRouter {
	return &apiRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
		wsHandlerTransport:  wsHandlerTransport,
	}
}

func (r *apiRouter) BuildRoutes(router *fiber.App) error {
	handlerTransport, ok := r.handlerTransport.GetTransport().(*handlers.HandlerTransportDTO)
	if !ok {
		return ErrInvalidHandlerTransport
	}
	wsHandlerTransport, ok := r.wsHandlerTransport.GetTransport().(*wsHandlers.HandlerTransportDTO)
	if !ok {
		return ErrInvalidHandlerTransport
	}

	if middlewares := r.middlewareTransport.GetMiddlewares(); len(middlewares) > 0 {
		router.Use(middlewares...)
	}

	router.Get(VersionPath, handlerTransport.GetVersionHandler.Handle)

	v1 := router.Group("/api/v1")
	{
		safety := v1.Group("/safety")
		{
			safety.Post("/validate", handlerTransport.ValidateHandler.Handle)
			safety.Post("/detect/:detector", handlerTransport.DetectHandler.Handle)
			safety.Get("/rules", handlerTransport.GetRuleSetHandler.Handle)
		}

		v1.Post("/consultations", handlerTransport.ConsultHandler.Handle)

		sessions := v1.Group("/sessions")
		{
			sessions.Get("/:session_id", handlerTransport.GetSessionHandler.Handle)
			sessions.Delete("/:session_id", handlerTransport.DeleteSessionHandler.Handle)
		}
	}

	ws := router.Group("/ws")
	if r.middlewareTransport.WebsocketMiddleware != nil {
		ws.Use(r.middlewareTransport.WebsocketMiddleware.Middleware())
	}
	ws.Get("/consult", websocket.New(
		wsHandlerTransport.ConsultHandler.Handle,
		websocket.Config{
			HandshakeTimeout: 15 * time.Second,
			ReadBufferSize:   4096,
			WriteBufferSize:  4096,
		},
	))

	return nil
}
