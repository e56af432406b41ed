package middleware

import (
	"github.com/NeuralTrust/DoctourGate/pkg/common"
	"github.com/gofiber/fiber/v2"
)

const (
	RequestIDHeader = common.RequestIDHeader
	RequestIDKey    = common.RequestIDKey
	AdminSubjectKey = common.AdminSubjectKey
	SemaphoreKey    = common.SemaphoreKey

	authorizationKey = "Authorization"
	bearerPrefix     = "Bearer "
)

type Middleware interface {
	Middleware() fiber.Handler
}

type Transport struct {
	AdminAuthMiddleware    Middleware
	MetricsMiddleware      Middleware
	PanicRecoverMiddleware Middleware
	WebsocketMiddleware    Middleware
}

// GetMiddlewares returns the chain applied to every route, outermost first.
func (t *Transport) GetMiddlewares() []interface{} {
	var handlers []interface{}
	for _, m := range []Middleware{t.PanicRecoverMiddleware, t.MetricsMiddleware} {
		if m != nil {
			handlers = append(handlers, m.Middleware())
		}
	}
	return handlers
}
