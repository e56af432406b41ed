package http

import "github.com/gofiber/fiber/v2"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport interface {
	GetTransport() HandlerTransport
}

type HandlerTransportDTO struct {
	// Safety
	ValidateHandler   Handler
	DetectHandler     Handler
	GetRuleSetHandler Handler

	// Consultation
	ConsultHandler       Handler
	GetSessionHandler    Handler
	DeleteSessionHandler Handler

	// Admin
	ReloadRulesHandler Handler
	GetVersionHandler  Handler
}

func (t *HandlerTransportDTO) GetTransport() HandlerTransport {
	return t
}
