package middleware

import (
	"strings"

	"github.com/NeuralTrust/DoctourGate/pkg/infra/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type adminAuthMiddleware struct {
	logger     *logrus.Logger
	jwtManager jwt.Manager
}

func NewAdminAuthMiddleware(
	logger *logrus.Logger,
	jwtManager jwt.Manager,
) Middleware {
	return &adminAuthMiddleware{
		logger:     logger,
		jwtManager: jwtManager,
	}
}

func (m *adminAuthMiddleware) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get(authorizationKey)
		if authHeader == "" {
			m.logger.Debug("no authorization header provided")
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authorization required"})
		}
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			m.logger.Debug("invalid authorization header format")
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid authorization format"})
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		if tokenString == "" {
			m.logger.Debug("empty token provided")
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Empty token provided"})
		}

		claims, err := m.jwtManager.DecodeToken(tokenString)
		if err != nil {
			m.logger.WithError(err).Debug("invalid admin token")
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		}

		ctx.Locals(AdminSubjectKey, claims.Subject)
		return ctx.Next()
	}
}
