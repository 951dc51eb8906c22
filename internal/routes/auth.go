package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kittie-pay/kittie/internal/identity"
)

// RegisterAuthRoutes wires the OTP login endpoints.
func RegisterAuthRoutes(r fiber.Router, h *identity.Handler, rateLimit fiber.Handler) {
	r.Post("/auth/request-code", rateLimit, h.RequestCode)
	r.Post("/auth/login", h.Login)
}
