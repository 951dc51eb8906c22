package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kittie-pay/kittie/internal/deposits"
)

// RegisterHookRoutes wires the provider webhook endpoint. It sits outside
// the /api group: deliveries are authenticated by signature, not by bearer
// token.
func RegisterHookRoutes(app *fiber.App, h *deposits.Handler) {
	app.Post("/hooks/stripe", h.Webhook)
}
