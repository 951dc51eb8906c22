package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kittie-pay/kittie/internal/wallet"
)

// RegisterWalletRoutes wires the authenticated wallet endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Get("/wallets/balance", h.Balance)
	r.Post("/wallets/deposit/link", h.DepositLink)
}
