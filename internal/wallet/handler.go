package wallet

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/kittie-pay/kittie/internal/ledger"
)

// Handler exposes the wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Balance returns the authenticated user's holdings as an asset -> minor
// units mapping.
func (h *Handler) Balance(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return fiber.NewError(http.StatusUnauthorized, "missing user")
	}

	balances, err := h.service.Balance(c.UserContext(), userID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "balance unavailable")
	}
	return c.Status(http.StatusOK).JSON(balances)
}

type depositLinkRequest struct {
	Amount struct {
		Amount int64  `json:"amount"`
		Asset  string `json:"asset"`
	} `json:"amount"`
	Redirect struct {
		Success  string `json:"success"`
		Fallback string `json:"fallback"`
	} `json:"redirect"`
}

// DepositLink creates a hosted checkout session funding the authenticated
// user's wallet and returns its URL.
func (h *Handler) DepositLink(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return fiber.NewError(http.StatusUnauthorized, "missing user")
	}

	var req depositLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	url, err := h.service.CreateDepositLink(c.UserContext(), userID,
		ledger.Monetary{Amount: req.Amount.Amount, Asset: req.Amount.Asset},
		Redirect{Success: req.Redirect.Success, Fallback: req.Redirect.Fallback},
	)
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return fiber.NewError(http.StatusBadGateway, "could not create deposit link")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"url": url})
}
