package deposits

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/kittie-pay/kittie/internal/checkout"
	"github.com/kittie-pay/kittie/internal/ledger"
)

// Handler receives provider webhooks.
type Handler struct {
	provider checkout.Provider
	service  *Service
	logger   *slog.Logger
}

// NewHandler builds the webhook handler.
func NewHandler(provider checkout.Provider, service *Service, logger *slog.Logger) *Handler {
	return &Handler{provider: provider, service: service, logger: logger}
}

// Webhook authenticates and reconciles one provider delivery.
//
// 400 means the delivery itself is bad (signature, unfixable payload) and
// must not be retried; 503 asks the provider to redeliver after a transient
// ledger outage; 200 acknowledges everything reconciled or intentionally
// ignored.
func (h *Handler) Webhook(c *fiber.Ctx) error {
	event, err := h.provider.VerifyEvent(c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		h.logger.Warn("webhook rejected", "error", err)
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.service.Reconcile(c.UserContext(), event); err != nil {
		switch {
		case errors.Is(err, ErrMalformedEvent):
			h.logger.Warn("unreconcilable event", "event_id", event.ID, "error", err)
			return fiber.NewError(http.StatusBadRequest, "unreconcilable event")
		case ledger.IsUnavailable(err):
			h.logger.Error("ledger unavailable, awaiting redelivery", "event_id", event.ID, "error", err)
			return fiber.NewError(http.StatusServiceUnavailable, "ledger unavailable")
		default:
			h.logger.Error("reconciliation failed", "event_id", event.ID, "error", err)
			return fiber.NewError(http.StatusInternalServerError, "reconciliation failed")
		}
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{})
}
