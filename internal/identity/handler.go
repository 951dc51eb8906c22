package identity

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/kittie-pay/kittie/internal/auth"
)

// Handler exposes the OTP login endpoints.
type Handler struct {
	service *Service
	tokens  *auth.Issuer
}

// NewHandler builds the identity HTTP handler.
func NewHandler(service *Service, tokens *auth.Issuer) *Handler {
	return &Handler{service: service, tokens: tokens}
}

type requestCodeRequest struct {
	PhoneNumber string `json:"phone_number"`
}

// RequestCode triggers an OTP delivery and returns the provider request id.
func (h *Handler) RequestCode(c *fiber.Ctx) error {
	var req requestCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	rid, err := h.service.RequestCode(c.UserContext(), req.PhoneNumber)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"rid": rid})
}

type loginRequest struct {
	RID  string `json:"rid"`
	Code string `json:"code"`
}

// Login verifies the OTP code and issues a session token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	user, err := h.service.Login(c.UserContext(), req.RID, req.Code)
	if err != nil {
		if errors.Is(err, ErrCodeRejected) {
			return fiber.NewError(http.StatusUnauthorized, "invalid code")
		}
		return fiber.NewError(http.StatusUnauthorized, "login failed")
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "token issuance failed")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"jwt": token})
}
