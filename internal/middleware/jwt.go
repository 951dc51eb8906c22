package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/kittie-pay/kittie/internal/auth"
)

// JWTAuth validates the bearer token and stores the user id in request
// locals for downstream handlers.
func JWTAuth(tokens *auth.Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}

		userID, err := tokens.Verify(strings.TrimSpace(header[len("Bearer "):]))
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}
