package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// OTPRateLimit caps code requests per phone number (falling back to client
// IP) so the OTP provider is not used as an SMS cannon. Fails open when the
// cache is absent or unreachable.
func OTPRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}

		var req struct {
			PhoneNumber string `json:"phone_number"`
		}
		_ = c.BodyParser(&req)

		subject := strings.TrimSpace(req.PhoneNumber)
		if subject == "" {
			subject = c.IP()
		}

		key := "rl:otp:" + subject
		count, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			return c.Next()
		}
		if count == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if count > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many code requests, try again later")
		}
		return c.Next()
	}
}
