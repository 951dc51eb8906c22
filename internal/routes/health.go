package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RegisterHealthRoutes adds liveness/readiness style endpoints. ledgerPing
// probes the external ledger engine.
func RegisterHealthRoutes(app *fiber.App, d Deps, ledgerPing func(context.Context) error) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		dbStatus := "ok"
		redisStatus := "ok"
		ledgerStatus := "ok"

		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if d.DB != nil {
			if err := d.DB.Ping(ctx); err != nil {
				dbStatus = err.Error()
			}
		}
		if d.Cache != nil {
			if err := d.Cache.Ping(ctx).Err(); err != nil {
				redisStatus = err.Error()
			}
		}
		if err := ledgerPing(ctx); err != nil {
			ledgerStatus = err.Error()
		}

		status := http.StatusOK
		if dbStatus != "ok" || redisStatus != "ok" || ledgerStatus != "ok" {
			status = http.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{
			"status":    fiber.Map{"postgres": dbStatus, "redis": redisStatus, "ledger": ledgerStatus},
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}
