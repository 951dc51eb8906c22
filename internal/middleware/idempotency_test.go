package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/kittie-pay/kittie/internal/logging"
)

func setupTestApp(t *testing.T) (*fiber.App, *int, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	app := fiber.New()
	app.Use(Idempotency(cache, time.Minute, logging.Discard()))

	hits := 0
	app.Post("/deposit/link", func(c *fiber.Ctx) error {
		hits++
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"url": "https://checkout.example.com/pay/1"})
	})

	cleanup := func() {
		cache.Close()
		mr.Close()
	}
	return app, &hits, cleanup
}

func TestIdempotencyPassesThroughWithoutHeader(t *testing.T) {
	app, hits, cleanup := setupTestApp(t)
	defer cleanup()

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(fiber.MethodPost, "/deposit/link", strings.NewReader("{}"))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
	}
	if *hits != 2 {
		t.Fatalf("handler hits = %d, want 2", *hits)
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	app, hits, cleanup := setupTestApp(t)
	defer cleanup()

	var first []byte
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(fiber.MethodPost, "/deposit/link", strings.NewReader("{}"))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		req.Header.Set("Idempotency-Key", "dep-123")

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		body, _ := io.ReadAll(resp.Body)
		if i == 0 {
			first = body
		} else if string(body) != string(first) {
			t.Fatalf("replayed body differs: %s vs %s", body, first)
		}
	}
	if *hits != 1 {
		t.Fatalf("handler hits = %d, want 1", *hits)
	}

	var out map[string]string
	if err := json.Unmarshal(first, &out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if out["url"] == "" {
		t.Fatal("stored response lost the url")
	}
}

func TestIdempotencySkipsReads(t *testing.T) {
	app, _, cleanup := setupTestApp(t)
	defer cleanup()

	app.Get("/balance", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"EUR/2": 0})
	})

	req := httptest.NewRequest(fiber.MethodGet, "/balance", nil)
	req.Header.Set("Idempotency-Key", "dep-123")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
