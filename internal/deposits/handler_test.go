package deposits

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/kittie-pay/kittie/internal/chart"
	"github.com/kittie-pay/kittie/internal/checkout"
	"github.com/kittie-pay/kittie/internal/ledger"
	"github.com/kittie-pay/kittie/internal/logging"
)

const webhookSecret = "whsec_test"

func sign(payload []byte) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func newWebhookApp(backend ledger.Ledger) *fiber.App {
	provider := checkout.NewStripeClient("sk_test", webhookSecret, time.Second)
	handler := NewHandler(provider, NewService(backend, logging.Discard()), logging.Discard())

	app := fiber.New()
	app.Post("/hooks/stripe", handler.Webhook)
	return app
}

func postWebhook(t *testing.T, app *fiber.App, payload []byte, signature string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/hooks/stripe", bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp.StatusCode
}

func TestWebhookSettlesDeposit(t *testing.T) {
	engine := ledger.NewInMemory()
	app := newWebhookApp(engine)

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1","amount_total":5000,"currency":"eur","metadata":{"userId":"u1"}}}}`)
	if status := postWebhook(t, app, payload, sign(payload)); status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}

	wallet, _ := engine.GetAccount(context.Background(), chart.Wallet("u1"))
	if wallet.Balances["EUR/2"] != 5_000 {
		t.Fatalf("wallet balance = %d, want 5000", wallet.Balances["EUR/2"])
	}

	// Provider redelivery of the identical event.
	if status := postWebhook(t, app, payload, sign(payload)); status != fiber.StatusOK {
		t.Fatalf("redelivery status = %d, want 200", status)
	}
	wallet, _ = engine.GetAccount(context.Background(), chart.Wallet("u1"))
	if wallet.Balances["EUR/2"] != 5_000 {
		t.Fatalf("wallet balance after redelivery = %d, want 5000", wallet.Balances["EUR/2"])
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	app := newWebhookApp(ledger.NewInMemory())

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	if status := postWebhook(t, app, payload, "t=1,v1=deadbeef"); status != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if status := postWebhook(t, app, payload, ""); status != fiber.StatusBadRequest {
		t.Fatalf("unsigned status = %d, want 400", status)
	}
}

func TestWebhookAcknowledgesIgnoredTypes(t *testing.T) {
	engine := ledger.NewInMemory()
	app := newWebhookApp(engine)

	payload := []byte(`{"id":"evt_2","type":"payment_intent.created","data":{"object":{"amount_total":5000,"metadata":{"userId":"u1"}}}}`)
	if status := postWebhook(t, app, payload, sign(payload)); status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if engine.TransactionCount(chart.Wallet("u1")) != 0 {
		t.Fatal("ignored event produced ledger activity")
	}
}

func TestWebhookRejectsMissingUserMetadata(t *testing.T) {
	app := newWebhookApp(ledger.NewInMemory())

	payload := []byte(`{"id":"evt_3","type":"checkout.session.completed","data":{"object":{"amount_total":5000,"currency":"eur","metadata":{}}}}`)
	if status := postWebhook(t, app, payload, sign(payload)); status != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
}

func TestWebhookSignalsRetryOnLedgerOutage(t *testing.T) {
	outage := &ledger.Error{Code: ledger.CodeUnavailable, Message: "connection refused"}
	app := newWebhookApp(&failingLedger{Ledger: ledger.NewInMemory(), err: outage})

	payload := []byte(`{"id":"evt_4","type":"checkout.session.completed","data":{"object":{"amount_total":5000,"currency":"eur","metadata":{"userId":"u1"}}}}`)
	if status := postWebhook(t, app, payload, sign(payload)); status != fiber.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", status)
	}
}
