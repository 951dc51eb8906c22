package checkout

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	stripeAPIBase      = "https://api.stripe.com"
	signatureTolerance = 5 * time.Minute
)

// StripeClient creates hosted checkout sessions and verifies webhook
// signatures against the account's webhook secret.
type StripeClient struct {
	baseURL       string
	secretKey     string
	webhookSecret string
	hc            *http.Client
	now           func() time.Time
}

// NewStripeClient builds a provider connector. timeout bounds session
// creation calls; zero selects a 15s default.
func NewStripeClient(secretKey, webhookSecret string, timeout time.Duration) *StripeClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &StripeClient{
		baseURL:       stripeAPIBase,
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		hc:            &http.Client{Timeout: timeout},
		now:           time.Now,
	}
}

type sessionResponse struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateDepositSession creates a payment-mode checkout session with a single
// Deposit line item and the user id embedded in session metadata, returning
// the hosted URL.
func (c *StripeClient) CreateDepositSession(ctx context.Context, input SessionInput) (string, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", input.SuccessURL)
	form.Set("cancel_url", input.CancelURL)
	form.Set("line_items[0][price_data][currency]", strings.ToLower(input.Currency))
	form.Set("line_items[0][price_data][product_data][name]", "Deposit")
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(input.AmountMinor, 10))
	form.Set("line_items[0][quantity]", "1")
	form.Set("metadata[userId]", input.UserID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build session request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read session response: %w", err)
	}

	var session sessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return "", fmt.Errorf("decode session response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || session.Error != nil {
		if session.Error != nil {
			return "", fmt.Errorf("provider refused session: %s", session.Error.Message)
		}
		return "", fmt.Errorf("provider returned status %d", resp.StatusCode)
	}
	if session.URL == "" {
		return "", fmt.Errorf("provider returned session %s without a url", session.ID)
	}
	return session.URL, nil
}

// VerifyEvent authenticates a raw webhook payload against its signature
// header ("t=<unix>,v1=<hex>") and parses the event envelope. The signed
// payload is "<t>.<body>" under HMAC-SHA256 with the webhook secret.
func (c *StripeClient) VerifyEvent(payload []byte, sigHeader string) (Event, error) {
	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return Event{}, err
	}

	age := c.now().Sub(time.Unix(timestamp, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return Event{}, fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
	}

	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	expected := mac.Sum(nil)

	verified := false
	for _, sig := range signatures {
		decoded, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			verified = true
			break
		}
	}
	if !verified {
		return Event{}, ErrInvalidSignature
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	return event, nil
}

func parseSignatureHeader(header string) (int64, []string, error) {
	var (
		timestamp  int64
		signatures []string
	)
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: malformed timestamp", ErrInvalidSignature)
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, value)
		}
	}
	if timestamp == 0 || len(signatures) == 0 {
		return 0, nil, fmt.Errorf("%w: missing timestamp or signature", ErrInvalidSignature)
	}
	return timestamp, signatures, nil
}
