package checkout

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// StaticProvider simulates the payment provider for development and tests:
// synthetic session URLs, no signature verification.
type StaticProvider struct{}

// CreateDepositSession returns a synthetic hosted checkout URL.
func (StaticProvider) CreateDepositSession(_ context.Context, _ SessionInput) (string, error) {
	return fmt.Sprintf("https://checkout.example.com/pay/%s", uuid.NewString()), nil
}

// VerifyEvent parses the payload without authenticating it.
func (StaticProvider) VerifyEvent(payload []byte, _ string) (Event, error) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	return event, nil
}
