// Package checkout connects to the external card-payment provider: it
// creates hosted checkout sessions and verifies the settlement events the
// provider delivers back over webhooks.
package checkout

import (
	"context"
	"errors"
)

// EventCheckoutCompleted is the only event type that settles funds; every
// other type is acknowledged and ignored.
const EventCheckoutCompleted = "checkout.session.completed"

// MetadataUserID is the session metadata key correlating a settlement back
// to a wallet owner.
const MetadataUserID = "userId"

// ErrInvalidSignature means the webhook payload could not be authenticated.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Session is the provider's view of one hosted checkout.
type Session struct {
	ID          string            `json:"id"`
	AmountTotal int64             `json:"amount_total"`
	Currency    string            `json:"currency"`
	Metadata    map[string]string `json:"metadata"`
}

// Event is a verified provider notification. Events arrive at least once;
// the provider reuses the same ID when it redelivers.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object Session `json:"object"`
	} `json:"data"`
}

// UserID returns the wallet owner the settlement belongs to, or "" when the
// session carries no correlation metadata.
func (e Event) UserID() string {
	return e.Data.Object.Metadata[MetadataUserID]
}

// SessionInput describes the hosted checkout to create.
type SessionInput struct {
	UserID      string
	AmountMinor int64
	Currency    string
	SuccessURL  string
	CancelURL   string
}

// Provider is the external payment provider contract: session creation on
// the way out, event verification on the way back in.
type Provider interface {
	CreateDepositSession(ctx context.Context, input SessionInput) (string, error)
	VerifyEvent(payload []byte, sigHeader string) (Event, error)
}
