// Package wallet reads custodial balances and issues hosted deposit links.
package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/kittie-pay/kittie/internal/chart"
	"github.com/kittie-pay/kittie/internal/checkout"
	"github.com/kittie-pay/kittie/internal/ledger"
)

// DefaultAsset always appears in a balance read, even for wallets the ledger
// has never seen.
const DefaultAsset = "EUR/2"

// ErrInvalidRequest marks caller mistakes in a deposit-link request.
var ErrInvalidRequest = errors.New("invalid deposit request")

// Redirect carries the URLs the provider sends the user back to.
type Redirect struct {
	Success  string
	Fallback string
}

// Service aggregates wallet balances from the ledger and delegates deposit
// sessions to the payment provider. Stateless; safe for concurrent use.
type Service struct {
	ledger   ledger.Ledger
	provider checkout.Provider
}

// NewService builds the wallet service.
func NewService(ledgerBackend ledger.Ledger, provider checkout.Provider) *Service {
	return &Service{ledger: ledgerBackend, provider: provider}
}

// Balance returns the user's holdings per asset, merged over the default
// mapping so unfunded wallets read as zero rather than absent.
func (s *Service) Balance(ctx context.Context, userID string) (map[string]int64, error) {
	account, err := s.ledger.GetAccount(ctx, chart.Wallet(userID))
	if err != nil {
		return nil, fmt.Errorf("read wallet for %s: %w", userID, err)
	}

	balances := map[string]int64{DefaultAsset: 0}
	for asset, amount := range account.Balances {
		balances[asset] = amount
	}
	return balances, nil
}

// CreateDepositLink asks the provider for a hosted checkout URL funding this
// user's wallet. The user id rides in session metadata so the settlement
// webhook can be correlated back. No ledger interaction happens here.
func (s *Service) CreateDepositLink(ctx context.Context, userID string, amount ledger.Monetary, redirect Redirect) (string, error) {
	if amount.Amount <= 0 {
		return "", fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}
	currency, err := ledger.CurrencyOf(amount.Asset)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	url, err := s.provider.CreateDepositSession(ctx, checkout.SessionInput{
		UserID:      userID,
		AmountMinor: amount.Amount,
		Currency:    currency,
		SuccessURL:  redirect.Success,
		CancelURL:   redirect.Fallback,
	})
	if err != nil {
		return "", fmt.Errorf("create deposit session: %w", err)
	}
	return url, nil
}
