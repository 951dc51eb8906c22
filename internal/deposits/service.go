// Package deposits reconciles provider settlement events against the ledger:
// each completed checkout is staged on its own deposit account and then moved
// into the owner's wallet, idempotently under at-least-once delivery.
package deposits

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kittie-pay/kittie/internal/chart"
	"github.com/kittie-pay/kittie/internal/checkout"
	"github.com/kittie-pay/kittie/internal/ledger"
)

// ErrMalformedEvent marks a settlement that can never be reconciled, such as
// a completed checkout with no wallet owner in its metadata. Retrying the
// delivery cannot fix it.
var ErrMalformedEvent = errors.New("malformed settlement event")

// Service drives the Received -> Staged -> Settled state machine for one
// settlement event per call. All state lives in the ledger engine; the
// service itself keeps nothing between calls, so concurrent duplicate
// deliveries are resolved by the scripts' guards, not by process memory.
type Service struct {
	ledger ledger.Ledger
	logger *slog.Logger
}

// NewService builds a reconciler on top of the ledger gateway.
func NewService(ledgerBackend ledger.Ledger, logger *slog.Logger) *Service {
	return &Service{ledger: ledgerBackend, logger: logger}
}

// Reconcile processes one verified provider event.
//
// Non-settlement event types are acknowledged without touching the ledger.
// For settlements, the deposit account is derived from the provider-assigned
// event id, so redelivery targets the same account: a duplicate create is
// rejected by the engine with CONFLICT (the staging transaction reuses the
// account address as its reference) and a duplicate settle with
// INSUFFICIENT_FUND (the drained account no longer covers the fixed staged
// amount), both treated here as benign no-ops. Every other ledger failure
// propagates to the caller.
func (s *Service) Reconcile(ctx context.Context, event checkout.Event) error {
	if event.Type != checkout.EventCheckoutCompleted {
		s.logger.Debug("ignoring event", "event_id", event.ID, "type", event.Type)
		return nil
	}

	userID := event.UserID()
	if userID == "" {
		return fmt.Errorf("%w: event %s has no userId metadata", ErrMalformedEvent, event.ID)
	}
	if event.Data.Object.AmountTotal <= 0 {
		return fmt.Errorf("%w: event %s has non-positive amount %d", ErrMalformedEvent, event.ID, event.Data.Object.AmountTotal)
	}
	if event.Data.Object.Currency == "" {
		return fmt.Errorf("%w: event %s has no currency", ErrMalformedEvent, event.ID)
	}

	depositAccount := chart.Deposit(event.ID)
	walletAccount := chart.Wallet(userID)
	amount := ledger.Monetary{
		Amount: event.Data.Object.AmountTotal,
		Asset:  ledger.AssetFor(event.Data.Object.Currency),
	}

	err := s.ledger.Execute(ctx, ledger.ScriptCreateDeposit, depositAccount, map[string]any{
		"deposit": depositAccount,
		"amount":  amount,
	})
	switch {
	case err == nil:
	case ledger.HasCode(err, ledger.CodeConflict):
		s.logger.Info("deposit already staged", "event_id", event.ID, "deposit", depositAccount)
	default:
		return fmt.Errorf("stage deposit %s: %w", depositAccount, err)
	}

	if err := s.ledger.SetAccountMeta(ctx, depositAccount, map[string]string{
		ledger.MetaUser: walletAccount,
	}); err != nil {
		return fmt.Errorf("record deposit destination %s: %w", depositAccount, err)
	}

	err = s.ledger.Execute(ctx, ledger.ScriptProcessDeposit, "", map[string]any{
		"deposit": depositAccount,
		"amount":  amount,
	})
	switch {
	case err == nil:
		s.logger.Info("deposit settled",
			"event_id", event.ID,
			"deposit", depositAccount,
			"wallet", walletAccount,
			"amount", amount.Amount,
			"asset", amount.Asset,
		)
	case ledger.HasCode(err, ledger.CodeInsufficientFund):
		// The account is already drained: an earlier delivery settled it.
		s.logger.Info("deposit already settled", "event_id", event.ID, "deposit", depositAccount)
	default:
		return fmt.Errorf("settle deposit %s: %w", depositAccount, err)
	}

	return nil
}
