// Package ledger is the gateway to the external double-entry ledger engine.
// It is the only package allowed to talk to the engine; everything else goes
// through the Ledger interface so tests can substitute the in-memory fake.
package ledger

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// ScriptCreateDeposit books a settlement's value into its staging
	// account from the world source. Rerunning it with the same
	// transaction reference is rejected with CodeConflict.
	ScriptCreateDeposit = "create-deposit"

	// ScriptProcessDeposit moves the staged amount out of a staging
	// account into the wallet named by its "user" metadata. The send is
	// for the exact amount, so a rerun against a drained account is
	// rejected with CodeInsufficientFund.
	ScriptProcessDeposit = "process-deposit"

	// WorldAccount is the engine's external source of funds.
	WorldAccount = "world"

	// MetaUser records which wallet a staging account is destined for.
	MetaUser = "user"
)

// Monetary is an amount in integer minor units of an asset such as "EUR/2".
type Monetary struct {
	Amount int64  `json:"amount"`
	Asset  string `json:"asset"`
}

// Account is a point-in-time read of a ledger account. Accounts the engine
// has never seen read as empty balances and metadata, not as errors.
type Account struct {
	Address  string
	Balances map[string]int64
	Metadata map[string]string
}

// Posting moves an amount of one asset between two accounts.
type Posting struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Amount      int64  `json:"amount"`
	Asset       string `json:"asset"`
}

// Transaction is one atomically-applied group of postings.
type Transaction struct {
	ID        int64     `json:"txid"`
	Postings  []Posting `json:"postings"`
	Timestamp time.Time `json:"timestamp"`
}

// Iterator walks an account's transactions page by page. It is forward-only
// and finite; a fresh Transactions call restarts from the first page. Not
// safe for concurrent use.
type Iterator interface {
	// Next advances to the next record, fetching further pages as needed.
	// It returns false once the sequence is exhausted or a fetch failed.
	Next(ctx context.Context) bool
	// Transaction returns the current record. Valid only after Next
	// reported true.
	Transaction() Transaction
	// Err reports the failure that stopped iteration, if any.
	Err() error
}

// Ledger is the collaborator contract of the external ledger engine. Scripts
// are the unit of atomicity: either every posting inside one applies or none
// do. A non-empty reference names the resulting transaction; the engine
// rejects a reference it has already committed with CodeConflict, which is
// what makes blind redelivery safe. The gateway never retries; retry policy
// belongs to callers.
type Ledger interface {
	Execute(ctx context.Context, script, reference string, vars map[string]any) error
	GetAccount(ctx context.Context, address string) (Account, error)
	SetAccountMeta(ctx context.Context, address string, meta map[string]string) error
	Transactions(address string) Iterator
}

// zeroDecimalCurrencies are the ISO-4217 currencies without minor units.
var zeroDecimalCurrencies = map[string]struct{}{
	"BIF": {}, "CLP": {}, "DJF": {}, "GNF": {}, "JPY": {}, "KMF": {},
	"KRW": {}, "MGA": {}, "PYG": {}, "RWF": {}, "UGX": {}, "VND": {},
	"VUV": {}, "XAF": {}, "XOF": {}, "XPF": {},
}

// AssetFor converts a provider currency code ("eur") into the engine's asset
// notation ("EUR/2").
func AssetFor(currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if _, ok := zeroDecimalCurrencies[code]; ok {
		return code + "/0"
	}
	return code + "/2"
}

// CurrencyOf extracts the lowercase currency code from an asset string such
// as "EUR/2".
func CurrencyOf(asset string) (string, error) {
	code, decimals, ok := strings.Cut(asset, "/")
	if !ok || code == "" {
		return "", fmt.Errorf("malformed asset %q", asset)
	}
	if _, err := strconv.Atoi(decimals); err != nil {
		return "", fmt.Errorf("malformed asset %q: %w", asset, err)
	}
	return strings.ToLower(code), nil
}
