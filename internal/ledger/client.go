package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// Client speaks the ledger engine's REST API. Each call is a self-contained
// RPC with a bounded timeout; the client holds no state beyond the
// connection pool.
type Client struct {
	baseURL string
	ledger  string
	scripts *ScriptSet
	hc      *http.Client
}

// NewClient builds a Client for one named ledger. timeout bounds every
// request; zero selects the default.
func NewClient(baseURL, ledgerName string, scripts *ScriptSet, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		ledger:  ledgerName,
		scripts: scripts,
		hc:      &http.Client{Timeout: timeout},
	}
}

type scriptRequest struct {
	Plain     string         `json:"plain"`
	Reference string         `json:"reference,omitempty"`
	Vars      map[string]any `json:"vars,omitempty"`
}

// engineError is how the engine reports script failures; it rides in the
// response body even on some 200 responses.
type engineError struct {
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// Execute runs a named script atomically. Validation, balance checks and
// reference uniqueness are the engine's responsibility; this only transports
// the call and classifies the outcome.
func (c *Client) Execute(ctx context.Context, script, reference string, vars map[string]any) error {
	src, err := c.scripts.Source(script)
	if err != nil {
		return err
	}

	body, err := json.Marshal(scriptRequest{Plain: src, Reference: reference, Vars: vars})
	if err != nil {
		return &Error{Code: CodeInternal, Message: "encode script request", Err: err}
	}

	var result engineError
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/%s/script", c.ledger), bytes.NewReader(body), &result); err != nil {
		return err
	}
	if result.ErrorCode != "" {
		return &Error{Code: mapEngineCode(result.ErrorCode), Message: result.ErrorMessage}
	}
	return nil
}

type accountEnvelope struct {
	Data struct {
		Address  string            `json:"address"`
		Balances map[string]int64  `json:"balances"`
		Metadata map[string]string `json:"metadata"`
	} `json:"data"`
}

// GetAccount reads an account's balances and metadata. The read reflects the
// most recent successfully executed script under the engine's own
// consistency model.
func (c *Client) GetAccount(ctx context.Context, address string) (Account, error) {
	var envelope accountEnvelope
	path := fmt.Sprintf("/%s/accounts/%s", c.ledger, url.PathEscape(address))
	if err := c.do(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return Account{}, err
	}
	account := Account{
		Address:  address,
		Balances: envelope.Data.Balances,
		Metadata: envelope.Data.Metadata,
	}
	if account.Balances == nil {
		account.Balances = map[string]int64{}
	}
	if account.Metadata == nil {
		account.Metadata = map[string]string{}
	}
	return account, nil
}

// Ping checks that the engine answers at all. Used by health endpoints.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/_info", nil, nil)
}

// SetAccountMeta attaches key/value annotations to an account.
func (c *Client) SetAccountMeta(ctx context.Context, address string, meta map[string]string) error {
	body, err := json.Marshal(meta)
	if err != nil {
		return &Error{Code: CodeInternal, Message: "encode metadata", Err: err}
	}
	path := fmt.Sprintf("/%s/accounts/%s/metadata", c.ledger, url.PathEscape(address))
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(body), nil)
}

// Transactions returns an iterator over the account's transaction history,
// newest page first, fetching further pages on demand.
func (c *Client) Transactions(address string) Iterator {
	return &pageIterator{client: c, account: address}
}

type transactionsEnvelope struct {
	Cursor struct {
		Data    []Transaction `json:"data"`
		HasMore bool          `json:"has_more"`
		Next    string        `json:"next"`
	} `json:"cursor"`
}

type pageIterator struct {
	client  *Client
	account string

	page    []Transaction
	pos     int
	next    string
	started bool
	done    bool
	err     error
}

func (it *pageIterator) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}
	for it.pos >= len(it.page) {
		if it.done {
			return false
		}
		if err := it.fetch(ctx); err != nil {
			it.err = err
			return false
		}
	}
	it.pos++
	return true
}

func (it *pageIterator) Transaction() Transaction { return it.page[it.pos-1] }

func (it *pageIterator) Err() error { return it.err }

func (it *pageIterator) fetch(ctx context.Context) error {
	query := url.Values{"account": {it.account}}
	if it.started && it.next != "" {
		query.Set("pagination_token", it.next)
	}
	path := fmt.Sprintf("/%s/transactions?%s", it.client.ledger, query.Encode())

	var envelope transactionsEnvelope
	if err := it.client.do(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return err
	}

	it.started = true
	it.page = envelope.Cursor.Data
	it.pos = 0
	it.next = envelope.Cursor.Next
	it.done = !envelope.Cursor.HasMore
	return nil
}

// do performs one engine RPC and decodes the response into out when non-nil.
// Transport failures map to CodeUnavailable, engine refusals to their
// reported codes.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Code: CodeInternal, Message: "build request", Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return unavailable(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return unavailable(err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return &Error{Code: CodeUnavailable, Message: fmt.Sprintf("engine returned %d", resp.StatusCode)}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var engineErr engineError
		if json.Unmarshal(payload, &engineErr) == nil && engineErr.ErrorCode != "" {
			return &Error{Code: mapEngineCode(engineErr.ErrorCode), Message: engineErr.ErrorMessage}
		}
		return &Error{Code: CodeValidation, Message: fmt.Sprintf("engine returned %d", resp.StatusCode)}
	}

	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			return &Error{Code: CodeInternal, Message: "decode response", Err: err}
		}
	}
	return nil
}

func mapEngineCode(code string) string {
	switch code {
	case CodeInsufficientFund, CodeConflict, CodeValidation, CodeInternal:
		return code
	default:
		return CodeInternal
	}
}
