package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const defaultPageSize = 15

// InMemory implements the engine contract, including the script guards, for
// tests and database-less development. Concurrency-safe.
type InMemory struct {
	mu           sync.RWMutex
	balances     map[string]map[string]int64
	metadata     map[string]map[string]string
	transactions []Transaction
	references   map[string]bool
	nextTxID     int64
	pageSize     int
}

// NewInMemory builds an empty in-memory ledger engine.
func NewInMemory() *InMemory {
	return &InMemory{
		balances:   make(map[string]map[string]int64),
		metadata:   make(map[string]map[string]string),
		references: make(map[string]bool),
		pageSize:   defaultPageSize,
	}
}

// SetPageSize adjusts how many transactions each iterator page holds.
func (l *InMemory) SetPageSize(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n > 0 {
		l.pageSize = n
	}
}

// Execute interprets the named scripts with the same guards the engine
// enforces: transaction-reference uniqueness plus the scripts' own balance
// and metadata checks.
func (l *InMemory) Execute(_ context.Context, script, reference string, vars map[string]any) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if reference != "" && l.references[reference] {
		return &Error{Code: CodeConflict, Message: fmt.Sprintf("reference %s already used", reference)}
	}

	var err error
	switch script {
	case ScriptCreateDeposit:
		err = l.createDeposit(vars)
	case ScriptProcessDeposit:
		err = l.processDeposit(vars)
	default:
		return &Error{Code: CodeValidation, Message: fmt.Sprintf("unknown script %q", script)}
	}
	if err != nil {
		return err
	}
	if reference != "" {
		l.references[reference] = true
	}
	return nil
}

func (l *InMemory) createDeposit(vars map[string]any) error {
	deposit, ok := vars["deposit"].(string)
	if !ok || deposit == "" {
		return &Error{Code: CodeValidation, Message: "create-deposit: missing deposit account"}
	}
	amount, ok := vars["amount"].(Monetary)
	if !ok {
		return &Error{Code: CodeValidation, Message: "create-deposit: missing monetary amount"}
	}
	if amount.Amount < 0 || amount.Asset == "" {
		return &Error{Code: CodeValidation, Message: "create-deposit: malformed monetary amount"}
	}

	l.post(Posting{Source: WorldAccount, Destination: deposit, Amount: amount.Amount, Asset: amount.Asset})
	return nil
}

func (l *InMemory) processDeposit(vars map[string]any) error {
	deposit, ok := vars["deposit"].(string)
	if !ok || deposit == "" {
		return &Error{Code: CodeValidation, Message: "process-deposit: missing deposit account"}
	}
	amount, ok := vars["amount"].(Monetary)
	if !ok || amount.Amount <= 0 || amount.Asset == "" {
		return &Error{Code: CodeValidation, Message: "process-deposit: malformed monetary amount"}
	}
	wallet, ok := l.metadata[deposit][MetaUser]
	if !ok || wallet == "" {
		return &Error{Code: CodeValidation, Message: fmt.Sprintf("account %s has no user metadata", deposit)}
	}
	if l.balances[deposit][amount.Asset] < amount.Amount {
		return &Error{Code: CodeInsufficientFund, Message: fmt.Sprintf("account %s cannot cover %d %s", deposit, amount.Amount, amount.Asset)}
	}

	l.post(Posting{Source: deposit, Destination: wallet, Amount: amount.Amount, Asset: amount.Asset})
	return nil
}

// post applies a transaction's postings. Caller holds the lock.
func (l *InMemory) post(postings ...Posting) {
	for _, p := range postings {
		l.credit(p.Source, p.Asset, -p.Amount)
		l.credit(p.Destination, p.Asset, p.Amount)
	}
	l.nextTxID++
	l.transactions = append(l.transactions, Transaction{
		ID:        l.nextTxID,
		Postings:  postings,
		Timestamp: time.Now().UTC(),
	})
}

func (l *InMemory) credit(address, asset string, amount int64) {
	if l.balances[address] == nil {
		l.balances[address] = make(map[string]int64)
	}
	l.balances[address][asset] += amount
}

// GetAccount returns a copy of the account state; unknown accounts read as
// empty.
func (l *InMemory) GetAccount(_ context.Context, address string) (Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	account := Account{
		Address:  address,
		Balances: make(map[string]int64, len(l.balances[address])),
		Metadata: make(map[string]string, len(l.metadata[address])),
	}
	for asset, amount := range l.balances[address] {
		account.Balances[asset] = amount
	}
	for key, value := range l.metadata[address] {
		account.Metadata[key] = value
	}
	return account, nil
}

// SetAccountMeta merges annotations onto the account.
func (l *InMemory) SetAccountMeta(_ context.Context, address string, meta map[string]string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.metadata[address] == nil {
		l.metadata[address] = make(map[string]string, len(meta))
	}
	for key, value := range meta {
		l.metadata[address][key] = value
	}
	return nil
}

// Transactions iterates the transactions touching the account in posting
// order, paginated to mimic the engine's cursor behaviour.
func (l *InMemory) Transactions(address string) Iterator {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var matched []Transaction
	for _, tx := range l.transactions {
		for _, p := range tx.Postings {
			if p.Source == address || p.Destination == address {
				matched = append(matched, tx)
				break
			}
		}
	}
	return &sliceIterator{records: matched, pageSize: l.pageSize}
}

// TransactionCount reports how many transactions touch the account. Test
// helper, in the spirit of the seed helpers the ledger backends expose.
func (l *InMemory) TransactionCount(address string) int {
	count := 0
	it := l.Transactions(address)
	for it.Next(context.Background()) {
		count++
	}
	return count
}

// sliceIterator walks a materialized snapshot in fixed-size pages. The page
// boundary is invisible to callers but keeps the fake honest about lazy
// pagination.
type sliceIterator struct {
	records  []Transaction
	pageSize int
	pos      int
	pageEnd  int
}

func (it *sliceIterator) Next(_ context.Context) bool {
	if it.pos >= len(it.records) {
		return false
	}
	if it.pos == it.pageEnd {
		it.pageEnd = min(it.pageEnd+it.pageSize, len(it.records))
	}
	it.pos++
	return true
}

func (it *sliceIterator) Transaction() Transaction { return it.records[it.pos-1] }

func (it *sliceIterator) Err() error { return nil }
