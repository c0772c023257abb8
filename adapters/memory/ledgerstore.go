package memory

import (
	"context"
	"sync"

	"github.com/subwave-io/subwave/domain/ledger"
	"github.com/subwave-io/subwave/ports"
)

// LedgerStore is an in-memory implementation of ports.LedgerStore.
// The ledger is append-only; entries are never mutated or deleted.
type LedgerStore struct {
	mu      sync.RWMutex
	entries []ledger.Entry
}

// NewLedgerStore creates a new in-memory ledger store.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{entries: make([]ledger.Entry, 0)}
}

// Append adds an entry to the ledger.
func (s *LedgerStore) Append(ctx context.Context, e ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, e)
	return nil
}

// List returns all entries in append order.
func (s *LedgerStore) List(ctx context.Context) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ledger.Entry(nil), s.entries...), nil
}

// append adds an entry. Callers must hold mu.
func (s *LedgerStore) append(e ledger.Entry) {
	s.entries = append(s.entries, e)
}

// Ensure interface compliance.
var _ ports.LedgerStore = (*LedgerStore)(nil)
