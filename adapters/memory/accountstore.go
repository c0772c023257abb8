package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/subwave-io/subwave/domain/account"
	"github.com/subwave-io/subwave/domain/subscription"
	"github.com/subwave-io/subwave/domain/usage"
	"github.com/subwave-io/subwave/ports"
)

// AccountStore is an in-memory implementation of ports.AccountStore.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]account.Account
}

// NewAccountStore creates a new in-memory account store.
func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[string]account.Account)}
}

// Get retrieves an account by ID.
func (s *AccountStore) Get(ctx context.Context, id string) (account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return account.Account{}, ErrNotFound
	}
	return a.Clone(), nil
}

// Create stores a new account.
func (s *AccountStore) Create(ctx context.Context, a account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[a.ID]; ok {
		return ErrDuplicate
	}
	s.accounts[a.ID] = a.Clone()
	return nil
}

// Update modifies account identity fields. Subscription records and the
// usage window of the stored account are preserved.
func (s *AccountStore) Update(ctx context.Context, a account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.accounts[a.ID]
	if !ok {
		return ErrNotFound
	}

	cur.DisplayName = a.DisplayName
	cur.Contact = a.Contact
	if len(a.PasswordHash) > 0 {
		cur.PasswordHash = append([]byte(nil), a.PasswordHash...)
	}
	s.accounts[a.ID] = cur
	return nil
}

// List returns accounts with pagination, ordered by ID for stability.
func (s *AccountStore) List(ctx context.Context, limit, offset int) ([]account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.accounts))
	for id := range s.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if offset >= len(ids) {
		return nil, nil
	}
	ids = ids[offset:]
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	out := make([]account.Account, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.accounts[id].Clone())
	}
	return out, nil
}

// Count returns total account count.
func (s *AccountStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts), nil
}

// UpdateSubscription replaces the record at index for an account.
func (s *AccountStore) UpdateSubscription(ctx context.Context, accountID string, index int, rec subscription.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[accountID]
	if !ok {
		return ErrNotFound
	}
	if index < 0 || index >= len(a.Subscriptions) {
		return ErrNotFound
	}
	a.Subscriptions[index] = rec
	s.accounts[accountID] = a
	return nil
}

// AppendUsage adds a daily sample to the account's usage window.
func (s *AccountStore) AppendUsage(ctx context.Context, accountID string, gb float64, window int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[accountID]
	if !ok {
		return ErrNotFound
	}
	a.DailyUsageGB = usage.Append(a.DailyUsageGB, gb, window)
	s.accounts[accountID] = a
	return nil
}

// appendSubscription adds a record to an account and returns its position
// in the account's list. Callers must hold mu.
func (s *AccountStore) appendSubscription(accountID string, rec subscription.Record) (int, error) {
	a, ok := s.accounts[accountID]
	if !ok {
		return 0, ErrNotFound
	}
	a.Subscriptions = append(a.Subscriptions, rec)
	s.accounts[accountID] = a
	return len(a.Subscriptions) - 1, nil
}

// Ensure interface compliance.
var _ ports.AccountStore = (*AccountStore)(nil)
