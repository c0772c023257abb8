package memory

import (
	"context"

	"github.com/subwave-io/subwave/domain/ledger"
	"github.com/subwave-io/subwave/domain/subscription"
	"github.com/subwave-io/subwave/ports"
)

// SubscriptionStore composes the account and ledger stores so that a
// subscribe appends to both as one unit. Both locks are held across the
// pair; a reader never sees the record without its ledger entry.
type SubscriptionStore struct {
	accounts *AccountStore
	ledger   *LedgerStore
}

// NewSubscriptionStore creates a subscription store over the two backing
// stores.
func NewSubscriptionStore(accounts *AccountStore, ledger *LedgerStore) *SubscriptionStore {
	return &SubscriptionStore{accounts: accounts, ledger: ledger}
}

// Create appends rec to the account's records and e to the ledger,
// returning the record's position in the account's list. The account
// lookup can fail; it is checked before either append so the operation
// fails closed with no partial state.
func (s *SubscriptionStore) Create(ctx context.Context, accountID string, rec subscription.Record, e ledger.Entry) (int, error) {
	s.accounts.mu.Lock()
	defer s.accounts.mu.Unlock()
	s.ledger.mu.Lock()
	defer s.ledger.mu.Unlock()

	if _, ok := s.accounts.accounts[accountID]; !ok {
		return 0, ErrNotFound
	}

	idx, err := s.accounts.appendSubscription(accountID, rec)
	if err != nil {
		return 0, err
	}
	s.ledger.append(e)
	return idx, nil
}

// Ensure interface compliance.
var _ ports.SubscriptionStore = (*SubscriptionStore)(nil)
