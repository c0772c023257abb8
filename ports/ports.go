// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/subwave-io/subwave/domain/account"
	"github.com/subwave-io/subwave/domain/ledger"
	"github.com/subwave-io/subwave/domain/plan"
	"github.com/subwave-io/subwave/domain/subscription"
)

// Store error sentinels. Adapters return these so callers can branch with
// errors.Is regardless of the backing store.
var (
	// ErrNotFound is returned when an entity doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an entity already exists.
	ErrDuplicate = errors.New("already exists")
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// Hasher hashes and verifies account credentials.
type Hasher interface {
	// Hash generates a hash from plaintext.
	Hash(plaintext string) ([]byte, error)
	// Compare checks if plaintext matches hash.
	Compare(hash []byte, plaintext string) bool
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------

// PlanStore persists the plan catalog. Catalog order is display order;
// Append adds at the end and RemoveAt removes by position.
type PlanStore interface {
	// List returns the catalog in display order.
	List(ctx context.Context) ([]plan.Plan, error)

	// GetByName retrieves a plan by its unique name.
	GetByName(ctx context.Context, name string) (plan.Plan, error)

	// Append adds a plan at the end of the catalog.
	Append(ctx context.Context, p plan.Plan) error

	// RemoveAt removes the plan at the given catalog position. Existing
	// subscriptions referencing the plan by name are left untouched.
	RemoveAt(ctx context.Context, index int) error

	// Count returns the catalog size.
	Count(ctx context.Context) (int, error)
}

// AccountStore persists customer accounts, their subscription records and
// their daily usage windows. Subscription records keep insertion order.
type AccountStore interface {
	// Get retrieves an account by ID.
	Get(ctx context.Context, id string) (account.Account, error)

	// Create stores a new account.
	Create(ctx context.Context, a account.Account) error

	// Update modifies account identity fields (display name, contact,
	// password hash). Subscription records and usage go through the
	// dedicated methods below.
	Update(ctx context.Context, a account.Account) error

	// List returns accounts with pagination.
	List(ctx context.Context, limit, offset int) ([]account.Account, error)

	// Count returns total account count.
	Count(ctx context.Context) (int, error)

	// UpdateSubscription replaces the record at index for an account.
	UpdateSubscription(ctx context.Context, accountID string, index int, rec subscription.Record) error

	// AppendUsage adds a daily sample to the account's usage window,
	// keeping at most window entries (oldest dropped).
	AppendUsage(ctx context.Context, accountID string, gb float64, window int) error
}

// LedgerStore persists the append-only global subscription ledger.
// Entries are never mutated or deleted.
type LedgerStore interface {
	// Append adds an entry to the ledger.
	Append(ctx context.Context, e ledger.Entry) error

	// List returns all entries in append order.
	List(ctx context.Context) ([]ledger.Entry, error)
}

// SubscriptionStore creates subscription records together with their
// ledger entries. The two appends are one unit of consistency:
// implementations must apply both or neither, so revenue figures never
// drift from per-customer state.
type SubscriptionStore interface {
	// Create appends rec to the account's records and e to the ledger,
	// returning the new record's position in the account's list.
	Create(ctx context.Context, accountID string, rec subscription.Record, e ledger.Entry) (int, error)
}
