// Package account provides customer account value types.
package account

import (
	"time"

	"github.com/subwave-io/subwave/domain/subscription"
)

// Contact holds a customer's optional contact details.
type Contact struct {
	Email   string
	Phone   string
	Address string
}

// Account is a customer identity plus their subscription records and
// daily usage window. Records keep insertion order (creation order) and
// are never removed; cancellation is a status flip. Accounts are created
// at signup and never deleted.
type Account struct {
	ID            string
	DisplayName   string
	PasswordHash  []byte
	Contact       Contact
	Subscriptions []subscription.Record
	DailyUsageGB  []float64
	CreatedAt     time.Time
}

// Clone returns a deep copy. Stores hand out clones so callers cannot
// mutate shared state behind the store's lock.
func (a Account) Clone() Account {
	out := a
	out.PasswordHash = append([]byte(nil), a.PasswordHash...)
	out.Subscriptions = append([]subscription.Record(nil), a.Subscriptions...)
	out.DailyUsageGB = append([]float64(nil), a.DailyUsageGB...)
	return out
}

// ActiveSubscription returns the first active record and its index, in
// creation order. ok is false when the account has none.
func (a Account) ActiveSubscription() (subscription.Record, int, bool) {
	for i, r := range a.Subscriptions {
		if r.IsActive() {
			return r, i, true
		}
	}
	return subscription.Record{}, -1, false
}
