package sqlite

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/subwave-io/subwave/domain/ledger"
	"github.com/subwave-io/subwave/domain/subscription"
	"github.com/subwave-io/subwave/ports"
)

// LedgerStore implements ports.LedgerStore with SQLite. The table is
// append-only; nothing updates or deletes rows.
type LedgerStore struct {
	db *DB
}

// NewLedgerStore creates a new SQLite ledger store.
func NewLedgerStore(db *DB) *LedgerStore {
	return &LedgerStore{db: db}
}

// Append adds an entry to the ledger.
func (s *LedgerStore) Append(ctx context.Context, e ledger.Entry) error {
	_, err := s.db.DB.ExecContext(ctx, `
		INSERT INTO ledger_entries (customer_id, plan_name, status, start_date, end_date, price_at_purchase)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.CustomerID, e.PlanName, string(e.Status), e.StartDate, e.EndDate, e.PriceAtPurchase.String())
	return err
}

// List returns all entries in append order.
func (s *LedgerStore) List(ctx context.Context) ([]ledger.Entry, error) {
	rows, err := s.db.DB.QueryContext(ctx, `
		SELECT customer_id, plan_name, status, start_date, end_date, price_at_purchase
		FROM ledger_entries ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		var status, price string
		if err := rows.Scan(&e.CustomerID, &e.PlanName, &status, &e.StartDate, &e.EndDate, &price); err != nil {
			return nil, err
		}
		e.Status = subscription.Status(status)
		if e.PriceAtPurchase, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse ledger price: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Ensure interface compliance.
var _ ports.LedgerStore = (*LedgerStore)(nil)
