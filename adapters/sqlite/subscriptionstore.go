package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/subwave-io/subwave/domain/ledger"
	"github.com/subwave-io/subwave/domain/subscription"
	"github.com/subwave-io/subwave/ports"
)

// SubscriptionStore implements ports.SubscriptionStore with SQLite. The
// record row and the ledger row go into one transaction so a failure
// leaves neither behind.
type SubscriptionStore struct {
	db *DB
}

// NewSubscriptionStore creates a new SQLite subscription store.
func NewSubscriptionStore(db *DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

// Create appends rec to the account's records and e to the ledger,
// returning the record's position in the account's list.
func (s *SubscriptionStore) Create(ctx context.Context, accountID string, rec subscription.Record, e ledger.Entry) (int, error) {
	tx, err := s.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM accounts WHERE id = ?", accountID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ports.ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	var position int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM subscriptions WHERE account_id = ?", accountID).Scan(&position); err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO subscriptions (account_id, position, plan_name, status, start_date, end_date,
		                           data_used_gb, cap_gb, cap_unlimited)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, accountID, position, rec.PlanName, string(rec.Status), rec.StartDate, rec.EndDate,
		rec.DataUsedGB, rec.Cap.GB, rec.Cap.Unlimited); err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO ledger_entries (customer_id, plan_name, status, start_date, end_date, price_at_purchase)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.CustomerID, e.PlanName, string(e.Status), e.StartDate, e.EndDate, e.PriceAtPurchase.String()); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return position, nil
}

// Ensure interface compliance.
var _ ports.SubscriptionStore = (*SubscriptionStore)(nil)
