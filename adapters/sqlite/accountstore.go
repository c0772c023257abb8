package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/subwave-io/subwave/domain/account"
	"github.com/subwave-io/subwave/domain/subscription"
	"github.com/subwave-io/subwave/ports"
)

// AccountStore implements ports.AccountStore with SQLite. Subscription
// records live in their own table keyed by (account_id, position) so the
// insertion order the engine addresses records by survives restarts.
type AccountStore struct {
	db *DB
}

// NewAccountStore creates a new SQLite account store.
func NewAccountStore(db *DB) *AccountStore {
	return &AccountStore{db: db}
}

// Get retrieves an account with its subscription records and usage window.
func (s *AccountStore) Get(ctx context.Context, id string) (account.Account, error) {
	var a account.Account
	var hash []byte
	err := s.db.DB.QueryRowContext(ctx, `
		SELECT id, display_name, password_hash, email, phone, address, created_at
		FROM accounts WHERE id = ?
	`, id).Scan(&a.ID, &a.DisplayName, &hash, &a.Contact.Email, &a.Contact.Phone, &a.Contact.Address, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return account.Account{}, ports.ErrNotFound
	}
	if err != nil {
		return account.Account{}, err
	}
	a.PasswordHash = hash

	if a.Subscriptions, err = s.loadSubscriptions(ctx, id); err != nil {
		return account.Account{}, fmt.Errorf("load subscriptions: %w", err)
	}
	if a.DailyUsageGB, err = s.loadUsage(ctx, id); err != nil {
		return account.Account{}, fmt.Errorf("load usage: %w", err)
	}
	return a, nil
}

// Create stores a new account. Subscription records and usage samples on
// the value are ignored; new accounts start empty.
func (s *AccountStore) Create(ctx context.Context, a account.Account) error {
	_, err := s.db.DB.ExecContext(ctx, `
		INSERT INTO accounts (id, display_name, password_hash, email, phone, address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.DisplayName, a.PasswordHash, a.Contact.Email, a.Contact.Phone, a.Contact.Address, a.CreatedAt)
	if isUniqueConstraintError(err) {
		return ports.ErrDuplicate
	}
	return err
}

// Update modifies account identity fields.
func (s *AccountStore) Update(ctx context.Context, a account.Account) error {
	result, err := s.db.DB.ExecContext(ctx, `
		UPDATE accounts SET display_name = ?, password_hash = ?, email = ?, phone = ?, address = ?
		WHERE id = ?
	`, a.DisplayName, a.PasswordHash, a.Contact.Email, a.Contact.Phone, a.Contact.Address, a.ID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// List returns accounts ordered by ID with pagination.
func (s *AccountStore) List(ctx context.Context, limit, offset int) ([]account.Account, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.DB.QueryContext(ctx,
		"SELECT id FROM accounts ORDER BY id ASC LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	accounts := make([]account.Account, 0, len(ids))
	for _, id := range ids {
		a, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

// Count returns total account count.
func (s *AccountStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts").Scan(&n)
	return n, err
}

// UpdateSubscription replaces the record at index for an account.
func (s *AccountStore) UpdateSubscription(ctx context.Context, accountID string, index int, rec subscription.Record) error {
	result, err := s.db.DB.ExecContext(ctx, `
		UPDATE subscriptions
		SET plan_name = ?, status = ?, start_date = ?, end_date = ?,
		    data_used_gb = ?, cap_gb = ?, cap_unlimited = ?
		WHERE account_id = ? AND position = ?
	`, rec.PlanName, string(rec.Status), rec.StartDate, rec.EndDate,
		rec.DataUsedGB, rec.Cap.GB, rec.Cap.Unlimited, accountID, index)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// AppendUsage adds a daily sample, trimming the window to its bound.
func (s *AccountStore) AppendUsage(ctx context.Context, accountID string, gb float64, window int) error {
	if window <= 0 {
		window = 30
	}

	tx, err := s.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM accounts WHERE id = ?", accountID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO usage_samples (account_id, gb) VALUES (?, ?)", accountID, gb); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM usage_samples WHERE account_id = ? AND id NOT IN (
			SELECT id FROM usage_samples WHERE account_id = ? ORDER BY id DESC LIMIT ?
		)
	`, accountID, accountID, window)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *AccountStore) loadSubscriptions(ctx context.Context, accountID string) ([]subscription.Record, error) {
	rows, err := s.db.DB.QueryContext(ctx, `
		SELECT plan_name, status, start_date, end_date, data_used_gb, cap_gb, cap_unlimited
		FROM subscriptions WHERE account_id = ? ORDER BY position ASC
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []subscription.Record
	for rows.Next() {
		var rec subscription.Record
		var status string
		if err := rows.Scan(&rec.PlanName, &status, &rec.StartDate, &rec.EndDate,
			&rec.DataUsedGB, &rec.Cap.GB, &rec.Cap.Unlimited); err != nil {
			return nil, err
		}
		rec.Status = subscription.Status(status)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (s *AccountStore) loadUsage(ctx context.Context, accountID string) ([]float64, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		"SELECT gb FROM usage_samples WHERE account_id = ? ORDER BY id ASC", accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var window []float64
	for rows.Next() {
		var gb float64
		if err := rows.Scan(&gb); err != nil {
			return nil, err
		}
		window = append(window, gb)
	}
	return window, rows.Err()
}

// Ensure interface compliance.
var _ ports.AccountStore = (*AccountStore)(nil)
