package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/subwave-io/subwave/domain/plan"
	"github.com/subwave-io/subwave/ports"
)

// PlanStore implements ports.PlanStore with SQLite. The position column
// carries catalog order; removal is by rank within that order.
type PlanStore struct {
	db *DB
}

// NewPlanStore creates a new SQLite plan store.
func NewPlanStore(db *DB) *PlanStore {
	return &PlanStore{db: db}
}

// List returns the catalog in display order.
func (s *PlanStore) List(ctx context.Context) ([]plan.Plan, error) {
	rows, err := s.db.DB.QueryContext(ctx, `
		SELECT name, speed, price_monthly, cap_gb, cap_unlimited, description, created_at
		FROM plans ORDER BY position ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []plan.Plan
	for rows.Next() {
		p, err := scanPlanRows(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// GetByName retrieves a plan by its unique name.
func (s *PlanStore) GetByName(ctx context.Context, name string) (plan.Plan, error) {
	row := s.db.DB.QueryRowContext(ctx, `
		SELECT name, speed, price_monthly, cap_gb, cap_unlimited, description, created_at
		FROM plans WHERE name = ?
	`, name)

	p, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return plan.Plan{}, ports.ErrNotFound
	}
	return p, err
}

// Append adds a plan at the end of the catalog.
func (s *PlanStore) Append(ctx context.Context, p plan.Plan) error {
	_, err := s.db.DB.ExecContext(ctx, `
		INSERT INTO plans (name, speed, price_monthly, cap_gb, cap_unlimited, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.Name, p.Speed, p.PriceMonthly.String(), p.Cap.GB, p.Cap.Unlimited, p.Description, p.CreatedAt)
	if isUniqueConstraintError(err) {
		return ports.ErrDuplicate
	}
	return err
}

// RemoveAt removes the plan at the given catalog position.
func (s *PlanStore) RemoveAt(ctx context.Context, index int) error {
	if index < 0 {
		return ports.ErrNotFound
	}

	result, err := s.db.DB.ExecContext(ctx, `
		DELETE FROM plans WHERE position = (
			SELECT position FROM plans ORDER BY position ASC LIMIT 1 OFFSET ?
		)
	`, index)
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

// Count returns the catalog size.
func (s *PlanStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM plans").Scan(&n)
	return n, err
}

func scanPlan(row *sql.Row) (plan.Plan, error) {
	var p plan.Plan
	var price string
	if err := row.Scan(&p.Name, &p.Speed, &price, &p.Cap.GB, &p.Cap.Unlimited, &p.Description, &p.CreatedAt); err != nil {
		return plan.Plan{}, err
	}
	return finishPlan(p, price)
}

func scanPlanRows(rows *sql.Rows) (plan.Plan, error) {
	var p plan.Plan
	var price string
	if err := rows.Scan(&p.Name, &p.Speed, &price, &p.Cap.GB, &p.Cap.Unlimited, &p.Description, &p.CreatedAt); err != nil {
		return plan.Plan{}, err
	}
	return finishPlan(p, price)
}

func finishPlan(p plan.Plan, price string) (plan.Plan, error) {
	d, err := decimal.NewFromString(price)
	if err != nil {
		return plan.Plan{}, fmt.Errorf("parse price for plan %s: %w", p.Name, err)
	}
	p.PriceMonthly = d
	return p, nil
}

// Ensure interface compliance.
var _ ports.PlanStore = (*PlanStore)(nil)
