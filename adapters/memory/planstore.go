// Package memory provides in-memory implementations of storage ports.
//
// Each store guards its own state with its own mutex: the catalog, the
// accounts, and the ledger are independent mutual-exclusion scopes.
package memory

import (
	"context"
	"sync"

	"github.com/subwave-io/subwave/domain/plan"
	"github.com/subwave-io/subwave/ports"
)

// Store error sentinels, shared across all stores in this package.
var (
	ErrNotFound  = ports.ErrNotFound
	ErrDuplicate = ports.ErrDuplicate
)

// PlanStore is an in-memory implementation of ports.PlanStore.
// Catalog order is insertion order.
type PlanStore struct {
	mu    sync.RWMutex
	plans []plan.Plan
}

// NewPlanStore creates a new in-memory plan store.
func NewPlanStore() *PlanStore {
	return &PlanStore{plans: make([]plan.Plan, 0)}
}

// List returns the catalog in display order.
func (s *PlanStore) List(ctx context.Context) ([]plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]plan.Plan(nil), s.plans...), nil
}

// GetByName retrieves a plan by its unique name.
func (s *PlanStore) GetByName(ctx context.Context, name string) (plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := plan.Find(s.plans, name); ok {
		return p, nil
	}
	return plan.Plan{}, ErrNotFound
}

// Append adds a plan at the end of the catalog.
func (s *PlanStore) Append(ctx context.Context, p plan.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := plan.Find(s.plans, p.Name); ok {
		return ErrDuplicate
	}
	s.plans = append(s.plans, p)
	return nil
}

// RemoveAt removes the plan at the given catalog position. Subscriptions
// referencing the plan by name are not touched.
func (s *PlanStore) RemoveAt(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.plans) {
		return ErrNotFound
	}
	s.plans = append(s.plans[:index], s.plans[index+1:]...)
	return nil
}

// Count returns the catalog size.
func (s *PlanStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.plans), nil
}

// Ensure interface compliance.
var _ ports.PlanStore = (*PlanStore)(nil)
