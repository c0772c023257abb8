package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/subwave-io/subwave/domain/ledger"
	"github.com/subwave-io/subwave/domain/subscription"
	"github.com/subwave-io/subwave/ports"
)

// RevenueService derives revenue figures from the ledger's active entries.
// Figures are recomputed from the ledger and catalog on every call; there
// is no cache to invalidate, so a report always reflects the latest
// lifecycle and catalog mutations.
type RevenueService struct {
	plans  ports.PlanStore
	ledger ports.LedgerStore
	logger zerolog.Logger
}

// NewRevenueService creates a new revenue aggregator.
func NewRevenueService(plans ports.PlanStore, ledgerStore ports.LedgerStore, logger zerolog.Logger) *RevenueService {
	return &RevenueService{
		plans:  plans,
		ledger: ledgerStore,
		logger: logger.With().Str("service", "revenue").Logger(),
	}
}

// RevenueByPlan prices each catalog plan's active ledger entries at the
// plan's current monthly price. Re-pricing at current rates means a price
// change retroactively changes reported revenue; callers who need the
// price-at-time-of-sale view use HistoricalByPlan.
func (s *RevenueService) RevenueByPlan(ctx context.Context) ([]ledger.PlanRevenue, error) {
	plans, err := s.plans.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	entries, err := s.ledger.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	return ledger.RevenueByPlan(entries, plans), nil
}

// Total sums current-rate revenue across all catalog plans.
func (s *RevenueService) Total(ctx context.Context) (decimal.Decimal, error) {
	breakdown, err := s.RevenueByPlan(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return ledger.Total(breakdown), nil
}

// HistoricalByPlan sums PriceAtPurchase over active ledger entries per
// plan name, independent of the current catalog.
func (s *RevenueService) HistoricalByPlan(ctx context.Context) (map[string]decimal.Decimal, error) {
	entries, err := s.ledger.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	return ledger.HistoricalRevenue(entries), nil
}

// HistoricalTotal sums PriceAtPurchase over all active ledger entries.
func (s *RevenueService) HistoricalTotal(ctx context.Context) (decimal.Decimal, error) {
	entries, err := s.ledger.List(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list ledger: %w", err)
	}
	return ledger.HistoricalTotal(entries), nil
}

// StatusCounts tallies ledger entries per lifecycle status for the
// operator dashboard.
func (s *RevenueService) StatusCounts(ctx context.Context) (map[subscription.Status]int, error) {
	entries, err := s.ledger.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	return ledger.CountByStatus(entries), nil
}

// TopPlans returns the n plans with the highest current-rate revenue,
// best first.
func (s *RevenueService) TopPlans(ctx context.Context, n int) ([]ledger.PlanRevenue, error) {
	breakdown, err := s.RevenueByPlan(ctx)
	if err != nil {
		return nil, err
	}

	sorted := lo.Filter(breakdown, func(r ledger.PlanRevenue, _ int) bool {
		return r.Active > 0
	})
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Revenue.GreaterThan(sorted[j-1].Revenue); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted, nil
}
