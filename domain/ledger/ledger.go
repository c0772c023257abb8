// Package ledger provides the global subscription ledger and revenue
// aggregation.
//
// The ledger is a flat append-only log of subscribe events, independent of
// the per-customer records. Entries capture the price in force at the time
// of sale and are never mutated or deleted.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/subwave-io/subwave/domain/plan"
	"github.com/subwave-io/subwave/domain/subscription"
)

// Entry is one subscribe event.
type Entry struct {
	CustomerID      string
	PlanName        string
	Status          subscription.Status
	StartDate       time.Time
	EndDate         time.Time
	PriceAtPurchase decimal.Decimal
}

// PlanRevenue is the revenue attributed to one catalog plan.
type PlanRevenue struct {
	PlanName string
	Active   int
	Revenue  decimal.Decimal
}

// RevenueByPlan prices the active entries of each catalog plan at the
// plan's CURRENT monthly price, not the price at purchase. Changing a
// plan's price therefore retroactively changes reported revenue; the
// ledger keeps PriceAtPurchase for the historical view. Plans appear in
// catalog order, including plans with no entries.
// This is a PURE function.
func RevenueByPlan(entries []Entry, plans []plan.Plan) []PlanRevenue {
	breakdown := make([]PlanRevenue, 0, len(plans))
	for _, p := range plans {
		active := 0
		for _, e := range entries {
			if e.PlanName == p.Name && e.Status == subscription.StatusActive {
				active++
			}
		}
		breakdown = append(breakdown, PlanRevenue{
			PlanName: p.Name,
			Active:   active,
			Revenue:  p.PriceMonthly.Mul(decimal.NewFromInt(int64(active))),
		})
	}
	return breakdown
}

// Total sums revenue across a breakdown.
// This is a PURE function.
func Total(breakdown []PlanRevenue) decimal.Decimal {
	total := decimal.Zero
	for _, r := range breakdown {
		total = total.Add(r.Revenue)
	}
	return total
}

// HistoricalRevenue sums PriceAtPurchase over active entries keyed by
// plan name, independent of the current catalog. Entries for plans since
// removed from the catalog still count here.
// This is a PURE function.
func HistoricalRevenue(entries []Entry) map[string]decimal.Decimal {
	byPlan := make(map[string]decimal.Decimal)
	for _, e := range entries {
		if e.Status != subscription.StatusActive {
			continue
		}
		byPlan[e.PlanName] = byPlan[e.PlanName].Add(e.PriceAtPurchase)
	}
	return byPlan
}

// HistoricalTotal sums PriceAtPurchase over all active entries.
// This is a PURE function.
func HistoricalTotal(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.Status == subscription.StatusActive {
			total = total.Add(e.PriceAtPurchase)
		}
	}
	return total
}

// CountByStatus tallies ledger entries per status.
// This is a PURE function.
func CountByStatus(entries []Entry) map[subscription.Status]int {
	counts := make(map[subscription.Status]int)
	for _, e := range entries {
		counts[e.Status]++
	}
	return counts
}
