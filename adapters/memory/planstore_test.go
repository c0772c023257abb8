package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/subwave-io/subwave/adapters/memory"
	"github.com/subwave-io/subwave/domain/plan"
)

func testPlan(name string, priceCents int64) plan.Plan {
	return plan.Plan{
		Name:         name,
		Speed:        "100 Mbps",
		PriceMonthly: decimal.New(priceCents, -2),
		Cap:          plan.CapGB(500),
	}
}

func TestPlanStore_AppendAndList(t *testing.T) {
	store := memory.NewPlanStore()
	ctx := context.Background()

	if err := store.Append(ctx, testPlan("Basic", 2999)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Append(ctx, testPlan("Standard", 4999)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	plans, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("len = %d, want 2", len(plans))
	}
	// Catalog order is insertion order.
	if plans[0].Name != "Basic" || plans[1].Name != "Standard" {
		t.Errorf("order = [%s, %s], want [Basic, Standard]", plans[0].Name, plans[1].Name)
	}
}

func TestPlanStore_AppendDuplicateName(t *testing.T) {
	store := memory.NewPlanStore()
	ctx := context.Background()

	if err := store.Append(ctx, testPlan("Basic", 2999)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	err := store.Append(ctx, testPlan("Basic", 1999))
	if !errors.Is(err, memory.ErrDuplicate) {
		t.Errorf("err = %v, want ErrDuplicate", err)
	}
}

func TestPlanStore_GetByName(t *testing.T) {
	store := memory.NewPlanStore()
	ctx := context.Background()

	_ = store.Append(ctx, testPlan("Basic", 2999))

	p, err := store.GetByName(ctx, "Basic")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if !p.PriceMonthly.Equal(decimal.NewFromFloat(29.99)) {
		t.Errorf("price = %s, want 29.99", p.PriceMonthly)
	}

	if _, err := store.GetByName(ctx, "Premium"); !errors.Is(err, memory.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestPlanStore_RemoveAt(t *testing.T) {
	store := memory.NewPlanStore()
	ctx := context.Background()

	_ = store.Append(ctx, testPlan("Basic", 2999))
	_ = store.Append(ctx, testPlan("Standard", 4999))
	_ = store.Append(ctx, testPlan("Premium", 7999))

	if err := store.RemoveAt(ctx, 1); err != nil {
		t.Fatalf("RemoveAt failed: %v", err)
	}

	plans, _ := store.List(ctx)
	if len(plans) != 2 {
		t.Fatalf("len = %d, want 2", len(plans))
	}
	if plans[0].Name != "Basic" || plans[1].Name != "Premium" {
		t.Errorf("order = [%s, %s], want [Basic, Premium]", plans[0].Name, plans[1].Name)
	}
}

func TestPlanStore_RemoveAt_OutOfRange(t *testing.T) {
	store := memory.NewPlanStore()
	ctx := context.Background()

	_ = store.Append(ctx, testPlan("Basic", 2999))

	for _, idx := range []int{-1, 1, 99} {
		if err := store.RemoveAt(ctx, idx); !errors.Is(err, memory.ErrNotFound) {
			t.Errorf("RemoveAt(%d) = %v, want ErrNotFound", idx, err)
		}
	}
}

func TestPlanStore_Count(t *testing.T) {
	store := memory.NewPlanStore()
	ctx := context.Background()

	n, _ := store.Count(ctx)
	if n != 0 {
		t.Errorf("Count = %d, want 0", n)
	}

	_ = store.Append(ctx, testPlan("Basic", 2999))
	n, _ = store.Count(ctx)
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}
