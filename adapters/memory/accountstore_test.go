package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/subwave-io/subwave/adapters/memory"
	"github.com/subwave-io/subwave/domain/account"
	"github.com/subwave-io/subwave/domain/subscription"
)

func testAccount(id string) account.Account {
	return account.Account{
		ID:          id,
		DisplayName: "Test Customer",
		CreatedAt:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestAccountStore_CreateAndGet(t *testing.T) {
	store := memory.NewAccountStore()
	ctx := context.Background()

	if err := store.Create(ctx, testAccount("cust-1")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	a, err := store.Get(ctx, "cust-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if a.DisplayName != "Test Customer" {
		t.Errorf("DisplayName = %s", a.DisplayName)
	}
}

func TestAccountStore_CreateDuplicate(t *testing.T) {
	store := memory.NewAccountStore()
	ctx := context.Background()

	_ = store.Create(ctx, testAccount("cust-1"))
	if err := store.Create(ctx, testAccount("cust-1")); !errors.Is(err, memory.ErrDuplicate) {
		t.Errorf("err = %v, want ErrDuplicate", err)
	}
}

func TestAccountStore_GetMissing(t *testing.T) {
	store := memory.NewAccountStore()

	if _, err := store.Get(context.Background(), "ghost"); !errors.Is(err, memory.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAccountStore_GetReturnsCopy(t *testing.T) {
	store := memory.NewAccountStore()
	ctx := context.Background()

	a := testAccount("cust-1")
	a.Subscriptions = []subscription.Record{{PlanName: "Basic", Status: subscription.StatusActive}}
	_ = store.Create(ctx, a)

	got, _ := store.Get(ctx, "cust-1")
	got.Subscriptions[0].Status = subscription.StatusCancelled

	again, _ := store.Get(ctx, "cust-1")
	if again.Subscriptions[0].Status != subscription.StatusActive {
		t.Error("mutation through returned copy leaked into the store")
	}
}

func TestAccountStore_Update(t *testing.T) {
	store := memory.NewAccountStore()
	ctx := context.Background()

	a := testAccount("cust-1")
	a.Subscriptions = []subscription.Record{{PlanName: "Basic", Status: subscription.StatusActive}}
	_ = store.Create(ctx, a)

	a.DisplayName = "Renamed"
	a.Contact = account.Contact{Email: "c@example.com"}
	a.Subscriptions = nil // identity update must not clobber records
	if err := store.Update(ctx, a); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := store.Get(ctx, "cust-1")
	if got.DisplayName != "Renamed" || got.Contact.Email != "c@example.com" {
		t.Errorf("identity fields not updated: %+v", got)
	}
	if len(got.Subscriptions) != 1 {
		t.Error("Update clobbered subscription records")
	}
}

func TestAccountStore_Update_Missing(t *testing.T) {
	store := memory.NewAccountStore()

	if err := store.Update(context.Background(), testAccount("ghost")); !errors.Is(err, memory.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAccountStore_ListPagination(t *testing.T) {
	store := memory.NewAccountStore()
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		_ = store.Create(ctx, testAccount(id))
	}

	page, err := store.List(ctx, 2, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page) != 2 || page[0].ID != "a" || page[1].ID != "b" {
		t.Errorf("page = %+v, want [a b]", page)
	}

	page, _ = store.List(ctx, 2, 2)
	if len(page) != 1 || page[0].ID != "c" {
		t.Errorf("page = %+v, want [c]", page)
	}

	page, _ = store.List(ctx, 2, 10)
	if len(page) != 0 {
		t.Errorf("page past end = %+v, want empty", page)
	}

	n, _ := store.Count(ctx)
	if n != 3 {
		t.Errorf("Count = %d, want 3", n)
	}
}

func TestAccountStore_UpdateSubscription(t *testing.T) {
	store := memory.NewAccountStore()
	ctx := context.Background()

	a := testAccount("cust-1")
	a.Subscriptions = []subscription.Record{{PlanName: "Basic", Status: subscription.StatusActive}}
	_ = store.Create(ctx, a)

	rec := a.Subscriptions[0]
	rec.Status = subscription.StatusCancelled
	if err := store.UpdateSubscription(ctx, "cust-1", 0, rec); err != nil {
		t.Fatalf("UpdateSubscription failed: %v", err)
	}

	got, _ := store.Get(ctx, "cust-1")
	if got.Subscriptions[0].Status != subscription.StatusCancelled {
		t.Error("record not updated")
	}
}

func TestAccountStore_UpdateSubscription_BadIndex(t *testing.T) {
	store := memory.NewAccountStore()
	ctx := context.Background()
	_ = store.Create(ctx, testAccount("cust-1"))

	err := store.UpdateSubscription(ctx, "cust-1", 0, subscription.Record{})
	if !errors.Is(err, memory.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAccountStore_AppendUsage_RollsWindow(t *testing.T) {
	store := memory.NewAccountStore()
	ctx := context.Background()
	_ = store.Create(ctx, testAccount("cust-1"))

	for i := 0; i < 35; i++ {
		if err := store.AppendUsage(ctx, "cust-1", float64(i), 30); err != nil {
			t.Fatalf("AppendUsage failed: %v", err)
		}
	}

	a, _ := store.Get(ctx, "cust-1")
	if len(a.DailyUsageGB) != 30 {
		t.Fatalf("window len = %d, want 30", len(a.DailyUsageGB))
	}
	if a.DailyUsageGB[29] != 34 {
		t.Errorf("newest = %v, want 34", a.DailyUsageGB[29])
	}
	if a.DailyUsageGB[0] != 5 {
		t.Errorf("oldest = %v, want 5", a.DailyUsageGB[0])
	}
}
