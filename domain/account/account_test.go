package account_test

import (
	"testing"
	"time"

	"github.com/subwave-io/subwave/domain/account"
	"github.com/subwave-io/subwave/domain/subscription"
)

func TestClone_IsDeep(t *testing.T) {
	a := account.Account{
		ID:            "cust-1",
		PasswordHash:  []byte("hash"),
		Subscriptions: []subscription.Record{{PlanName: "Basic", Status: subscription.StatusActive}},
		DailyUsageGB:  []float64{5, 10},
		CreatedAt:     time.Now(),
	}

	c := a.Clone()
	c.Subscriptions[0].Status = subscription.StatusCancelled
	c.DailyUsageGB[0] = 99
	c.PasswordHash[0] = 'X'

	if a.Subscriptions[0].Status != subscription.StatusActive {
		t.Error("clone shares subscription backing array")
	}
	if a.DailyUsageGB[0] != 5 {
		t.Error("clone shares usage backing array")
	}
	if a.PasswordHash[0] != 'h' {
		t.Error("clone shares password hash")
	}
}

func TestActiveSubscription(t *testing.T) {
	a := account.Account{
		Subscriptions: []subscription.Record{
			{PlanName: "Basic", Status: subscription.StatusCancelled},
			{PlanName: "Standard", Status: subscription.StatusActive},
			{PlanName: "Premium", Status: subscription.StatusActive},
		},
	}

	rec, idx, ok := a.ActiveSubscription()
	if !ok || idx != 1 || rec.PlanName != "Standard" {
		t.Errorf("got (%s, %d, %v), want first active in creation order", rec.PlanName, idx, ok)
	}

	none := account.Account{}
	if _, _, ok := none.ActiveSubscription(); ok {
		t.Error("ok = true for account with no records")
	}
}
