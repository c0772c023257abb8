package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/subwave-io/subwave/adapters/metrics"
	"github.com/subwave-io/subwave/domain/ledger"
	"github.com/subwave-io/subwave/domain/subscription"
	"github.com/subwave-io/subwave/ports"
)

// LifecycleService runs the subscription state machine: subscribe, renew,
// upgrade, cancel, and the scheduled expiration sweep. It is the only
// mutation path for an account's subscription records.
type LifecycleService struct {
	plans    ports.PlanStore
	accounts ports.AccountStore
	subs     ports.SubscriptionStore
	clock    ports.Clock
	metrics  *metrics.Collector
	logger   zerolog.Logger
}

// NewLifecycleService creates a new lifecycle service.
func NewLifecycleService(
	plans ports.PlanStore,
	accounts ports.AccountStore,
	subs ports.SubscriptionStore,
	clock ports.Clock,
	m *metrics.Collector,
	logger zerolog.Logger,
) *LifecycleService {
	return &LifecycleService{
		plans:    plans,
		accounts: accounts,
		subs:     subs,
		clock:    clock,
		metrics:  m,
		logger:   logger.With().Str("service", "lifecycle").Logger(),
	}
}

// Subscribe creates an active record for the named plan and the matching
// ledger entry, both applied as one unit through the subscription store.
// A zero start defaults to the current time. The ledger entry captures
// the plan's price at time of sale. The returned index addresses the new
// record in the account's subscription list.
func (s *LifecycleService) Subscribe(ctx context.Context, accountID, planName string, start time.Time) (subscription.Record, int, error) {
	p, err := s.plans.GetByName(ctx, planName)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return subscription.Record{}, 0, ErrPlanNotFound
		}
		return subscription.Record{}, 0, fmt.Errorf("get plan: %w", err)
	}

	if start.IsZero() {
		start = s.clock.Now()
	}

	rec := subscription.New(p, start)
	entry := ledger.Entry{
		CustomerID:      accountID,
		PlanName:        p.Name,
		Status:          subscription.StatusActive,
		StartDate:       rec.StartDate,
		EndDate:         rec.EndDate,
		PriceAtPurchase: p.PriceMonthly,
	}

	index, err := s.subs.Create(ctx, accountID, rec, entry)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return subscription.Record{}, 0, ErrAccountNotFound
		}
		return subscription.Record{}, 0, fmt.Errorf("create subscription: %w", err)
	}

	s.metrics.Subscribes.WithLabelValues(p.Name).Inc()
	s.logger.Info().
		Str("account", accountID).
		Str("plan", p.Name).
		Int("index", index).
		Time("start", rec.StartDate).
		Time("end", rec.EndDate).
		Msg("subscribed")
	return rec, index, nil
}

// Renew extends an active record's end date by months 30-day blocks.
// Renewing a cancelled or expired record is rejected. No ledger entry is
// appended: the ledger logs sales, and revenue counts one active entry
// per subscription.
func (s *LifecycleService) Renew(ctx context.Context, accountID string, index, months int) (subscription.Record, error) {
	if !subscription.ValidTerm(months) {
		return subscription.Record{}, ErrInvalidTerm
	}

	rec, err := s.getRecord(ctx, accountID, index)
	if err != nil {
		return subscription.Record{}, err
	}
	if !rec.IsActive() {
		return subscription.Record{}, ErrNotActive
	}

	renewed := subscription.Renew(rec, months)
	if err := s.putRecord(ctx, accountID, index, renewed); err != nil {
		return subscription.Record{}, err
	}

	s.metrics.Renewals.WithLabelValues(renewed.PlanName).Inc()
	s.logger.Info().
		Str("account", accountID).
		Int("index", index).
		Int("months", months).
		Time("end", renewed.EndDate).
		Msg("subscription renewed")
	return renewed, nil
}

// Upgrade moves an active record to the named plan. Dates and consumed
// data carry over; only the plan name and data cap change. The ledger
// entry written at subscribe time is deliberately left as sold.
func (s *LifecycleService) Upgrade(ctx context.Context, accountID string, index int, newPlanName string) (subscription.Record, error) {
	p, err := s.plans.GetByName(ctx, newPlanName)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return subscription.Record{}, ErrPlanNotFound
		}
		return subscription.Record{}, fmt.Errorf("get plan: %w", err)
	}

	rec, err := s.getRecord(ctx, accountID, index)
	if err != nil {
		return subscription.Record{}, err
	}
	if !rec.IsActive() {
		return subscription.Record{}, ErrNotActive
	}

	upgraded := subscription.Upgrade(rec, p)
	if err := s.putRecord(ctx, accountID, index, upgraded); err != nil {
		return subscription.Record{}, err
	}

	s.metrics.Upgrades.WithLabelValues(rec.PlanName, p.Name).Inc()
	s.logger.Info().
		Str("account", accountID).
		Int("index", index).
		Str("from", rec.PlanName).
		Str("to", p.Name).
		Msg("subscription upgraded")
	return upgraded, nil
}

// Cancel flips the record to cancelled. The transition is terminal and
// idempotent: cancelling again is a no-op, not an error.
func (s *LifecycleService) Cancel(ctx context.Context, accountID string, index int) (subscription.Record, error) {
	rec, err := s.getRecord(ctx, accountID, index)
	if err != nil {
		return subscription.Record{}, err
	}

	wasActive := rec.IsActive()
	cancelled := subscription.Cancel(rec)
	if err := s.putRecord(ctx, accountID, index, cancelled); err != nil {
		return subscription.Record{}, err
	}

	if wasActive {
		s.metrics.Cancellations.WithLabelValues(cancelled.PlanName).Inc()
	}
	s.logger.Info().
		Str("account", accountID).
		Int("index", index).
		Str("plan", cancelled.PlanName).
		Msg("subscription cancelled")
	return cancelled, nil
}

// SweepExpirations flips every active record whose end date has passed to
// expired. Nothing calls this implicitly; an external scheduler or the
// CLI invokes it. The sweep is idempotent and returns the number of
// records flipped.
func (s *LifecycleService) SweepExpirations(ctx context.Context, now time.Time) (int, error) {
	if now.IsZero() {
		now = s.clock.Now()
	}

	const batch = 100
	expired := 0
	for offset := 0; ; offset += batch {
		accounts, err := s.accounts.List(ctx, batch, offset)
		if err != nil {
			return expired, fmt.Errorf("list accounts: %w", err)
		}
		if len(accounts) == 0 {
			break
		}

		for _, a := range accounts {
			for i, rec := range a.Subscriptions {
				flipped, changed := subscription.ExpireDue(rec, now)
				if !changed {
					continue
				}
				if err := s.accounts.UpdateSubscription(ctx, a.ID, i, flipped); err != nil {
					return expired, fmt.Errorf("expire %s[%d]: %w", a.ID, i, err)
				}
				s.metrics.Expirations.WithLabelValues(flipped.PlanName).Inc()
				expired++
			}
		}

		if len(accounts) < batch {
			break
		}
	}

	s.logger.Info().Int("expired", expired).Time("now", now).Msg("expiration sweep complete")
	return expired, nil
}

// getRecord fetches a record by account and index, mapping store errors
// to the service's error kinds.
func (s *LifecycleService) getRecord(ctx context.Context, accountID string, index int) (subscription.Record, error) {
	a, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return subscription.Record{}, ErrAccountNotFound
		}
		return subscription.Record{}, fmt.Errorf("get account: %w", err)
	}
	if index < 0 || index >= len(a.Subscriptions) {
		return subscription.Record{}, ErrOutOfRange
	}
	return a.Subscriptions[index], nil
}

func (s *LifecycleService) putRecord(ctx context.Context, accountID string, index int, rec subscription.Record) error {
	if err := s.accounts.UpdateSubscription(ctx, accountID, index, rec); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ErrOutOfRange
		}
		return fmt.Errorf("update subscription: %w", err)
	}
	return nil
}
