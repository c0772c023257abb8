package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/subwave-io/subwave/adapters/metrics"
	"github.com/subwave-io/subwave/domain/usage"
	"github.com/subwave-io/subwave/ports"
)

// MeterService records daily consumption for an account and classifies a
// subscription record against its plan's data cap. The window size is
// reloadable at runtime, so it lives behind an atomic.
type MeterService struct {
	accounts ports.AccountStore
	window   atomic.Int64
	metrics  *metrics.Collector
	logger   zerolog.Logger
}

// NewMeterService creates a new usage meter. window is the rolling number
// of daily samples kept per account; zero or less means usage.WindowSize.
func NewMeterService(accounts ports.AccountStore, window int, m *metrics.Collector, logger zerolog.Logger) *MeterService {
	s := &MeterService{
		accounts: accounts,
		metrics:  m,
		logger:   logger.With().Str("service", "meter").Logger(),
	}
	s.SetWindow(window)
	return s
}

// SetWindow changes the rolling window size for subsequent samples.
// Zero or less resets to usage.WindowSize. Already-stored samples are
// trimmed on the next append, not eagerly.
func (s *MeterService) SetWindow(window int) {
	if window <= 0 {
		window = usage.WindowSize
	}
	s.window.Store(int64(window))
}

// RecordDailyUsage appends a daily sample to the account's usage window.
// The window is bounded: once full, the oldest sample is dropped.
func (s *MeterService) RecordDailyUsage(ctx context.Context, accountID string, gb float64) error {
	if gb < 0 {
		return &ValidationError{Field: "usage", Reason: "must not be negative"}
	}

	if err := s.accounts.AppendUsage(ctx, accountID, gb, int(s.window.Load())); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("append usage: %w", err)
	}

	s.metrics.UsageSamples.WithLabelValues(accountID).Inc()
	s.metrics.UsageGB.WithLabelValues(accountID).Add(gb)
	s.logger.Debug().Str("account", accountID).Float64("gb", gb).Msg("daily usage recorded")
	return nil
}

// AccrueUsage adds consumed gigabytes to a subscription record's counter.
// This is the only write path for DataUsedGB; the daily window and the
// record counter are tracked separately.
func (s *MeterService) AccrueUsage(ctx context.Context, accountID string, index int, gb float64) error {
	if gb < 0 {
		return &ValidationError{Field: "usage", Reason: "must not be negative"}
	}

	a, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("get account: %w", err)
	}
	if index < 0 || index >= len(a.Subscriptions) {
		return ErrOutOfRange
	}

	rec := a.Subscriptions[index]
	rec.DataUsedGB += gb
	if err := s.accounts.UpdateSubscription(ctx, accountID, index, rec); err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}

	s.logger.Debug().
		Str("account", accountID).
		Int("index", index).
		Float64("total_gb", rec.DataUsedGB).
		Msg("usage accrued to record")
	return nil
}

// UsageSummary aggregates the account's current usage window. Returns
// ErrEmptyWindow when no usage has been recorded yet.
func (s *MeterService) UsageSummary(ctx context.Context, accountID string) (usage.Summary, error) {
	a, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return usage.Summary{}, ErrAccountNotFound
		}
		return usage.Summary{}, fmt.Errorf("get account: %w", err)
	}

	summary, ok := usage.Summarize(a.DailyUsageGB)
	if !ok {
		return usage.Summary{}, ErrEmptyWindow
	}
	return summary, nil
}

// Classify grades the record at index against its data cap using the
// account's usage window for the over-cap check.
func (s *MeterService) Classify(ctx context.Context, accountID string, index int) (usage.Classification, error) {
	a, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return usage.Classification{}, ErrAccountNotFound
		}
		return usage.Classification{}, fmt.Errorf("get account: %w", err)
	}
	if index < 0 || index >= len(a.Subscriptions) {
		return usage.Classification{}, ErrOutOfRange
	}

	rec := a.Subscriptions[index]
	c := usage.Classify(rec.DataUsedGB, rec.Cap, a.DailyUsageGB)

	if c.Tier == usage.TierCritical || c.OverCap {
		s.logger.Warn().
			Str("account", accountID).
			Str("plan", rec.PlanName).
			Str("tier", string(c.Tier)).
			Str("used_percent", strconv.FormatFloat(c.UsedPercent, 'f', 1, 64)).
			Bool("over_cap", c.OverCap).
			Msg("subscription near or over data cap")
	}
	return c, nil
}
