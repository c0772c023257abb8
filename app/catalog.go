// Package app provides application services that orchestrate domain logic.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/subwave-io/subwave/domain/plan"
	"github.com/subwave-io/subwave/ports"
)

// CatalogService manages the plan catalog.
type CatalogService struct {
	plans  ports.PlanStore
	clock  ports.Clock
	logger zerolog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(plans ports.PlanStore, clock ports.Clock, logger zerolog.Logger) *CatalogService {
	return &CatalogService{
		plans:  plans,
		clock:  clock,
		logger: logger.With().Str("service", "catalog").Logger(),
	}
}

// AddPlanInput is the operator's input for a new plan. The cap label is
// parsed to a structured DataCap once, here, and never re-parsed.
type AddPlanInput struct {
	Name        string
	Speed       string
	Price       string // decimal, e.g. "29.99"
	CapLabel    string // "500 GB", "1 TB", "Unlimited"
	Description string
}

// AddPlan validates the input and appends the plan at the catalog end.
func (s *CatalogService) AddPlan(ctx context.Context, in AddPlanInput) (plan.Plan, error) {
	if in.Name == "" {
		return plan.Plan{}, &ValidationError{Field: "name", Reason: "required"}
	}
	if in.Speed == "" {
		return plan.Plan{}, &ValidationError{Field: "speed", Reason: "required"}
	}
	if in.CapLabel == "" {
		return plan.Plan{}, &ValidationError{Field: "data_cap", Reason: "required"}
	}

	price, err := decimal.NewFromString(in.Price)
	if err != nil {
		return plan.Plan{}, &ValidationError{Field: "price", Reason: "not a decimal number"}
	}
	if !price.IsPositive() {
		return plan.Plan{}, &ValidationError{Field: "price", Reason: "must be greater than zero"}
	}

	p := plan.Plan{
		Name:         in.Name,
		Speed:        in.Speed,
		PriceMonthly: price,
		Cap:          plan.ParseCap(in.CapLabel),
		Description:  in.Description,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.plans.Append(ctx, p); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return plan.Plan{}, &ValidationError{Field: "name", Reason: "already in catalog"}
		}
		return plan.Plan{}, fmt.Errorf("append plan: %w", err)
	}

	s.logger.Info().
		Str("plan", p.Name).
		Str("price", p.PriceMonthly.String()).
		Str("cap", p.Cap.Label()).
		Msg("plan added to catalog")
	return p, nil
}

// RemovePlan removes the plan at the given catalog position. Existing
// subscriptions referencing the plan keep their dangling plan name; there
// is no cascade.
func (s *CatalogService) RemovePlan(ctx context.Context, index int) error {
	if err := s.plans.RemoveAt(ctx, index); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ErrOutOfRange
		}
		return fmt.Errorf("remove plan: %w", err)
	}

	s.logger.Info().Int("index", index).Msg("plan removed from catalog")
	return nil
}

// ListPlans returns the catalog in display order.
func (s *CatalogService) ListPlans(ctx context.Context) ([]plan.Plan, error) {
	return s.plans.List(ctx)
}

// GetPlan retrieves a plan by name.
func (s *CatalogService) GetPlan(ctx context.Context, name string) (plan.Plan, error) {
	p, err := s.plans.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return plan.Plan{}, ErrPlanNotFound
		}
		return plan.Plan{}, fmt.Errorf("get plan: %w", err)
	}
	return p, nil
}
