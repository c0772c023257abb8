// Package web provides the JSON API over the subscription engine.
package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/subwave-io/subwave/adapters/metrics"
	"github.com/subwave-io/subwave/app"
)

// Handler provides the HTTP API endpoints.
type Handler struct {
	catalog   *app.CatalogService
	lifecycle *app.LifecycleService
	meter     *app.MeterService
	revenue   *app.RevenueService
	accounts  *app.AccountService
	metrics   *metrics.Collector
	logger    zerolog.Logger
}

// Deps contains dependencies for the API handler.
type Deps struct {
	Catalog   *app.CatalogService
	Lifecycle *app.LifecycleService
	Meter     *app.MeterService
	Revenue   *app.RevenueService
	Accounts  *app.AccountService
	Metrics   *metrics.Collector
	Logger    zerolog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		catalog:   deps.Catalog,
		lifecycle: deps.Lifecycle,
		meter:     deps.Meter,
		revenue:   deps.Revenue,
		accounts:  deps.Accounts,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
	}
}

// Router returns the API router.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggingMiddleware(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	if h.metrics != nil {
		r.Use(NewMetricsMiddleware(h.metrics))
	}

	r.Get("/healthz", h.Health)
	if h.metrics != nil {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/plans", func(r chi.Router) {
			r.Get("/", h.ListPlans)
			r.Post("/", h.AddPlan)
			r.Delete("/{index}", h.RemovePlan)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.ListAccounts)
			r.Post("/", h.Signup)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetAccount)
				r.Put("/contact", h.UpdateContact)

				r.Post("/usage", h.RecordUsage)
				r.Get("/usage/summary", h.UsageSummary)

				r.Route("/subscriptions", func(r chi.Router) {
					r.Post("/", h.Subscribe)
					r.Post("/{index}/renew", h.Renew)
					r.Post("/{index}/upgrade", h.Upgrade)
					r.Post("/{index}/cancel", h.Cancel)
					r.Post("/{index}/usage", h.AccrueUsage)
					r.Get("/{index}/classification", h.Classification)
				})
			})
		})

		r.Route("/revenue", func(r chi.Router) {
			r.Get("/", h.Revenue)
			r.Get("/historical", h.HistoricalRevenue)
		})

		r.Post("/sweep", h.Sweep)
	})

	return r
}

// Health returns a simple liveness check.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
