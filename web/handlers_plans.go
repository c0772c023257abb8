package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/subwave-io/subwave/app"
	"github.com/subwave-io/subwave/domain/plan"
)

// planJSON is the wire shape of a catalog plan.
type planJSON struct {
	Name         string    `json:"name"`
	Speed        string    `json:"speed"`
	PriceMonthly string    `json:"price_monthly"`
	Cap          string    `json:"cap"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func toPlanJSON(p plan.Plan) planJSON {
	return planJSON{
		Name:         p.Name,
		Speed:        p.Speed,
		PriceMonthly: p.PriceMonthly.String(),
		Cap:          p.Cap.Label(),
		Description:  p.Description,
		CreatedAt:    p.CreatedAt,
	}
}

// ListPlans returns the catalog in display order.
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.catalog.ListPlans(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]planJSON, 0, len(plans))
	for _, p := range plans {
		out = append(out, toPlanJSON(p))
	}
	writeJSON(w, http.StatusOK, out)
}

// AddPlan appends a plan to the catalog.
func (h *Handler) AddPlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string `json:"name"`
		Speed        string `json:"speed"`
		PriceMonthly string `json:"price_monthly"`
		Cap          string `json:"cap"`
		Description  string `json:"description"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.catalog.AddPlan(r.Context(), app.AddPlanInput{
		Name:        req.Name,
		Speed:       req.Speed,
		Price:       req.PriceMonthly,
		CapLabel:    req.Cap,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPlanJSON(p))
}

// RemovePlan removes the plan at a catalog position.
func (h *Handler) RemovePlan(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, app.ErrOutOfRange)
		return
	}

	if err := h.catalog.RemovePlan(r.Context(), index); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
