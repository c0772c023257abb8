package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RecordUsage appends a daily consumption sample to the account's window.
func (h *Handler) RecordUsage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GB float64 `json:"gb"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.meter.RecordDailyUsage(r.Context(), chi.URLParam(r, "id"), req.GB); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AccrueUsage adds consumed gigabytes to a record's data counter.
func (h *Handler) AccrueUsage(w http.ResponseWriter, r *http.Request) {
	index, ok := recordIndex(w, r)
	if !ok {
		return
	}

	var req struct {
		GB float64 `json:"gb"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.meter.AccrueUsage(r.Context(), chi.URLParam(r, "id"), index, req.GB); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UsageSummary aggregates the account's usage window.
func (h *Handler) UsageSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.meter.UsageSummary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]float64{
		"average_gb": s.AverageGB,
		"max_gb":     s.MaxGB,
		"total_gb":   s.TotalGB,
	})
}

// Classification grades the record against its plan's data cap.
func (h *Handler) Classification(w http.ResponseWriter, r *http.Request) {
	index, ok := recordIndex(w, r)
	if !ok {
		return
	}

	c, err := h.meter.Classify(r.Context(), chi.URLParam(r, "id"), index)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tier":         string(c.Tier),
		"used_percent": c.UsedPercent,
		"over_cap":     c.OverCap,
	})
}
