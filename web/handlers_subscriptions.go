package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/subwave-io/subwave/app"
)

func recordIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, app.ErrOutOfRange)
		return 0, false
	}
	return index, true
}

// Subscribe creates an active record for a plan on the account.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Plan  string     `json:"plan"`
		Start *time.Time `json:"start,omitempty"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	start := time.Time{}
	if req.Start != nil {
		start = *req.Start
	}

	rec, index, err := h.lifecycle.Subscribe(r.Context(), chi.URLParam(r, "id"), req.Plan, start)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecordJSON(index, rec))
}

// Renew extends the record's end date by a number of 30-day months.
func (h *Handler) Renew(w http.ResponseWriter, r *http.Request) {
	index, ok := recordIndex(w, r)
	if !ok {
		return
	}

	var req struct {
		Months int `json:"months"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	rec, err := h.lifecycle.Renew(r.Context(), chi.URLParam(r, "id"), index, req.Months)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordJSON(index, rec))
}

// Upgrade moves the record to another plan, keeping dates and usage.
func (h *Handler) Upgrade(w http.ResponseWriter, r *http.Request) {
	index, ok := recordIndex(w, r)
	if !ok {
		return
	}

	var req struct {
		Plan string `json:"plan"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	rec, err := h.lifecycle.Upgrade(r.Context(), chi.URLParam(r, "id"), index, req.Plan)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordJSON(index, rec))
}

// Cancel flips the record to cancelled. Safe to repeat.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	index, ok := recordIndex(w, r)
	if !ok {
		return
	}

	rec, err := h.lifecycle.Cancel(r.Context(), chi.URLParam(r, "id"), index)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordJSON(index, rec))
}

// Sweep expires every active record past its end date.
func (h *Handler) Sweep(w http.ResponseWriter, r *http.Request) {
	expired, err := h.lifecycle.SweepExpirations(r.Context(), time.Time{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"expired": expired})
}
