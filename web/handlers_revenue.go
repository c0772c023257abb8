package web

import (
	"net/http"
)

// planRevenueJSON is one row of the per-plan revenue report.
type planRevenueJSON struct {
	Plan    string `json:"plan"`
	Active  int    `json:"active"`
	Revenue string `json:"revenue"`
}

// Revenue reports current revenue: active sales priced at the catalog's
// current rates, grouped by plan in catalog order.
func (h *Handler) Revenue(w http.ResponseWriter, r *http.Request) {
	rows, err := h.revenue.RevenueByPlan(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	total, err := h.revenue.Total(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	counts, err := h.revenue.StatusCounts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	byPlan := make([]planRevenueJSON, 0, len(rows))
	for _, row := range rows {
		byPlan = append(byPlan, planRevenueJSON{
			Plan:    row.PlanName,
			Active:  row.Active,
			Revenue: row.Revenue.String(),
		})
	}

	statuses := make(map[string]int, len(counts))
	for status, n := range counts {
		statuses[string(status)] = n
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"by_plan":  byPlan,
		"total":    total.String(),
		"statuses": statuses,
	})
}

// HistoricalRevenue reports revenue at prices captured when each sale
// was made, unaffected by later catalog changes.
func (h *Handler) HistoricalRevenue(w http.ResponseWriter, r *http.Request) {
	byPlan, err := h.revenue.HistoricalByPlan(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	total, err := h.revenue.HistoricalTotal(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make(map[string]string, len(byPlan))
	for name, amount := range byPlan {
		out[name] = amount.String()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"by_plan": out,
		"total":   total.String(),
	})
}
