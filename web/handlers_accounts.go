package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/subwave-io/subwave/domain/account"
	"github.com/subwave-io/subwave/domain/subscription"
)

// recordJSON is the wire shape of a subscription record.
type recordJSON struct {
	Index      int       `json:"index"`
	Plan       string    `json:"plan"`
	Status     string    `json:"status"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	DataUsedGB float64   `json:"data_used_gb"`
	Cap        string    `json:"cap"`
}

// contactJSON is the wire shape of an account's contact details.
type contactJSON struct {
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// accountJSON is the wire shape of an account. The password hash never
// leaves the server.
type accountJSON struct {
	ID            string       `json:"id"`
	DisplayName   string       `json:"display_name"`
	Contact       contactJSON  `json:"contact"`
	Subscriptions []recordJSON `json:"subscriptions"`
	DailyUsageGB  []float64    `json:"daily_usage_gb,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

func toRecordJSON(index int, rec subscription.Record) recordJSON {
	return recordJSON{
		Index:      index,
		Plan:       rec.PlanName,
		Status:     string(rec.Status),
		StartDate:  rec.StartDate,
		EndDate:    rec.EndDate,
		DataUsedGB: rec.DataUsedGB,
		Cap:        rec.Cap.Label(),
	}
}

func toAccountJSON(a account.Account) accountJSON {
	recs := make([]recordJSON, 0, len(a.Subscriptions))
	for i, rec := range a.Subscriptions {
		recs = append(recs, toRecordJSON(i, rec))
	}
	return accountJSON{
		ID:          a.ID,
		DisplayName: a.DisplayName,
		Contact: contactJSON{
			Email:   a.Contact.Email,
			Phone:   a.Contact.Phone,
			Address: a.Contact.Address,
		},
		Subscriptions: recs,
		DailyUsageGB:  a.DailyUsageGB,
		CreatedAt:     a.CreatedAt,
	}
}

// Signup creates a new customer account.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
		Password    string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	a, err := h.accounts.Signup(r.Context(), req.ID, req.DisplayName, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountJSON(a))
}

// GetAccount returns an account with its records and usage window.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	a, err := h.accounts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountJSON(a))
}

// ListAccounts returns accounts with pagination (?limit=&offset=).
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	accounts, err := h.accounts.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]accountJSON, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountJSON(a))
	}
	writeJSON(w, http.StatusOK, out)
}

// UpdateContact replaces the account's contact details.
func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayName string `json:"display_name"`
		Email       string `json:"email"`
		Phone       string `json:"phone"`
		Address     string `json:"address"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	a, err := h.accounts.UpdateContact(r.Context(), chi.URLParam(r, "id"), req.DisplayName, account.Contact{
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountJSON(a))
}
