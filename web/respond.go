package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/subwave-io/subwave/app"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// writeError maps service errors to HTTP statuses and a stable error code.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "internal_error"

	var verr *app.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		code = "validation_failed"
	case errors.Is(err, app.ErrPlanNotFound),
		errors.Is(err, app.ErrAccountNotFound),
		errors.Is(err, app.ErrOutOfRange),
		errors.Is(err, app.ErrEmptyWindow):
		status = http.StatusNotFound
		code = "not_found"
	case errors.Is(err, app.ErrDuplicateAccount):
		status = http.StatusConflict
		code = "duplicate"
	case errors.Is(err, app.ErrNotActive),
		errors.Is(err, app.ErrInvalidTerm):
		status = http.StatusUnprocessableEntity
		code = "invalid_state"
	}

	writeJSON(w, status, errorBody{Error: errorDetail{
		Code:    code,
		Message: err.Error(),
	}})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
			Code:    "malformed_json",
			Message: err.Error(),
		}})
		return false
	}
	return true
}
