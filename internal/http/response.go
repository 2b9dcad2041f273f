package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"foodrescue/internal/log"
	"foodrescue/internal/services"
	"foodrescue/internal/tabular"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNoValidRows),
		errors.Is(err, services.ErrInvalidEntry),
		errors.Is(err, services.ErrUnreadableImport),
		errors.Is(err, tabular.ErrEmptyPayload),
		errors.Is(err, tabular.ErrNoHeader),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs server-side failures and hides their detail from clients.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.FromContext(r.Context()).Failure(r.Context(), "Request failed", op, err)
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
