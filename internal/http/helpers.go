package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"outlay/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses. Unrecognized
// errors become an opaque 500; their details stay in the logs.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidToken),
		errors.Is(err, core.ErrUnknownSubject),
		errors.Is(err, core.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, core.ErrDuplicateEmail):
		writeJSON(w, http.StatusConflict, errorResponse{Error: core.ErrDuplicateEmail.Error()})
	case errors.Is(err, core.ErrInvalidRange),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyItem),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrEmptyEmail),
		errors.Is(err, core.ErrEmptyPassword):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// pathID parses the {id} wildcard of the matched route.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// parseYearMonth reads year and month query parameters, defaulting to the
// current calendar month.
func parseYearMonth(r *http.Request) (year, month int) {
	now := time.Now()
	year, month = now.Year(), int(now.Month())

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			month = m
		}
	}
	return year, month
}
