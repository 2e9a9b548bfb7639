// Package httpserver contains the REST handlers and middleware of the RAISA
// backend. It keeps HTTP concerns (decoding, status mapping, limits) out of
// the use cases: domain errors are mapped to status codes exactly once, here.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/raisa-rms/raisa-backend/internal/domain"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, _ *http.Request, err error, details any) {
	status := http.StatusInternalServerError
	code := "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
		code = "INVALID_ARGUMENT"
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		code = "NOT_FOUND"
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
		code = "CONFLICT"
	case errors.Is(err, domain.ErrRateLimited):
		status = http.StatusTooManyRequests
		code = "RATE_LIMITED"
	case errors.Is(err, domain.ErrProvider):
		status = http.StatusBadGateway
		code = "PROVIDER_ERROR"
	case errors.Is(err, domain.ErrExtraction):
		status = http.StatusBadGateway
		code = "EXTRACTION_ERROR"
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadGateway
		code = "VALIDATION_ERROR"
	case errors.Is(err, domain.ErrConfiguration):
		status = http.StatusInternalServerError
		code = "CONFIGURATION"
	}
	writeJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: err.Error(), Details: details}})
}
