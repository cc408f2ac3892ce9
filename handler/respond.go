package handler

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/Konsultn-Engineering/registrar/logging"
	"github.com/Konsultn-Engineering/registrar/query"
	"github.com/Konsultn-Engineering/registrar/repository"
)

const (
	codeValidation   = "VALIDATION_ERROR"
	codeNotFound     = "NOT_FOUND"
	codeUnauthorized = "UNAUTHORIZED"
	codeForbidden    = "FORBIDDEN"
	codeUnavailable  = "SERVICE_UNAVAILABLE"
	codeInternal     = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("failed to write JSON response")
	}
}

// respondError logs err, when given, and writes an ErrorResponse. Server
// side errors are logged at error level, client errors at debug.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		ev := logging.Ctx(r.Context()).Debug()
		if status >= http.StatusInternalServerError {
			ev = logging.Ctx(r.Context()).Error()
		}
		ev.Err(err).Str("code", code).Int("status", status).Msg("request failed")
	}
	respondJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// respondFailure maps repository and validation errors to a response. The
// message of a validation error is returned to the client; other errors are
// not.
func respondFailure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, query.ErrValidation):
		respondError(w, r, http.StatusBadRequest, codeValidation, err.Error(), err)
	case errors.Is(err, repository.ErrNotFound):
		respondError(w, r, http.StatusNotFound, codeNotFound, "record not found", err)
	default:
		respondError(w, r, http.StatusInternalServerError, codeInternal, "internal error", err)
	}
}
