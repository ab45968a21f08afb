package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"gigtracker-engine/internal/ingest"
	"gigtracker-engine/internal/store"
)

type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}

// writeDomainError maps store and ingest sentinels to HTTP statuses. Anything else is a 500
// and gets logged.
func writeDomainError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		WriteError(w, r, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, store.ErrInvalid):
		WriteError(w, r, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, store.ErrDuplicate):
		WriteError(w, r, http.StatusConflict, "duplicate", err.Error())
	case errors.Is(err, ingest.ErrEmptyInput):
		WriteError(w, r, http.StatusBadRequest, "empty_input", err.Error())
	default:
		if log != nil {
			log.Error("request failed",
				zap.String("request_id", RequestIDFrom(r.Context())),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
		}
		WriteError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
