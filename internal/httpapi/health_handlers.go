package httpapi

import (
	"net/http"

	"gigtracker-engine/internal/store"
)

type HealthHandler struct {
	DB      *store.DB
	Version string
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.Pool.PingContext(r.Context()); err != nil {
		WriteError(w, r, http.StatusServiceUnavailable, "db_unavailable", err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"version": h.Version,
		"schema":  store.SchemaVersion,
	})
}
