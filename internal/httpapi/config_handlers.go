package httpapi

import (
	"net/http"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/zap"

	"gigtracker-engine/internal/config"
	"gigtracker-engine/internal/events"
)

type ConfigHandler struct {
	CfgVal      *atomic.Value // stores config.Config
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
	Hub         *events.Hub
	Log         *zap.Logger
}

func (h ConfigHandler) current() config.Config {
	if cfg, ok := h.CfgVal.Load().(config.Config); ok {
		return cfg
	}
	return config.Default()
}

func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.current())
}

// Put validates, saves and reloads the config. Validation failures return the full
// Validation report so every problem can be shown at once.
func (h ConfigHandler) Put(w http.ResponseWriter, r *http.Request) {
	var incoming config.Config
	if err := decodeJSON(w, r, &incoming); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	normalized, vr := config.NormalizeAndValidate(incoming)
	if !vr.OK() {
		WriteJSON(w, http.StatusBadRequest, vr)
		return
	}

	if err := config.SaveAtomic(h.UserCfgPath, normalized); err != nil {
		h.Log.Error("save config", zap.String("path", h.UserCfgPath), zap.Error(err))
		WriteError(w, r, http.StatusInternalServerError, "save_failed", err.Error())
		return
	}

	saved, err := h.LoadCfg()
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "reload_failed", "saved but reload failed: "+err.Error())
		return
	}
	h.CfgVal.Store(saved)
	h.Log.Info("config updated", zap.Strings("warnings", vr.Warnings))
	h.Hub.Emit(RequestIDFrom(r.Context()), events.ConfigUpdated, nil)
	WriteJSON(w, http.StatusOK, saved)
}

func (h ConfigHandler) Path(w http.ResponseWriter, r *http.Request) {
	abs, _ := filepath.Abs(h.UserCfgPath)
	WriteJSON(w, http.StatusOK, map[string]any{"path": abs})
}

func (h ConfigHandler) Validate(w http.ResponseWriter, r *http.Request) {
	_, vr := config.NormalizeAndValidate(h.current())
	WriteJSON(w, http.StatusOK, vr)
}
