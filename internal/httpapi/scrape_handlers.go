package httpapi

import (
	"context"
	"net/http"

	"gigtracker-engine/internal/config"
	"gigtracker-engine/internal/poll"
)

type ScrapeHandler struct {
	Poller *poll.Poller
	Config func() config.Config
}

type scrapeStatusResp struct {
	Enabled bool `json:"enabled"`
	poll.Status
}

func (h ScrapeHandler) Status(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, scrapeStatusResp{
		Enabled: h.Config().Email.Enabled,
		Status:  h.Poller.Status(),
	})
}

// Run starts a poll in the background and returns immediately; progress shows up in Status.
func (h ScrapeHandler) Run(w http.ResponseWriter, r *http.Request) {
	if !h.Config().Email.Enabled {
		WriteError(w, r, http.StatusConflict, "disabled", poll.ErrDisabled.Error())
		return
	}
	if h.Poller.Status().Running {
		WriteError(w, r, http.StatusConflict, "busy", poll.ErrBusy.Error())
		return
	}

	ctx := context.WithoutCancel(r.Context())
	go func() {
		_, _ = h.Poller.RunOnce(ctx)
	}()
	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}
