package httpapi

import (
	"net/http"
	"sync/atomic"

	"gigtracker-engine/internal/config"
	"gigtracker-engine/internal/secrets"
)

type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
	Set    func(account, password string) error
}

type setIMAPPasswordReq struct {
	Password string `json:"password"`
}

func (h SecretsHandler) SetIMAPPassword(w http.ResponseWriter, r *http.Request) {
	var req setIMAPPasswordReq
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	cfg, _ := h.CfgVal.Load().(config.Config)
	if cfg.Email.Username == "" || cfg.Email.IMAPHost == "" {
		WriteError(w, r, http.StatusBadRequest, "email_not_configured", "set email.username and email.imap_host first")
		return
	}

	set := h.Set
	if set == nil {
		set = secrets.SetIMAPPassword
	}
	if err := set(secrets.IMAPKeyringAccount(cfg.Email), req.Password); err != nil {
		WriteError(w, r, http.StatusBadRequest, "store_failed", "failed to store password: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
