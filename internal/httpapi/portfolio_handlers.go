package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"gigtracker-engine/internal/domain"
	"gigtracker-engine/internal/store"
)

type PortfolioHandler struct {
	DB  *store.DB
	Log *zap.Logger
}

type portfolioReq struct {
	Name      string `json:"name"`
	URLLive   string `json:"urlLive"`
	URLGithub string `json:"urlGithub"`
	Keywords  string `json:"keywords"`
}

func (h PortfolioHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.DB.ListPortfolio(r.Context())
	if err != nil {
		writeDomainError(w, r, h.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

func (h PortfolioHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req portfolioReq
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	item, err := h.DB.AddPortfolioItem(r.Context(), domain.PortfolioItem{
		Name:      req.Name,
		URLLive:   req.URLLive,
		URLGithub: req.URLGithub,
		Keywords:  req.Keywords,
	})
	if err != nil {
		writeDomainError(w, r, h.Log, err)
		return
	}
	WriteJSON(w, http.StatusCreated, item)
}

func (h PortfolioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	if err := h.DB.DeletePortfolioItem(r.Context(), id); err != nil {
		writeDomainError(w, r, h.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
}
