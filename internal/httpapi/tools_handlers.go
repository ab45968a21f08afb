package httpapi

import (
	"net/http"
	"strings"

	"gigtracker-engine/internal/config"
	"gigtracker-engine/internal/domain"
	"gigtracker-engine/internal/proposal"
	"gigtracker-engine/internal/rank"
	email_scrape "gigtracker-engine/internal/scrape/email"
)

// ToolsHandler exposes the extractor, scorer and drafter without touching the database.
type ToolsHandler struct {
	Config func() config.Config
}

type extractReq struct {
	Text string `json:"text"`
}

type scoreReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h ToolsHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req extractReq
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	jobs := email_scrape.ExtractUpworkJobs(req.Text)
	if jobs == nil {
		jobs = []domain.JobLead{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (h ToolsHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req scoreReq
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	cfg := h.Config()
	fs := rank.FromConfig(cfg).Score(domain.JobLead{Title: req.Title, Description: req.Description})
	WriteJSON(w, http.StatusOK, map[string]any{
		"score":  fs.Score,
		"hits":   fs.Hits,
		"status": rank.StatusForScore(fs.Score, cfg.App.ShortlistThreshold),
	})
}

func (h ToolsHandler) Draft(w http.ResponseWriter, r *http.Request) {
	var in proposal.Input
	if err := decodeJSON(w, r, &in); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if strings.TrimSpace(in.Timeframe) == "" {
		in.Timeframe = h.Config().Proposal.DefaultTimeframe
	}
	WriteJSON(w, http.StatusOK, proposal.Generate(in))
}
