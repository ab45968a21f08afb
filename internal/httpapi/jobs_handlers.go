package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"gigtracker-engine/internal/domain"
	"gigtracker-engine/internal/events"
	"gigtracker-engine/internal/ingest"
	"gigtracker-engine/internal/store"
)

type JobsHandler struct {
	DB       *store.DB
	Hub      *events.Hub
	Log      *zap.Logger
	Importer func() *ingest.Importer
}

type createJobReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Platform    string `json:"platform"`
	Notes       string `json:"notes"`
}

type patchJobReq struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

type draftReq struct {
	Timeframe   string `json:"timeframe"`
	PortfolioID int64  `json:"portfolioId"`
}

type jobDetail struct {
	Job       store.Job        `json:"job"`
	Proposals []store.Proposal `json:"proposals"`
}

func (h JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := store.ListJobsOpts{Sort: q.Get("sort")}

	if s := q.Get("status"); s != "" {
		st, ok := domain.ParseStatus(s)
		if !ok {
			WriteError(w, r, http.StatusBadRequest, "invalid_status", "unknown status "+strconv.Quote(s))
			return
		}
		opts.Status = st
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			WriteError(w, r, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		opts.Limit = n
	}

	jobs, err := h.DB.ListJobs(r.Context(), opts)
	if err != nil {
		writeDomainError(w, r, h.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, jobs)
}

func (h JobsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createJobReq
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	j, err := h.Importer().ImportManual(r.Context(), domain.JobLead{
		Title:       req.Title,
		Description: req.Description,
		URL:         req.URL,
		Platform:    req.Platform,
	}, req.Notes)
	if errors.Is(err, store.ErrDuplicate) && j.ID != 0 {
		var resp duplicateJobResp
		resp.Error.Code = "duplicate"
		resp.Error.Message = err.Error()
		resp.Error.RequestID = RequestIDFrom(r.Context())
		resp.Job = j
		WriteJSON(w, http.StatusConflict, resp)
		return
	}
	if err != nil {
		writeDomainError(w, r, h.Log, err)
		return
	}
	WriteJSON(w, http.StatusCreated, j)
}

// duplicateJobResp is the 409 body for a manual add that matched a stored job.
type duplicateJobResp struct {
	APIError
	Job store.Job `json:"job"`
}

func (h JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	j, err := h.DB.GetJob(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, h.Log, err)
		return
	}
	ps, err := h.DB.ListProposals(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, h.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, jobDetail{Job: j, Proposals: ps})
}

func (h JobsHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	var req patchJobReq
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	var u store.JobUpdate
	if req.Status != nil {
		st, ok := domain.ParseStatus(*req.Status)
		if !ok {
			WriteError(w, r, http.StatusBadRequest, "invalid_status", "unknown status "+strconv.Quote(*req.Status))
			return
		}
		u.Status = &st
	}
	u.Notes = req.Notes

	j, err := h.DB.UpdateJob(r.Context(), id, u)
	if err != nil {
		writeDomainError(w, r, h.Log, err)
		return
	}
	h.Hub.Emit(RequestIDFrom(r.Context()), events.JobUpdated, j)
	WriteJSON(w, http.StatusOK, j)
}

func (h JobsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	if err := h.DB.DeleteJob(r.Context(), id); err != nil {
		writeDomainError(w, r, h.Log, err)
		return
	}
	h.Hub.Emit(RequestIDFrom(r.Context()), events.JobDeleted, map[string]any{"id": id})
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
}

func (h JobsHandler) Rescore(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	j, err := h.Importer().Rescore(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, h.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, j)
}

func (h JobsHandler) ListProposals(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	if _, err := h.DB.GetJob(r.Context(), id); err != nil {
		writeDomainError(w, r, h.Log, err)
		return
	}
	ps, err := h.DB.ListProposals(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, h.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, ps)
}

// CreateProposal drafts the next version. The body is optional.
func (h JobsHandler) CreateProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	var req draftReq
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}
	}

	p, err := h.Importer().Draft(r.Context(), id, ingest.DraftOpts{
		Timeframe:   req.Timeframe,
		PortfolioID: req.PortfolioID,
	})
	if err != nil {
		writeDomainError(w, r, h.Log, err)
		return
	}
	WriteJSON(w, http.StatusCreated, p)
}

func (h JobsHandler) MarkApplied(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	j, err := h.DB.MarkApplied(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, h.Log, err)
		return
	}
	h.Hub.Emit(RequestIDFrom(r.Context()), events.JobUpdated, j)
	WriteJSON(w, http.StatusOK, j)
}
