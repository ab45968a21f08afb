package httpapi

import (
	"io"
	"mime"
	"net/http"

	"go.uber.org/zap"

	"gigtracker-engine/internal/ingest"
)

type ImportHandler struct {
	Log      *zap.Logger
	Importer func() *ingest.Importer
}

type importReq struct {
	Text string `json:"text"`
}

// Import accepts pasted alert text as JSON {"text": ...} or as a text/plain body.
func (h ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	var text string

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "text/plain" {
		b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			WriteError(w, r, http.StatusRequestEntityTooLarge, "body_too_large", err.Error())
			return
		}
		text = string(b)
	} else {
		var req importReq
		if err := decodeJSON(w, r, &req); err != nil {
			WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}
		text = req.Text
	}

	rep, err := h.Importer().ImportText(r.Context(), text)
	if err != nil {
		writeDomainError(w, r, h.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, rep)
}
