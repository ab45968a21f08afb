package events

import (
	"encoding/json"
	"time"
)

const (
	JobCreated      = "job_created"
	JobUpdated      = "job_updated"
	JobDeleted      = "job_deleted"
	ProposalCreated = "proposal_created"
	ImportFinished  = "import_finished"
	ConfigUpdated   = "config_updated"
)

// Version of the event payload shapes.
const Version = 1

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// MakeEvent encodes one SSE data line.
func MakeEvent(reqID, typ string, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err == nil {
			raw = b
		}
	}
	b, _ := json.Marshal(Event{
		Type:      typ,
		Version:   Version,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	})
	return string(b)
}
