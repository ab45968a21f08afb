package domain

import "strings"

// JobLead is a job posting candidate before it is persisted.
type JobLead struct {
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description"`
	Platform    string `json:"platform"`
}

type JobStatus string

const (
	StatusNew         JobStatus = "NEW"
	StatusShortlisted JobStatus = "SHORTLISTED"
	StatusDrafted     JobStatus = "DRAFTED"
	StatusApplied     JobStatus = "APPLIED"
	StatusInterview   JobStatus = "INTERVIEW"
	StatusWon         JobStatus = "WON"
	StatusLost        JobStatus = "LOST"
	StatusArchived    JobStatus = "ARCHIVED"
)

// Statuses lists every status in pipeline order.
var Statuses = []JobStatus{
	StatusNew,
	StatusShortlisted,
	StatusDrafted,
	StatusApplied,
	StatusInterview,
	StatusWon,
	StatusLost,
	StatusArchived,
}

func (s JobStatus) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseStatus accepts any casing and surrounding whitespace.
func ParseStatus(s string) (JobStatus, bool) {
	st := JobStatus(strings.ToUpper(strings.TrimSpace(s)))
	return st, st.Valid()
}

type JobSource string

const (
	SourceManual JobSource = "MANUAL"
	SourceEmail  JobSource = "EMAIL"
)

const DefaultPlatform = "Upwork"
