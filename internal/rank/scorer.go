package rank

import "gigtracker-engine/internal/domain"

type Scorer interface {
	Score(job domain.JobLead) FitScore
}

// FitScore is a clamped 0..100 score and the labels of the rules that fired,
// in table order. Penalty labels carry a "-" prefix.
type FitScore struct {
	Score int      `json:"score"`
	Hits  []string `json:"hits"`
}
