// internal/rank/rules.go
package rank

import (
	"strings"

	"gigtracker-engine/internal/config"
	"gigtracker-engine/internal/domain"
)

const (
	MinScore = 0
	MaxScore = 100
)

// DefaultRules and DefaultPenalties are the built-in rubric. Order matters: it is the order of
// FitScore.Hits.
var DefaultRules = []config.Rule{
	{Label: "react", Weight: 25, Any: []string{"react", "reactjs", "react.js"}},
	{Label: "next", Weight: 25, Any: []string{"next", "nextjs", "next.js"}},
	{Label: "ts", Weight: 15, Any: []string{"typescript", " type script ", " ts "}},
	{Label: "tailwind", Weight: 15, Any: []string{"tailwind", "tailwindcss"}},
	{Label: "ui", Weight: 10, Any: []string{"frontend", "ui", "responsive", "landing page", "dashboard"}},
	{Label: "api", Weight: 10, Any: []string{"api", "rest", "graphql"}},
}

var DefaultPenalties = []config.Rule{
	{Label: "senior", Weight: -25, Any: []string{"senior", "10+ years", "expert only", "lead developer"}},
	{Label: "fullstack-heavy", Weight: -20, Any: []string{"backend + frontend", "devops", "kubernetes", "microservices"}},
}

// RuleScorer sums the weights of every rule with at least one trigger present in the
// lower-cased "title\ndescription" text.
type RuleScorer struct {
	Rules     []config.Rule
	Penalties []config.Rule
}

func DefaultScorer() RuleScorer {
	return RuleScorer{Rules: DefaultRules, Penalties: DefaultPenalties}
}

// FromConfig uses the configured tables, or the built-in rubric when the scoring section is empty.
func FromConfig(cfg config.Config) RuleScorer {
	if len(cfg.Scoring.Rules) == 0 && len(cfg.Scoring.Penalties) == 0 {
		return DefaultScorer()
	}
	return RuleScorer{Rules: cfg.Scoring.Rules, Penalties: cfg.Scoring.Penalties}
}

func (s RuleScorer) Score(job domain.JobLead) FitScore {
	text := strings.ToLower(job.Title + "\n" + job.Description)

	score := 0
	hits := []string{}

	apply := func(rules []config.Rule, prefix string) {
		for _, r := range rules {
			if !firesOn(text, r.Any) {
				continue
			}
			score += r.Weight
			hits = append(hits, prefix+r.Label)
		}
	}

	apply(s.Rules, "")
	apply(s.Penalties, "-")

	return FitScore{Score: clamp(score), Hits: hits}
}

// ComputeFitScore scores title and description against the built-in rubric.
func ComputeFitScore(title, description string) FitScore {
	return DefaultScorer().Score(domain.JobLead{Title: title, Description: description})
}

func firesOn(text string, terms []string) bool {
	for _, needle := range terms {
		if needle == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(needle)) {
			return true
		}
	}
	return false
}

func clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
