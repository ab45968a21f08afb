package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gigtracker-engine/internal/config"
	"gigtracker-engine/internal/domain"
)

func TestComputeFitScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		title     string
		desc      string
		wantScore int
		wantHits  []string
	}{
		{
			name:      "empty input",
			wantScore: 0,
			wantHits:  []string{},
		},
		{
			name:      "plural seniors still contains senior",
			title:     "React Next.js landing page",
			desc:      "Need a responsive dashboard, REST API integration, no seniors",
			wantScore: 45,
			wantHits:  []string{"react", "next", "ui", "api", "-senior"},
		},
		{
			name:      "positive rules without penalty",
			title:     "React Next.js landing page",
			desc:      "Need a responsive dashboard with REST API integration",
			wantScore: 70,
			wantHits:  []string{"react", "next", "ui", "api"},
		},
		{
			name:      "every positive rule reaches the ceiling",
			title:     "React Next.js TypeScript Tailwind",
			desc:      "frontend + api",
			wantScore: 100,
			wantHits:  []string{"react", "next", "ts", "tailwind", "ui", "api"},
		},
		{
			name:      "padded ts trigger",
			title:     "Need TS dev",
			wantScore: 15,
			wantHits:  []string{"ts"},
		},
		{
			name:      "bare ts at start does not match padded trigger",
			title:     "ts",
			wantScore: 0,
			wantHits:  []string{},
		},
		{
			name:      "penalties clamp at zero",
			title:     "Senior engineer",
			desc:      "DevOps, Kubernetes",
			wantScore: 0,
			wantHits:  []string{"-senior", "-fullstack-heavy"},
		},
		{
			name:      "hits follow table order, not text order",
			title:     "GraphQL service",
			desc:      "then React",
			wantScore: 35,
			wantHits:  []string{"react", "api"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ComputeFitScore(tt.title, tt.desc)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantHits, got.Hits)
		})
	}
}

func TestComputeFitScoreRuleFiresOnce(t *testing.T) {
	t.Parallel()

	got := ComputeFitScore("react reactjs react.js", "")
	assert.Equal(t, 25, got.Score)
	assert.Equal(t, []string{"react"}, got.Hits)
}

func TestComputeFitScoreMonotonicPerRule(t *testing.T) {
	t.Parallel()

	const base = "hello world"
	before := ComputeFitScore(base, "")
	require.Equal(t, 0, before.Score)

	for _, r := range DefaultRules {
		got := ComputeFitScore(base, r.Any[0])
		assert.Equal(t, before.Score+r.Weight, got.Score, r.Label)
		assert.Equal(t, []string{r.Label}, got.Hits)
	}
}

func TestComputeFitScoreIsDeterministic(t *testing.T) {
	t.Parallel()

	a := ComputeFitScore("React dashboard", "Kubernetes microservices")
	b := ComputeFitScore("React dashboard", "Kubernetes microservices")
	assert.Equal(t, a, b)
}

func TestRuleScorerClampsAbove100(t *testing.T) {
	t.Parallel()

	s := RuleScorer{Rules: []config.Rule{
		{Label: "go", Weight: 80, Any: []string{"golang"}},
		{Label: "grpc", Weight: 80, Any: []string{"GRPC"}},
	}}
	got := s.Score(domain.JobLead{Title: "Golang gRPC service"})
	assert.Equal(t, 100, got.Score)
	assert.Equal(t, []string{"go", "grpc"}, got.Hits)
}

func TestRuleScorerSkipsEmptyTerms(t *testing.T) {
	t.Parallel()

	s := RuleScorer{Rules: []config.Rule{{Label: "blank", Weight: 10, Any: []string{""}}}}
	assert.Equal(t, 0, s.Score(domain.JobLead{Title: "anything"}).Score)
}

func TestFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("empty scoring falls back to built-in rubric", func(t *testing.T) {
		t.Parallel()
		s := FromConfig(config.Config{})
		assert.Equal(t, DefaultRules, s.Rules)
		assert.Equal(t, DefaultPenalties, s.Penalties)
	})

	t.Run("shipped config matches built-in rubric", func(t *testing.T) {
		t.Parallel()
		s := FromConfig(config.Default())
		assert.Equal(t, DefaultRules, s.Rules)
		assert.Equal(t, DefaultPenalties, s.Penalties)
	})

	t.Run("custom tables are used as-is", func(t *testing.T) {
		t.Parallel()
		var cfg config.Config
		cfg.Scoring.Rules = []config.Rule{{Label: "vue", Weight: 40, Any: []string{"vue"}}}
		got := FromConfig(cfg).Score(domain.JobLead{Title: "Vue + React"})
		assert.Equal(t, FitScore{Score: 40, Hits: []string{"vue"}}, got)
	})
}

func TestStatusForScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, domain.StatusShortlisted, StatusForScore(70, ShortlistThreshold))
	assert.Equal(t, domain.StatusShortlisted, StatusForScore(100, ShortlistThreshold))
	assert.Equal(t, domain.StatusNew, StatusForScore(69, ShortlistThreshold))
	assert.Equal(t, domain.StatusNew, StatusForScore(0, ShortlistThreshold))
}
