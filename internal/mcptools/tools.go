package mcptools

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"gigtracker-engine/internal/config"
	"gigtracker-engine/internal/domain"
	"gigtracker-engine/internal/proposal"
	"gigtracker-engine/internal/rank"
	email_scrape "gigtracker-engine/internal/scrape/email"
)

type ExtractParams struct {
	Text string `json:"text" jsonschema:"Raw job alert email text"`
}

type ExtractResult struct {
	Jobs []domain.JobLead `json:"jobs"`
}

type ScoreParams struct {
	Title       string `json:"title" jsonschema:"Job title"`
	Description string `json:"description,omitempty" jsonschema:"Job description"`
}

type ScoreResult struct {
	Score  int              `json:"score"`
	Hits   []string         `json:"hits"`
	Status domain.JobStatus `json:"status"`
}

type DraftParams struct {
	JobTitle       string `json:"job_title" jsonschema:"Title of the job being answered"`
	JobDescription string `json:"job_description,omitempty" jsonschema:"Job description"`
	PortfolioName  string `json:"portfolio_name,omitempty" jsonschema:"Portfolio project to cite"`
	PortfolioURL   string `json:"portfolio_url,omitempty" jsonschema:"Live URL of the portfolio project"`
	Timeframe      string `json:"timeframe,omitempty" jsonschema:"Delivery estimate, defaults to the configured timeframe"`
}

type extractTool struct{}

func WithExtractJobs() Option {
	return func(reg *registry) {
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "extract_jobs",
			Description: "Split a pasted Upwork alert email into job leads (title, url, description)",
		}, extractTool{}.handle)
	}
}

func (extractTool) handle(_ context.Context, _ *sdkmcp.CallToolRequest, params *ExtractParams) (*sdkmcp.CallToolResult, any, error) {
	res := ExtractResult{Jobs: []domain.JobLead{}}
	if params == nil {
		return textResult("no text provided"), res, nil
	}
	if jobs := email_scrape.ExtractUpworkJobs(params.Text); len(jobs) > 0 {
		res.Jobs = jobs
	}
	return jsonResult(res), res, nil
}

type scoreTool struct {
	config func() config.Config
}

// WithFitScore registers fit_score using the live scoring rubric.
func WithFitScore(cfg func() config.Config) Option {
	return func(reg *registry) {
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "fit_score",
			Description: "Score a job 0-100 against the configured keyword rubric",
		}, scoreTool{config: cfg}.handle)
	}
}

func (t scoreTool) handle(_ context.Context, _ *sdkmcp.CallToolRequest, params *ScoreParams) (*sdkmcp.CallToolResult, any, error) {
	if params == nil || strings.TrimSpace(params.Title+params.Description) == "" {
		return nil, nil, fmt.Errorf("title or description is required")
	}
	cfg := currentConfig(t.config)
	fs := rank.FromConfig(cfg).Score(domain.JobLead{Title: params.Title, Description: params.Description})
	res := ScoreResult{
		Score:  fs.Score,
		Hits:   fs.Hits,
		Status: rank.StatusForScore(fs.Score, cfg.App.ShortlistThreshold),
	}
	if res.Hits == nil {
		res.Hits = []string{}
	}

	hits := "none"
	if len(res.Hits) > 0 {
		hits = strings.Join(res.Hits, ", ")
	}
	return textResult(fmt.Sprintf("score %d (%s), status %s", res.Score, hits, res.Status)), res, nil
}

type draftTool struct {
	config func() config.Config
}

func WithDraftProposal(cfg func() config.Config) Option {
	return func(reg *registry) {
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "draft_proposal",
			Description: "Draft a short cover letter, clarifying questions and a pricing note for a job",
		}, draftTool{config: cfg}.handle)
	}
}

func (t draftTool) handle(_ context.Context, _ *sdkmcp.CallToolRequest, params *DraftParams) (*sdkmcp.CallToolResult, any, error) {
	if params == nil {
		params = &DraftParams{}
	}
	timeframe := params.Timeframe
	if strings.TrimSpace(timeframe) == "" {
		timeframe = currentConfig(t.config).Proposal.DefaultTimeframe
	}
	d := proposal.Generate(proposal.Input{
		JobTitle:       params.JobTitle,
		JobDescription: params.JobDescription,
		PortfolioName:  params.PortfolioName,
		PortfolioURL:   params.PortfolioURL,
		Timeframe:      timeframe,
	})

	var b strings.Builder
	b.WriteString(d.DraftText)
	b.WriteString("\n\nQuestions:\n")
	b.WriteString(d.Questions)
	b.WriteString("\n\n")
	b.WriteString(d.PricingNote)
	return textResult(b.String()), d, nil
}

func currentConfig(f func() config.Config) config.Config {
	if f == nil {
		return config.Default()
	}
	return f()
}
