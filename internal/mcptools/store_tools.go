package mcptools

import (
	"context"
	"errors"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"gigtracker-engine/internal/domain"
	"gigtracker-engine/internal/ingest"
	"gigtracker-engine/internal/logger"
	"gigtracker-engine/internal/store"
)

type ImportParams struct {
	Text string `json:"text" jsonschema:"Raw job alert email text to store"`
}

type ListParams struct {
	Status string `json:"status,omitempty" jsonschema:"Only jobs in this status, e.g. SHORTLISTED"`
	Sort   string `json:"sort,omitempty" jsonschema:"date, score or title"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of jobs, default 50"`
}

type importTool struct {
	importer func() *ingest.Importer
	log      *zap.Logger
}

// WithImportAlert registers import_alert, which stores extracted jobs like POST /import.
func WithImportAlert(importer func() *ingest.Importer, log *zap.Logger) Option {
	if importer == nil {
		return nil
	}
	return func(reg *registry) {
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "import_alert",
			Description: "Extract, score and store the jobs in an alert email; duplicates are skipped",
		}, importTool{importer: importer, log: logger.OrNop(log)}.handle)
	}
}

func (t importTool) handle(ctx context.Context, _ *sdkmcp.CallToolRequest, params *ImportParams) (*sdkmcp.CallToolResult, any, error) {
	if params == nil {
		params = &ImportParams{}
	}
	rep, err := t.importer().ImportText(ctx, params.Text)
	if errors.Is(err, ingest.ErrEmptyInput) {
		return textResult("no jobs found in text"), ingest.Report{Jobs: []store.Job{}}, nil
	}
	if err != nil {
		t.log.Error("mcp import_alert failed", zap.Error(err))
		return nil, nil, fmt.Errorf("import: %w", err)
	}
	msg := fmt.Sprintf("parsed %d, added %d, skipped %d duplicate(s)", rep.Parsed, rep.Added, rep.Skipped)
	return textResult(msg), rep, nil
}

type listTool struct {
	db *store.DB
}

func WithListJobs(db *store.DB) Option {
	if db == nil {
		return nil
	}
	return func(reg *registry) {
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "list_jobs",
			Description: "List tracked jobs, optionally filtered by status",
		}, listTool{db: db}.handle)
	}
}

func (t listTool) handle(ctx context.Context, _ *sdkmcp.CallToolRequest, params *ListParams) (*sdkmcp.CallToolResult, any, error) {
	if params == nil {
		params = &ListParams{}
	}
	opts := store.ListJobsOpts{Sort: params.Sort, Limit: params.Limit}
	if params.Status != "" {
		st, ok := domain.ParseStatus(params.Status)
		if !ok {
			return nil, nil, fmt.Errorf("unknown status %q", params.Status)
		}
		opts.Status = st
	}
	jobs, err := t.db.ListJobs(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	if jobs == nil {
		jobs = []store.Job{}
	}
	return jsonResult(jobs), map[string]any{"jobs": jobs}, nil
}
