package mcptools

import (
	"context"
	"path/filepath"
	"sort"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gigtracker-engine/internal/config"
	"gigtracker-engine/internal/domain"
	"gigtracker-engine/internal/ingest"
	"gigtracker-engine/internal/proposal"
	"gigtracker-engine/internal/store"
)

const alert = "View Job\nReact Developer Needed\nBuild a landing page\nhttps://upwork.com/jobs/123\n\n" +
	"Apply Now\nBackend Engineer\nKubernetes and microservices\nhttps://upwork.com/jobs/456"

func text(t *testing.T, res *sdkmcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestExtractTool(t *testing.T) {
	ctx := context.Background()

	res, out, err := extractTool{}.handle(ctx, nil, &ExtractParams{Text: alert})
	require.NoError(t, err)
	jobs := out.(ExtractResult).Jobs
	require.Len(t, jobs, 2)
	assert.Equal(t, "React Developer Needed", jobs[0].Title)
	assert.Contains(t, text(t, res), "https://upwork.com/jobs/456")

	_, out, err = extractTool{}.handle(ctx, nil, &ExtractParams{Text: "  "})
	require.NoError(t, err)
	assert.NotNil(t, out.(ExtractResult).Jobs)
	assert.Empty(t, out.(ExtractResult).Jobs)
}

func TestScoreTool(t *testing.T) {
	ctx := context.Background()
	tool := scoreTool{config: config.Default}

	res, out, err := tool.handle(ctx, nil, &ScoreParams{Title: "React developer", Description: "Next.js app"})
	require.NoError(t, err)
	sr := out.(ScoreResult)
	assert.Equal(t, 50, sr.Score)
	assert.Equal(t, []string{"react", "next"}, sr.Hits)
	assert.Equal(t, domain.StatusNew, sr.Status)
	assert.Equal(t, "score 50 (react, next), status NEW", text(t, res))

	_, out, err = tool.handle(ctx, nil, &ScoreParams{Title: "Bookkeeping"})
	require.NoError(t, err)
	assert.Equal(t, []string{}, out.(ScoreResult).Hits)

	_, _, err = tool.handle(ctx, nil, &ScoreParams{})
	assert.Error(t, err)
}

func TestScoreToolUsesLiveThreshold(t *testing.T) {
	cfg := config.Default()
	cfg.App.ShortlistThreshold = 50
	tool := scoreTool{config: func() config.Config { return cfg }}

	_, out, err := tool.handle(context.Background(), nil, &ScoreParams{Title: "React developer", Description: "Next.js app"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShortlisted, out.(ScoreResult).Status)
}

func TestDraftTool(t *testing.T) {
	tool := draftTool{config: config.Default}

	res, out, err := tool.handle(context.Background(), nil, &DraftParams{
		JobTitle:      "Landing page for a bakery",
		PortfolioName: "Crumbs",
		PortfolioURL:  "https://crumbs.example.com",
	})
	require.NoError(t, err)
	d := out.(proposal.Draft)
	assert.Contains(t, d.DraftText, "Crumbs")
	assert.Contains(t, d.DraftText, "Timeline: 3-5 days")
	body := text(t, res)
	assert.Contains(t, body, "Questions:\n")
	assert.Contains(t, body, proposal.PricingNote)
}

func newImportDeps(t *testing.T) (*store.DB, func() *ingest.Importer) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "engine.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	log := zaptest.NewLogger(t)
	return db, func() *ingest.Importer { return ingest.New(db, config.Default(), log) }
}

func TestImportAndListTools(t *testing.T) {
	ctx := context.Background()
	db, imp := newImportDeps(t)
	it := importTool{importer: imp, log: zaptest.NewLogger(t)}

	res, out, err := it.handle(ctx, nil, &ImportParams{Text: alert})
	require.NoError(t, err)
	assert.Equal(t, "parsed 2, added 2, skipped 0 duplicate(s)", text(t, res))
	assert.Equal(t, 2, out.(ingest.Report).Added)

	res, _, err = it.handle(ctx, nil, &ImportParams{Text: "\n\n"})
	require.NoError(t, err)
	assert.Equal(t, "no jobs found in text", text(t, res))

	lt := listTool{db: db}
	_, out, err = lt.handle(ctx, nil, &ListParams{Status: "shortlisted"})
	require.NoError(t, err)
	jobs := out.(map[string]any)["jobs"].([]store.Job)
	require.Len(t, jobs, 1)
	assert.Equal(t, "React Developer Needed", jobs[0].Title)

	_, _, err = lt.handle(ctx, nil, &ListParams{Status: "someday"})
	assert.Error(t, err)
}

func TestNilOptionsAreSkipped(t *testing.T) {
	assert.Nil(t, WithImportAlert(nil, nil))
	assert.Nil(t, WithListJobs(nil))
}

func TestServerRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, imp := newImportDeps(t)

	server := NewServer("test",
		WithExtractJobs(),
		WithFitScore(config.Default),
		WithDraftProposal(config.Default),
		WithImportAlert(imp, nil),
		WithListJobs(db),
	)

	st, ct := sdkmcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)
	defer ss.Close()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	defer cs.Close()

	tools, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"draft_proposal", "extract_jobs", "fit_score", "import_alert", "list_jobs"}, names)

	res, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "fit_score",
		Arguments: map[string]any{"title": "Senior React developer"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "score 0 (react, -senior), status NEW", text(t, res))
}
