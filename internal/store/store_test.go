package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gigtracker-engine/internal/domain"
	"gigtracker-engine/internal/proposal"
)

// newTestDB opens a fresh database with a clock that advances one second per call.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	d, err := Open(filepath.Join(t.TempDir(), "engine.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	d.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
	return d
}

func TestMigrateIdempotent(t *testing.T) {
	d := newTestDB(t)

	require.NoError(t, Migrate(d.Pool))
	var v int
	require.NoError(t, d.Pool.QueryRow(`PRAGMA user_version;`).Scan(&v))
	assert.Equal(t, SchemaVersion, v)
}

func TestCreateAndGetJob(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)

	j, err := d.CreateJob(ctx, NewJob{
		Title:       "  React Developer Needed ",
		URL:         "https://upwork.com/jobs/123",
		Description: "Build a landing page",
		FitScore:    70,
		Tags:        []string{"react", "landing"},
		Source:      domain.SourceEmail,
	})
	require.NoError(t, err)

	assert.NotZero(t, j.ID)
	assert.Equal(t, "React Developer Needed", j.Title)
	assert.Equal(t, "Upwork", j.Platform)
	assert.Equal(t, domain.StatusNew, j.Status)
	assert.Equal(t, domain.SourceEmail, j.Source)
	assert.Equal(t, []string{"react", "landing"}, j.Tags)
	assert.False(t, j.CreatedAt.IsZero())

	got, err := d.GetJob(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, j, got)

	_, err = d.GetJob(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateJobValidation(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)

	_, err := d.CreateJob(ctx, NewJob{Title: "x"})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = d.CreateJob(ctx, NewJob{Title: "x", Description: "y", Status: "BOGUS"})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = d.CreateJob(ctx, NewJob{Title: "a", Description: "b", URL: "https://upwork.com/jobs/1"})
	require.NoError(t, err)
	_, err = d.CreateJob(ctx, NewJob{Title: "c", Description: "d", URL: "https://upwork.com/jobs/1"})
	assert.ErrorIs(t, err, ErrDuplicate)

	// jobs without a url never collide on the unique index
	_, err = d.CreateJob(ctx, NewJob{Title: "e", Description: "f"})
	require.NoError(t, err)
	_, err = d.CreateJob(ctx, NewJob{Title: "g", Description: "h", URL: "  "})
	require.NoError(t, err)
}

func TestListJobs(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)

	seed := []NewJob{
		{Title: "Beta", Description: "d", FitScore: 40},
		{Title: "alpha", Description: "d", FitScore: 90, Status: domain.StatusShortlisted},
		{Title: "Gamma", Description: "d", FitScore: 60},
	}
	for _, nj := range seed {
		_, err := d.CreateJob(ctx, nj)
		require.NoError(t, err)
	}

	titles := func(js []Job) []string {
		out := make([]string, 0, len(js))
		for _, j := range js {
			out = append(out, j.Title)
		}
		return out
	}

	tests := []struct {
		name string
		opts ListJobsOpts
		want []string
	}{
		{name: "default newest first", opts: ListJobsOpts{}, want: []string{"Gamma", "alpha", "Beta"}},
		{name: "by score", opts: ListJobsOpts{Sort: "score"}, want: []string{"alpha", "Gamma", "Beta"}},
		{name: "by title", opts: ListJobsOpts{Sort: "title"}, want: []string{"alpha", "Beta", "Gamma"}},
		{name: "unknown sort falls back", opts: ListJobsOpts{Sort: "drop table"}, want: []string{"Gamma", "alpha", "Beta"}},
		{name: "status filter", opts: ListJobsOpts{Status: domain.StatusShortlisted}, want: []string{"alpha"}},
		{name: "limit", opts: ListJobsOpts{Limit: 1}, want: []string{"Gamma"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.ListJobs(ctx, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
		})
	}

	_, err := d.ListJobs(ctx, ListJobsOpts{Status: "NOPE"})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestUpdateJob(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)

	j, err := d.CreateJob(ctx, NewJob{Title: "t", Description: "d"})
	require.NoError(t, err)

	st := domain.StatusInterview
	notes := "call on Friday"
	got, err := d.UpdateJob(ctx, j.ID, JobUpdate{Status: &st, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInterview, got.Status)
	assert.Equal(t, notes, got.Notes)
	assert.True(t, got.UpdatedAt.After(j.UpdatedAt))

	bad := domain.JobStatus("HIRED")
	_, err = d.UpdateJob(ctx, j.ID, JobUpdate{Status: &bad})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = d.UpdateJob(ctx, 404, JobUpdate{Notes: &notes})
	assert.ErrorIs(t, err, ErrNotFound)

	applied, err := d.MarkApplied(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApplied, applied.Status)

	require.NoError(t, d.SetFitScore(ctx, j.ID, 55, []string{"react", "-wordpress"}))
	got, err = d.GetJob(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, 55, got.FitScore)
	assert.Equal(t, []string{"react", "-wordpress"}, got.Tags)

	assert.ErrorIs(t, d.SetFitScore(ctx, 404, 1, nil), ErrNotFound)
}

func TestFindDuplicate(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)

	withURL, err := d.CreateJob(ctx, NewJob{Title: "A", Description: "desc", URL: "https://upwork.com/jobs/1"})
	require.NoError(t, err)
	noURL, err := d.CreateJob(ctx, NewJob{Title: "Logo design", Description: "Vector logo for a bakery"})
	require.NoError(t, err)

	got, ok, err := d.FindDuplicate(ctx, "https://upwork.com/jobs/1", "other", "other")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, withURL.ID, got.ID)

	got, ok, err = d.FindDuplicate(ctx, "", "LOGO DESIGN", "vector logo for a bakery")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, noURL.ID, got.ID)

	_, ok, err = d.FindDuplicate(ctx, "https://upwork.com/jobs/2", "Logo design", "Vector logo for a bakery")
	require.NoError(t, err)
	assert.False(t, ok, "url present means url-only matching")
}

func TestFingerprint(t *testing.T) {
	long := make([]rune, 300)
	for i := range long {
		long[i] = 'a'
	}
	assert.Equal(t, Fingerprint("T", string(long[:200])), Fingerprint("t", string(long)))
	assert.NotEqual(t, Fingerprint("t", "a"), Fingerprint("t", "b"))
}

func TestDeleteJobCascades(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)

	j, err := d.CreateJob(ctx, NewJob{Title: "t", Description: "d"})
	require.NoError(t, err)
	_, err = d.CreateProposal(ctx, j.ID, proposal.Draft{DraftText: "hi"})
	require.NoError(t, err)

	require.NoError(t, d.DeleteJob(ctx, j.ID))
	assert.ErrorIs(t, d.DeleteJob(ctx, j.ID), ErrNotFound)

	var n int
	require.NoError(t, d.Pool.QueryRow(`SELECT COUNT(*) FROM proposals;`).Scan(&n))
	assert.Zero(t, n)
}

func TestCreateProposalVersions(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)

	j, err := d.CreateJob(ctx, NewJob{Title: "t", Description: "d", Status: domain.StatusShortlisted})
	require.NoError(t, err)

	p1, err := d.CreateProposal(ctx, j.ID, proposal.Draft{DraftText: "v1", Questions: "q", PricingNote: "n"})
	require.NoError(t, err)
	assert.Equal(t, 1, p1.Version)

	got, err := d.GetJob(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDrafted, got.Status)

	p2, err := d.CreateProposal(ctx, j.ID, proposal.Draft{DraftText: "v2"})
	require.NoError(t, err)
	assert.Equal(t, 2, p2.Version)

	list, err := d.ListProposals(ctx, j.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "v2", list[0].DraftText)
	assert.Equal(t, "v1", list[1].DraftText)
	assert.Equal(t, "q", list[1].Questions)

	_, err = d.CreateProposal(ctx, 404, proposal.Draft{DraftText: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateProposalKeepsLaterStatus(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)

	j, err := d.CreateJob(ctx, NewJob{Title: "t", Description: "d", Status: domain.StatusApplied})
	require.NoError(t, err)
	_, err = d.CreateProposal(ctx, j.ID, proposal.Draft{DraftText: "v1"})
	require.NoError(t, err)

	got, err := d.GetJob(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApplied, got.Status)
}

func TestPortfolio(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)

	_, err := d.AddPortfolioItem(ctx, domain.PortfolioItem{Name: "no url", Keywords: "react"})
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = d.AddPortfolioItem(ctx, domain.PortfolioItem{Name: "Bare", URLLive: "https://bare.example.com"})
	assert.ErrorIs(t, err, ErrInvalid, "an item without keywords can never match a job")
	_, err = d.AddPortfolioItem(ctx, domain.PortfolioItem{Name: "Commas", URLLive: "https://c.example.com", Keywords: " , ,"})
	assert.ErrorIs(t, err, ErrInvalid)

	shop, err := d.AddPortfolioItem(ctx, domain.PortfolioItem{
		Name: "Shop", URLLive: "https://shop.example.com", Keywords: "ecommerce, react, stripe",
	})
	require.NoError(t, err)
	dash, err := d.AddPortfolioItem(ctx, domain.PortfolioItem{
		Name: "Dash", URLLive: "https://dash.example.com", URLGithub: "https://github.com/x/dash", Keywords: "dashboard, react",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/x/dash", dash.URLGithub)

	items, err := d.ListPortfolio(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Dash", items[0].Name)

	m, ok, err := d.MatchPortfolio(ctx, "Need a React dashboard")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, dash.ID, m.ID)

	m, ok, err = d.MatchPortfolio(ctx, "React only")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, dash.ID, m.ID, "ties go to the newest item")

	m, ok, err = d.MatchPortfolio(ctx, "Stripe checkout for ecommerce")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, shop.ID, m.ID)

	_, ok, err = d.MatchPortfolio(ctx, "python scraping")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, d.DeletePortfolioItem(ctx, shop.ID))
	assert.ErrorIs(t, d.DeletePortfolioItem(ctx, shop.ID), ErrNotFound)
	_, err = d.GetPortfolioItem(ctx, shop.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCleanupArchived(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)

	_, err := d.CreateJob(ctx, NewJob{Title: "old", Description: "d", Status: domain.StatusArchived})
	require.NoError(t, err)
	_, err = d.CreateJob(ctx, NewJob{Title: "live", Description: "d"})
	require.NoError(t, err)

	n, err := d.CleanupArchived(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	d.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	n, err = d.CleanupArchived(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	left, err := d.ListJobs(ctx, ListJobsOpts{})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "live", left[0].Title)
}

func TestLock(t *testing.T) {
	dir := t.TempDir()

	fl, err := Lock(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fl.Unlock() })

	_, err = Lock(dir)
	assert.ErrorIs(t, err, ErrLocked)
}
