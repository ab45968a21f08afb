package poll

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"gigtracker-engine/internal/config"
	"gigtracker-engine/internal/ingest"
	email_scrape "gigtracker-engine/internal/scrape/email"
	"gigtracker-engine/internal/store"
)

type fakeMailbox struct {
	mails      []email_scrape.AlertMail
	unreadable []imap.UID
	err        error
	gotOpts   email_scrape.MailboxOptions
	finalized []imap.UID
}

func (f *fakeMailbox) fetch(_ context.Context, opts email_scrape.MailboxOptions, _ *zap.Logger) (*email_scrape.Batch, error) {
	f.gotOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return &email_scrape.Batch{
		Mails:      f.mails,
		Unreadable: f.unreadable,
		Scanned:    len(f.mails) + len(f.unreadable),
		Finalize: func(processed []imap.UID) error {
			f.finalized = processed
			return nil
		},
	}, nil
}

func newPoller(t *testing.T, mb *fakeMailbox, enabled bool) (*Poller, *store.DB) {
	t.Helper()

	db, err := store.Open(filepath.Join(t.TempDir(), "engine.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Default()
	cfg.Email.Enabled = enabled
	cfg.Email.Username = "me@example.com"
	log := zaptest.NewLogger(t)

	return &Poller{
		Config:   func() config.Config { return cfg },
		Importer: func(c config.Config) *ingest.Importer { return ingest.New(db, c, log) },
		Password: func(config.EmailConfig) (string, error) { return "pw", nil },
		Fetch:    mb.fetch,
		Log:      log,
	}, db
}

func TestRunOnceImportsAndMarksSeen(t *testing.T) {
	mb := &fakeMailbox{mails: []email_scrape.AlertMail{
		{UID: 10, Subject: "New job", Text: "React landing page\nNext.js\nhttps://www.upwork.com/jobs/~1"},
		{UID: 11, Subject: "New job", Text: "   "},
		{UID: 12, Subject: "New job", Text: "React landing page\nNext.js\nhttps://www.upwork.com/jobs/~1"},
	}}
	p, db := newPoller(t, mb, true)

	res, err := p.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Mails: 3, Added: 1, Skipped: 1}, res)
	assert.Equal(t, []imap.UID{10, 11, 12}, mb.finalized)
	assert.Equal(t, "imap.gmail.com:993", mb.gotOpts.Addr)
	assert.Equal(t, "pw", mb.gotOpts.Password)

	st := p.Status()
	assert.False(t, st.Running)
	assert.Equal(t, 1, st.LastAdded)
	assert.NotEmpty(t, st.LastOkAt)
	assert.Empty(t, st.LastError)

	jobs, err := db.ListJobs(context.Background(), store.ListJobsOpts{})
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestRunOnceMarksUnreadableMailsSeen(t *testing.T) {
	mb := &fakeMailbox{
		mails: []email_scrape.AlertMail{
			{UID: 30, Subject: "New job", Text: "Shopify store setup\nhttps://www.upwork.com/jobs/~30"},
		},
		unreadable: []imap.UID{28, 29},
	}
	p, _ := newPoller(t, mb, true)

	res, err := p.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Mails: 1, Added: 1, Unreadable: 2}, res)
	assert.ElementsMatch(t, []imap.UID{30, 28, 29}, mb.finalized)

	// Nothing left unseen, so the next poll starts clean.
	mb.mails, mb.unreadable = nil, nil
	res, err = p.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Empty(t, mb.finalized)
}

func TestRunOnceDisabled(t *testing.T) {
	p, _ := newPoller(t, &fakeMailbox{}, false)

	_, err := p.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestRunOnceRecordsErrors(t *testing.T) {
	p, _ := newPoller(t, &fakeMailbox{err: errors.New("imap login: bad credentials")}, true)

	_, err := p.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, p.Status().LastError, "bad credentials")

	p.Password = func(config.EmailConfig) (string, error) { return "", errors.New("no password") }
	_, err = p.RunOnce(context.Background())
	require.Error(t, err)
	assert.Equal(t, "no password", p.Status().LastError)
}

func TestRunOnceBusy(t *testing.T) {
	p, _ := newPoller(t, &fakeMailbox{}, true)

	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := p.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
}

func TestDue(t *testing.T) {
	p, _ := newPoller(t, &fakeMailbox{}, true)
	cfg := p.Config()
	every := time.Duration(cfg.Email.PollSeconds) * time.Second

	assert.True(t, p.due(time.Now(), cfg), "first run is due immediately")

	_, err := p.RunOnce(context.Background())
	require.NoError(t, err)

	last := time.Unix(0, p.lastRun.Load())
	assert.False(t, p.due(last.Add(every/2), cfg))
	assert.True(t, p.due(last.Add(every), cfg))

	cfg.Email.Enabled = false
	assert.False(t, p.due(last.Add(every), cfg))
}
