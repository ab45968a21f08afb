package poll

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"gigtracker-engine/internal/config"
	"gigtracker-engine/internal/ingest"
	"gigtracker-engine/internal/scheduler"
	email_scrape "gigtracker-engine/internal/scrape/email"
)

var (
	ErrDisabled = errors.New("email polling is disabled")
	ErrBusy     = errors.New("email poll already running")
)

// tick is how often Run checks whether a poll is due; the poll interval itself comes from
// email.poll_seconds so config reloads take effect without a restart.
const tick = 15 * time.Second

const runTimeout = 2 * time.Minute

type Status struct {
	Running   bool   `json:"running"`
	LastRunAt string `json:"lastRunAt,omitempty"`
	LastOkAt  string `json:"lastOkAt,omitempty"`
	LastError string `json:"lastError,omitempty"`
	LastMails int    `json:"lastMails"`
	LastAdded int    `json:"lastAdded"`
}

type Poller struct {
	Config   func() config.Config
	Importer func(cfg config.Config) *ingest.Importer
	Password func(cfg config.EmailConfig) (string, error)
	Fetch    FetchFunc
	Log      *zap.Logger

	mu      sync.Mutex
	status  atomic.Value // Status
	lastRun atomic.Int64 // unix nanos
}

func (p *Poller) log() *zap.Logger {
	if p.Log == nil {
		return zap.NewNop()
	}
	return p.Log
}

func (p *Poller) Status() Status {
	if st, ok := p.status.Load().(Status); ok {
		return st
	}
	return Status{}
}

func (p *Poller) update(fn func(*Status)) {
	st := p.Status()
	fn(&st)
	p.status.Store(st)
}

// RunOnce polls the mailbox now. It returns ErrDisabled when email is off and ErrBusy when
// another run is in flight.
func (p *Poller) RunOnce(ctx context.Context) (Result, error) {
	cfg := p.Config()
	if !cfg.Email.Enabled {
		return Result{}, ErrDisabled
	}
	if !p.mu.TryLock() {
		return Result{}, ErrBusy
	}
	defer p.mu.Unlock()

	now := time.Now()
	p.lastRun.Store(now.UnixNano())
	p.update(func(st *Status) {
		st.Running = true
		st.LastRunAt = now.Format(time.RFC3339)
	})

	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	res, err := p.run(ctx, cfg)

	p.update(func(st *Status) {
		st.Running = false
		st.LastMails = res.Mails
		st.LastAdded = res.Added
		if err != nil {
			st.LastError = err.Error()
			return
		}
		st.LastError = ""
		st.LastOkAt = time.Now().Format(time.RFC3339)
	})
	if err != nil {
		p.log().Warn("email poll failed", zap.Error(err))
	} else {
		p.log().Info("email poll ok",
			zap.Int("mails", res.Mails),
			zap.Int("added", res.Added),
			zap.Int("skipped", res.Skipped),
			zap.Int("failed", res.Failed),
		)
	}
	return res, err
}

func (p *Poller) run(ctx context.Context, cfg config.Config) (Result, error) {
	pw, err := p.Password(cfg.Email)
	if err != nil {
		return Result{}, err
	}
	fetch := p.Fetch
	if fetch == nil {
		fetch = email_scrape.FetchAlerts
	}
	return RunEmailImportOnce(ctx, fetch, cfg.Email, pw, p.Importer(cfg), p.log())
}

// due reports whether poll_seconds have passed since the last run.
func (p *Poller) due(now time.Time, cfg config.Config) bool {
	if !cfg.Email.Enabled {
		return false
	}
	last := p.lastRun.Load()
	if last == 0 {
		return true
	}
	every := time.Duration(cfg.Email.PollSeconds) * time.Second
	return now.Sub(time.Unix(0, last)) >= every
}

// Run polls whenever due until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	scheduler.Every(ctx, tick, "email-poll", p.log(), func(ctx context.Context) error {
		if !p.due(time.Now(), p.Config()) {
			return nil
		}
		// RunOnce records and logs its own failures
		_, _ = p.RunOnce(ctx)
		return nil
	})
}
