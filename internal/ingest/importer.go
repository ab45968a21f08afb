// Package ingest turns pasted alert text, mailbox bodies and manual entries into scored jobs,
// and drafts proposals for stored jobs.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"gigtracker-engine/internal/config"
	"gigtracker-engine/internal/domain"
	"gigtracker-engine/internal/events"
	"gigtracker-engine/internal/logger"
	"gigtracker-engine/internal/proposal"
	"gigtracker-engine/internal/rank"
	email_scrape "gigtracker-engine/internal/scrape/email"
	"gigtracker-engine/internal/scrape/util"
	"gigtracker-engine/internal/store"
)

var ErrEmptyInput = errors.New("nothing to import")

// Store is the persistence the importer needs; *store.DB implements it.
type Store interface {
	CreateJob(ctx context.Context, nj store.NewJob) (store.Job, error)
	GetJob(ctx context.Context, id int64) (store.Job, error)
	FindDuplicate(ctx context.Context, url, title, description string) (store.Job, bool, error)
	SetFitScore(ctx context.Context, id int64, score int, tags []string) error
	CreateProposal(ctx context.Context, jobID int64, d proposal.Draft) (store.Proposal, error)
	GetPortfolioItem(ctx context.Context, id int64) (domain.PortfolioItem, error)
	MatchPortfolio(ctx context.Context, text string) (domain.PortfolioItem, bool, error)
}

// NotifyFunc receives change events (see package events for types).
type NotifyFunc func(ctx context.Context, typ string, data any)

type Importer struct {
	DB        Store
	Scorer    rank.Scorer
	Threshold int
	Timeframe string
	Log       *zap.Logger
	Notify    NotifyFunc
}

// New builds an importer from the current config.
func New(db Store, cfg config.Config, log *zap.Logger) *Importer {
	return &Importer{
		DB:        db,
		Scorer:    rank.FromConfig(cfg),
		Threshold: cfg.App.ShortlistThreshold,
		Timeframe: cfg.Proposal.DefaultTimeframe,
		Log:       logger.OrNop(log),
	}
}

type Report struct {
	Parsed  int         `json:"parsed"`
	Added   int         `json:"added"`
	Skipped int         `json:"skipped"`
	Jobs    []store.Job `json:"jobs"`
}

func (i *Importer) threshold() int {
	if i.Threshold <= 0 {
		return rank.ShortlistThreshold
	}
	return i.Threshold
}

func (i *Importer) scorer() rank.Scorer {
	if i.Scorer == nil {
		return rank.DefaultScorer()
	}
	return i.Scorer
}

func (i *Importer) log() *zap.Logger {
	return logger.OrNop(i.Log)
}

func (i *Importer) notify(ctx context.Context, typ string, data any) {
	if i.Notify != nil {
		i.Notify(ctx, typ, data)
	}
}

// ImportText extracts every candidate from raw, skips ones already stored, and stores the
// rest as EMAIL jobs with a status derived from their score.
func (i *Importer) ImportText(ctx context.Context, raw string) (Report, error) {
	leads := email_scrape.ExtractUpworkJobs(raw)
	if len(leads) == 0 {
		return Report{}, ErrEmptyInput
	}

	rep := Report{Parsed: len(leads), Jobs: []store.Job{}}
	for _, lead := range leads {
		j, added, err := i.add(ctx, lead, domain.SourceEmail, "")
		if err != nil {
			return rep, err
		}
		if !added {
			rep.Skipped++
			continue
		}
		rep.Added++
		rep.Jobs = append(rep.Jobs, j)
	}

	i.log().Info("import finished",
		zap.Int("parsed", rep.Parsed),
		zap.Int("added", rep.Added),
		zap.Int("skipped", rep.Skipped),
	)
	i.notify(ctx, events.ImportFinished, rep)
	return rep, nil
}

// ImportManual stores a hand-entered job. A duplicate returns the stored job and an error
// wrapping store.ErrDuplicate.
func (i *Importer) ImportManual(ctx context.Context, lead domain.JobLead, notes string) (store.Job, error) {
	if strings.TrimSpace(lead.Title) == "" || strings.TrimSpace(lead.Description) == "" {
		return store.Job{}, fmt.Errorf("%w: title and description are required", store.ErrInvalid)
	}
	j, added, err := i.add(ctx, lead, domain.SourceManual, notes)
	if err != nil {
		return store.Job{}, err
	}
	if !added {
		return j, fmt.Errorf("%w: job %d", store.ErrDuplicate, j.ID)
	}
	return j, nil
}

func (i *Importer) add(ctx context.Context, lead domain.JobLead, src domain.JobSource, notes string) (store.Job, bool, error) {
	lead.URL = util.CanonicalURL(lead.URL)
	if lead.Platform == "" {
		lead.Platform = domain.DefaultPlatform
	}

	if existing, dup, err := i.DB.FindDuplicate(ctx, lead.URL, lead.Title, lead.Description); err != nil {
		return store.Job{}, false, err
	} else if dup {
		i.log().Debug("duplicate skipped", logger.Job(existing.ID, lead.Title)...)
		return existing, false, nil
	}

	fs := i.scorer().Score(lead)
	j, err := i.DB.CreateJob(ctx, store.NewJob{
		Title:       lead.Title,
		Platform:    lead.Platform,
		URL:         lead.URL,
		Description: lead.Description,
		Status:      rank.StatusForScore(fs.Score, i.threshold()),
		Notes:       notes,
		FitScore:    fs.Score,
		Tags:        fs.Hits,
		Source:      src,
	})
	if errors.Is(err, store.ErrDuplicate) {
		existing, _, ferr := i.DB.FindDuplicate(ctx, lead.URL, lead.Title, lead.Description)
		return existing, false, ferr
	}
	if err != nil {
		return store.Job{}, false, err
	}

	i.log().Info("job added", append(logger.Job(j.ID, j.Title),
		zap.String(logger.FieldSource, string(src)),
		zap.Int("fit_score", j.FitScore),
		zap.String("status", string(j.Status)),
	)...)
	i.notify(ctx, events.JobCreated, j)
	return j, true, nil
}

// Rescore recomputes a stored job's score and tags. Status is left alone.
func (i *Importer) Rescore(ctx context.Context, id int64) (store.Job, error) {
	j, err := i.DB.GetJob(ctx, id)
	if err != nil {
		return store.Job{}, err
	}
	fs := i.scorer().Score(domain.JobLead{Title: j.Title, Description: j.Description, URL: j.URL, Platform: j.Platform})
	if err := i.DB.SetFitScore(ctx, id, fs.Score, fs.Hits); err != nil {
		return store.Job{}, err
	}
	j, err = i.DB.GetJob(ctx, id)
	if err != nil {
		return store.Job{}, err
	}
	i.notify(ctx, events.JobUpdated, j)
	return j, nil
}

type DraftOpts struct {
	Timeframe   string
	PortfolioID int64 // 0 = best keyword match
}

// Draft generates and stores the job's next proposal version.
func (i *Importer) Draft(ctx context.Context, id int64, opts DraftOpts) (store.Proposal, error) {
	j, err := i.DB.GetJob(ctx, id)
	if err != nil {
		return store.Proposal{}, err
	}

	var (
		item  domain.PortfolioItem
		found bool
	)
	if opts.PortfolioID > 0 {
		item, err = i.DB.GetPortfolioItem(ctx, opts.PortfolioID)
		if err != nil {
			return store.Proposal{}, err
		}
		found = true
	} else {
		item, found, err = i.DB.MatchPortfolio(ctx, j.Title+"\n"+j.Description)
		if err != nil {
			return store.Proposal{}, err
		}
	}

	in := proposal.Input{
		JobTitle:       j.Title,
		JobDescription: j.Description,
		Timeframe:      strings.TrimSpace(opts.Timeframe),
	}
	if in.Timeframe == "" {
		in.Timeframe = i.Timeframe
	}
	if found {
		in.PortfolioName = item.Name
		in.PortfolioURL = item.URLLive
	}

	p, err := i.DB.CreateProposal(ctx, id, proposal.Generate(in))
	if err != nil {
		return store.Proposal{}, err
	}
	i.log().Info("proposal drafted", append(logger.Job(j.ID, j.Title), zap.Int("version", p.Version))...)
	i.notify(ctx, events.ProposalCreated, p)
	return p, nil
}
