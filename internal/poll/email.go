package poll

import (
	"context"
	"errors"

	"github.com/emersion/go-imap/v2"
	"go.uber.org/zap"

	"gigtracker-engine/internal/config"
	"gigtracker-engine/internal/ingest"
	email_scrape "gigtracker-engine/internal/scrape/email"
)

// FetchFunc fetches one batch of alert mails; email_scrape.FetchAlerts in production.
type FetchFunc func(ctx context.Context, opts email_scrape.MailboxOptions, log *zap.Logger) (*email_scrape.Batch, error)

type Result struct {
	Mails      int `json:"mails"`
	Added      int `json:"added"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
	Unreadable int `json:"unreadable"`
}

// RunEmailImportOnce imports every matching unseen alert mail. Mails that imported cleanly
// (or held nothing to import) are marked \Seen, and so are mails whose body could not be read.
// Failed imports stay unseen for the next run.
func RunEmailImportOnce(ctx context.Context, fetch FetchFunc, cfg config.EmailConfig, password string, imp *ingest.Importer, log *zap.Logger) (Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if fetch == nil {
		fetch = email_scrape.FetchAlerts
	}

	batch, err := fetch(ctx, email_scrape.MailboxOptions{
		Addr:        email_scrape.Addr(cfg.IMAPHost, cfg.IMAPPort),
		Username:    cfg.Username,
		Password:    password,
		Mailbox:     cfg.Mailbox,
		SubjectAny:  cfg.SearchSubjectAny,
		MaxMessages: cfg.MaxMessages,
	}, log)
	if err != nil {
		return Result{}, err
	}

	res := Result{Mails: len(batch.Mails), Unreadable: len(batch.Unreadable)}
	processed := make([]imap.UID, 0, len(batch.Mails)+len(batch.Unreadable))
	for _, m := range batch.Mails {
		rep, err := imp.ImportText(ctx, m.Text)
		switch {
		case errors.Is(err, ingest.ErrEmptyInput):
			// nothing to import; still mark seen
		case err != nil:
			res.Failed++
			log.Warn("alert mail import failed",
				zap.Uint32("uid", uint32(m.UID)),
				zap.String("subject", m.Subject),
				zap.Error(err),
			)
			continue
		}
		res.Added += rep.Added
		res.Skipped += rep.Skipped
		processed = append(processed, m.UID)
	}

	processed = append(processed, batch.Unreadable...)

	if batch.Finalize != nil {
		if err := batch.Finalize(processed); err != nil {
			return res, err
		}
	}
	return res, nil
}
