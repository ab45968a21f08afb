package email_scrape

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"go.uber.org/zap"

	"gigtracker-engine/internal/scrape/util"
)

// maxScan caps how many unseen envelopes one poll inspects.
const maxScan = 500

// MailboxOptions selects which mailbox to read and which alert mails to keep.
type MailboxOptions struct {
	Addr        string
	Username    string
	Password    string
	Mailbox     string
	SubjectAny  []string
	MaxMessages int
}

// AlertMail is one matching message with its body rendered as plain text.
type AlertMail struct {
	UID     imap.UID
	Subject string
	From    string
	Date    time.Time
	Text    string
}

// Batch holds the mails of one fetch. The connection stays open until Finalize is called,
// which marks the given UIDs \Seen and logs out. Finalize must be called exactly once.
//
// Unreadable lists matching mails whose body was missing or could not be decoded. Callers
// should pass them to Finalize too, or they are selected again on every poll.
type Batch struct {
	Mails      []AlertMail
	Unreadable []imap.UID
	Scanned    int
	Finalize   func(processed []imap.UID) error
}

// Addr joins host and port, defaulting to the IMAPS port.
func Addr(host string, port int) string {
	host = strings.TrimSpace(host)
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	if port <= 0 {
		port = 993
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// FetchAlerts logs in, scans unseen mail newest first and downloads only messages whose subject
// matches opts.SubjectAny. Nothing is marked \Seen until Finalize.
func FetchAlerts(ctx context.Context, opts MailboxOptions, log *zap.Logger) (*Batch, error) {
	if log == nil {
		log = zap.NewNop()
	}
	mailbox := opts.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	limit := opts.MaxMessages
	if limit <= 0 {
		limit = 50
	}

	c, err := dialAndLogin(ctx, opts.Addr, opts.Username, opts.Password)
	if err != nil {
		return nil, err
	}
	ok := false
	defer func() {
		if !ok {
			logoutAndClose(c, log)
		}
	}()

	if _, err := c.Select(mailbox, &imap.SelectOptions{ReadOnly: false}).Wait(); err != nil {
		return nil, fmt.Errorf("imap select %q: %w", mailbox, err)
	}

	uids, err := unseenUIDs(c, time.Now())
	if err != nil {
		return nil, err
	}
	if len(uids) > maxScan {
		uids = uids[:maxScan]
	}

	envs, err := fetchEnvelopes(ctx, c, uids)
	if err != nil {
		return nil, err
	}
	// FETCH responses arrive in mailbox order; the limit below keeps the newest.
	sortNewestFirst(envs)

	var matched []envelope
	for _, e := range envs {
		if !SubjectMatches(e.Subject, opts.SubjectAny) {
			continue
		}
		matched = append(matched, e)
		if len(matched) == limit {
			break
		}
	}

	matchedUIDs := make([]imap.UID, 0, len(matched))
	for _, e := range matched {
		matchedUIDs = append(matchedUIDs, e.UID)
	}
	bodies, err := fetchBodies(ctx, c, matchedUIDs)
	if err != nil {
		return nil, err
	}

	b := &Batch{Scanned: len(envs)}
	for _, e := range matched {
		raw, found := bodies[e.UID]
		if !found {
			log.Warn("alert mail body missing", zap.Uint32("uid", uint32(e.UID)))
			b.Unreadable = append(b.Unreadable, e.UID)
			continue
		}
		text, err := alertText(raw)
		if err != nil {
			log.Warn("alert mail unreadable", zap.Uint32("uid", uint32(e.UID)), zap.Error(err))
			b.Unreadable = append(b.Unreadable, e.UID)
			continue
		}
		b.Mails = append(b.Mails, AlertMail{
			UID:     e.UID,
			Subject: e.Subject,
			From:    e.From,
			Date:    e.Date,
			Text:    text,
		})
	}

	done := false
	b.Finalize = func(processed []imap.UID) error {
		if done {
			return errors.New("batch already finalized")
		}
		done = true
		defer logoutAndClose(c, log)
		return markSeen(c, processed)
	}

	ok = true
	log.Debug("imap fetch done",
		zap.Int("scanned", b.Scanned),
		zap.Int("matched", len(matched)),
		zap.Int("mails", len(b.Mails)),
		zap.Int("unreadable", len(b.Unreadable)),
	)
	return b, nil
}

// sortNewestFirst orders envelopes by UID, highest first.
func sortNewestFirst(envs []envelope) {
	slices.SortFunc(envs, func(a, b envelope) int {
		return cmp.Compare(b.UID, a.UID)
	})
}

// alertText decodes an RFC822 message and returns its body, preferring text/plain.
func alertText(raw []byte) (string, error) {
	m := parseRFC822(raw)
	if strings.TrimSpace(m.Plain) != "" {
		return util.NormalizeLines(m.Plain), nil
	}
	if strings.TrimSpace(m.HTML) == "" {
		return "", errors.New("no text body")
	}
	return HTMLToText(m.HTML)
}

// SubjectMatches reports whether subject contains any needle, case-insensitively.
// An empty needle list matches everything.
func SubjectMatches(subject string, needles []string) bool {
	if len(needles) == 0 {
		return true
	}
	ls := strings.ToLower(subject)
	for _, n := range needles {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" && strings.Contains(ls, n) {
			return true
		}
	}
	return false
}
