package email_scrape

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"go.uber.org/zap"
)

// searchWindow bounds how far back unseen mail is considered.
const searchWindow = 30 * 24 * time.Hour

// envelope is a fetched message before body download.
type envelope struct {
	UID     imap.UID
	Subject string
	From    string
	Date    time.Time
}

func tlsConfigFor(addr string) *tls.Config {
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	return &tls.Config{MinVersion: tls.VersionTLS12, ServerName: host}
}

// dialAndLogin connects over TLS and logs in. The connection is closed when ctx ends.
func dialAndLogin(ctx context.Context, addr, username, password string) (*imapclient.Client, error) {
	if addr == "" {
		return nil, errors.New("imap addr is required")
	}
	if username == "" || password == "" {
		return nil, errors.New("imap username/password is required")
	}

	c, err := imapclient.DialTLS(addr, &imapclient.Options{TLSConfig: tlsConfigFor(addr)})
	if err != nil {
		return nil, fmt.Errorf("imap dial tls: %w", err)
	}

	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()

	if err := c.Login(username, password).Wait(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("imap login: %w", err)
	}
	return c, nil
}

// unseenUIDs returns unseen UIDs within the search window, newest first.
func unseenUIDs(c *imapclient.Client, now time.Time) ([]imap.UID, error) {
	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
		Since:   now.Add(-searchWindow),
	}
	data, err := c.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap uid search unseen: %w", err)
	}
	uids := data.AllUIDs()
	for i, j := 0, len(uids)-1; i < j; i, j = i+1, j-1 {
		uids[i], uids[j] = uids[j], uids[i]
	}
	return uids, nil
}

// fetchEnvelopes pulls headers only so non-matching mail is never downloaded.
func fetchEnvelopes(ctx context.Context, c *imapclient.Client, uids []imap.UID) ([]envelope, error) {
	if len(uids) == 0 {
		return nil, nil
	}
	cmd := c.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{UID: true, Envelope: true})
	defer func() { _ = cmd.Close() }()

	out := make([]envelope, 0, len(uids))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		msg := cmd.Next()
		if msg == nil {
			break
		}
		buf, err := msg.Collect()
		if err != nil {
			return nil, fmt.Errorf("imap fetch envelope: %w", err)
		}
		env := envelope{UID: buf.UID}
		if buf.Envelope != nil {
			env.Subject = decodeRFC2047(buf.Envelope.Subject)
			env.From = joinAddrs(buf.Envelope.From)
			env.Date = buf.Envelope.Date
		}
		out = append(out, env)
	}
	if err := cmd.Close(); err != nil {
		return nil, fmt.Errorf("imap fetch close: %w", err)
	}
	return out, nil
}

// fetchBodies downloads full RFC822 bytes with BODY.PEEK[] so \Seen is left untouched.
func fetchBodies(ctx context.Context, c *imapclient.Client, uids []imap.UID) (map[imap.UID][]byte, error) {
	out := make(map[imap.UID][]byte, len(uids))
	if len(uids) == 0 {
		return out, nil
	}

	bodyAll := &imap.FetchItemBodySection{Specifier: imap.PartSpecifierNone, Peek: true}
	cmd := c.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodyAll},
	})
	defer func() { _ = cmd.Close() }()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		msg := cmd.Next()
		if msg == nil {
			break
		}
		buf, err := msg.Collect()
		if err != nil {
			return nil, fmt.Errorf("imap fetch body: %w", err)
		}
		if b := buf.FindBodySection(bodyAll); b != nil {
			out[buf.UID] = append([]byte(nil), b...)
		}
	}
	if err := cmd.Close(); err != nil {
		return nil, fmt.Errorf("imap fetch close: %w", err)
	}
	return out, nil
}

// markSeen sets \Seen on uids. Store has no Wait; Close reports the final status.
func markSeen(c *imapclient.Client, uids []imap.UID) error {
	if len(uids) == 0 {
		return nil
	}
	cmd := c.Store(imap.UIDSetNum(uids...), &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}, nil)
	if err := cmd.Close(); err != nil {
		return fmt.Errorf("imap store add seen: %w", err)
	}
	return nil
}

func logoutAndClose(c *imapclient.Client, log *zap.Logger) {
	if c == nil {
		return
	}
	if err := c.Logout().Wait(); err != nil {
		log.Debug("imap logout", zap.Error(err))
	}
	_ = c.Close()
}

func joinAddrs(addrs []imap.Address) string {
	parts := make([]string, 0, len(addrs))
	for i := range addrs {
		a := &addrs[i]
		addr := strings.TrimSpace(a.Addr())
		if addr == "" {
			addr = strings.TrimSpace(a.Name)
		}
		if addr != "" {
			parts = append(parts, addr)
		}
	}
	return strings.Join(parts, ", ")
}
