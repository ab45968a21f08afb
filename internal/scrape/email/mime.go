package email_scrape

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"time"
)

const (
	maxBodyBytes = 25 << 20
	maxPartBytes = 6 << 20
)

// message is the decoded subset of an RFC822 message the importer needs.
type message struct {
	Subject string
	From    string
	Date    time.Time
	Plain   string
	HTML    string
}

// parseRFC822 decodes headers and the best text/plain and text/html parts. Unparseable input
// is returned as plain text.
func parseRFC822(raw []byte) message {
	if len(raw) == 0 {
		return message{}
	}

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return message{Plain: string(raw)}
	}

	m := message{
		Subject: decodeRFC2047(msg.Header.Get("Subject")),
		From:    decodeRFC2047(msg.Header.Get("From")),
	}
	if ds := msg.Header.Get("Date"); ds != "" {
		if t, err := mail.ParseDate(ds); err == nil {
			m.Date = t
		}
	}

	body, _ := io.ReadAll(io.LimitReader(msg.Body, maxBodyBytes))
	m.Plain, m.HTML = textParts(msg.Header, body)
	if m.Plain == "" && m.HTML == "" {
		m.Plain = string(body)
	}
	return m
}

// textParts walks (possibly nested) multipart bodies and keeps the longest plain and html parts.
func textParts(h mail.Header, body []byte) (plain, htmlPart string) {
	cte := strings.ToLower(strings.TrimSpace(h.Get("Content-Transfer-Encoding")))

	mediaType, params, err := mime.ParseMediaType(h.Get("Content-Type"))
	if err != nil {
		return string(decodeTransferEncoding(body, cte)), ""
	}
	mediaType = strings.ToLower(mediaType)

	if !strings.HasPrefix(mediaType, "multipart/") {
		s := string(decodeTransferEncoding(body, cte))
		if strings.HasPrefix(mediaType, "text/html") {
			return "", s
		}
		return s, ""
	}

	boundary := params["boundary"]
	if boundary == "" {
		return string(decodeTransferEncoding(body, cte)), ""
	}

	mr := multipart.NewReader(bytes.NewReader(body), boundary)
	for {
		p, err := mr.NextPart()
		if err != nil {
			break
		}
		b, _ := io.ReadAll(io.LimitReader(p, maxBodyBytes))
		ph := mail.Header(p.Header)

		pl, ht := textParts(ph, b)
		if len(pl) > len(plain) {
			plain = pl
		}
		if len(ht) > len(htmlPart) {
			htmlPart = ht
		}
	}
	return plain, htmlPart
}

func decodeTransferEncoding(b []byte, cte string) []byte {
	var r io.Reader
	switch cte {
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, bytes.NewReader(bytes.TrimSpace(b)))
	case "quoted-printable":
		r = quotedprintable.NewReader(bytes.NewReader(b))
	default:
		return b
	}
	out, err := io.ReadAll(io.LimitReader(r, maxPartBytes))
	if err != nil && len(out) == 0 {
		return b
	}
	return out
}

func decodeRFC2047(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	dec := new(mime.WordDecoder)
	out, err := dec.DecodeHeader(s)
	if err != nil {
		return s
	}
	return out
}
