package email_scrape

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crlf(s string) []byte {
	return []byte(strings.ReplaceAll(s, "\n", "\r\n"))
}

func TestParseRFC822_Multipart(t *testing.T) {
	t.Parallel()

	raw := crlf(`From: Upwork <donotreply@upwork.com>
Subject: =?UTF-8?B?TmV3IGpvYiBhbGVydA==?=
Date: Mon, 02 Jan 2006 15:04:05 -0700
MIME-Version: 1.0
Content-Type: multipart/alternative; boundary="b1"

--b1
Content-Type: text/plain; charset=utf-8
Content-Transfer-Encoding: quoted-printable

React Developer Needed=0ABuild a landing =
page
--b1
Content-Type: text/html; charset=utf-8
Content-Transfer-Encoding: base64

PHA+aGk8L3A+
--b1--
`)

	m := parseRFC822(raw)
	assert.Equal(t, "New job alert", m.Subject)
	assert.Contains(t, m.From, "donotreply@upwork.com")
	assert.Equal(t, 2006, m.Date.Year())
	assert.Contains(t, m.Plain, "React Developer Needed")
	assert.Contains(t, m.Plain, "Build a landing page")
	assert.Equal(t, "<p>hi</p>", m.HTML)
}

func TestParseRFC822_SinglePartHTML(t *testing.T) {
	t.Parallel()

	raw := crlf(`Subject: alert
Content-Type: text/html; charset=utf-8

<p>Job</p>
`)
	m := parseRFC822(raw)
	assert.Empty(t, m.Plain)
	assert.Contains(t, m.HTML, "<p>Job</p>")

	text, err := alertText(raw)
	require.NoError(t, err)
	assert.Equal(t, "Job", text)
}

func TestParseRFC822_Garbage(t *testing.T) {
	t.Parallel()

	m := parseRFC822([]byte("not a mail"))
	assert.Equal(t, "not a mail", m.Plain)
	assert.Equal(t, message{}, parseRFC822(nil))
}

func TestSubjectMatches(t *testing.T) {
	t.Parallel()

	assert.True(t, SubjectMatches("anything", nil))
	assert.True(t, SubjectMatches("New Upwork job for you", []string{"upwork"}))
	assert.False(t, SubjectMatches("Your invoice", []string{"upwork", " job alert "}))
	assert.False(t, SubjectMatches("Your invoice", []string{"  "}))
}

func TestAddr(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "imap.gmail.com:993", Addr("imap.gmail.com", 0))
	assert.Equal(t, "mail.example.com:143", Addr("mail.example.com", 143))
	assert.Equal(t, "host:1993", Addr("host:1993", 993))
}
