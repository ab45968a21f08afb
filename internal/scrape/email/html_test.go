package email_scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alertHTML = `<html><head><title>Upwork</title><style>.a{color:red}</style></head>
<body>
<table>
  <tr><td><a href="https://www.upwork.com/jobs/~01">React Developer Needed</a></td></tr>
  <tr><td>Build a&nbsp;landing   page</td></tr>
</table>
<hr>
<table>
  <tr><td><a href="https://www.upwork.com/jobs/~02">Backend Engineer</a></td></tr>
  <tr><td>Kubernetes<br>and microservices</td></tr>
</table>
<script>var x = 1;</script>
</body></html>`

func TestHTMLToText(t *testing.T) {
	t.Parallel()

	got, err := HTMLToText(alertHTML)
	require.NoError(t, err)

	want := "React Developer Needed\nhttps://www.upwork.com/jobs/~01\nBuild a landing page\n\n" +
		"Backend Engineer\nhttps://www.upwork.com/jobs/~02\nKubernetes\nand microservices"
	assert.Equal(t, want, got)
}

func TestHTMLToText_FeedsExtractor(t *testing.T) {
	t.Parallel()

	text, err := HTMLToText(alertHTML)
	require.NoError(t, err)

	jobs := ExtractUpworkJobs(text)
	require.Len(t, jobs, 2)
	assert.Equal(t, "React Developer Needed", jobs[0].Title)
	assert.Equal(t, "https://www.upwork.com/jobs/~01", jobs[0].URL)
	assert.Equal(t, "Backend Engineer", jobs[1].Title)
}

func TestHTMLToText_BareLink(t *testing.T) {
	t.Parallel()

	got, err := HTMLToText(`<p>See <a href="https://upwork.com/jobs/1">https://upwork.com/jobs/1</a></p><p><a href="mailto:x@y">mail</a></p>`)
	require.NoError(t, err)
	assert.Equal(t, "See https://upwork.com/jobs/1\nmail", got)
}
