package email_scrape

import (
	"regexp"
	"strings"

	"gigtracker-engine/internal/domain"
)

const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 5000

	fallbackDescription = "Imported from email."
	fallbackTitle       = "Imported job"
)

var (
	reBlockBreak = regexp.MustCompile(`\n{2,}`)
	reJobURL     = regexp.MustCompile(`https?://[^\s)]+`)
)

// Alert mails put a call-to-action line above the real title.
var boilerplateTitles = map[string]bool{
	"view job":  true,
	"apply now": true,
	"upwork":    true,
	"job":       true,
	"new job":   true,
}

// ExtractUpworkJobs splits pasted alert text into job leads. Blocks are separated by blank
// lines; a block is a job when it has a URL and at least two non-empty lines. When no block
// qualifies the whole text becomes a single lead, so non-empty input always yields at least one.
func ExtractUpworkJobs(raw string) []domain.JobLead {
	text := cleanBlock(raw)
	if text == "" {
		return nil
	}

	var jobs []domain.JobLead
	seenURL := map[string]bool{}
	seenTitle := map[string]bool{}

	for _, b := range reBlockBreak.Split(text, -1) {
		b = cleanBlock(b)
		if b == "" {
			continue
		}

		url := reJobURL.FindString(b)
		lines := nonEmptyLines(b)
		if url == "" || len(lines) < 2 {
			continue
		}

		title := lines[0]
		if boilerplateTitles[strings.ToLower(title)] {
			title = lines[1]
		}
		title = clipRunes(title, MaxTitleLen)
		if seenURL[url] || seenTitle[title] {
			continue
		}
		seenURL[url] = true
		seenTitle[title] = true

		desc := clipRunes(strings.Join(lines[1:], "\n"), MaxDescriptionLen)
		if desc == "" {
			desc = fallbackDescription
		}

		jobs = append(jobs, domain.JobLead{
			Title:       title,
			URL:         url,
			Description: desc,
			Platform:    domain.DefaultPlatform,
		})
	}

	if len(jobs) > 0 {
		return jobs
	}

	// one unseparated blob; keep it rather than lose the paste
	lines := nonEmptyLines(text)
	title := fallbackTitle
	if len(lines) > 0 {
		title = clipRunes(lines[0], MaxTitleLen)
	}
	desc := ""
	if len(lines) > 1 {
		desc = clipRunes(strings.Join(lines[1:], "\n"), MaxDescriptionLen)
	}
	if desc == "" {
		desc = clipRunes(text, MaxDescriptionLen)
	}

	return []domain.JobLead{{
		Title:       title,
		URL:         reJobURL.FindString(text),
		Description: desc,
		Platform:    domain.DefaultPlatform,
	}}
}

func cleanBlock(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\r", ""))
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// clipRunes cuts s to at most max runes.
func clipRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
