package util

import (
	"regexp"
	"strings"
)

var reManyBlankLines = regexp.MustCompile(`\n{3,}`)

// CleanText collapses all whitespace (including NBSP) into single spaces.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeLines trims every line, normalizes line endings and collapses runs of blank lines
// to a single blank line. Line structure is otherwise preserved.
func NormalizeLines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		lines[i] = CleanText(ln)
	}
	out := strings.Join(lines, "\n")
	out = reManyBlankLines.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
