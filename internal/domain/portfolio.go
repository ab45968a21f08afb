package domain

import (
	"strings"
	"time"
)

type PortfolioItem struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	URLLive   string    `json:"urlLive"`
	URLGithub string    `json:"urlGithub,omitempty"`
	Keywords  string    `json:"keywords"`
	CreatedAt time.Time `json:"createdAt"`
}

// KeywordList splits the comma-separated keywords, lower-cased and trimmed.
func (p PortfolioItem) KeywordList() []string {
	var out []string
	for _, k := range strings.Split(p.Keywords, ",") {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}
