package email_scrape

import (
	"testing"

	"github.com/emersion/go-imap/v2"
	"github.com/stretchr/testify/assert"
)

func TestSortNewestFirst(t *testing.T) {
	t.Parallel()
	envs := []envelope{{UID: 3}, {UID: 41}, {UID: 7}, {UID: 12}}
	sortNewestFirst(envs)

	got := make([]imap.UID, 0, len(envs))
	for _, e := range envs {
		got = append(got, e.UID)
	}
	assert.Equal(t, []imap.UID{41, 12, 7, 3}, got)
}
