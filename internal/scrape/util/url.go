package util

import (
	"net/url"
	"sort"
	"strings"
)

var trackingParams = map[string]bool{
	"gclid": true, "fbclid": true, "msclkid": true,
	"mc_cid": true, "mc_eid": true, "mkt_tok": true,
	"ref": true, "source": true, "referrer": true,
}

// CanonicalURL lowercases scheme and host, drops fragments and tracking parameters, and sorts
// the remaining query. Upwork job links keep no query at all. Unparseable input is returned trimmed.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	if IsUpworkJobURL(u.String()) {
		u.RawQuery = ""
		u.Path = strings.TrimSuffix(u.Path, "/")
		return u.String()
	}

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || trackingParams[lk] {
			q.Del(k)
		}
	}
	for k := range q {
		sort.Strings(q[k])
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// IsUpworkJobURL reports whether raw points at an Upwork job posting.
func IsUpworkJobURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host != "upwork.com" && !strings.HasSuffix(host, ".upwork.com") {
		return false
	}
	p := strings.ToLower(u.Path)
	return strings.HasPrefix(p, "/jobs/") || strings.Contains(p, "/freelance-jobs/apply/")
}
