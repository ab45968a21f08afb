package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

func (v Validation) Error() string {
	return "config validation failed:\n- " + strings.Join(v.Errors, "\n- ")
}

// NormalizeAndValidate returns a normalized copy of cfg and the validation result.
// Scoring terms are not trimmed: " ts " relies on its surrounding spaces.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Email.SearchSubjectAny = trimList(out.Email.SearchSubjectAny)
	out.Email.IMAPHost = strings.TrimSpace(out.Email.IMAPHost)
	out.Email.Username = strings.TrimSpace(out.Email.Username)
	out.Email.Mailbox = strings.TrimSpace(out.Email.Mailbox)
	out.Proposal.DefaultTimeframe = strings.TrimSpace(out.Proposal.DefaultTimeframe)

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	if out.App.ShortlistThreshold < 0 || out.App.ShortlistThreshold > 100 {
		res.addErr("app.shortlist_threshold must be 0..100")
	}

	checkRules := func(name string, rules []Rule, positive bool) []Rule {
		fixed := make([]Rule, 0, len(rules))
		for i, r := range rules {
			r.Label = strings.TrimSpace(r.Label)
			if r.Label == "" {
				res.addErr("%s[%d].label is required", name, i)
			}
			if len(r.Any) == 0 {
				res.addErr("%s[%d].any must have at least 1 term", name, i)
			}
			for j, term := range r.Any {
				if strings.TrimSpace(term) == "" {
					res.addErr("%s[%d].any[%d] cannot be empty", name, i, j)
				}
			}
			if positive && r.Weight <= 0 {
				res.addWarn("%s[%d] (%s) has non-positive weight %d", name, i, r.Label, r.Weight)
			}
			if !positive && r.Weight >= 0 {
				res.addWarn("%s[%d] (%s) is a penalty with non-negative weight %d", name, i, r.Label, r.Weight)
			}
			fixed = append(fixed, r)
		}
		return fixed
	}

	out.Scoring.Rules = checkRules("scoring.rules", out.Scoring.Rules, true)
	out.Scoring.Penalties = checkRules("scoring.penalties", out.Scoring.Penalties, false)
	if len(out.Scoring.Rules) == 0 && len(out.Scoring.Penalties) == 0 {
		res.addWarn("scoring section is empty; the built-in rubric will be used")
	}

	if out.Proposal.DefaultTimeframe == "" {
		res.addErr("proposal.default_timeframe cannot be empty")
	}

	if out.Import.RatePerMinute < 0 {
		res.addErr("import.rate_per_minute must be >= 0 (0 disables limiting)")
	}
	if out.Import.RatePerMinute > 0 && out.Import.Burst <= 0 {
		res.addErr("import.burst must be > 0 when import.rate_per_minute is set")
	}

	// password is not required here; it lives in the keychain
	if out.Email.Enabled {
		if out.Email.IMAPHost == "" {
			res.addErr("email.imap_host is required when email.enabled=true")
		}
		if out.Email.IMAPPort <= 0 || out.Email.IMAPPort > 65535 {
			res.addErr("email.imap_port must be 1..65535 when email.enabled=true")
		}
		if out.Email.Username == "" {
			res.addErr("email.username is required when email.enabled=true")
		}
		if out.Email.Mailbox == "" {
			res.addErr("email.mailbox is required when email.enabled=true")
		}
		if out.Email.PollSeconds <= 0 {
			res.addErr("email.poll_seconds must be > 0")
		} else if out.Email.PollSeconds < 60 {
			res.addWarn("email.poll_seconds is very low (%d) and may hit IMAP rate limits.", out.Email.PollSeconds)
		}
		if len(out.Email.SearchSubjectAny) == 0 {
			res.addWarn("email.search_subject_any is empty; every unseen message will be parsed.")
		}
	}

	return out, res
}
