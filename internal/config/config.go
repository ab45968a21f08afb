// internal/config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Rule is one scoring row. Penalties use the same shape with a negative weight.
type Rule struct {
	Label  string   `yaml:"label" json:"label"`
	Weight int      `yaml:"weight" json:"weight"`
	Any    []string `yaml:"any" json:"any"`
}

type AppConfig struct {
	Port               int `yaml:"port" json:"port"`
	ShortlistThreshold int `yaml:"shortlist_threshold" json:"shortlist_threshold"`
}

type ScoringConfig struct {
	Rules     []Rule `yaml:"rules" json:"rules"`
	Penalties []Rule `yaml:"penalties" json:"penalties"`
}

type ProposalConfig struct {
	DefaultTimeframe string `yaml:"default_timeframe" json:"default_timeframe"`
}

type EmailConfig struct {
	Enabled          bool     `yaml:"enabled" json:"enabled"`
	IMAPHost         string   `yaml:"imap_host" json:"imap_host"`
	IMAPPort         int      `yaml:"imap_port" json:"imap_port"`
	Username         string   `yaml:"username" json:"username"`
	Mailbox          string   `yaml:"mailbox" json:"mailbox"`
	SearchSubjectAny []string `yaml:"search_subject_any" json:"search_subject_any"`
	PollSeconds      int      `yaml:"poll_seconds" json:"poll_seconds"`
	MaxMessages      int      `yaml:"max_messages" json:"max_messages"`
}

type ImportConfig struct {
	RatePerMinute int `yaml:"rate_per_minute" json:"rate_per_minute"`
	Burst         int `yaml:"burst" json:"burst"`
}

type Config struct {
	App      AppConfig      `yaml:"app" json:"app"`
	Scoring  ScoringConfig  `yaml:"scoring" json:"scoring"`
	Proposal ProposalConfig `yaml:"proposal" json:"proposal"`
	Email    EmailConfig    `yaml:"email" json:"email"`
	Import   ImportConfig   `yaml:"import" json:"import"`
}

const (
	DefaultPort               = 38471
	DefaultShortlistThreshold = 70
	DefaultTimeframe          = "3-5 days"
)

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(b)
}

// Parse decodes YAML and fills zero values with defaults.
func Parse(b []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

// Default returns the configuration shipped with the engine.
func Default() Config {
	cfg, err := Parse(defaultYAML)
	if err != nil {
		panic("config: embedded default.yml is invalid: " + err.Error())
	}
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.App.Port == 0 {
		cfg.App.Port = DefaultPort
	}
	if cfg.App.ShortlistThreshold == 0 {
		cfg.App.ShortlistThreshold = DefaultShortlistThreshold
	}
	if cfg.Proposal.DefaultTimeframe == "" {
		cfg.Proposal.DefaultTimeframe = DefaultTimeframe
	}
	if cfg.Email.Mailbox == "" {
		cfg.Email.Mailbox = "INBOX"
	}
	if cfg.Email.IMAPPort == 0 {
		cfg.Email.IMAPPort = 993
	}
	if cfg.Email.PollSeconds == 0 {
		cfg.Email.PollSeconds = 300
	}
	if cfg.Email.MaxMessages == 0 {
		cfg.Email.MaxMessages = 50
	}
}
