package httpapi

import (
	"context"
	"net/http"
	"sync/atomic"

	"go.uber.org/zap"

	"gigtracker-engine/internal/config"
	"gigtracker-engine/internal/events"
	"gigtracker-engine/internal/ingest"
	"gigtracker-engine/internal/poll"
	"gigtracker-engine/internal/scrape/util"
	"gigtracker-engine/internal/store"
)

type Deps struct {
	DB  *store.DB
	Hub *events.Hub
	Log *zap.Logger

	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// Mail polling; nil disables /scrape/*.
	Poller *poll.Poller

	// Per-client limiter for POST /import; nil means unlimited.
	ImportLimiter *util.KeyLimiter

	// Mounted at /mcp when set.
	MCP http.Handler

	// Stores the IMAP password; secrets.SetIMAPPassword in production.
	SetIMAPPassword func(account, password string) error

	Version string
}

func (d Deps) config() config.Config {
	if d.CfgVal != nil {
		if cfg, ok := d.CfgVal.Load().(config.Config); ok {
			return cfg
		}
	}
	return config.Default()
}

// importer builds an importer for the current config whose events carry the request ID.
func (d Deps) importer() *ingest.Importer {
	imp := ingest.New(d.DB, d.config(), d.Log)
	imp.Notify = func(ctx context.Context, typ string, data any) {
		d.Hub.Emit(RequestIDFrom(ctx), typ, data)
	}
	return imp
}
