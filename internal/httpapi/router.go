package httpapi

import (
	"net/http"

	"gigtracker-engine/internal/config"
	"gigtracker-engine/internal/events"
	"gigtracker-engine/internal/ingest"
	"gigtracker-engine/internal/logger"
)

// NewMux returns the raw mux so main() can still attach /shutdown (needs srv+token).
func NewMux(d Deps) *http.ServeMux {
	d.Log = logger.OrNop(d.Log)
	if d.Hub == nil {
		d.Hub = events.NewHub()
	}

	mux := http.NewServeMux()
	cfg := func() config.Config { return d.config() }
	imp := func() *ingest.Importer { return d.importer() }

	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: HealthHandler{DB: d.DB, Version: d.Version}.Health,
	}))

	// Jobs
	jh := JobsHandler{DB: d.DB, Hub: d.Hub, Log: d.Log, Importer: imp}
	mux.HandleFunc("/jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  jh.List,
		http.MethodPost: jh.Create,
	}))
	mux.HandleFunc("/jobs/{id}", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    jh.Get,
		http.MethodPatch:  jh.Patch,
		http.MethodDelete: jh.Delete,
	}))
	mux.HandleFunc("/jobs/{id}/rescore", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: jh.Rescore,
	}))
	mux.HandleFunc("/jobs/{id}/proposals", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  jh.ListProposals,
		http.MethodPost: jh.CreateProposal,
	}))
	mux.HandleFunc("/jobs/{id}/applied", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: jh.MarkApplied,
	}))

	// Import
	ih := ImportHandler{Log: d.Log, Importer: imp}
	mux.Handle("/import", RateLimit(d.ImportLimiter)(methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ih.Import,
	})))

	// Stateless tools
	th := ToolsHandler{Config: cfg}
	mux.HandleFunc("/tools/extract", methodMux(map[string]http.HandlerFunc{http.MethodPost: th.Extract}))
	mux.HandleFunc("/tools/score", methodMux(map[string]http.HandlerFunc{http.MethodPost: th.Score}))
	mux.HandleFunc("/tools/draft", methodMux(map[string]http.HandlerFunc{http.MethodPost: th.Draft}))

	// Portfolio
	ph := PortfolioHandler{DB: d.DB, Log: d.Log}
	mux.HandleFunc("/portfolio", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  ph.List,
		http.MethodPost: ph.Create,
	}))
	mux.HandleFunc("/portfolio/{id}", methodMux(map[string]http.HandlerFunc{
		http.MethodDelete: ph.Delete,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
		Hub:         d.Hub,
		Log:         d.Log,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sh := SecretsHandler{CfgVal: d.CfgVal, Set: d.SetIMAPPassword}
	mux.HandleFunc("/api/secrets/imap", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SetIMAPPassword,
	}))

	// Mail polling
	if d.Poller != nil {
		sch := ScrapeHandler{Poller: d.Poller, Config: cfg}
		mux.HandleFunc("/scrape/status", methodMux(map[string]http.HandlerFunc{
			http.MethodGet: sch.Status,
		}))
		mux.HandleFunc("/scrape/run", methodMux(map[string]http.HandlerFunc{
			http.MethodPost: sch.Run,
		}))
	}

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	if d.MCP != nil {
		mux.Handle("/mcp", d.MCP)
	}

	return mux
}

// NewHandler wraps mux in the standard middleware chain.
func NewHandler(d Deps, mux *http.ServeMux) http.Handler {
	return Chain(mux,
		RequestID,
		Recover(d.Log),
		AccessLog(d.Log),
		Cors,
	)
}
