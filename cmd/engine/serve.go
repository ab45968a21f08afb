package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gigtracker-engine/internal/config"
	"gigtracker-engine/internal/events"
	"gigtracker-engine/internal/httpapi"
	"gigtracker-engine/internal/ingest"
	"gigtracker-engine/internal/mcptools"
	"gigtracker-engine/internal/poll"
	"gigtracker-engine/internal/scheduler"
	email_scrape "gigtracker-engine/internal/scrape/email"
	"gigtracker-engine/internal/scrape/util"
	"gigtracker-engine/internal/secrets"
	"gigtracker-engine/internal/store"
)

const (
	shutdownGrace = 5 * time.Second
	cleanupEvery  = 6 * time.Hour
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local engine: HTTP API, SSE events, MCP tools and the mail poller",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "127.0.0.1", "listen host")
	serveCmd.Flags().Int("port", 0, "listen port (default app.port from config.yml)")
	serveCmd.Flags().Duration("archive-ttl", 30*24*time.Hour, "delete ARCHIVED jobs untouched for this long; 0 keeps them")
	serveCmd.Flags().String("shutdown-token", "", "token for POST /shutdown (env GIGTRACKER_SHUTDOWN_TOKEN, random if unset)")

	_ = viper.BindPFlag("host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("archive-ttl", serveCmd.Flags().Lookup("archive-ttl"))
	_ = viper.BindPFlag("shutdown-token", serveCmd.Flags().Lookup("shutdown-token"))
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := setup()
	if err != nil {
		return err
	}
	log := env.log
	defer func() { _ = log.Sync() }()

	lock, err := store.Lock(env.dir)
	if err != nil {
		log.Error("data dir lock failed", zap.String("dir", env.dir), zap.Error(err))
		return err
	}
	defer func() { _ = lock.Unlock() }()

	db, err := env.openDB()
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	cfgVal.Store(env.cfg)
	current := func() config.Config { return cfgVal.Load().(config.Config) }
	loadCfg := func() (config.Config, error) { return config.Load(env.cfgPath) }

	hub := events.NewHub()
	newImporter := func(cfg config.Config) *ingest.Importer {
		imp := ingest.New(db, cfg, log)
		imp.Notify = func(_ context.Context, typ string, data any) {
			hub.Emit("", typ, data)
		}
		return imp
	}

	poller := &poll.Poller{
		Config:   current,
		Importer: newImporter,
		Password: func(ec config.EmailConfig) (string, error) {
			return secrets.GetIMAPPassword(secrets.IMAPKeyringAccount(ec))
		},
		Fetch: email_scrape.FetchAlerts,
		Log:   log.Named("poll"),
	}

	mcpServer := mcptools.NewServer(version,
		mcptools.WithExtractJobs(),
		mcptools.WithFitScore(current),
		mcptools.WithDraftProposal(current),
		mcptools.WithImportAlert(func() *ingest.Importer { return newImporter(current()) }, log.Named("mcp")),
		mcptools.WithListJobs(db),
	)

	deps := httpapi.Deps{
		DB:              db,
		Hub:             hub,
		Log:             log,
		CfgVal:          &cfgVal,
		UserCfgPath:     env.cfgPath,
		LoadCfg:         loadCfg,
		Poller:          poller,
		ImportLimiter:   util.NewKeyLimiter(float64(env.cfg.Import.RatePerMinute), env.cfg.Import.Burst),
		MCP:             mcptools.Handler(mcpServer),
		SetIMAPPassword: secrets.SetIMAPPassword,
		Version:         version,
	}
	mux := httpapi.NewMux(deps)

	token := viper.GetString("shutdown-token")
	if token == "" {
		if token, err = randomToken(16); err != nil {
			return fmt.Errorf("shutdown token: %w", err)
		}
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	mux.HandleFunc("/shutdown", shutdownHandler(token, cancel, log))

	port := viper.GetInt("port")
	if port == 0 {
		port = env.cfg.App.Port
	}
	addr := net.JoinHostPort(viper.GetString("host"), strconv.Itoa(port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           httpapi.NewHandler(deps, mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("engine listening",
		zap.String("addr", "http://"+ln.Addr().String()),
		zap.String("db", env.dbPath()),
		zap.String("config", env.cfgPath),
		zap.Bool("email_enabled", env.cfg.Email.Enabled),
	)
	// The desktop shell reads this line to learn the port and shutdown token.
	fmt.Fprintf(os.Stdout, "ENGINE_READY addr=%s token=%s\n", ln.Addr().String(), token)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, scancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer scancel()
		return srv.Shutdown(sctx)
	})
	g.Go(func() error {
		poller.Run(gctx)
		return nil
	})
	if ttl := viper.GetDuration("archive-ttl"); ttl > 0 {
		g.Go(func() error {
			scheduler.Every(gctx, cleanupEvery, "archive-cleanup", log, func(ctx context.Context) error {
				n, err := db.CleanupArchived(ctx, ttl)
				if n > 0 {
					log.Info("archived jobs removed", zap.Int64("count", n))
				}
				return err
			})
			return nil
		})
	}

	err = g.Wait()
	log.Info("engine stopped")
	return err
}
