package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"gigtracker-engine/internal/config"
	"gigtracker-engine/internal/logger"
	"gigtracker-engine/internal/store"
)

const (
	app    = "gigtracker"
	dbFile = "gigtracker.db"
)

var rootCmd = &cobra.Command{
	Use:          app,
	Short:        "gigtracker tracks freelance job leads from alert emails through to proposals",
	SilenceUsage: true,
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	viper.SetEnvPrefix("GIGTRACKER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.PersistentFlags().String("data-dir", "", "directory for the database and config.yml (env GIGTRACKER_DATA_DIR, default is the current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	_ = viper.BindPFlag("data-dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

// appEnv is what every command needs: the data dir, its config and a logger.
type appEnv struct {
	dir     string
	cfgPath string
	cfg     config.Config
	log     *zap.Logger
}

func setup() (*appEnv, error) {
	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	dir := viper.GetString("data-dir")
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	cfgPath, err := config.EnsureUserConfig(dir)
	if err != nil {
		return nil, fmt.Errorf("config bootstrap failed: %w", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config load failed (%s): %w", cfgPath, err)
	}

	return &appEnv{dir: dir, cfgPath: cfgPath, cfg: cfg, log: log}, nil
}

func (e *appEnv) dbPath() string {
	return filepath.Join(e.dir, dbFile)
}

func (e *appEnv) openDB() (*store.DB, error) {
	return store.Open(e.dbPath())
}
