// Package cmd implements the cashraaga CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/cashraaga/internal/analysis"
	"github.com/theirongolddev/cashraaga/internal/config"
	"github.com/theirongolddev/cashraaga/internal/logger"
	"github.com/theirongolddev/cashraaga/internal/store"
)

var (
	flagStore    string
	flagDB       string
	flagLogLevel string
	flagQuiet    bool
	flagNoColor  bool
)

// Set by PersistentPreRunE before any command runs.
var (
	appCfg config.Config
	log    = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "cashraaga",
	Short: "CashRaaga statement analysis and loan affordability CLI",
	Long: "Keep the latest CashRaaga statement analysis on disk, review it, " +
		"and check whether a new loan fits your income.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	defer func() { _ = log.Sync() }()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "Storage backend: sqlite, redis or memory (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
}

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if flagStore != "" {
		cfg.Storage.Backend = flagStore
	}
	if flagDB != "" {
		cfg.Storage.Path = flagDB
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	appCfg = cfg

	l, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	log = l.With(zap.String("command", cmd.Name()))

	if flagNoColor || os.Getenv("NO_COLOR") != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return nil
}

// openAnalysis opens the configured backend and rehydrates the analysis
// store from it. A failed rehydrate is reported and the store starts empty.
func openAnalysis(ctx context.Context) (*analysis.Store, func(), error) {
	kv, err := store.Open(ctx, store.Options{
		Backend:    appCfg.Storage.Backend,
		SQLitePath: appCfg.DBPath(),
		Redis: store.RedisOptions{
			Addr:           appCfg.Redis.Addr,
			Password:       appCfg.Redis.Password,
			DB:             appCfg.Redis.DB,
			ConnectTimeout: appCfg.Redis.ConnectTimeout(),
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s store: %w", appCfg.Storage.Backend, err)
	}

	st, err := analysis.Open(ctx, kv, log)
	if err != nil && !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Could not read the saved analysis, starting empty: %v\n", err)
	}

	closeFn := func() {
		if err := kv.Close(); err != nil {
			log.Warn("closing store", zap.Error(err))
		}
	}
	return st, closeFn, nil
}
