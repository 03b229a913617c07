package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashraaga/internal/advisor"
	"github.com/theirongolddev/cashraaga/internal/server"
)

var (
	flagServeAddr         string
	flagServeEventsBuffer int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the saved analysis and the advisor over a local HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "HTTP listen address (default from config)")
	serveCmd.Flags().IntVar(&flagServeEventsBuffer, "events-buffer", 0, "Max in-memory events retained (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st, closeFn, err := openAnalysis(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	cfg := server.Config{
		Addr:         appCfg.Server.Addr,
		EventsBuffer: appCfg.Server.EventHistory,
	}
	if flagServeAddr != "" {
		cfg.Addr = flagServeAddr
	}
	if flagServeEventsBuffer > 0 {
		cfg.EventsBuffer = flagServeEventsBuffer
	}

	ctrl := advisor.NewController(st, advisor.Defaults{
		Rate:        appCfg.Advisor.DefaultRate,
		TenureYears: appCfg.Advisor.DefaultTenureYears,
	})
	svc := server.New(cfg, st, ctrl, log)
	defer svc.Close()

	if !flagQuiet {
		fmt.Printf("  cashraaga listening on http://%s\n", cfg.Addr)
		fmt.Printf("  Storage: %s\n", appCfg.Storage.Backend)
		fmt.Println("  Stop with Ctrl+C")
	}

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
