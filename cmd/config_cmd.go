package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashraaga/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [Storage]")
	fmt.Printf("    Backend: %s\n", cfg.Storage.Backend)
	if cfg.Storage.Backend == "sqlite" {
		fmt.Printf("    Path:    %s\n", cfg.DBPath())
	}
	fmt.Println()

	fmt.Println("  [Redis]")
	fmt.Printf("    Address:  %s (db %d)\n", cfg.Redis.Addr, cfg.Redis.DB)
	if cfg.Redis.Password != "" {
		fmt.Printf("    Password: %s\n", maskSecret(cfg.Redis.Password))
	} else {
		fmt.Println("    Password: not configured")
	}
	fmt.Printf("    Timeout:  %s\n", cfg.Redis.ConnectTimeout())
	fmt.Println()

	fmt.Println("  [Advisor]")
	fmt.Printf("    Default rate:   %s%%\n", cfg.Advisor.DefaultRate)
	fmt.Printf("    Default tenure: %s years\n", cfg.Advisor.DefaultTenureYears)
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level:  %s\n", cfg.Log.Level)
	fmt.Printf("    Format: %s\n", cfg.Log.Format)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:       %s\n", cfg.Server.Addr)
	fmt.Printf("    Event history: %d\n", cfg.Server.EventHistory)
	fmt.Println()

	fmt.Println("  Run `cashraaga setup` to reconfigure.")
	return nil
}

func maskSecret(s string) string {
	if len(s) > 16 {
		return s[:8] + "..." + s[len(s)-4:]
	}
	if len(s) > 4 {
		return s[:4] + "..."
	}
	return "****"
}
