package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashraaga/internal/amount"
	"github.com/theirongolddev/cashraaga/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	Args:  cobra.NoArgs,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg := appCfg
	redisDB := strconv.Itoa(cfg.Redis.DB)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to cashraaga!").
				Description("Let's set up a few things. Settings go to "+config.ConfigPath()),
			huh.NewSelect[string]().
				Title("Where should the analysis be saved?").
				Options(
					huh.NewOption("SQLite file (default)", "sqlite"),
					huh.NewOption("Redis", "redis"),
					huh.NewOption("Memory only (nothing saved)", "memory"),
				).
				Value(&cfg.Storage.Backend),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Redis address").
				Value(&cfg.Redis.Addr).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("address is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Redis password").
				Description("Leave blank if none.").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.Redis.Password),
			huh.NewInput().
				Title("Redis database").
				Value(&redisDB).
				Validate(func(s string) error {
					if n, err := strconv.Atoi(s); err != nil || n < 0 {
						return errors.New("enter a database number")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return cfg.Storage.Backend != "redis" }),
		huh.NewGroup(
			huh.NewInput().
				Title("Default interest rate (% per year)").
				Value(&cfg.Advisor.DefaultRate).
				Validate(nonNegativeAmount),
			huh.NewInput().
				Title("Default tenure (years)").
				Value(&cfg.Advisor.DefaultTenureYears).
				Validate(nonNegativeAmount),
		),
	).WithTheme(huh.ThemeCharm())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing saved.")
			return nil
		}
		return fmt.Errorf("setup form: %w", err)
	}

	if n, err := strconv.Atoi(redisDB); err == nil {
		cfg.Redis.DB = n
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `cashraaga setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}

func nonNegativeAmount(s string) error {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if _, err := strconv.ParseFloat(clean, 64); err != nil {
		return errors.New("enter a number")
	}
	if amount.Normalize(s) < 0 {
		return errors.New("cannot be negative")
	}
	return nil
}
