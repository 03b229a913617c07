package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/cashraaga/internal/advisor"
	"github.com/theirongolddev/cashraaga/internal/cli"
	"github.com/theirongolddev/cashraaga/internal/model"
)

var (
	flagAffordForm        advisor.Form
	flagAffordInteractive bool
	flagAffordJSON        bool
)

var affordCmd = &cobra.Command{
	Use:   "afford",
	Short: "Check whether a new loan fits your income",
	Long: "Evaluate the EMI of a new loan against your monthly income and existing EMIs. " +
		"Income and existing EMIs default to the saved analysis.",
	Example: "  cashraaga afford --loan 7,00,000 --rate 12 --tenure 3\n" +
		"  cashraaga afford -i",
	Args: cobra.NoArgs,
	RunE: runAfford,
}

func init() {
	f := affordCmd.Flags()
	f.StringVar(&flagAffordForm.Income, "income", "", "Monthly income")
	f.StringVar(&flagAffordForm.ExistingEMI, "existing-emi", "", "Existing EMIs per month")
	f.StringVar(&flagAffordForm.LoanAmount, "loan", "", "Loan amount")
	f.StringVar(&flagAffordForm.Rate, "rate", "", "Interest rate, % per year")
	f.StringVar(&flagAffordForm.TenureYears, "tenure", "", "Tenure in years")
	f.StringVar(&flagAffordForm.OneTimeExpense, "one-time", "", "Upcoming one-time expense")
	f.BoolVarP(&flagAffordInteractive, "interactive", "i", false, "Fill the form interactively")
	f.BoolVar(&flagAffordJSON, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(affordCmd)
}

func runAfford(cmd *cobra.Command, _ []string) error {
	st, closeFn, err := openAnalysis(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	ctrl := advisor.NewController(st, advisor.Defaults{
		Rate:        appCfg.Advisor.DefaultRate,
		TenureYears: appCfg.Advisor.DefaultTenureYears,
	})
	form := ctrl.Prefill(flagAffordForm)

	if flagAffordInteractive {
		if err := advisor.NewForm(&form).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("advisor form: %w", err)
		}
	}

	result, err := ctrl.Evaluate(form)
	if err != nil {
		log.Debug("affordability not evaluated", zap.Error(err))
		fmt.Println()
		fmt.Printf("  %s\n", advisor.UserMessage(err))
		return nil
	}

	if flagAffordJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Print(renderAfford(ctrl.Request(form), result))
	return nil
}

func renderAfford(req model.LoanRequest, r model.AffordabilityResult) string {
	rows := [][]string{
		{"Monthly Income", cli.FormatRupees(req.MonthlyIncome)},
		{"Existing EMIs", cli.FormatRupees(req.ExistingMonthlyEMI)},
		{"Loan Amount", cli.FormatRupees(req.Principal)},
		{"Rate / Tenure", fmt.Sprintf("%g%% / %s months", req.AnnualRatePercent, cli.FormatMonths(r.Months))},
		{"---"},
		{"New EMI", cli.FormatRupees(r.EMI)},
		{"Total Interest", cli.FormatRupees(r.TotalInterest)},
		{"Total Payable", cli.FormatRupees(r.TotalPayable)},
		{"EMI Share", cli.FormatShare(r.EMISharePercent)},
	}

	out := "\n" + cli.RenderTitle("CAN I AFFORD THIS?") + "\n\n"
	out += cli.RenderTable(cli.Table{Headers: []string{"Metric", "Value"}, Rows: rows})
	out += "\n  Verdict: " + cli.RenderVerdict(r.Verdict) + "\n"
	out += "  " + cli.Muted(r.Note) + "\n"
	return out
}
