package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/cashraaga/internal/cli"
	"github.com/theirongolddev/cashraaga/internal/model"
)

var flagSummaryFormat string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the saved statement analysis",
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().StringVarP(&flagSummaryFormat, "format", "f", "table", "Output format: table, json or yaml")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	st, closeFn, err := openAnalysis(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	a := st.Get()
	if a == nil {
		fmt.Println("\n  No analysis saved yet.")
		fmt.Println("  Run `cashraaga import <analysis.json>` first.")
		return nil
	}

	switch flagSummaryFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(a)
	case "table", "":
		savedAt, ok := st.SavedAt(cmd.Context())
		fmt.Print(renderSummary(a, savedAt, ok))
		return nil
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", flagSummaryFormat)
	}
}

func renderSummary(a *model.AnalysisResult, savedAt time.Time, hasSavedAt bool) string {
	out := "\n" + cli.RenderTitle("CASHRAAGA  Statement Summary") + "\n\n"
	if hasSavedAt {
		out += "  " + cli.Muted("Saved "+savedAt.Local().Format("2006-01-02 15:04")) + "\n\n"
	}

	var rows [][]string
	if s := a.Summary; s != nil {
		rows = append(rows,
			[]string{"Inflow", cli.FormatRupees(s.Inflow)},
			[]string{"Outflow", cli.FormatRupees(s.Outflow)},
			[]string{"Net Savings", cli.FormatSignedRupees(s.NetSavings)},
			[]string{"Safe Daily Spend", cli.FormatRupees(s.SafeDailySpend)},
		)
		if tm := s.ThisMonth; tm != nil {
			rows = append(rows,
				[]string{"---"},
				[]string{"This Month", tm.Month},
				[]string{"Savings", cli.FormatSignedRupees(tm.Savings)},
				[]string{"Previous Month", cli.FormatSignedRupees(tm.PrevSavings)},
				[]string{"Change", cli.FormatPercent(tm.MomChange)},
			)
		}
	}
	if u := a.UPI; u != nil {
		rows = append(rows,
			[]string{"---"},
			[]string{"UPI This Month", cli.FormatRupees(u.ThisMonth)},
			[]string{"UPI Total", cli.FormatRupees(u.TotalUPI)},
		)
		if u.TopHandle != nil && *u.TopHandle != "" {
			rows = append(rows, []string{"Top UPI Handle", *u.TopHandle})
		}
	}
	if e := a.EMI; e != nil {
		rows = append(rows,
			[]string{"---"},
			[]string{"EMI This Month", cli.FormatRupees(e.ThisMonth)},
			[]string{"Months Tracked", fmt.Sprintf("%d", e.MonthsTracked)},
		)
	}
	if len(rows) > 0 {
		out += cli.RenderTable(cli.Table{Headers: []string{"Metric", "Value"}, Rows: rows})
	}

	if len(a.MonthlySavings) > 0 {
		values := make([]float64, len(a.MonthlySavings))
		msRows := make([][]string, len(a.MonthlySavings))
		for i, m := range a.MonthlySavings {
			values[i] = m.SignedAmount
			msRows[i] = []string{m.Month, cli.FormatSignedRupees(m.SignedAmount)}
		}
		out += "\n" + cli.RenderTable(cli.Table{
			Title:   "Monthly Savings  " + cli.RenderSparkline(values),
			Headers: []string{"Month", "Savings"},
			Rows:    msRows,
		})
	}

	if len(a.CategorySummary) > 0 {
		catRows := make([][]string, len(a.CategorySummary))
		for i, c := range a.CategorySummary {
			catRows[i] = []string{c.Category, cli.FormatSignedRupees(c.SignedAmount)}
		}
		out += "\n" + cli.RenderTable(cli.Table{
			Title:   "Categories",
			Headers: []string{"Category", "Net"},
			Rows:    catRows,
		})
	}

	if fb := a.FutureBlock; fb != nil {
		fbRows := [][]string{
			{"Predicted Savings", cli.FormatSignedRupees(fb.PredictedEOMSavings)},
			{"Likely Range", cli.FormatRange(fb.PredictedEOMRange)},
			{"Overspend Risk", fmt.Sprintf("%s (%s)", fb.OverspendRisk.Level, cli.FormatProbability(fb.OverspendRisk.Probability))},
		}
		for _, rc := range fb.RiskyCategories {
			fbRows = append(fbRows, []string{
				"  " + rc.Name,
				fmt.Sprintf("%s vs %s usual", cli.FormatRupees(rc.ProjectedAmount), cli.FormatRupees(rc.BaselineAmount)),
			})
		}
		out += "\n" + cli.RenderTable(cli.Table{
			Title:   "Month-End Forecast",
			Headers: []string{"Metric", "Value"},
			Rows:    fbRows,
		})
	}

	return out
}
