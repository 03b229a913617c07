package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/cashraaga/internal/analysis"
	"github.com/theirongolddev/cashraaga/internal/cli"
)

var importCmd = &cobra.Command{
	Use:   "import <analysis.json|->",
	Short: "Save an analysis returned by the CashRaaga backend",
	Long:  "Validate the backend's analysis JSON and replace the saved analysis with it. Use - to read stdin.",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

// runImport starts a new upload: the saved analysis is cleared before the
// file is read, so a rejected file leaves nothing behind.
func runImport(cmd *cobra.Command, args []string) error {
	st, closeFn, err := openAnalysis(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	if st.Loaded() {
		if err := st.Set(cmd.Context(), nil); err != nil {
			return err
		}
	}

	data, err := readInput(args[0])
	if err != nil {
		return err
	}

	a, err := analysis.Decode(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	if err := st.Set(cmd.Context(), a); err != nil {
		return err
	}
	log.Info("analysis imported", zap.String("source", args[0]), zap.Int("bytes", len(data)))

	if !flagQuiet {
		p := a.Project()
		fmt.Printf("  Saved analysis from %s\n", args[0])
		fmt.Printf("  Income %s, EMIs %s, %d months\n",
			cli.FormatRupees(p.Income),
			cli.FormatRupees(p.ExistingMonthlyEMI),
			len(a.MonthlySavings),
		)
	}
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}

	//nolint:gosec // input path is chosen by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
