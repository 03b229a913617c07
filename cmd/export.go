package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const defaultCSVName = "cashraaga_cleaned_statement.csv"

var exportCmd = &cobra.Command{
	Use:   "export-csv [path]",
	Short: "Write the cleaned statement CSV from the saved analysis",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	path := defaultCSVName
	if len(args) == 1 {
		path = args[0]
	}

	st, closeFn, err := openAnalysis(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	a := st.Get()
	if a == nil || a.CleanedCSV == "" {
		return errors.New("the saved analysis has no cleaned statement; import one first")
	}

	if err := os.WriteFile(path, []byte(a.CleanedCSV), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if !flagQuiet {
		fmt.Printf("  Wrote %s\n", path)
	}
	return nil
}
