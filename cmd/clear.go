package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the saved analysis",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, _ []string) error {
	st, closeFn, err := openAnalysis(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	if err := st.Set(cmd.Context(), nil); err != nil {
		return err
	}
	if !flagQuiet {
		fmt.Println("  Saved analysis cleared.")
	}
	return nil
}
