package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var mergeCmd = &cobra.Command{
	Use:   "merge [project]",
	Short: "Merge a project's amendments into its base agreement",
	Long: `Merges the stored classification of a project into one contract,
classifying first if the project has never been classified.
A new result is stored on every run.`,
	Args: cobra.ExactArgs(1),
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	if err := requireAnalysis(); err != nil {
		return err
	}

	result, err := analysisService.Merge(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	return render(cmd, result, func() { printResult(cmd, result) })
}
