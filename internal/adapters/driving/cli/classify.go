package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [project]",
	Short: "Classify and order a project's documents",
	Long: `Classifies every document in the project as base, amendment or ancillary,
extracts execution and effective dates, and orders the documents
chronologically. The classification is stored for a later merge.`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	if err := requireAnalysis(); err != nil {
		return err
	}

	batch, err := analysisService.Classify(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	return render(cmd, withoutText(batch), func() { printBatch(cmd, batch) })
}
