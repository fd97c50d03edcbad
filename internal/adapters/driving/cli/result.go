package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
)

var resultCmd = &cobra.Command{
	Use:   "result",
	Short: "Show stored merge results",
}

var resultShowCmd = &cobra.Command{
	Use:   "show [project]",
	Short: "Show the latest result for a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runResultShow,
}

var resultHistoryCmd = &cobra.Command{
	Use:   "history [project]",
	Short: "List all results for a project, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runResultHistory,
}

func init() {
	resultCmd.AddCommand(resultShowCmd)
	resultCmd.AddCommand(resultHistoryCmd)
	rootCmd.AddCommand(resultCmd)
}

func runResultShow(cmd *cobra.Command, args []string) error {
	if err := requireAnalysis(); err != nil {
		return err
	}

	result, err := analysisService.Result(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("no result for %s; run 'lexmerge analyze %s' first", args[0], args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to load result: %w", err)
	}

	return render(cmd, result, func() { printResult(cmd, result) })
}

func runResultHistory(cmd *cobra.Command, args []string) error {
	if err := requireAnalysis(); err != nil {
		return err
	}

	history, err := analysisService.History(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	return render(cmd, history, func() {
		if len(history) == 0 {
			cmd.Println("No results found.")
			return
		}
		for i := range history {
			r := &history[i]
			kind := "merged"
			if r.Fallback {
				kind = "metadata only"
			}
			cmd.Printf("  %s  %s  %d documents  %s\n",
				r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.ID, len(r.DocumentIncorporationLog), kind)
		}
	})
}
