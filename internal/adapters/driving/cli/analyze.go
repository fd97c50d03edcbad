package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
	"github.com/custodia-labs/lexmerge/internal/core/ports/driving"
	"github.com/custodia-labs/lexmerge/internal/logger"
)

var (
	analyzeRefresh bool
	analyzeWatch   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [project...]",
	Short: "Classify and merge projects",
	Long: `Returns the stored result for each project, running the full
classify and merge pipeline when no result exists or --refresh is set.
Several projects are analysed concurrently.

With --watch, a single project is re-analysed whenever its files change.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVarP(&analyzeRefresh, "refresh", "r", false, "ignore stored results and re-run the pipeline")
	analyzeCmd.Flags().BoolVarP(&analyzeWatch, "watch", "w", false, "re-analyse when the project's files change")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if err := requireAnalysis(); err != nil {
		return err
	}

	ctx := cmd.Context()
	opts := driving.AnalyzeOptions{Refresh: analyzeRefresh}

	if analyzeWatch {
		if len(args) != 1 {
			return errors.New("--watch takes exactly one project")
		}
		return watchProject(ctx, cmd, args[0], opts)
	}

	if len(args) == 1 {
		result, err := analysisService.Analyze(ctx, args[0], opts)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
		return render(cmd, result, func() { printResult(cmd, result) })
	}

	results, err := analysisService.AnalyzeMany(ctx, args, opts)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	return render(cmd, results, func() { printSummaries(cmd, args, results) })
}

// watchProject analyses once, then again with refresh after every change.
func watchProject(ctx context.Context, cmd *cobra.Command, projectID string, opts driving.AnalyzeOptions) error {
	if projectWatcher == nil {
		return errors.New("watching is not supported by this text source")
	}

	changes, err := projectWatcher.Watch(ctx, projectID)
	if err != nil {
		return fmt.Errorf("watching project: %w", err)
	}

	for {
		result, err := analysisService.Analyze(ctx, projectID, opts)
		switch {
		case err == nil:
			if rerr := render(cmd, result, func() { printResult(cmd, result) }); rerr != nil {
				return rerr
			}
		case errors.Is(err, context.Canceled):
			return nil
		default:
			// Keep watching; the next change may fix the project.
			cmd.PrintErrf("analysis failed: %v\n", err)
		}

		cmd.PrintErrf("Watching %s for changes (Ctrl+C to stop)...\n", projectID)
		if _, ok := <-changes; !ok {
			return nil
		}
		logger.Info("Change detected in %s, re-analysing", projectID)
		opts.Refresh = true
	}
}

func printSummaries(cmd *cobra.Command, projects []string, results map[string]*domain.MergeResult) {
	sorted := append([]string(nil), projects...)
	sort.Strings(sorted)

	for _, id := range sorted {
		r, ok := results[id]
		if !ok {
			continue
		}
		note := ""
		if r.Fallback {
			note = " (metadata only)"
		}
		cmd.Printf("%s: %d documents, %d clause changes%s\n", id, len(r.DocumentIncorporationLog), len(r.ClauseChangeLog), note)
		cmd.Printf("  %s\n", r.BaseSummary)
	}
}
