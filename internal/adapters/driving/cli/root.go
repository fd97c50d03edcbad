// Package cli provides the lexmerge command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexmerge/internal/adapters/driving/mcp"
	"github.com/custodia-labs/lexmerge/internal/core/ports/driving"
	"github.com/custodia-labs/lexmerge/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// ProjectWatcher notifies when a project's documents change.
type ProjectWatcher interface {
	Watch(ctx context.Context, projectID string) (<-chan struct{}, error)
}

// Services holds the services used by the commands.
type Services struct {
	Analysis driving.AnalysisService
	Settings driving.SettingsService
	Watcher  ProjectWatcher
	Projects mcp.ProjectLister

	// AnalysisErr explains why Analysis is nil, such as a missing API key.
	AnalysisErr error

	// Close releases resources such as the database. Optional.
	Close func() error
}

// Options carries the global flags to the bootstrap function.
type Options struct {
	// Offline analyses without the generative service, using the filename
	// heuristic and the metadata-only merge.
	Offline bool

	// Ephemeral keeps results in memory instead of the database.
	Ephemeral bool
}

// BootstrapFunc builds the services for a command invocation.
type BootstrapFunc func(ctx context.Context, opts Options) (*Services, error)

var (
	analysisService driving.AnalysisService
	analysisErr     error
	settingsService driving.SettingsService
	projectWatcher  ProjectWatcher
	projectLister   mcp.ProjectLister
	closeServices   func() error

	bootstrap BootstrapFunc
)

// Global flags.
var (
	outputFormat string
	verbose      bool
	offline      bool
	ephemeral    bool
)

// noServices marks commands that run without bootstrapping.
const noServices = "no-services"

var rootCmd = &cobra.Command{
	Use:   "lexmerge",
	Short: "Merge contracts with their amendments",
	Long: `lexmerge reads the documents of a legal project, classifies them as base
agreement, amendment or ancillary, orders them chronologically and produces
one consolidated contract with a clause-level change log.

A project is a directory under the projects root (see 'lexmerge settings').`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "o", formatText, "output format: text, json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline progress to stderr")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "analyse without the generative service")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep results in memory only")
}

// Execute runs the root command and releases the services it used.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if cerr := teardown(); err == nil {
		err = cerr
	}
	return err
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetBootstrap sets the function that builds services before a command runs.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetServices installs services directly, bypassing bootstrap.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	analysisService = s.Analysis
	analysisErr = s.AnalysisErr
	settingsService = s.Settings
	projectWatcher = s.Watcher
	projectLister = s.Projects
	closeServices = s.Close
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if err := validateFormat(outputFormat); err != nil {
		return err
	}
	if bootstrap == nil || cmd.Annotations[noServices] == "true" {
		return nil
	}

	services, err := bootstrap(cmd.Context(), Options{Offline: offline, Ephemeral: ephemeral})
	if err != nil {
		return err
	}
	SetServices(services)
	return nil
}

func teardown() error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}

// requireAnalysis returns the reason analysis is unavailable, if any.
func requireAnalysis() error {
	if analysisService != nil {
		return nil
	}
	if analysisErr != nil {
		return fmt.Errorf("analysis unavailable: %w (run 'lexmerge settings set provider' or use --offline)", analysisErr)
	}
	return errors.New("analysis service not configured")
}
