// Command lexmerge merges contracts with their amendments.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/lexmerge/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lexmerge/internal/adapters/driven/generation"
	"github.com/custodia-labs/lexmerge/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lexmerge/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/lexmerge/internal/adapters/driven/textsource/filesystem"
	"github.com/custodia-labs/lexmerge/internal/adapters/driving/cli"
	"github.com/custodia-labs/lexmerge/internal/core/domain"
	"github.com/custodia-labs/lexmerge/internal/core/ports/driven"
	"github.com/custodia-labs/lexmerge/internal/core/services"
	"github.com/custodia-labs/lexmerge/internal/logger"
	"github.com/custodia-labs/lexmerge/internal/normalisers"
	"github.com/custodia-labs/lexmerge/internal/postprocessors"
)

// version is set via -ldflags at build time.
var version = "dev"

// Config keys for the text clean-up pipeline.
const (
	keyTextProcessors = "text.processors"
	keyMaxBlankLines  = "text.whitespace.max_blank_lines"
	keyMaxChars       = "text.truncate.max_chars"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	err := cli.Execute(ctx)
	_ = logger.Sync()
	if err != nil {
		stop()
		os.Exit(1)
	}
}

// bootstrap wires the adapters and services for one command invocation.
func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, generation.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	source, err := newTextSource(configStore, settings.Analysis.ProjectsRoot)
	if err != nil {
		return nil, err
	}

	out := &cli.Services{
		Settings: settingsService,
		Watcher:  source,
		Projects: source,
	}

	var (
		results driven.ResultStore
		batches driven.ClassificationStore
		closers []func() error
	)
	if opts.Ephemeral {
		results, batches = memory.NewResultStore(), memory.NewClassificationStore()
	} else {
		store, err := sqlite.NewStore("")
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		logger.Debug("Using database %s", store.Path())
		results, batches = store.ResultStore(), store.ClassificationStore()
		closers = append(closers, store.Close)
	}

	prompts, err := file.NewPromptStore("")
	if err != nil {
		return nil, fmt.Errorf("loading prompts: %w", err)
	}

	gen := settings.Generation
	var driver *services.ContinuationDriver
	if !opts.Offline {
		genService, err := generation.NewService(ctx, &gen)
		switch {
		case errors.Is(err, domain.ErrConfiguration):
			out.AnalysisErr = err
		case err != nil:
			return nil, fmt.Errorf("creating generation service: %w", err)
		default:
			logger.Info("Using %s", genService.Name())
			driver = services.NewContinuationDriver(genService, gen.MaxOutputTokens)
			if text, err := prompts.Load(driven.PromptContinue); err == nil {
				driver.SetContinueText(text)
			}
			closers = append(closers, genService.Close)
		}
	}

	out.Close = func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	if out.AnalysisErr != nil {
		return out, nil
	}

	classifyPrompt, mergePrompt := gen.ClassifyPrompt, gen.MergePrompt
	if !generation.UsesStoredPrompts(gen.Provider) {
		classifyPrompt, mergePrompt = domain.PromptRef{}, domain.PromptRef{}
	}

	classifier := services.NewClassifier(driver, classifyPrompt, gen.MaxRetries)
	merger := services.NewMerger(driver, mergePrompt, gen.MaxRetries)
	if text, err := prompts.Load(driven.PromptClassify); err == nil {
		classifier.SetInstructions(text)
	}
	if text, err := prompts.Load(driven.PromptMerge); err == nil {
		merger.SetInstructions(text)
	}

	analysis := services.NewAnalysisService(source, results, batches, classifier, merger)
	analysis.SetConcurrency(settings.Analysis.Concurrency)
	out.Analysis = analysis

	return out, nil
}

// newTextSource builds the filesystem source with the configured clean-up pipeline.
func newTextSource(configStore driven.ConfigStore, root string) (*filesystem.Source, error) {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	names := configStore.GetStringSlice(keyTextProcessors)
	if len(names) == 0 {
		names = postprocessors.DefaultOrder
	}

	cfg := map[string]map[string]any{}
	if v, ok := configStore.Get(keyMaxBlankLines); ok {
		cfg["whitespace"] = map[string]any{"max_blank_lines": v}
	}
	if v, ok := configStore.Get(keyMaxChars); ok {
		cfg["truncate"] = map[string]any{"max_chars": v}
	}

	pipeline, err := postprocessors.BuildPipeline(registry, names, cfg)
	if err != nil {
		return nil, fmt.Errorf("building text pipeline: %w", err)
	}

	return filesystem.New(root, normalisers.Default(), filesystem.WithProcessor(pipeline))
}
