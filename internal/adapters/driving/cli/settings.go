package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the generative provider, stored prompts and the
projects root.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change a setting",
}

var settingsProviderCmd = &cobra.Command{
	Use:   "provider",
	Short: "Configure the generative provider",
	Long: `Interactively select the generative provider, model and API key.
The configuration is validated against the service before it is kept.`,
	RunE: runSettingsProvider,
}

var settingsPromptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Configure stored prompts",
	Long: `Set the stored prompt IDs and versions used for classification and merging.
Stored prompts are only used by providers that support them (openai).`,
	RunE: runSettingsPrompts,
}

var settingsRootCmd = &cobra.Command{
	Use:   "root [path]",
	Short: "Set the projects root directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsRoot,
}

var (
	classifyPromptID      string
	classifyPromptVersion string
	mergePromptID         string
	mergePromptVersion    string
)

func init() {
	settingsPromptsCmd.Flags().StringVar(&classifyPromptID, "classify-id", "", "stored prompt ID for classification")
	settingsPromptsCmd.Flags().StringVar(&classifyPromptVersion, "classify-version", "", "stored prompt version for classification")
	settingsPromptsCmd.Flags().StringVar(&mergePromptID, "merge-id", "", "stored prompt ID for merging")
	settingsPromptsCmd.Flags().StringVar(&mergePromptVersion, "merge-version", "", "stored prompt version for merging")

	settingsSetCmd.AddCommand(settingsProviderCmd)
	settingsSetCmd.AddCommand(settingsPromptsCmd)
	settingsSetCmd.AddCommand(settingsRootCmd)
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	gen := settings.Generation
	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Generation]")
	cmd.Printf("  Provider: %s\n", gen.Provider.Description())
	model := gen.Model
	if model == "" {
		model = domain.DefaultModels()[gen.Provider] + " (default)"
	}
	cmd.Printf("  Model: %s\n", model)
	if gen.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", gen.BaseURL)
	}
	if gen.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(gen.APIKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	cmd.Printf("  Max output tokens: %d\n", gen.MaxOutputTokens)
	cmd.Printf("  Max retries: %d\n", gen.MaxRetries)
	cmd.Printf("  Timeout: %ds\n", gen.TimeoutSeconds)
	if gen.RequestsPerSecond > 0 {
		cmd.Printf("  Rate limit: %g requests/s\n", gen.RequestsPerSecond)
	}
	cmd.Println()

	cmd.Println("[Prompts]")
	cmd.Printf("  Classify: %s\n", formatPromptRef(gen.ClassifyPrompt))
	cmd.Printf("  Merge: %s\n", formatPromptRef(gen.MergePrompt))
	cmd.Println()

	cmd.Println("[Analysis]")
	root := settings.Analysis.ProjectsRoot
	if root == "" {
		root = "~/.lexmerge/projects (default)"
	}
	cmd.Printf("  Projects root: %s\n", root)
	cmd.Printf("  Concurrency: %d\n", settings.Analysis.Concurrency)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'lexmerge settings set provider' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsProvider(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Select Generative Provider")
	providers := domain.AllProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selected := providers[idx-1]

	defaultModel := domain.DefaultModels()[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	cmd.Print("Enter API key: ")
	apiKey := readPassword(reader)
	cmd.Println()
	if apiKey == "" {
		return errors.New("API key is required for this provider")
	}

	if err := settingsService.SetProvider(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("provider configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Provider configured: %s (%s)\n", selected.Description(), model)
	return nil
}

func runSettingsPrompts(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	classify := settings.Generation.ClassifyPrompt
	merge := settings.Generation.MergePrompt
	flags := cmd.Flags()
	if flags.Changed("classify-id") {
		classify.ID = classifyPromptID
	}
	if flags.Changed("classify-version") {
		classify.Version = classifyPromptVersion
	}
	if flags.Changed("merge-id") {
		merge.ID = mergePromptID
	}
	if flags.Changed("merge-version") {
		merge.Version = mergePromptVersion
	}

	if err := settingsService.SetPrompts(classify, merge); err != nil {
		return fmt.Errorf("failed to set prompts: %w", err)
	}

	cmd.Printf("Classify prompt: %s\n", formatPromptRef(classify))
	cmd.Printf("Merge prompt: %s\n", formatPromptRef(merge))
	return nil
}

func runSettingsRoot(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.SetProjectsRoot(args[0]); err != nil {
		return fmt.Errorf("failed to set projects root: %w", err)
	}
	cmd.Printf("Projects root set to: %s\n", args[0])
	return nil
}

// Helper functions.

func formatPromptRef(ref domain.PromptRef) string {
	if ref.ID == "" {
		return "(built-in instructions)"
	}
	if ref.Version == "" {
		return ref.ID + " (latest)"
	}
	return ref.ID + " v" + ref.Version
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when stdin is a terminal, otherwise
// it falls back to reader.
func readPassword(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
