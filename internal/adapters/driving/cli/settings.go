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

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure search defaults, AI providers, storage and the API server.

Use subcommands to change a single key or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Change one setting",
	Long: `Change one setting by its dotted key, e.g.

  sampann settings set search.k 8
  sampann settings set embedding.provider openai
  sampann settings set llm.api_key          (prompts without echo)

Run 'sampann settings keys' for the full list.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	RunE:  runSettingsKeys,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that configured providers are reachable",
	RunE:  runSettingsValidate,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure the embedding, re-ranker and LLM providers.`,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Results (k): %d\n", settings.Search.K)
	cmd.Printf("  Sort: %s\n", settings.Search.Sort)
	cmd.Printf("  Ranker: %s\n", settings.Search.Ranker)
	cmd.Printf("  Cross-encoder: %s (k=%d)\n", settings.Search.CEModel, settings.Search.CEK)
	if settings.Search.BrowseMaxDistance > 0 {
		cmd.Printf("  Browse max distance: %g\n", settings.Search.BrowseMaxDistance)
	}
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider == domain.AIProviderHugot && settings.Embedding.ModelDir != "" {
		cmd.Printf("  Model dir: %s\n", settings.Embedding.ModelDir)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", displaySecret(settings.Embedding.APIKey))
	}
	if settings.Embedding.RequestsPerSecond > 0 {
		cmd.Printf("  Rate limit: %g req/s\n", settings.Embedding.RequestsPerSecond)
	}
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[Re-ranker]")
	if settings.Reranker.IsConfigured() {
		cmd.Printf("  Provider: %s\n", settings.Reranker.Provider.Description())
		cmd.Printf("  Base URL: %s\n", settings.Reranker.BaseURL)
		if settings.Reranker.Model != "" {
			cmd.Printf("  Model: %s\n", settings.Reranker.Model)
		}
	}
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Reranker.IsConfigured()))
	cmd.Println()

	cmd.Println("[LLM]")
	if settings.LLM.Provider != "" {
		cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
		cmd.Printf("  Model: %s\n", settings.LLM.Model)
		if settings.LLM.BaseURL != "" {
			cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
		}
		if settings.LLM.Provider.RequiresAPIKey() {
			cmd.Printf("  API Key: %s\n", displaySecret(settings.LLM.APIKey))
		}
		cmd.Printf("  Temperature: %g\n", settings.LLM.Temperature)
	}
	status := configuredStatus(settings.LLM.IsConfigured())
	if !settings.LLM.IsConfigured() {
		status += " (answers list matching products)"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend)
	switch settings.Storage.Backend {
	case domain.StorageSQLite:
		if settings.Storage.DataDir != "" {
			cmd.Printf("  Data dir: %s\n", settings.Storage.DataDir)
		}
	case domain.StoragePostgres:
		cmd.Printf("  DSN: %s\n", displaySecret(settings.Storage.DSN))
	}
	cmd.Println()

	cmd.Println("[Cache]")
	if settings.Cache.RedisAddr != "" {
		cmd.Printf("  Redis: %s (db %d, ttl %s)\n", settings.Cache.RedisAddr, settings.Cache.DB, settings.Cache.TTL)
	} else {
		cmd.Println("  Redis: disabled")
	}
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	cmd.Printf("  Request timeout: %s\n", settings.Server.RequestTimeout)

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	key := args[0]
	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case isSecretKey(key):
		cmd.Printf("Enter value for %s: ", key)
		value = readPassword()
		cmd.Println()
	default:
		return fmt.Errorf("%w: a value is required for %s", domain.ErrInvalidInput, key)
	}

	if err := settingsService.Set(key, value); err != nil {
		return err
	}

	shown := value
	if isSecretKey(key) {
		shown = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, shown)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}
	for _, k := range settingsService.Keys() {
		cmd.Println(k)
	}
	return nil
}

func runSettingsValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	checks := []struct {
		name string
		fn   func() error
	}{
		{"Embedding", settingsService.ValidateEmbeddingConfig},
		{"Re-ranker", settingsService.ValidateRerankerConfig},
		{"LLM", settingsService.ValidateLLMConfig},
	}

	var failed int
	for _, c := range checks {
		cmd.Printf("%s... ", c.name)
		if err := c.fn(); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			failed++
			continue
		}
		cmd.Println("OK")
	}
	if failed > 0 {
		return fmt.Errorf("%d provider check(s) failed", failed)
	}
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	cmd.Println("Sampann Settings Wizard")
	cmd.Println("=======================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Step 1: Embedding Provider")
	cmd.Println("--------------------------")
	if err := configureProvider(cmd, reader, "embedding", domain.AllEmbeddingProviders(),
		domain.DefaultEmbeddingModels(), settingsService.ValidateEmbeddingConfig); err != nil {
		return err
	}

	cmd.Println("Step 2: Re-ranker (optional)")
	cmd.Println("----------------------------")
	cmd.Print("TEI /rerank base URL (blank to skip): ")
	if url := readLine(reader); url != "" {
		if err := settingsService.Set("reranker.provider", string(domain.AIProviderTEI)); err != nil {
			return err
		}
		if err := settingsService.Set("reranker.base_url", url); err != nil {
			return err
		}
		cmd.Print("Validating configuration... ")
		if err := settingsService.ValidateRerankerConfig(); err != nil {
			cmd.Printf("FAILED: %v\n", err)
		} else {
			cmd.Println("OK")
		}
	}
	cmd.Println()

	cmd.Println("Step 3: LLM Provider (optional)")
	cmd.Println("-------------------------------")
	cmd.Print("Configure an LLM for written answers? [y/N]: ")
	if strings.HasPrefix(strings.ToLower(readLine(reader)), "y") {
		if err := configureProvider(cmd, reader, "llm", domain.AllLLMProviders(),
			domain.DefaultLLMModels(), settingsService.ValidateLLMConfig); err != nil {
			return err
		}
	} else {
		cmd.Println()
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("Run 'sampann ingest <catalog.csv>' to load products.")
	return nil
}

// configureProvider prompts for provider, model and API key under prefix.
func configureProvider(
	cmd *cobra.Command,
	reader *bufio.Reader,
	prefix string,
	providers []domain.AIProvider,
	defaults map[domain.AIProvider]string,
	validate func() error,
) error {
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider := providers[idx-1]

	defaultModel := defaults[provider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	if err := settingsService.Set(prefix+".provider", string(provider)); err != nil {
		return err
	}
	if err := settingsService.Set(prefix+".model", model); err != nil {
		return err
	}

	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey := readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
		if err := settingsService.Set(prefix+".api_key", apiKey); err != nil {
			return err
		}
	}

	cmd.Print("Validating configuration... ")
	if err := validate(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("%s configuration validation failed: %w", prefix, err)
	}
	cmd.Println("OK")
	cmd.Printf("Configured: %s (%s)\n\n", provider.Description(), model)
	return nil
}

// Helper functions.

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func displaySecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	return maskAPIKey(s)
}

func isSecretKey(key string) bool {
	return strings.HasSuffix(key, ".api_key") || strings.HasSuffix(key, ".password") || key == "storage.dsn"
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

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
