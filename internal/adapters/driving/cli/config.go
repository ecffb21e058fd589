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

	"github.com/agora-labs/agora-cli/internal/adapters/driven/ai"
	"github.com/agora-labs/agora-cli/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change configuration",
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configSetEmbeddingCmd = &cobra.Command{
	Use:   "set-embedding [provider] [model]",
	Short: "Configure the embedding provider (ollama, openai, mock)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runConfigSetEmbedding,
}

var configSetCompletionCmd = &cobra.Command{
	Use:   "set-completion [provider] [model]",
	Short: "Configure the completion provider (ollama, openai, anthropic)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runConfigSetCompletion,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and ping the configured providers",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetEmbeddingCmd)
	configCmd.AddCommand(configSetCompletionCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not available")
	}

	val, ok := configStore.Get(args[0])
	if !ok {
		return fmt.Errorf("key %q not set", args[0])
	}
	cmd.Printf("%v\n", val)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not available")
	}

	if err := configStore.Set(args[0], parseConfigValue(args[1])); err != nil {
		return fmt.Errorf("set %s: %w", args[0], err)
	}
	cmd.Printf("%s = %s\n", args[0], args[1])
	return nil
}

// parseConfigValue interprets a raw argument as bool, integer or float so
// numeric keys round-trip through the TOML store with their real type
// instead of being stored as strings the typed getters cannot read.
func parseConfigValue(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not available")
	}

	if err := settingsService.Validate(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return err
	}

	embedSvc, err := ai.CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		return err
	}
	if embedSvc != nil {
		embedSvc.Close()
		cmd.Printf("Embedding provider %s: reachable\n", settings.Embedding.Provider)
	} else {
		cmd.Println("Embedding provider: not configured")
	}

	compSvc, err := ai.CreateAndValidateCompletionService(&settings.Completion)
	if err != nil {
		return err
	}
	if compSvc != nil {
		compSvc.Close()
		cmd.Printf("Completion provider %s: reachable\n", settings.Completion.Provider)
	} else {
		cmd.Println("Completion provider: not configured")
	}

	cmd.Println("Configuration OK.")
	return nil
}

func runConfigSetEmbedding(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not available")
	}

	provider := domain.AIProvider(args[0])
	model := ""
	if len(args) > 1 {
		model = args[1]
	}

	apiKey := ""
	if provider.RequiresAPIKey() {
		cmd.Print("API key: ")
		apiKey = readPassword()
		cmd.Println()
	}

	if err := settingsService.SetEmbeddingProvider(provider, model, apiKey); err != nil {
		return err
	}
	cmd.Printf("Embedding provider set to %s.\n", provider.Description())
	return nil
}

func runConfigSetCompletion(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not available")
	}

	provider := domain.AIProvider(args[0])
	model := ""
	if len(args) > 1 {
		model = args[1]
	}

	apiKey := ""
	if provider.RequiresAPIKey() {
		cmd.Print("API key: ")
		apiKey = readPassword()
		cmd.Println()
	}

	if err := settingsService.SetCompletionProvider(provider, model, apiKey); err != nil {
		return err
	}
	cmd.Printf("Completion provider set to %s.\n", provider.Description())
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not available")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return err
	}

	cmd.Println("Embedding:")
	cmd.Printf("  provider: %s\n", settings.Embedding.Provider)
	cmd.Printf("  model:    %s\n", settings.Embedding.Model)
	if settings.Embedding.APIKey != "" {
		cmd.Printf("  api_key:  %s\n", maskAPIKey(settings.Embedding.APIKey))
	}
	cmd.Println("Completion:")
	cmd.Printf("  provider: %s\n", settings.Completion.Provider)
	cmd.Printf("  model:    %s\n", settings.Completion.Model)
	if settings.Completion.APIKey != "" {
		cmd.Printf("  api_key:  %s\n", maskAPIKey(settings.Completion.APIKey))
	}
	cmd.Println("Assistant:")
	cmd.Printf("  session_ttl_minutes: %d\n", settings.Assistant.SessionTTLMinutes)
	cmd.Printf("  search_limit:        %d\n", settings.Assistant.SearchLimit)
	cmd.Printf("  temperature:         %.2f\n", settings.Assistant.Temperature)
	cmd.Println("Index:")
	cmd.Printf("  chunk_size:    %d\n", settings.ChunkSize)
	cmd.Printf("  chunk_overlap: %d\n", settings.ChunkOverlap)
	return nil
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
