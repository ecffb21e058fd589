// Package cli implements the agora command-line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/agora-labs/agora-cli/internal/adapters/driven/ai"
	configfile "github.com/agora-labs/agora-cli/internal/adapters/driven/config/file"
	storagefile "github.com/agora-labs/agora-cli/internal/adapters/driven/storage/file"
	"github.com/agora-labs/agora-cli/internal/adapters/driven/storage/sqlite"
	"github.com/agora-labs/agora-cli/internal/chunker"
	"github.com/agora-labs/agora-cli/internal/core/ports/driven"
	"github.com/agora-labs/agora-cli/internal/core/ports/driving"
	"github.com/agora-labs/agora-cli/internal/core/services"
	"github.com/agora-labs/agora-cli/internal/logger"
)

// Persistent flags.
var (
	flagVerbose   bool
	flagConfigDir string
)

// Services wired during PersistentPreRunE. Commands nil-check the ones
// they need; config and version work without any AI provider.
var (
	configStore      driven.ConfigStore
	settingsService  driving.SettingsService
	indexService     driving.IndexingService
	assistantService driving.AssistantService
	sessionStore     driven.SessionStore
)

var rootCmd = &cobra.Command{
	Use:   "agora",
	Short: "Retrieval-augmented assistant for drafting governance proposals",
	Long: `Agora indexes governance forum discussion into a local vector store and
runs a retrieval-augmented dialogue that helps turn that discussion into
structured proposals.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(flagVerbose)
		return initServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "config directory (default ~/.agora)")
}

// Execute runs the CLI.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}

// initServices wires the adapter stack. AI provider failures are warnings,
// not fatal: config and session inspection still work without them.
func initServices() error {
	// A .env in the working directory can supply API keys.
	_ = godotenv.Load()

	store, err := configfile.NewConfigStore(flagConfigDir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	configStore = store
	settingsService = services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	// Environment variables override stored keys so .env-based setups
	// never write secrets to the config file.
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && settings.Completion.APIKey == "" {
		settings.Completion.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && settings.Completion.APIKey == "" {
		settings.Completion.APIKey = key
	}

	dataDir := filepath.Join(filepath.Dir(configStore.Path()), "data")

	embedder, err := ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		logger.Warn("Embedding provider unavailable: %v", err)
	}

	completion, err := ai.CreateCompletionService(&settings.Completion)
	if err != nil {
		logger.Warn("Completion provider unavailable: %v", err)
	}

	var retriever services.Retriever
	if embedder != nil {
		chk, err := chunker.New(
			chunker.WithChunkSize(settings.ChunkSize),
			chunker.WithOverlap(settings.ChunkOverlap),
		)
		if err != nil {
			return err
		}

		indexStore, err := storagefile.NewIndexStore(filepath.Join(dataDir, storagefile.DefaultFileName))
		if err != nil {
			return fmt.Errorf("open index store: %w", err)
		}

		index := services.NewIndexService(embedder, indexStore, chk)
		indexService = index
		retriever = index
	}

	if completion != nil {
		sessions, err := sqlite.NewSessionStore(dataDir)
		if err != nil {
			return fmt.Errorf("open session store: %w", err)
		}
		sessionStore = sessions

		assistantService = services.NewAssistant(retriever, completion, sessions, services.AssistantOptions{
			SessionTTL:  time.Duration(settings.Assistant.SessionTTLMinutes) * time.Minute,
			SearchLimit: settings.Assistant.SearchLimit,
			Threshold:   settings.Assistant.Threshold,
			Temperature: settings.Assistant.Temperature,
		})
	}

	return nil
}

// closeServices releases adapter resources.
func closeServices() {
	if sessionStore != nil {
		sessionStore.Close()
	}
}
