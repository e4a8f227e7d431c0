// Package cli provides the cobra command tree of sercha-ingest.
package cli

import (
	"errors"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-ingest/internal/core/services"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// version is set at build time.
var version = "dev"

// Persistent flags.
var (
	verbose    bool
	configPath string
)

// settingsService resolves settings. It is built on first use unless set.
var settingsService driving.SettingsService

var rootCmd = &cobra.Command{
	Use:   "sercha-ingest",
	Short: "Chunk, embed and index documents into a vector store",
	Long: `sercha-ingest reads text and markdown documents, splits them into chunks,
embeds every chunk with OpenAI and upserts the vectors into a Pinecone or
Milvus index.

Optionally it first fetches the markdown files of a GitHub repository.
Configuration is read from ~/.sercha-ingest/config.toml (or --config),
the environment and a .env file in the working directory.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed progress")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.sercha-ingest/config.toml)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	logger.SetOutput(cmd.ErrOrStderr())

	// .env is optional
	_ = godotenv.Load()

	if settingsService != nil {
		return nil
	}

	store, err := newConfigStore(configPath)
	if err != nil {
		return err
	}
	settingsService = services.NewSettingsService(store)
	return nil
}

func loadSettingsService() (driving.SettingsService, error) {
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	return settingsService, nil
}
