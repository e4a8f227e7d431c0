package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show resolved settings",
	Long: `Print the settings a run would use after merging the defaults, the config
file, the .env file and the environment. API keys are masked.`,
	RunE: runSettingsShow,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	svc, err := loadSettingsService()
	if err != nil {
		return err
	}

	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	cmd.Printf("  API Key: %s\n", displayKey(settings.Embedding.APIKey))
	cmd.Printf("  Dimensions: %d\n", settings.Embedding.Dimensions)
	cmd.Printf("  Max tokens: %d (%s)\n", settings.Embedding.MaxTokens, settings.Embedding.Tokenizer)
	cmd.Printf("  Concurrency: %d\n", settings.Embedding.Concurrency)
	cmd.Println()

	cmd.Println("[Vector Index]")
	cmd.Printf("  Provider: %s\n", settings.Vector.Provider)
	cmd.Printf("  Index: %s\n", settings.Vector.Index)
	cmd.Printf("  Metric: %s\n", settings.Vector.Metric)
	switch settings.Vector.Provider {
	case domain.VectorProviderPinecone:
		cmd.Printf("  Placement: %s/%s\n", settings.Vector.Cloud, settings.Vector.Region)
		cmd.Printf("  API Key: %s\n", displayKey(settings.Vector.APIKey))
	case domain.VectorProviderMilvus:
		cmd.Printf("  Address: %s\n", settings.Vector.Address)
	}
	cmd.Printf("  Batch size: %d\n", settings.Vector.BatchSize)
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Target size: %d\n", settings.Chunking.TargetSize)
	cmd.Println()

	cmd.Println("[Paths]")
	cmd.Printf("  Documents: %s\n", settings.Paths.RawDir)
	cmd.Printf("  Checkpoint: %s\n", settings.Paths.Checkpoint)
	cmd.Println()

	cmd.Println("[GitHub]")
	cmd.Printf("  Strategy: %s\n", settings.GitHub.Strategy)
	cmd.Printf("  Token: %s\n", displayKey(settings.GitHub.Token))
	cmd.Println()

	if err := validateAll(settings); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func validateAll(s *domain.AppSettings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := s.Embedding.Validate(); err != nil {
		return err
	}
	return s.Vector.Validate()
}

func displayKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
