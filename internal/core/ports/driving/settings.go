package driving

import "github.com/custodia-labs/sercha-ingest/internal/core/domain"

// SettingsService resolves the configuration of a run.
type SettingsService interface {
	// Get merges defaults, the config file and the environment.
	Get() (*domain.AppSettings, error)

	// GetDefaults returns the built-in defaults.
	GetDefaults() domain.AppSettings
}
