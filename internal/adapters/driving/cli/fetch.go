package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch owner/name",
	Short: "Fetch markdown files from a GitHub repository",
	Long: `Copies every .md, .mdx and .markdown file of a GitHub repository into the
document directory. Nested paths are flattened by replacing path separators
with underscores.

The clone strategy shells out to git; the api strategy downloads files
through the GitHub REST API.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&githubToken, "token", "", "GitHub access token (default $GITHUB_TOKEN)")
	fetchCmd.Flags().StringVar(&fetchStrategy, "strategy", "", "Fetch strategy: clone or api")
	fetchCmd.Flags().StringVarP(&rawDir, "output", "o", "", "Output directory (default paths.raw_dir)")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("output") {
		settings.Paths.RawDir = rawDir
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	if _, err := fetchRepository(cmd, settings, args[0]); err != nil {
		if errors.Is(err, domain.ErrInvalidRepoRef) {
			cmd.Println("Repository must be in format owner/name")
			return nil
		}
		return fmt.Errorf("fetch failed: %w", err)
	}
	return nil
}
