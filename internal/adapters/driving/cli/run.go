package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-ingest/internal/connectors/github"
	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-ingest/internal/core/services"
)

// Flags shared by run, fetch and upload.
var (
	indexName      string
	rawDir         string
	checkpointPath string
	githubToken    string
	fetchStrategy  string
)

// Flags of the run command.
var (
	skipFetch   bool
	skipUpload  bool
	dryRun      bool
	targetSize  int
	concurrency int
)

var runCmd = &cobra.Command{
	Use:   "run [owner/name]",
	Short: "Chunk, embed and upload documents",
	Long: `Runs the ingestion pipeline over the document directory.

If a GitHub repository is given, its markdown files are fetched into the
document directory first (unless --skip-fetch is set). Every document is
split into chunks, every chunk is embedded, the embedded chunks are saved
to the checkpoint file and then upserted into the vector index.

Chunks that cannot be embedded are skipped and reported at the end.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	runCmd.Flags().StringVar(&githubToken, "token", "", "GitHub access token (default $GITHUB_TOKEN)")
	runCmd.Flags().StringVar(&fetchStrategy, "strategy", "", "Fetch strategy: clone or api")
	runCmd.Flags().BoolVar(&skipFetch, "skip-fetch", false, "Use the documents already in the document directory")
	runCmd.Flags().BoolVar(&skipUpload, "skip-upload", false, "Stop after writing the checkpoint")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Upload into an in-memory index")
	runCmd.Flags().StringVar(&indexName, "index", "", "Vector index name")
	runCmd.Flags().StringVar(&rawDir, "raw-dir", "", "Document directory")
	runCmd.Flags().StringVar(&checkpointPath, "checkpoint", "", "Checkpoint file for embedded chunks")
	runCmd.Flags().IntVar(&targetSize, "target-size", 0, "Target chunk size in characters")
	runCmd.Flags().IntVar(&concurrency, "concurrency", 0, "Chunks embedded at once")
	rootCmd.AddCommand(runCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	if dryRun {
		settings.Vector.Provider = domain.VectorProviderMemory
	}

	// Every key must be present before any work begins.
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := settings.Embedding.Validate(); err != nil {
		return err
	}
	if !skipUpload {
		if err := settings.Vector.Validate(); err != nil {
			return err
		}
	}

	ctx := cmd.Context()

	if len(args) > 0 && !skipFetch {
		if _, err := fetchRepository(cmd, settings, args[0]); err != nil {
			if errors.Is(err, domain.ErrInvalidRepoRef) {
				cmd.Println("Repository must be in format owner/name")
				return nil
			}
			return fmt.Errorf("fetch failed: %w", err)
		}
	}

	if err := ensureDir(settings.Paths.RawDir); err != nil {
		return err
	}

	p, err := buildPipeline(ctx, settings, true, !skipUpload)
	if err != nil {
		return err
	}
	defer p.Close()

	bar := newProgressPrinter(cmd.ErrOrStderr())
	cmd.Printf("Processing documents in %s...\n", settings.Paths.RawDir)

	report, err := p.ingest.Run(ctx, driving.RunOptions{
		IndexName:  settings.Vector.Index,
		SkipUpload: skipUpload,
		Progress:   bar.Update,
	})
	printReport(cmd, report)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	cmd.Println(newOutputStyles(cmd.OutOrStdout()).ok.Render("Process completed successfully!"))
	return nil
}

// resolveSettings loads settings and applies command-line overrides.
func resolveSettings(cmd *cobra.Command) (*domain.AppSettings, error) {
	svc, err := loadSettingsService()
	if err != nil {
		return nil, err
	}
	settings, err := svc.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("index") {
		settings.Vector.Index = indexName
	}
	if flags.Changed("raw-dir") {
		settings.Paths.RawDir = rawDir
	}
	if flags.Changed("checkpoint") {
		settings.Paths.Checkpoint = checkpointPath
	}
	if flags.Changed("token") {
		settings.GitHub.Token = githubToken
	}
	if flags.Changed("strategy") {
		settings.GitHub.Strategy = domain.FetchStrategy(fetchStrategy)
	}
	if flags.Changed("target-size") {
		settings.Chunking.TargetSize = targetSize
	}
	if flags.Changed("concurrency") {
		settings.Embedding.Concurrency = concurrency
	}
	return settings, nil
}

// fetchRepository copies the markdown files of repo into the document directory.
func fetchRepository(cmd *cobra.Command, settings *domain.AppSettings, repo string) (int, error) {
	ctx := cmd.Context()

	// Reject malformed references before touching the network.
	if _, err := domain.ParseRepoRef(repo); err != nil {
		return 0, err
	}
	if err := ensureDir(settings.Paths.RawDir); err != nil {
		return 0, err
	}

	fetcher, err := newFetcher(ctx, settings.GitHub)
	if err != nil {
		return 0, err
	}

	cmd.Printf("Fetching %s...\n", repo)
	n, err := services.NewFetchService(fetcher).Fetch(ctx, repo, settings.Paths.RawDir)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return 0, &domain.ConfigurationError{Key: services.EnvGitHubToken, Reason: "rejected by GitHub"}
		}
		if github.IsRateLimited(err) && settings.GitHub.Token == "" {
			return 0, fmt.Errorf("%w (set %s for a higher limit)", err, services.EnvGitHubToken)
		}
		return 0, err
	}
	cmd.Printf("Copied %d markdown files to %s\n", n, settings.Paths.RawDir)
	return n, nil
}

func printReport(cmd *cobra.Command, report *domain.RunReport) {
	if report == nil {
		return
	}

	if len(report.Sources) > 0 {
		cmd.Printf("Read %d documents\n", len(report.Sources))
	}
	cmd.Printf("Embedded %d chunks (%d truncated)\n", report.Embedded, report.Truncated)
	if report.Failed > 0 {
		cmd.Println(newOutputStyles(cmd.OutOrStdout()).warn.Render(report.FailureSummary()))
	}
	if report.Checkpoint != "" && len(report.Sources) > 0 {
		cmd.Printf("Saved embeddings to %s\n", report.Checkpoint)
	}
	if report.IndexCreated {
		cmd.Println("Created vector index")
	}
	if report.Batches > 0 {
		cmd.Printf("Upserted %d vectors in %d batches\n", report.Upserted, report.Batches)
	}
}
