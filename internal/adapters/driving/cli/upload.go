package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a saved checkpoint to the vector index",
	Long: `Reads the embedded chunks saved by a previous run and upserts them into the
vector index. No documents are read and no embeddings are computed.`,
	Args: cobra.NoArgs,
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&indexName, "index", "", "Vector index name")
	uploadCmd.Flags().StringVar(&checkpointPath, "checkpoint", "", "Checkpoint file for embedded chunks")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, _ []string) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	if err := settings.Vector.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()

	p, err := buildPipeline(ctx, settings, false, true)
	if err != nil {
		return err
	}
	defer p.Close()

	cmd.Printf("Uploading %s to %s...\n", settings.Paths.Checkpoint, settings.Vector.Index)
	report, err := p.ingest.Upload(ctx, driving.RunOptions{
		IndexName: settings.Vector.Index,
		Progress:  newProgressPrinter(cmd.ErrOrStderr()).Update,
	})
	printReport(cmd, report)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	cmd.Println(newOutputStyles(cmd.OutOrStdout()).ok.Render("Upload completed successfully!"))
	return nil
}
