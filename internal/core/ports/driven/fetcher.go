package driven

import (
	"context"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// RepositoryFetcher copies markdown-family files from a GitHub repository
// into a document source directory with flattened file names.
type RepositoryFetcher interface {
	// Fetch copies files into outputDir and returns how many were written.
	Fetch(ctx context.Context, repo domain.RepoRef, outputDir string) (int, error)
}
