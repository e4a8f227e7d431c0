package driving

import "context"

// FetchService copies a GitHub repository's markdown files into a directory.
type FetchService interface {
	// Fetch parses an owner/name reference and fetches into outputDir.
	// Returns the number of files written.
	Fetch(ctx context.Context, repo, outputDir string) (int, error)
}
