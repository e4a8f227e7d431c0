package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// Ensure APIFetcher implements the interface.
var _ driven.RepositoryFetcher = (*APIFetcher)(nil)

// MaxBlobSize is the largest file downloaded through the Git Data API.
const MaxBlobSize = 1024 * 1024

// APIFetcher fetches markdown files through the GitHub REST API.
type APIFetcher struct {
	client *Client
}

// NewAPIFetcher creates a fetcher using the given client.
func NewAPIFetcher(client *Client) *APIFetcher {
	return &APIFetcher{client: client}
}

// Fetch downloads every markdown file on the default branch into outputDir.
func (f *APIFetcher) Fetch(ctx context.Context, repo domain.RepoRef, outputDir string) (int, error) {
	repository, err := f.client.GetRepository(ctx, repo.Owner, repo.Name)
	if err != nil {
		if IsNotFound(err) {
			return 0, fmt.Errorf("%w: %s", ErrRepoNotFound, repo)
		}
		return 0, err
	}

	branch := repository.GetDefaultBranch()
	tree, err := f.client.GetTree(ctx, repo.Owner, repo.Name, branch)
	if err != nil {
		return 0, err
	}
	if tree.GetTruncated() {
		logger.Warn("%v: %s, some files may be missing", ErrTreeTruncated, repo)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}

	count := 0
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" || !IsMarkdown(entry.GetPath()) {
			continue
		}

		if entry.GetSize() > MaxBlobSize {
			logger.Warn("Skipping %s: %d bytes exceeds blob limit", entry.GetPath(), entry.GetSize())
			continue
		}

		content, err := f.fetchBlobContent(ctx, repo, entry.GetSHA())
		if err != nil {
			return count, fmt.Errorf("fetch %s: %w", entry.GetPath(), err)
		}

		if err := writeFlattened(outputDir, entry.GetPath(), content); err != nil {
			return count, err
		}
		logger.Debug("Downloaded %s", entry.GetPath())
		count++
	}

	logger.Info("Downloaded %d markdown files from %s@%s", count, repo, branch)
	return count, nil
}

// fetchBlobContent fetches the content of a blob and decodes it.
func (f *APIFetcher) fetchBlobContent(ctx context.Context, repo domain.RepoRef, sha string) ([]byte, error) {
	blob, err := f.client.GetBlob(ctx, repo.Owner, repo.Name, sha)
	if err != nil {
		return nil, err
	}

	if blob.GetEncoding() == "base64" {
		content := strings.ReplaceAll(blob.GetContent(), "\n", "")
		return base64.StdEncoding.DecodeString(content)
	}

	return []byte(blob.GetContent()), nil
}
