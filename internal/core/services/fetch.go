package services

import (
	"context"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// Ensure FetchService implements the interface.
var _ driving.FetchService = (*FetchService)(nil)

// FetchService copies a repository's markdown files into a directory.
type FetchService struct {
	fetcher driven.RepositoryFetcher
}

// NewFetchService creates a fetch service.
func NewFetchService(fetcher driven.RepositoryFetcher) *FetchService {
	return &FetchService{fetcher: fetcher}
}

// Fetch validates the owner/name reference and fetches into outputDir.
// A malformed reference returns domain.ErrInvalidRepoRef before any I/O.
func (s *FetchService) Fetch(ctx context.Context, repo, outputDir string) (int, error) {
	ref, err := domain.ParseRepoRef(repo)
	if err != nil {
		return 0, err
	}

	logger.Section("Fetching " + ref.String())
	n, err := s.fetcher.Fetch(ctx, ref, outputDir)
	if err != nil {
		return 0, err
	}
	logger.Info("Copied %d markdown files to %s", n, outputDir)
	return n, nil
}
