package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

type stubFetcher struct {
	got   []domain.RepoRef
	count int
	err   error
}

func (f *stubFetcher) Fetch(_ context.Context, repo domain.RepoRef, _ string) (int, error) {
	f.got = append(f.got, repo)
	return f.count, f.err
}

func TestFetchService_Fetch(t *testing.T) {
	fetcher := &stubFetcher{count: 4}
	service := NewFetchService(fetcher)

	n, err := service.Fetch(context.Background(), "octo/docs", t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []domain.RepoRef{{Owner: "octo", Name: "docs"}}, fetcher.got)
}

func TestFetchService_Fetch_InvalidReference(t *testing.T) {
	for _, repo := range []string{"", "octo", "octo/", "/docs", "a/b/c"} {
		t.Run(repo, func(t *testing.T) {
			fetcher := &stubFetcher{}
			service := NewFetchService(fetcher)

			_, err := service.Fetch(context.Background(), repo, t.TempDir())

			assert.ErrorIs(t, err, domain.ErrInvalidRepoRef)
			assert.Empty(t, fetcher.got)
		})
	}
}

func TestFetchService_Fetch_PropagatesError(t *testing.T) {
	errClone := errors.New("clone failed")
	service := NewFetchService(&stubFetcher{err: errClone})

	_, err := service.Fetch(context.Background(), "octo/docs", t.TempDir())

	assert.ErrorIs(t, err, errClone)
}
