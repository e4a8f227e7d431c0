package github

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// Ensure CloneFetcher implements the interface.
var _ driven.RepositoryFetcher = (*CloneFetcher)(nil)

// TempCloneDir is the directory created under the output directory for the
// shallow clone. It is removed once the markdown files are copied.
const TempCloneDir = "_temp_clone"

// commandRunner runs an external command and returns its combined output.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// CloneFetcher fetches markdown files with a shallow git clone.
type CloneFetcher struct {
	token   string
	host    string
	gitPath string
	run     commandRunner
}

// CloneOption configures a CloneFetcher.
type CloneOption func(*CloneFetcher)

// WithGitPath sets the git executable.
func WithGitPath(path string) CloneOption {
	return func(f *CloneFetcher) {
		if path != "" {
			f.gitPath = path
		}
	}
}

// WithHost sets the host repositories are cloned from.
func WithHost(host string) CloneOption {
	return func(f *CloneFetcher) {
		if host != "" {
			f.host = host
		}
	}
}

// NewCloneFetcher creates a fetcher. The token may be empty for public
// repositories.
func NewCloneFetcher(token string, opts ...CloneOption) *CloneFetcher {
	f := &CloneFetcher{
		token:   token,
		host:    "github.com",
		gitPath: "git",
		run:     execRunner,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch clones repo into outputDir/_temp_clone, copies its markdown files into
// outputDir and removes the clone.
func (f *CloneFetcher) Fetch(ctx context.Context, repo domain.RepoRef, outputDir string) (int, error) {
	if f.gitPath == "git" {
		if _, err := exec.LookPath("git"); err != nil {
			return 0, ErrGitUnavailable
		}
	}

	tempDir := filepath.Join(outputDir, TempCloneDir)
	if err := os.RemoveAll(tempDir); err != nil {
		return 0, fmt.Errorf("remove stale clone: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}
	defer func() {
		logger.Debug("Cleaning up temporary clone directory %s", tempDir)
		if err := os.RemoveAll(tempDir); err != nil {
			logger.Warn("Failed to remove %s: %v", tempDir, err)
		}
	}()

	cloneURL := f.CloneURL(repo)
	logger.Info("Cloning %s", f.redact(cloneURL))

	out, err := f.run(ctx, f.gitPath, "clone", "--depth", "1", cloneURL, tempDir)
	if err != nil {
		return 0, &CloneError{
			Repo:   repo.String(),
			Output: strings.TrimSpace(f.redact(string(out))),
			Err:    err,
		}
	}

	n, err := CopyMarkdown(tempDir, outputDir)
	if err != nil {
		return n, err
	}

	logger.Info("Copied %d markdown files from %s", n, repo)
	return n, nil
}

// CloneURL returns the https clone URL, carrying the token when set.
func (f *CloneFetcher) CloneURL(repo domain.RepoRef) string {
	if f.token != "" {
		return fmt.Sprintf("https://%s@%s/%s/%s.git", f.token, f.host, repo.Owner, repo.Name)
	}
	return fmt.Sprintf("https://%s/%s/%s.git", f.host, repo.Owner, repo.Name)
}

// redact strips the token from text destined for logs or errors.
func (f *CloneFetcher) redact(s string) string {
	if f.token == "" {
		return s
	}
	return strings.ReplaceAll(s, f.token, "***")
}
