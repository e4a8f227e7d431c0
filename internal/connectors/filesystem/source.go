// Package filesystem provides a document source backed by a local directory.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// DefaultExtensions are the text-like file extensions read by default.
var DefaultExtensions = []string{".txt", ".md", ".mdx", ".markdown"}

// Source reads documents from the top level of a directory.
// Hidden files and subdirectories are skipped.
type Source struct {
	rootPath   string
	extensions map[string]bool
}

// New creates a directory source accepting the given extensions.
// With no extensions, DefaultExtensions are used.
func New(rootPath string, extensions ...string) *Source {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = true
	}

	return &Source{
		rootPath:   rootPath,
		extensions: exts,
	}
}

// List returns eligible file names sorted by name.
func (s *Source) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.rootPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory does not exist: %s", s.rootPath)
		}
		return nil, fmt.Errorf("read directory: %w", err)
	}

	// os.ReadDir returns entries sorted by filename.
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !s.Accepts(entry.Name()) {
			continue
		}
		if !entry.Type().IsRegular() {
			// Follow symlinks; skip dangling links and special files.
			info, err := os.Stat(filepath.Join(s.rootPath, entry.Name()))
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
		}
		names = append(names, entry.Name())
	}

	return names, nil
}

// Accepts reports whether a file name is eligible.
func (s *Source) Accepts(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return s.extensions[strings.ToLower(filepath.Ext(name))]
}

// Read returns the UTF-8 content of a file in the directory.
func (s *Source) Read(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(filepath.Join(s.rootPath, name))
	if err != nil {
		return "", &domain.SourceReadError{Source: name, Err: err}
	}

	if !utf8.Valid(data) {
		return "", &domain.SourceReadError{Source: name, Err: fmt.Errorf("%w: not valid UTF-8", domain.ErrInvalidInput)}
	}

	return string(data), nil
}
