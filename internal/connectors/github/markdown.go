package github

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// MarkdownExtensions are the file extensions copied out of a repository.
var MarkdownExtensions = []string{".md", ".mdx", ".markdown"}

// IsMarkdown reports whether a repository path names a markdown-family file.
func IsMarkdown(path string) bool {
	ext := filepath.Ext(path)
	for _, want := range MarkdownExtensions {
		if ext == want {
			return true
		}
	}
	return false
}

// SanitizeName flattens a slash or OS separated relative path into a single
// file name by replacing separators with underscores.
func SanitizeName(relPath string) string {
	name := filepath.ToSlash(relPath)
	return strings.ReplaceAll(name, "/", "_")
}

// FindMarkdown walks root and returns the relative paths of markdown files,
// skipping the .git directory.
func FindMarkdown(root string) ([]string, error) {
	var found []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !IsMarkdown(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		found = append(found, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	return found, nil
}

// CopyMarkdown copies every markdown file under srcRoot into dstDir using
// flattened names. It returns the number of files copied.
func CopyMarkdown(srcRoot, dstDir string) (int, error) {
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}

	files, err := FindMarkdown(srcRoot)
	if err != nil {
		return 0, err
	}

	for i, rel := range files {
		if err := copyFile(filepath.Join(srcRoot, rel), filepath.Join(dstDir, SanitizeName(rel))); err != nil {
			return i, err
		}
	}

	return len(files), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}

// writeFlattened writes content for a repository path into dstDir.
func writeFlattened(dstDir, repoPath string, content []byte) error {
	dst := filepath.Join(dstDir, SanitizeName(repoPath))
	if err := os.WriteFile(dst, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}
