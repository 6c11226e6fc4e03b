package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

var resumeExtensions = []string{".txt", ".text", ".md", ".markdown", ".pdf", ".docx"}

// StatInputFile checks that filename names a readable regular file and
// returns its info.
func StatInputFile(filename string) (fs.FileInfo, error) {
	if filename == "" {
		return nil, fmt.Errorf("filename cannot be empty")
	}

	info, err := os.Stat(filename)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("file does not exist: %s", filename)
	case err != nil:
		return nil, fmt.Errorf("cannot access file %s: %w", filename, err)
	case info.IsDir():
		return nil, fmt.Errorf("path is a directory, not a file: %s", filename)
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot read file %s: %w", filename, err)
	}
	_ = f.Close()

	return info, nil
}

// EnsureOutputDir creates the parent directory of an output path.
// An empty path means stdout.
func EnsureOutputDir(filename string) error {
	if filename == "" {
		return nil
	}

	dir := filepath.Dir(filename)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}
	return nil
}

// FileExtension returns the lowercased extension, dot included
func FileExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// IsResumeFile reports whether the extractor knows the file's extension
func IsResumeFile(filename string) bool {
	return slices.Contains(resumeExtensions, FileExtension(filename))
}

// FormatFileSize renders size with a binary unit, e.g. "1.5 MB"
func FormatFileSize(size int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	value := float64(size)
	i := 0
	for value >= 1024 && i < len(units)-1 {
		value /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d B", size)
	}
	return fmt.Sprintf("%.1f %s", value, units[i])
}
