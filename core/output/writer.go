// Package output handles file naming and writing for saved brochures.
// Filenames are derived from the company name when present, otherwise
// from the site's hostname (e.g. acme_inc.md, example_com.pdf).
package output

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Writer writes rendered brochures to disk.
type Writer struct {
	OutputDir string
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir}, nil
}

// Write saves a rendered brochure and returns the written path. The
// filename comes from the company name, falling back to the hostname of
// the source URL.
func (w *Writer) Write(company, sourceURL string, data []byte, ext string) (string, error) {
	name := Filename(company, sourceURL)
	path := filepath.Join(w.OutputDir, name+ext)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

// Filename derives a flat filename from the company name or, when that
// is empty, the source URL's hostname.
// Example: "Acme Inc." → acme_inc; https://example.com → example_com.
func Filename(company, sourceURL string) string {
	base := strings.TrimSpace(company)
	if base == "" {
		if parsed, err := url.Parse(sourceURL); err == nil && parsed.Host != "" {
			base = parsed.Host
		} else {
			base = sourceURL
		}
	}

	name := strings.Trim(sanitize(strings.ToLower(base)), "_")
	if name == "" {
		name = "brochure"
	}
	return name
}

// sanitize replaces non-alphanumeric characters with underscores,
// collapsing runs so names stay readable.
func sanitize(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, ch := range s {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			b.WriteRune(ch)
			lastUnderscore = false
		} else if !lastUnderscore {
			b.WriteRune('_')
			lastUnderscore = true
		}
	}
	return b.String()
}
