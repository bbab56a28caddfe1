package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		name      string
		company   string
		sourceURL string
		want      string
	}{
		{"company name", "Acme Inc.", "https://acme.com", "acme_inc"},
		{"lowercased", "HuggingFace", "https://huggingface.co", "huggingface"},
		{"spaces and punctuation collapse", "Foo  &  Bar, Ltd.", "", "foo_bar_ltd"},
		{"hostname fallback", "", "https://example.com/path", "example_com"},
		{"hostname with port", "", "http://localhost:8080", "localhost_8080"},
		{"whitespace-only company falls back", "   ", "https://example.com", "example_com"},
		{"nothing usable", "", "://", "brochure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename(tt.company, tt.sourceURL))
		})
	}
}

func TestWriter_Write(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	require.NoError(t, err)

	path, err := w.Write("Acme Inc.", "https://acme.com", []byte("# Acme\n"), ".md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "acme_inc.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Acme\n", string(data))
}

func TestWriter_CreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	w, err := New(dir)
	require.NoError(t, err)

	_, err = w.Write("", "https://example.com", []byte("content"), ".md")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "example_com.md"))
	assert.NoError(t, err)
}
