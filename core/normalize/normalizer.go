// Package normalize converts cleaned HTML fragments into Markdown.
// Markdown is the text representation used for every page fed to the
// model: it keeps headings and list structure that flattened text loses,
// which makes for better prompt material.
package normalize

import (
	"fmt"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// ToMarkdown converts a cleaned HTML fragment into Markdown.
func ToMarkdown(html string) (string, error) {
	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return markdown, nil
}
