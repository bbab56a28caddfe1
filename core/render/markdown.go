// Package render provides output renderers for finished brochures.
// This file implements the Markdown renderer, which is a passthrough:
// the brochure is already Markdown, the canonical pipeline format.
package render

import (
	"github.com/safuente/web-brochure-creator/core"
)

// MarkdownRenderer writes brochure Markdown as-is.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render returns the Markdown as bytes (passthrough).
func (r *MarkdownRenderer) Render(markdown string, meta core.BrochureMeta) ([]byte, error) {
	return []byte(markdown), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}
