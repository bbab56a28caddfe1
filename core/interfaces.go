// Package core defines the data model and pipeline interfaces for the
// brochure generator. Each stage of the pipeline is a clean, testable
// interface; concrete implementations live in the core subpackages.
package core

import (
	"context"
	"time"
)

// FetchResult holds the raw HTML and response metadata from a fetch.
type FetchResult struct {
	URL        string
	StatusCode int
	HTML       string
}

// Link is a hyperlink discovered on a page: an absolute http(s) URL plus
// the anchor text it was found under. Links are unique by normalized URL
// within one extraction pass.
type Link struct {
	URL        string
	AnchorText string
}

// PageContent is the extracted content of one fetched page. It is
// immutable after creation: Text is the page's main content rendered as
// Markdown, and Links preserves first-seen order after deduplication.
type PageContent struct {
	SourceURL string
	Title     string
	Text      string
	Links     []Link
}

// SelectedLink is a link the relevance selector judged brochure-worthy,
// together with the category the model assigned it (e.g. "about page").
type SelectedLink struct {
	Link
	Category string
}

// RelevanceDecision is the outcome of link selection for one landing
// page. Every entry in Selected is a member of the input link set; model
// responses naming unknown URLs are dropped and counted in Mismatches
// rather than included.
type RelevanceDecision struct {
	Selected   []SelectedLink
	Rationale  string
	Mismatches int

	// FallbackUsed is true when the keyword heuristic produced the
	// selection because the model call failed or returned nothing usable.
	FallbackUsed bool
}

// DocumentSection is one page's contribution to the aggregated document.
type DocumentSection struct {
	SourceURL string
	Category  string
	Text      string
	Truncated bool
}

// AggregatedDocument is the bounded-size concatenation of page texts fed
// to the synthesis prompt. Sections appear in selection order, landing
// page first. Omitted lists URLs of selected pages skipped because the
// total character budget was already exhausted.
type AggregatedDocument struct {
	CompanyName string
	Sections    []DocumentSection
	Omitted     []string
}

// TotalChars returns the combined length of all section texts.
func (d *AggregatedDocument) TotalChars() int {
	var n int
	for _, s := range d.Sections {
		n += len(s.Text)
	}
	return n
}

// Brochure is the final artifact returned to the caller.
type Brochure struct {
	Markdown string
}

// BrochureMeta carries presentation metadata for renderers.
type BrochureMeta struct {
	Company     string
	SourceURL   string
	GeneratedAt time.Time
}

// Fetcher retrieves raw HTML from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Extractor turns raw HTML into page text and discovered links. It must
// be deterministic and degrade gracefully on malformed markup.
type Extractor interface {
	Extract(html string, baseURL string) (*PageContent, error)
}

// ModelClient is the boundary to a remote text-generation service.
// Implementations map transport failures onto ModelError kinds; retry
// policy is layered on top (see core/model).
type ModelClient interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Renderer converts brochure Markdown (and metadata) into a final output
// format such as Markdown passthrough or PDF.
type Renderer interface {
	Render(markdown string, meta BrochureMeta) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md").
	Extension() string
}
