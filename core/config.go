package core

import "time"

// Config holds the pipeline tunables. The original tool hard-coded most
// of these; here they are explicit so callers (CLI, tests) can override
// them without touching pipeline logic.
type Config struct {
	// MaxLinks is the maximum number of sub-pages the relevance selector
	// may choose (default 8).
	MaxLinks int

	// PerPageChars caps each page's contribution to the aggregated
	// document; longer texts are cut at the cap with an explicit
	// truncation marker (default 6000).
	PerPageChars int

	// TotalChars caps the whole aggregated document. Pages are appended
	// in selection order until the budget runs out; the rest are
	// recorded as omitted (default 20000).
	TotalChars int

	// FetchTimeout is the per-request HTTP timeout (default 20s).
	FetchTimeout time.Duration

	// FetchParallelism bounds concurrent sub-page fetches during
	// aggregation (default 4).
	FetchParallelism int

	// ModelTimeout is the per-call timeout for the model client
	// (default 120s).
	ModelTimeout time.Duration

	// ModelMaxAttempts is the attempt budget for rate-limited model
	// calls, initial call included (default 3).
	ModelMaxAttempts int

	// SelectorMaxTokens / SynthesisMaxTokens bound completion sizes for
	// the two model calls.
	SelectorMaxTokens  int
	SynthesisMaxTokens int

	// BrochureTone selects the synthesis voice: "professional" or
	// "humorous" (default professional).
	BrochureTone string
}

// DefaultConfig returns a Config with the documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxLinks:           8,
		PerPageChars:       6000,
		TotalChars:         20000,
		FetchTimeout:       20 * time.Second,
		FetchParallelism:   4,
		ModelTimeout:       120 * time.Second,
		ModelMaxAttempts:   3,
		SelectorMaxTokens:  1024,
		SynthesisMaxTokens: 4096,
		BrochureTone:       "professional",
	}
}
