// Package core — error taxonomy.
// Failures are tagged so the caller can distinguish "site unreachable"
// from "model unavailable" from "nothing relevant found". Sub-page
// failures during aggregation are local (logged and skipped); the
// sentinels and types here mark terminal outcomes.
package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for terminal pipeline outcomes.
var (
	// ErrInvalidURL marks input that is not a syntactically valid
	// absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrNoContent marks a request where the landing page yielded no
	// text and no sub-page succeeded.
	ErrNoContent = errors.New("no content extracted")

	// ErrCancelled marks a pipeline aborted by the caller. It is never
	// accompanied by a partial brochure.
	ErrCancelled = errors.New("cancelled")

	// ErrNotHTML marks input the extractor cannot treat as HTML at all.
	// Malformed-but-partial HTML is extracted best-effort, never an error.
	ErrNotHTML = errors.New("input is not HTML")
)

// FetchErrorKind classifies fetch failures.
type FetchErrorKind string

const (
	FetchTimeout     FetchErrorKind = "timeout"
	FetchUnreachable FetchErrorKind = "unreachable"
	FetchHTTPStatus  FetchErrorKind = "http_status"
)

// FetchError reports a failed page fetch. Status is set only for
// FetchHTTPStatus.
type FetchError struct {
	Kind   FetchErrorKind
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchHTTPStatus:
		return fmt.Sprintf("fetching %s: unexpected status %d", e.URL, e.Status)
	case FetchTimeout:
		return fmt.Sprintf("fetching %s: timed out", e.URL)
	default:
		return fmt.Sprintf("fetching %s: unreachable: %v", e.URL, e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// ModelErrorKind classifies model-client failures, which drive the retry
// policy layered on top of the client.
type ModelErrorKind string

const (
	ModelRateLimited     ModelErrorKind = "rate_limited"
	ModelTimeout         ModelErrorKind = "timeout"
	ModelInvalidResponse ModelErrorKind = "invalid_response"
	ModelAuthFailure     ModelErrorKind = "auth_failure"
)

// ModelError reports a failed model call.
type ModelError struct {
	Kind    ModelErrorKind
	Message string
	Err     error
}

func (e *ModelError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("model: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("model: %s", e.Kind)
}

func (e *ModelError) Unwrap() error { return e.Err }

// ModelErrorOfKind reports whether err carries a ModelError of the given kind.
func ModelErrorOfKind(err error, kind ModelErrorKind) bool {
	var me *ModelError
	return errors.As(err, &me) && me.Kind == kind
}

// SynthesisError marks a brochure synthesis that failed after the model
// client's retry policy was exhausted.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesizing brochure: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }
