package model

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/safuente/web-brochure-creator/core"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// rate-limited calls. Tests override this to avoid real sleeps.
var RetryBaseDelay = 1 * time.Second

const defaultMaxAttempts = 3

// Retry wraps a ModelClient with the pipeline's retry policy:
//
//   - RateLimited: exponential backoff, up to MaxAttempts total attempts
//   - Timeout: one retry
//   - InvalidResponse: one retry
//   - AuthFailure: fatal, surfaced immediately
//
// Cancellation during a backoff wait aborts with the context error.
type Retry struct {
	client      core.ModelClient
	maxAttempts int
	logger      *log.Logger
}

// NewRetry wraps client with the retry policy. maxAttempts <= 0 uses the
// default (3). A nil logger uses the package default.
func NewRetry(client core.ModelClient, maxAttempts int, logger *log.Logger) *Retry {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Retry{client: client, maxAttempts: maxAttempts, logger: logger}
}

// Complete delegates to the wrapped client, retrying per error kind.
func (r *Retry) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	var timeoutRetried, invalidRetried bool

	for attempt := 1; ; attempt++ {
		out, err := r.client.Complete(ctx, prompt, maxTokens)
		if err == nil {
			return out, nil
		}

		var me *core.ModelError
		if !errors.As(err, &me) {
			// Cancellation and non-model failures are not retried.
			return "", err
		}

		switch me.Kind {
		case core.ModelAuthFailure:
			return "", err

		case core.ModelRateLimited:
			if attempt >= r.maxAttempts {
				return "", err
			}
			backoff := RetryBaseDelay << (attempt - 1)
			r.logger.Warn("model rate limited, backing off",
				"attempt", attempt, "max_attempts", r.maxAttempts, "wait", backoff)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}

		case core.ModelTimeout:
			if timeoutRetried {
				return "", err
			}
			timeoutRetried = true
			r.logger.Warn("model call timed out, retrying once")

		case core.ModelInvalidResponse:
			if invalidRetried {
				return "", err
			}
			invalidRetried = true
			r.logger.Warn("model returned unusable response, retrying once", "detail", me.Message)

		default:
			return "", err
		}
	}
}
