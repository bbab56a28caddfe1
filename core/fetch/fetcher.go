// Package fetch implements the Fetcher interface.
// It performs HTTP GET requests with sensible defaults for web scraping
// and maps transport failures onto the core error taxonomy. Retries, if
// any, belong to the caller.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/safuente/web-brochure-creator/core"
)

const (
	defaultTimeout   = 20 * time.Second
	defaultUserAgent = "brochure/1.0 (https://github.com/safuente/web-brochure-creator)"
)

// HTTPFetcher fetches web pages via HTTP.
type HTTPFetcher struct {
	client *http.Client
}

// New creates an HTTPFetcher. A timeout of 0 uses the default.
func New(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// ValidateURL checks that rawURL is a syntactically valid absolute
// http(s) URL. Returns core.ErrInvalidURL otherwise.
func ValidateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("%w: %s", core.ErrInvalidURL, rawURL)
	}
	return nil
}

// Fetch retrieves the HTML content of the given URL. One outbound
// request; failures are classified as timeout, unreachable, or HTTP
// status errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*core.FetchResult, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrInvalidURL, rawURL)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &core.FetchError{Kind: core.FetchHTTPStatus, URL: rawURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(ctx, rawURL, err)
	}

	return &core.FetchResult{
		URL:        rawURL,
		StatusCode: resp.StatusCode,
		HTML:       string(body),
	}, nil
}

// classifyTransportError maps a transport-level error onto the taxonomy.
// Caller cancellation wins over everything else.
func classifyTransportError(ctx context.Context, rawURL string, err error) error {
	if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("%w: %v", core.ErrCancelled, err)
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &core.FetchError{Kind: core.FetchTimeout, URL: rawURL, Err: err}
	}
	return &core.FetchError{Kind: core.FetchUnreachable, URL: rawURL, Err: err}
}
