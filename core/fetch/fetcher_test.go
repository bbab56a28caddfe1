package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safuente/web-brochure-creator/core"
)

func TestFetch_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/html,application/xhtml+xml", r.Header.Get("Accept"))
		w.Write([]byte("<html><body>hi</body></html>"))
	}))
	defer ts.Close()

	f := New(0)
	result, err := f.Fetch(context.Background(), ts.URL)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, result.HTML, "hi")
	assert.Equal(t, ts.URL, result.URL)
}

func TestFetch_InvalidURL(t *testing.T) {
	f := New(0)

	for _, bad := range []string{"", "not-a-url", "ftp://example.com/x", "/relative/path", "example.com"} {
		_, err := f.Fetch(context.Background(), bad)
		assert.ErrorIs(t, err, core.ErrInvalidURL, "input %q", bad)
	}
}

func TestFetch_HTTPStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	f := New(0)
	_, err := f.Fetch(context.Background(), ts.URL)

	var fetchErr *core.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, core.FetchHTTPStatus, fetchErr.Kind)
	assert.Equal(t, http.StatusNotFound, fetchErr.Status)
}

func TestFetch_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := ts.URL
	ts.Close() // connection refused from here on

	f := New(0)
	_, err := f.Fetch(context.Background(), url)

	var fetchErr *core.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, core.FetchUnreachable, fetchErr.Kind)
}

func TestFetch_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()

	f := New(20 * time.Millisecond)
	_, err := f.Fetch(context.Background(), ts.URL)

	var fetchErr *core.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, core.FetchTimeout, fetchErr.Kind)
}

func TestFetch_Cancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	f := New(0)
	_, err := f.Fetch(ctx, ts.URL)
	assert.ErrorIs(t, err, core.ErrCancelled)
}
