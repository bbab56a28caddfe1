package model

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safuente/web-brochure-creator/core"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*OpenAI, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	client, err := NewOpenAI(OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: ts.URL,
		Model:   "gpt-4o-mini",
	})
	require.NoError(t, err)
	return client, ts
}

func completionBody(content string) string {
	return fmt.Sprintf(`{"choices": [{"message": {"content": %q}, "finish_reason": "stop"}]}`, content)
}

func TestNewOpenAI_RequiresAPIKey(t *testing.T) {
	_, err := NewOpenAI(OpenAIConfig{})
	assert.Error(t, err)
}

func TestComplete_Success(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		assert.Equal(t, 128, req.MaxTokens)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		fmt.Fprint(w, completionBody("hello there"))
	})

	out, err := client.Complete(context.Background(), "say hello", 128)
	require.NoError(t, err)
	assert.Equal(t, "hello there", out)
}

func TestComplete_RateLimited(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Complete(context.Background(), "p", 16)
	assert.True(t, core.ModelErrorOfKind(err, core.ModelRateLimited))
}

func TestComplete_AuthFailure(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
			fmt.Fprint(w, `{"error": {"message": "bad key", "type": "invalid_request_error"}}`)
		})

		_, err := client.Complete(context.Background(), "p", 16)
		assert.True(t, core.ModelErrorOfKind(err, core.ModelAuthFailure), "status %d", status)

		var me *core.ModelError
		require.ErrorAs(t, err, &me)
		assert.Equal(t, "bad key", me.Message)
	}
}

func TestComplete_MalformedBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "not json at all")
	})

	_, err := client.Complete(context.Background(), "p", 16)
	assert.True(t, core.ModelErrorOfKind(err, core.ModelInvalidResponse))
}

func TestComplete_EmptyCompletion(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"choices": []}`)
	})

	_, err := client.Complete(context.Background(), "p", 16)
	assert.True(t, core.ModelErrorOfKind(err, core.ModelInvalidResponse))
}

func TestComplete_ServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Complete(context.Background(), "p", 16)
	assert.True(t, core.ModelErrorOfKind(err, core.ModelInvalidResponse))
}

func TestComplete_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()

	client, err := NewOpenAI(OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: ts.URL,
		Timeout: 20 * time.Millisecond,
	})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "p", 16)
	assert.True(t, core.ModelErrorOfKind(err, core.ModelTimeout))
}

func TestComplete_Cancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()

	client, err := NewOpenAI(OpenAIConfig{APIKey: "test-key", BaseURL: ts.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err = client.Complete(ctx, "p", 16)
	assert.ErrorIs(t, err, core.ErrCancelled)
}
