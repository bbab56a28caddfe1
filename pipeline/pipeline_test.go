package pipeline

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safuente/web-brochure-creator/core"
)

// fakeFetcher serves canned HTML per URL and records the fetch order.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*core.FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, &core.FetchError{Kind: core.FetchUnreachable, URL: url, Err: err}
	}

	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()

	body, ok := f.pages[url]
	if !ok {
		return nil, &core.FetchError{Kind: core.FetchUnreachable, URL: url}
	}
	return &core.FetchResult{URL: url, StatusCode: 200, HTML: body}, nil
}

func (f *fakeFetcher) fetched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// scriptedModel returns canned responses in call order. The pipeline
// calls the model twice per run: link selection, then synthesis.
type scriptedModel struct {
	next      int
	responses []string
	prompts   []string
}

func (s *scriptedModel) Complete(_ context.Context, prompt string, _ int) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.next >= len(s.responses) {
		return "", &core.ModelError{Kind: core.ModelInvalidResponse, Message: "no scripted response"}
	}
	out := s.responses[s.next]
	s.next++
	return out, nil
}

const landingHTML = `<html><head><title>Acme</title></head><body>
<nav><a href="/about">About Us</a><a href="/careers">Careers</a><a href="/privacy">Privacy</a></nav>
<main><p>Acme builds rockets for interplanetary delivery.</p></main>
</body></html>`

func testConfig() core.Config {
	cfg := core.DefaultConfig()
	cfg.FetchParallelism = 2
	return cfg
}

func TestGenerate_EndToEnd(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://acme.com":         landingHTML,
		"https://acme.com/about":   `<html><body><p>Founded in 2010.</p></body></html>`,
		"https://acme.com/careers": `<html><body><p>We are hiring engineers.</p></body></html>`,
	}}
	model := &scriptedModel{responses: []string{
		`{"links": [
			{"type": "about page", "url": "https://acme.com/about"},
			{"type": "careers page", "url": "https://acme.com/careers"}
		]}`,
		"# Acme\n\nRockets, delivered.",
	}}

	p := New(testConfig(), model, WithFetcher(fetcher))

	brochure, err := p.Generate(context.Background(), "https://acme.com", "Acme")
	require.NoError(t, err)
	assert.Equal(t, "# Acme\n\nRockets, delivered.", brochure.Markdown)

	assert.ElementsMatch(t,
		[]string{"https://acme.com", "https://acme.com/about", "https://acme.com/careers"},
		fetcher.fetched())

	// The synthesis prompt carries content from the landing page and the
	// selected sub-pages.
	require.Len(t, model.prompts, 2)
	assert.Contains(t, model.prompts[1], "interplanetary delivery")
	assert.Contains(t, model.prompts[1], "Founded in 2010")
	assert.Contains(t, model.prompts[1], "We are hiring engineers")
}

func TestGenerate_DerivesCompanyName(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://www.acme.com": landingHTML,
	}}
	model := &scriptedModel{responses: []string{
		`{"links": []}`,
		"# Acme",
	}}

	p := New(testConfig(), model, WithFetcher(fetcher))

	_, err := p.Generate(context.Background(), "https://www.acme.com", "")
	require.NoError(t, err)

	// The derived name flows into the selection prompt.
	require.NotEmpty(t, model.prompts)
	assert.Contains(t, model.prompts[0], "Acme")
}

func TestGenerate_InvalidURL(t *testing.T) {
	p := New(testConfig(), &scriptedModel{}, WithFetcher(&fakeFetcher{}))

	for _, raw := range []string{"", "not a url", "ftp://example.com", "/relative"} {
		_, err := p.Generate(context.Background(), raw, "")
		assert.ErrorIs(t, err, core.ErrInvalidURL, "url %q", raw)
	}
}

func TestGenerate_LandingFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{}}
	p := New(testConfig(), &scriptedModel{}, WithFetcher(fetcher))

	_, err := p.Generate(context.Background(), "https://down.example.com", "")
	require.Error(t, err)

	var fe *core.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, core.FetchUnreachable, fe.Kind)
}

func TestGenerate_EmptyLandingPage(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://empty.example.com": `<html><body></body></html>`,
	}}
	model := &scriptedModel{responses: []string{`{"links": []}`}}

	p := New(testConfig(), model, WithFetcher(fetcher))

	_, err := p.Generate(context.Background(), "https://empty.example.com", "")
	assert.ErrorIs(t, err, core.ErrNoContent)
}

func TestGenerate_SubPageFailuresTolerated(t *testing.T) {
	// Only the landing page resolves; selected sub-pages are unreachable.
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://acme.com": landingHTML,
	}}
	model := &scriptedModel{responses: []string{
		`{"links": [{"type": "about page", "url": "https://acme.com/about"}]}`,
		"# Acme\n\nStill a brochure.",
	}}

	p := New(testConfig(), model, WithFetcher(fetcher))

	brochure, err := p.Generate(context.Background(), "https://acme.com", "Acme")
	require.NoError(t, err)
	assert.Equal(t, "# Acme\n\nStill a brochure.", brochure.Markdown)
}

func TestGenerate_Cancelled(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://acme.com": landingHTML,
	}}
	p := New(testConfig(), &scriptedModel{}, WithFetcher(fetcher))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	brochure, err := p.Generate(ctx, "https://acme.com", "Acme")
	assert.Nil(t, brochure, "no partial brochure on cancellation")
	assert.ErrorIs(t, err, core.ErrCancelled)
}

func TestCompanyNameFromURL(t *testing.T) {
	tests := []struct {
		rawURL string
		want   string
	}{
		{"https://www.acme-corp.com/products", "Acme-corp"},
		{"https://huggingface.co", "Huggingface"},
		{"http://localhost:8080", "Localhost"},
		{"https://www.example.co.uk", "Example"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompanyNameFromURL(tt.rawURL), tt.rawURL)
	}
}
