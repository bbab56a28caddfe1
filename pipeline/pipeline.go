// Package pipeline wires the brochure stages into one callable unit:
// fetch landing page → extract links → select relevant links → aggregate
// content → synthesize brochure. Generate is a pure pipeline entry point
// invocable from any caller (CLI, tests, a future server) independently
// of UI concerns.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/safuente/web-brochure-creator/core"
	"github.com/safuente/web-brochure-creator/core/aggregate"
	"github.com/safuente/web-brochure-creator/core/extract"
	"github.com/safuente/web-brochure-creator/core/fetch"
	"github.com/safuente/web-brochure-creator/core/selector"
	"github.com/safuente/web-brochure-creator/core/synthesize"
)

// Pipeline generates company brochures from website URLs.
type Pipeline struct {
	cfg       core.Config
	fetcher   core.Fetcher
	extractor core.Extractor
	model     core.ModelClient
	logger    *log.Logger

	selector    *selector.Selector
	aggregator  *aggregate.Aggregator
	synthesizer *synthesize.Synthesizer
}

// Option customizes a Pipeline, mainly for tests.
type Option func(*Pipeline)

// WithFetcher substitutes the page fetcher.
func WithFetcher(f core.Fetcher) Option {
	return func(p *Pipeline) { p.fetcher = f }
}

// WithExtractor substitutes the link extractor.
func WithExtractor(e core.Extractor) Option {
	return func(p *Pipeline) { p.extractor = e }
}

// WithLogger substitutes the logger shared by all stages.
func WithLogger(l *log.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New assembles a Pipeline around the given model client. The model
// client should already carry its retry policy (see model.NewRetry); the
// pipeline does not retry model calls itself.
func New(cfg core.Config, model core.ModelClient, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:    cfg,
		model:  model,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.fetcher == nil {
		p.fetcher = fetch.New(cfg.FetchTimeout)
	}
	if p.extractor == nil {
		p.extractor = extract.New()
	}

	p.selector = selector.New(model, cfg.MaxLinks, cfg.SelectorMaxTokens, p.logger)
	p.aggregator = aggregate.New(p.fetcher, p.extractor, cfg, p.logger)
	p.synthesizer = synthesize.New(model, cfg.SynthesisMaxTokens, cfg.BrochureTone, p.logger)
	return p
}

// Generate produces a brochure for the company behind rawURL. An empty
// companyName is derived from the URL's hostname. Terminal failures are
// tagged per the core taxonomy: ErrInvalidURL, FetchError (landing
// page), ErrNoContent, SynthesisError, ErrCancelled. A partial brochure
// is never returned.
func (p *Pipeline) Generate(ctx context.Context, rawURL, companyName string) (*core.Brochure, error) {
	if err := fetch.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	if companyName == "" {
		companyName = CompanyNameFromURL(rawURL)
	}

	p.logger.Info("generating brochure", "company", companyName, "url", rawURL)

	result, err := p.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, normalizeCancel(ctx, fmt.Errorf("fetching landing page: %w", err))
	}

	landing, err := p.extractor.Extract(result.HTML, rawURL)
	if err != nil {
		return nil, fmt.Errorf("extracting landing page: %w", err)
	}
	p.logger.Debug("landing page extracted",
		"title", landing.Title, "links", len(landing.Links), "chars", len(landing.Text))

	decision, err := p.selector.Select(ctx, landing, companyName)
	if err != nil {
		return nil, normalizeCancel(ctx, fmt.Errorf("selecting links: %w", err))
	}
	p.logger.Info("links selected",
		"count", len(decision.Selected), "fallback", decision.FallbackUsed, "mismatches", decision.Mismatches)

	doc, err := p.aggregator.Aggregate(ctx, companyName, landing, decision.Selected)
	if err != nil {
		return nil, normalizeCancel(ctx, err)
	}
	p.logger.Debug("content aggregated",
		"sections", len(doc.Sections), "omitted", len(doc.Omitted), "chars", doc.TotalChars())

	brochure, err := p.synthesizer.Synthesize(ctx, doc)
	if err != nil {
		return nil, normalizeCancel(ctx, err)
	}

	return brochure, nil
}

// CompanyNameFromURL derives a display name from a URL's hostname:
// "https://www.acme-corp.com/x" → "Acme-corp".
func CompanyNameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}

	host := parsed.Hostname()
	host = strings.TrimPrefix(host, "www.")
	if i := strings.Index(host, "."); i > 0 {
		host = host[:i]
	}
	if host == "" {
		return parsed.Hostname()
	}
	return strings.ToUpper(host[:1]) + host[1:]
}

// normalizeCancel folds context cancellation into the single Cancelled
// outcome so callers see one tag regardless of which stage observed it.
func normalizeCancel(ctx context.Context, err error) error {
	if errors.Is(err, core.ErrCancelled) {
		return err
	}
	if errors.Is(err, context.Canceled) || (ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled)) {
		return fmt.Errorf("%w: %v", core.ErrCancelled, err)
	}
	return err
}
