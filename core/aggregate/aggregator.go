// Package aggregate implements the Content Aggregator: it fetches the
// selected sub-pages with bounded parallelism and concatenates their
// text, landing page first, under per-page and total character budgets.
// A single bad sub-page never fails the aggregation; it is logged and
// skipped.
package aggregate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/safuente/web-brochure-creator/core"
)

// truncationMarker signals that a section was cut at a character cap.
// It is appended inside the cap so budget guarantees hold exactly.
const truncationMarker = "\n\n[content truncated]"

// Aggregator builds the bounded document fed to brochure synthesis.
type Aggregator struct {
	fetcher     core.Fetcher
	extractor   core.Extractor
	perPage     int
	total       int
	parallelism int
	logger      *log.Logger
}

// New creates an Aggregator. Non-positive caps use the defaults from
// core.DefaultConfig; a nil logger uses the package default.
func New(fetcher core.Fetcher, extractor core.Extractor, cfg core.Config, logger *log.Logger) *Aggregator {
	defaults := core.DefaultConfig()
	if cfg.PerPageChars <= 0 {
		cfg.PerPageChars = defaults.PerPageChars
	}
	if cfg.TotalChars <= 0 {
		cfg.TotalChars = defaults.TotalChars
	}
	if cfg.FetchParallelism <= 0 {
		cfg.FetchParallelism = defaults.FetchParallelism
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Aggregator{
		fetcher:     fetcher,
		extractor:   extractor,
		perPage:     cfg.PerPageChars,
		total:       cfg.TotalChars,
		parallelism: cfg.FetchParallelism,
		logger:      logger,
	}
}

// Aggregate fetches each selected link and assembles the document.
// Section order is the selection order regardless of fetch completion
// order. It fails with core.ErrNoContent only when the landing page
// yields no text and no sub-page succeeds, and with core.ErrCancelled
// when the context is cancelled mid-flight.
func (a *Aggregator) Aggregate(ctx context.Context, companyName string, landing *core.PageContent, selected []core.SelectedLink) (*core.AggregatedDocument, error) {
	pages := a.fetchAll(ctx, selected)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: aggregation aborted", core.ErrCancelled)
	}

	doc := &core.AggregatedDocument{CompanyName: companyName}
	budget := a.total

	appendSection := func(sourceURL, category, text string) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}

		text, truncated := truncate(text, a.perPage)
		if len(text) > budget {
			// First section gets squeezed into whatever budget exists;
			// later ones are recorded as omitted instead. Omission is
			// per page, not stop-at-first-overflow: a smaller page after
			// an omitted one may still fit.
			if len(doc.Sections) > 0 {
				doc.Omitted = append(doc.Omitted, sourceURL)
				a.logger.Debug("omitting page, total character budget exhausted", "url", sourceURL)
				return
			}
			text, _ = truncate(text, budget)
			truncated = true
		}

		budget -= len(text)
		doc.Sections = append(doc.Sections, core.DocumentSection{
			SourceURL: sourceURL,
			Category:  category,
			Text:      text,
			Truncated: truncated,
		})
	}

	appendSection(landing.SourceURL, "landing page", landing.Text)

	for i, page := range pages {
		if page == nil {
			continue // fetch or extract failed, already logged
		}
		appendSection(page.SourceURL, selected[i].Category, page.Text)
	}

	if len(doc.Sections) == 0 {
		return nil, core.ErrNoContent
	}
	return doc, nil
}

// fetchAll retrieves the selected pages with bounded parallelism.
// Results are written into an index-addressed slice so ordering is
// preserved no matter when each fetch completes. Failed pages stay nil.
func (a *Aggregator) fetchAll(ctx context.Context, selected []core.SelectedLink) []*core.PageContent {
	pages := make([]*core.PageContent, len(selected))
	sem := make(chan struct{}, a.parallelism)
	var wg sync.WaitGroup

	for i, link := range selected {
		wg.Add(1)
		go func(i int, link core.SelectedLink) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}
			if ctx.Err() != nil {
				return
			}

			result, err := a.fetcher.Fetch(ctx, link.URL)
			if err != nil {
				a.logger.Warn("skipping sub-page, fetch failed", "url", link.URL, "err", err)
				return
			}
			content, err := a.extractor.Extract(result.HTML, link.URL)
			if err != nil {
				a.logger.Warn("skipping sub-page, extraction failed", "url", link.URL, "err", err)
				return
			}
			pages[i] = content
		}(i, link)
	}

	wg.Wait()
	return pages
}

// truncate cuts text at limit, appending the truncation marker inside
// the limit so the result is never longer than the limit itself. The
// cut backs up to a rune boundary; a mid-rune cut would feed invalid
// UTF-8 into the prompt.
func truncate(text string, limit int) (string, bool) {
	if len(text) <= limit {
		return text, false
	}
	if limit <= len(truncationMarker) {
		return truncationMarker[:limit], true
	}

	cut := limit - len(truncationMarker)
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + truncationMarker, true
}
