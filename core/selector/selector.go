// Package selector implements the Relevance Selector: it asks the model
// which of a landing page's links are worth fetching for a company
// brochure, validates the answer against the discovered link set, and
// falls back to a deterministic keyword heuristic when the model is
// unavailable or returns nothing usable.
package selector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"text/template"

	"github.com/charmbracelet/log"

	"github.com/safuente/web-brochure-creator/core"
	"github.com/safuente/web-brochure-creator/core/extract"
)

// linkPromptTmpl instructs the model to pick brochure-worthy links and
// echo them back as strict JSON. URLs must be copied verbatim from the
// input list; anything else fails the membership check downstream.
var linkPromptTmpl = template.Must(template.New("links").Parse(`You are provided with a list of links found on the webpage of {{.Company}} ({{.PageURL}}).
Decide which of these links are most relevant to include in a brochure about the company, such as links to an About page, a Company page, Careers/Jobs pages, Products/Services pages, or a Contact page.
Do not include Terms of Service, Privacy, legal, login, or social media links.
Select at most {{.MaxLinks}} links.

Respond with JSON only, in exactly this format, copying each url verbatim from the list below:
{
    "links": [
        {"type": "about page", "url": "https://full.url/goes/here/about"},
        {"type": "careers page", "url": "https://another.full.url/careers"}
    ]
}

Links:
{{range .Links}}{{.AnchorText}} - {{.URL}}
{{end}}`))

// fallbackVocabulary drives the deterministic heuristic: a link is kept
// when its anchor text or URL path contains one of these keywords.
var fallbackVocabulary = []string{"about", "career", "job", "product", "service", "team", "contact"}

// fallbackExclusions drop links that match the vocabulary incidentally
// (e.g. "Privacy Policy and Terms of Service").
var fallbackExclusions = []string{"privacy", "legal", "terms", "login", "signin", "cookie"}

// linkResponse mirrors the JSON shape the prompt requests.
type linkResponse struct {
	Links []struct {
		Type string `json:"type"`
		URL  string `json:"url"`
	} `json:"links"`
}

// Selector chooses brochure-worthy links from a landing page.
type Selector struct {
	model     core.ModelClient
	maxLinks  int
	maxTokens int
	logger    *log.Logger
}

// New creates a Selector. maxLinks <= 0 uses 8; a nil logger uses the
// package default.
func New(model core.ModelClient, maxLinks, maxTokens int, logger *log.Logger) *Selector {
	if maxLinks <= 0 {
		maxLinks = 8
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Selector{model: model, maxLinks: maxLinks, maxTokens: maxTokens, logger: logger}
}

// Select returns the subset of the landing page's links judged relevant
// to a brochure. The result is always a subset of landing.Links: model
// responses naming URLs outside the input set are dropped and counted,
// never included. A failed or unusable model call activates the keyword
// fallback; cancellation propagates instead.
func (s *Selector) Select(ctx context.Context, landing *core.PageContent, companyHint string) (*core.RelevanceDecision, error) {
	if len(landing.Links) == 0 {
		return &core.RelevanceDecision{Rationale: "no links discovered"}, nil
	}

	prompt, err := renderPrompt(landing, companyHint, s.maxLinks)
	if err != nil {
		return nil, fmt.Errorf("rendering link prompt: %w", err)
	}

	raw, err := s.model.Complete(ctx, prompt, s.maxTokens)
	if err != nil {
		if errors.Is(err, core.ErrCancelled) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		s.logger.Warn("link selection model call failed, using keyword fallback", "err", err)
		return s.fallback(landing, 0, "model call failed"), nil
	}

	decision, parseErr := s.parseResponse(raw, landing)
	if parseErr != nil {
		s.logger.Warn("link selection response unparseable, using keyword fallback", "err", parseErr)
		return s.fallback(landing, 0, "model response unparseable"), nil
	}
	if len(decision.Selected) == 0 {
		s.logger.Warn("link selection returned no usable entries, using keyword fallback",
			"mismatches", decision.Mismatches)
		return s.fallback(landing, decision.Mismatches, "model returned no usable entries"), nil
	}
	return decision, nil
}

// parseResponse validates the model output against the input link set.
// Entries failing the membership check are dropped, not corrected.
func (s *Selector) parseResponse(raw string, landing *core.PageContent) (*core.RelevanceDecision, error) {
	var parsed linkResponse
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("parsing link selection JSON: %w", err)
	}

	members := make(map[string]core.Link, len(landing.Links))
	for _, l := range landing.Links {
		members[extract.NormalizeURL(l.URL)] = l
	}

	decision := &core.RelevanceDecision{Rationale: "model selection"}
	seen := make(map[string]bool)
	for _, entry := range parsed.Links {
		key := extract.NormalizeURL(strings.TrimSpace(entry.URL))
		link, ok := members[key]
		if !ok {
			decision.Mismatches++
			s.logger.Debug("dropping link not present in input set", "url", entry.URL)
			continue
		}
		if seen[key] || len(decision.Selected) >= s.maxLinks {
			continue
		}
		seen[key] = true
		decision.Selected = append(decision.Selected, core.SelectedLink{
			Link:     link,
			Category: strings.TrimSpace(entry.Type),
		})
	}
	return decision, nil
}

// fallback selects links whose anchor text or URL path matches the fixed
// vocabulary, in first-appearance order, capped at maxLinks. It needs no
// model and guarantees forward progress.
func (s *Selector) fallback(landing *core.PageContent, mismatches int, reason string) *core.RelevanceDecision {
	decision := &core.RelevanceDecision{
		Rationale:    "keyword fallback: " + reason,
		Mismatches:   mismatches,
		FallbackUsed: true,
	}

	for _, link := range landing.Links {
		if len(decision.Selected) >= s.maxLinks {
			break
		}
		keyword := matchKeyword(link)
		if keyword == "" {
			continue
		}
		decision.Selected = append(decision.Selected, core.SelectedLink{
			Link:     link,
			Category: keyword + " page",
		})
	}
	return decision
}

// matchKeyword returns the first vocabulary keyword found in the link's
// anchor text or URL path, or "" when the link is irrelevant or excluded.
func matchKeyword(link core.Link) string {
	haystack := strings.ToLower(link.AnchorText)
	if parsed, err := url.Parse(link.URL); err == nil {
		haystack += " " + strings.ToLower(parsed.Path)
	}

	for _, excluded := range fallbackExclusions {
		if strings.Contains(haystack, excluded) {
			return ""
		}
	}
	for _, keyword := range fallbackVocabulary {
		if strings.Contains(haystack, keyword) {
			return keyword
		}
	}
	return ""
}

// renderPrompt executes the link prompt template for one landing page.
func renderPrompt(landing *core.PageContent, companyHint string, maxLinks int) (string, error) {
	company := companyHint
	if company == "" {
		company = "the company"
	}

	var buf bytes.Buffer
	err := linkPromptTmpl.Execute(&buf, struct {
		Company  string
		PageURL  string
		MaxLinks int
		Links    []core.Link
	}{
		Company:  company,
		PageURL:  landing.SourceURL,
		MaxLinks: maxLinks,
		Links:    landing.Links,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// extractJSON strips markdown code fences and surrounding chatter so
// that a fenced or prefixed JSON object still parses. Model output is
// untrusted input; this is normalization, not repair.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
		raw = strings.TrimSpace(raw)
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
