// Package extract implements the Extractor interface.
// It turns one fetched page into brochure raw material by:
//  1. Harvesting every anchor (resolved, filtered, deduplicated)
//  2. Removing noise elements (nav, footer, scripts, forms, etc.)
//  3. Rendering the best content container (<main>, <article>, or
//     <body>) as Markdown text
//
// Links are harvested before noise removal: About and Careers links
// usually live in exactly the nav and footer elements the text pass
// throws away.
package extract

import (
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/safuente/web-brochure-creator/core"
	"github.com/safuente/web-brochure-creator/core/normalize"
)

// noiseSelectors are HTML elements removed before text extraction.
// These contribute no meaningful content to the page text.
var noiseSelectors = []string{
	"script", "style", "noscript",
	"nav", "footer", "header",
	"img", "picture", "figure", "figcaption",
	"iframe", "video", "audio",
	"svg", "canvas",
	"form", "button", "input", "select", "textarea",
	".sidebar", ".menu", ".navigation", ".ads", ".advertisement",
}

// staticExtensions are link targets that can never carry page content.
var staticExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true, ".ico": true, ".bmp": true,
	".css": true, ".js": true, ".mjs": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".mp4": true, ".webm": true, ".mp3": true, ".wav": true,
	".zip": true, ".tar": true, ".gz": true,
	".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
}

// HTMLExtractor extracts text and links from raw HTML.
type HTMLExtractor struct{}

// New creates an HTMLExtractor.
func New() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Extract parses raw HTML fetched from baseURL and returns the page's
// title, Markdown text, and deduplicated link set in first-seen order.
// It is a pure transformation: identical input yields identical output.
// Only fundamentally non-HTML input is an error; malformed markup is
// extracted best-effort.
func (e *HTMLExtractor) Extract(html string, baseURL string) (*core.PageContent, error) {
	if !looksLikeHTML(html) {
		return nil, core.ErrNotHTML
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, core.ErrNotHTML
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	links := harvestLinks(doc, baseURL)

	// Remove noise, then pick the best content container in priority
	// order: <main> is the most semantically specific, then <article>,
	// then <body>.
	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	var content *goquery.Selection
	for _, tag := range []string{"main", "article", "body"} {
		sel := doc.Find(tag)
		if sel.Length() > 0 {
			content = sel.First()
			break
		}
	}

	var text string
	if content != nil {
		text = renderText(content)
	}

	return &core.PageContent{
		SourceURL: baseURL,
		Title:     title,
		Text:      text,
		Links:     links,
	}, nil
}

// renderText converts the content selection to Markdown, falling back to
// whitespace-collapsed plain text if conversion fails.
func renderText(content *goquery.Selection) string {
	fragment, err := goquery.OuterHtml(content)
	if err == nil {
		if md, mdErr := normalize.ToMarkdown(fragment); mdErr == nil {
			return strings.TrimSpace(md)
		}
	}
	return collapseWhitespace(content.Text())
}

// harvestLinks extracts all anchors, resolves relative hrefs against the
// base URL, filters non-http(s) and asset targets, and deduplicates by
// normalized URL preserving first-seen order.
func harvestLinks(doc *goquery.Document, baseURL string) []core.Link {
	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	seen := make(map[string]bool)
	var links []core.Link

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists {
			return
		}

		resolved := resolveURL(strings.TrimSpace(href), base)
		if resolved == "" || isStaticAsset(resolved) {
			return
		}

		key := NormalizeURL(resolved)
		if seen[key] {
			return
		}
		seen[key] = true

		links = append(links, core.Link{
			URL:        key,
			AnchorText: collapseWhitespace(s.Text()),
		})
	})

	return links
}

// resolveURL resolves a potentially relative href against a base and
// returns "" for anything that is not a fetchable http(s) page link.
func resolveURL(href string, base *url.URL) string {
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	// Skip mailto, javascript, tel, data, etc. before parsing.
	if i := strings.Index(href, ":"); i >= 0 {
		scheme := strings.ToLower(href[:i])
		if scheme != "http" && scheme != "https" && !strings.Contains(scheme, "/") {
			return ""
		}
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	if !parsed.IsAbs() {
		if base == nil {
			return ""
		}
		parsed = base.ResolveReference(parsed)
	}

	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return ""
	}
	return parsed.String()
}

// NormalizeURL strips fragments and trailing slashes so that variants of
// the same page compare equal. Query strings are preserved: they can
// address distinct pages. Exported because the relevance selector uses
// the same normalization for its membership check.
func NormalizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	parsed.Fragment = ""
	if parsed.Path != "/" {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}
	return parsed.String()
}

// isStaticAsset reports whether a URL points at an image, stylesheet, or
// other non-page asset.
func isStaticAsset(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(parsed.Path))
	return staticExtensions[ext]
}

// looksLikeHTML is a cheap sniff separating markup from binary or plain
// payloads. Anything with a tag-ish angle bracket is given to the parser.
func looksLikeHTML(s string) bool {
	if strings.ContainsRune(s, '\x00') {
		return false
	}
	return strings.Contains(s, "<")
}

// collapseWhitespace joins all whitespace runs into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
