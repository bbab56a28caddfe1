// Package synthesize implements the Brochure Synthesizer: one model call
// that turns the aggregated document into brochure Markdown. The model
// is instructed to use only the supplied material; that instruction is
// advisory, and the output is returned as-is apart from stripping
// response wrapper artifacts.
package synthesize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/charmbracelet/log"

	"github.com/safuente/web-brochure-creator/core"
)

// Tone values accepted by New.
const (
	ToneProfessional = "professional"
	ToneHumorous     = "humorous"
)

var toneDescriptions = map[string]string{
	ToneProfessional: "short, professional, engaging",
	ToneHumorous:     "short, humorous, entertaining, jokey",
}

// brochurePromptTmpl combines the synthesis instructions and the
// aggregated document into a single prompt.
var brochurePromptTmpl = template.Must(template.New("brochure").Parse(`You are an assistant that analyzes the contents of several relevant pages from a company website and creates a {{.Tone}} brochure about the company for prospective customers, investors, and recruits.
Respond in markdown with headings and bullet points. Include details of company culture, customers, and careers/jobs if you have the information.
Use only the page contents supplied below as source material; do not invent facts that are not present in them.

You are looking at a company called: {{.Company}}
Here are the contents of its landing page and other relevant pages; use this information to build the brochure.

{{range .Sections}}## {{.Label}}
Source: {{.SourceURL}}

{{.Text}}

{{end}}`))

// Synthesizer produces the final brochure from an aggregated document.
type Synthesizer struct {
	model     core.ModelClient
	maxTokens int
	tone      string
	logger    *log.Logger
}

// New creates a Synthesizer. Unknown tones fall back to professional; a
// nil logger uses the package default.
func New(model core.ModelClient, maxTokens int, tone string, logger *log.Logger) *Synthesizer {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	if _, ok := toneDescriptions[tone]; !ok {
		tone = ToneProfessional
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Synthesizer{model: model, maxTokens: maxTokens, tone: tone, logger: logger}
}

// Synthesize prompts the model with the aggregated document and returns
// the brochure. Model failure after the client's retry policy is
// surfaced as SynthesisError; cancellation propagates unchanged. A
// failure is never converted into an empty or placeholder brochure.
func (s *Synthesizer) Synthesize(ctx context.Context, doc *core.AggregatedDocument) (*core.Brochure, error) {
	prompt, err := renderPrompt(doc, toneDescriptions[s.tone])
	if err != nil {
		return nil, fmt.Errorf("rendering brochure prompt: %w", err)
	}

	s.logger.Debug("synthesizing brochure",
		"company", doc.CompanyName, "sections", len(doc.Sections), "chars", doc.TotalChars())

	raw, err := s.model.Complete(ctx, prompt, s.maxTokens)
	if err != nil {
		if errors.Is(err, core.ErrCancelled) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &core.SynthesisError{Err: err}
	}

	markdown := stripWrapper(raw)
	if markdown == "" {
		return nil, &core.SynthesisError{Err: fmt.Errorf("model returned an empty brochure")}
	}

	return &core.Brochure{Markdown: markdown}, nil
}

// renderPrompt executes the brochure template against the document.
func renderPrompt(doc *core.AggregatedDocument, tone string) (string, error) {
	type section struct {
		Label     string
		SourceURL string
		Text      string
	}

	sections := make([]section, 0, len(doc.Sections))
	for _, s := range doc.Sections {
		label := s.Category
		if label == "" {
			label = "Relevant page"
		}
		sections = append(sections, section{
			Label:     capitalize(label),
			SourceURL: s.SourceURL,
			Text:      s.Text,
		})
	}

	var buf bytes.Buffer
	err := brochurePromptTmpl.Execute(&buf, struct {
		Tone     string
		Company  string
		Sections []section
	}{
		Tone:     tone,
		Company:  doc.CompanyName,
		Sections: sections,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// stripWrapper removes code fences the model sometimes wraps the whole
// brochure in, plus surrounding whitespace. The markdown itself is left
// untouched.
func stripWrapper(raw string) string {
	out := strings.TrimSpace(raw)
	if strings.HasPrefix(out, "```") && strings.HasSuffix(out, "```") {
		out = strings.TrimPrefix(out, "```markdown")
		out = strings.TrimPrefix(out, "```md")
		out = strings.TrimPrefix(out, "```")
		out = strings.TrimSuffix(strings.TrimSpace(out), "```")
		out = strings.TrimSpace(out)
	}
	return out
}

// capitalize upper-cases the first byte of a label for use as a heading.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
