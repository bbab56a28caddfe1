// Package cmd — generate command.
// Orchestrates the full pipeline for one URL: fetch → select → aggregate
// → synthesize, then print the brochure to stdout and optionally save it
// as Markdown or PDF.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/safuente/web-brochure-creator/core"
	"github.com/safuente/web-brochure-creator/core/model"
	"github.com/safuente/web-brochure-creator/core/output"
	"github.com/safuente/web-brochure-creator/core/render"
	"github.com/safuente/web-brochure-creator/pipeline"
)

// Flag variables.
var (
	flagName      string
	flagPDF       bool
	flagMarkdown  bool
	flagOutputDir string
	flagModel     string
	flagTone      string
)

var generateCmd = &cobra.Command{
	Use:   "generate <url>",
	Short: "Generate a brochure for the company behind the given URL",
	Long: `Generate fetches the landing page, asks the model which discovered links
belong in a company brochure, aggregates the selected pages' content, and
synthesizes a markdown brochure.

Examples:
  brochure generate https://example.com
  brochure generate https://example.com --name "Example Inc." --markdown
  brochure generate https://example.com --pdf --output_dir ./out`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&flagName, "name", "", "Company display name (default: derived from the hostname)")

	// Save formats (mutually exclusive); without either, the brochure is
	// only printed to stdout.
	generateCmd.Flags().BoolVar(&flagPDF, "pdf", false, "Also save the brochure as PDF")
	generateCmd.Flags().BoolVar(&flagMarkdown, "markdown", false, "Also save the brochure as Markdown")
	generateCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory for saved brochures (default: current directory)")

	generateCmd.Flags().StringVar(&flagModel, "model", "", "Completion model (default: gpt-4o-mini)")
	generateCmd.Flags().StringVar(&flagTone, "tone", "", "Brochure tone: professional or humorous")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	rawURL := args[0]

	if flagPDF && flagMarkdown {
		return fmt.Errorf("--pdf and --markdown are mutually exclusive")
	}

	cfg := loadConfig()
	logger := log.Default()

	apiKey := viper.GetString("openai_api_key")
	if apiKey == "" {
		return fmt.Errorf("no API key configured: set openai_api_key in brochure.yaml or BROCHURE_OPENAI_API_KEY")
	}

	client, err := model.NewOpenAI(model.OpenAIConfig{
		APIKey:      apiKey,
		BaseURL:     viper.GetString("openai_base_url"),
		Model:       modelName(),
		Temperature: viper.GetFloat64("temperature"),
		Timeout:     cfg.ModelTimeout,
	})
	if err != nil {
		return err
	}

	p := pipeline.New(cfg, model.NewRetry(client, cfg.ModelMaxAttempts, logger), pipeline.WithLogger(logger))

	// Ctrl-C cancels the whole pipeline; no partial brochure is printed.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	brochure, err := p.Generate(ctx, rawURL, flagName)
	if err != nil {
		return describeFailure(err)
	}

	fmt.Fprintln(os.Stdout, brochure.Markdown)

	if flagPDF || flagMarkdown {
		return saveBrochure(brochure, rawURL)
	}
	return nil
}

// saveBrochure renders the brochure in the requested format and writes
// it under the output directory.
func saveBrochure(brochure *core.Brochure, rawURL string) error {
	var renderer core.Renderer
	if flagPDF {
		renderer = render.NewPDFRenderer()
	} else {
		renderer = render.NewMarkdownRenderer()
	}

	company := flagName
	if company == "" {
		company = pipeline.CompanyNameFromURL(rawURL)
	}

	data, err := renderer.Render(brochure.Markdown, core.BrochureMeta{
		Company:     company,
		SourceURL:   rawURL,
		GeneratedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("rendering brochure: %w", err)
	}

	writer, err := output.New(flagOutputDir)
	if err != nil {
		return err
	}
	path, err := writer.Write(company, rawURL, data, renderer.Extension())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ Saved: %s\n", path)
	return nil
}

// loadConfig builds the pipeline configuration from viper, starting from
// the documented defaults.
func loadConfig() core.Config {
	cfg := core.DefaultConfig()

	viper.SetDefault("max_links", cfg.MaxLinks)
	viper.SetDefault("per_page_chars", cfg.PerPageChars)
	viper.SetDefault("total_chars", cfg.TotalChars)
	viper.SetDefault("fetch_timeout", cfg.FetchTimeout)
	viper.SetDefault("fetch_parallelism", cfg.FetchParallelism)
	viper.SetDefault("model_timeout", cfg.ModelTimeout)
	viper.SetDefault("model_max_attempts", cfg.ModelMaxAttempts)
	viper.SetDefault("selector_max_tokens", cfg.SelectorMaxTokens)
	viper.SetDefault("synthesis_max_tokens", cfg.SynthesisMaxTokens)
	viper.SetDefault("brochure_tone", cfg.BrochureTone)

	cfg.MaxLinks = viper.GetInt("max_links")
	cfg.PerPageChars = viper.GetInt("per_page_chars")
	cfg.TotalChars = viper.GetInt("total_chars")
	cfg.FetchTimeout = viper.GetDuration("fetch_timeout")
	cfg.FetchParallelism = viper.GetInt("fetch_parallelism")
	cfg.ModelTimeout = viper.GetDuration("model_timeout")
	cfg.ModelMaxAttempts = viper.GetInt("model_max_attempts")
	cfg.SelectorMaxTokens = viper.GetInt("selector_max_tokens")
	cfg.SynthesisMaxTokens = viper.GetInt("synthesis_max_tokens")
	cfg.BrochureTone = viper.GetString("brochure_tone")

	if flagTone != "" {
		cfg.BrochureTone = flagTone
	}
	return cfg
}

// modelName resolves the completion model from flag or config.
func modelName() string {
	if flagModel != "" {
		return flagModel
	}
	if m := viper.GetString("model"); m != "" {
		return m
	}
	return model.DefaultModel
}

// describeFailure turns taxonomy errors into actionable messages so the
// user can tell an unreachable site from a model outage from a site with
// nothing to say.
func describeFailure(err error) error {
	var fetchErr *core.FetchError
	var synthErr *core.SynthesisError

	switch {
	case errors.Is(err, core.ErrCancelled):
		return fmt.Errorf("cancelled before a brochure was produced")
	case errors.Is(err, core.ErrInvalidURL):
		return fmt.Errorf("%w (expected an absolute http(s) URL, e.g. https://example.com)", err)
	case errors.Is(err, core.ErrNoContent):
		return fmt.Errorf("the site yielded no usable content: %w", err)
	case errors.As(err, &fetchErr):
		return fmt.Errorf("the site could not be fetched: %w", err)
	case errors.As(err, &synthErr):
		return fmt.Errorf("the model could not produce a brochure: %w", err)
	default:
		return err
	}
}
