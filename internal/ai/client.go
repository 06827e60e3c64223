// Package ai wraps the generative model used to extract and name palettes.
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/codr1/chroma/internal/config"
	"github.com/codr1/chroma/internal/models"
)

const defaultRequestTimeout = 60 * time.Second

// Generator is the subset of the genai models service used by Client.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Options struct {
	TextModel      string
	VisionModel    string
	RequestTimeout time.Duration
}

// Client performs palette extraction and theme naming against a Generator.
type Client struct {
	gen     Generator
	options Options
}

// NewClient builds a Gemini-backed client from cfg. The credential is passed explicitly;
// nothing is read from the environment here.
func NewClient(ctx context.Context, cfg config.AIConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: ai api key is required", config.ErrStartupConfig)
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return New(gc.Models, Options{
		TextModel:      cfg.Model,
		VisionModel:    cfg.VisionModel,
		RequestTimeout: cfg.RequestTimeout,
	}), nil
}

func New(gen Generator, options Options) *Client {
	if options.VisionModel == "" {
		options.VisionModel = options.TextModel
	}
	if options.RequestTimeout <= 0 {
		options.RequestTimeout = defaultRequestTimeout
	}
	return &Client{gen: gen, options: options}
}

// Extract returns a validated palette for in. Every error wraps ErrExtraction.
func (c *Client) Extract(ctx context.Context, in Input) (models.Palette, error) {
	logger := log.Ctx(ctx).With().Str("kind", string(in.Kind)).Logger()

	in, err := in.Validate()
	if err != nil {
		MetricExtractions.WithLabelValues(string(in.Kind), outcomeInvalidInput).Inc()
		return nil, err
	}

	model, contents, cfg := c.extractionRequest(in)

	ctx, cancel := context.WithTimeout(ctx, c.options.RequestTimeout)
	defer cancel()

	start := time.Now()
	resp, err := c.gen.GenerateContent(ctx, model, contents, cfg)
	MetricExtractionDuration.WithLabelValues(string(in.Kind)).Observe(time.Since(start).Seconds())
	if err != nil {
		MetricExtractions.WithLabelValues(string(in.Kind), outcomeCallError).Inc()
		logger.Error().Err(err).Str("model", model).Msg("Palette extraction call failed")
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	raw := responseText(resp)
	palette, err := ValidatePalette(raw)
	if err != nil {
		MetricExtractions.WithLabelValues(string(in.Kind), outcomeFormatError).Inc()
		logger.Warn().Err(err).Str("response", raw).Msg("Failed to parse AI response")
		return nil, err
	}

	MetricExtractions.WithLabelValues(string(in.Kind), outcomeSuccess).Inc()
	logger.Debug().Strs("palette", palette).Msg("Palette extracted")
	return palette, nil
}

func (c *Client) ExtractCSS(ctx context.Context, css string) (models.Palette, error) {
	return c.Extract(ctx, CSSInput(css))
}

func (c *Client) ExtractURL(ctx context.Context, url string) (models.Palette, error) {
	return c.Extract(ctx, URLInput(url))
}

func (c *Client) ExtractImage(ctx context.Context, data []byte, mimeType string) (models.Palette, error) {
	return c.Extract(ctx, ImageInput(data, mimeType))
}

func (c *Client) extractionRequest(in Input) (string, []*genai.Content, *genai.GenerateContentConfig) {
	switch in.Kind {
	case KindURL:
		return c.options.TextModel, genai.Text(urlPrompt(in.Text)), paletteConfig(genai.Ptr(urlTemperature))
	case KindImage:
		parts := []*genai.Part{
			genai.NewPartFromBytes(in.Image, in.MIMEType),
			genai.NewPartFromText(imagePrompt()),
		}
		contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
		return c.options.VisionModel, contents, paletteConfig(nil)
	default:
		return c.options.TextModel, genai.Text(cssPrompt(in.Text)), paletteConfig(genai.Ptr(cssTemperature))
	}
}

// SuggestName asks the model for a short evocative name for palette.
func (c *Client) SuggestName(ctx context.Context, palette models.Palette) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.options.RequestTimeout)
	defer cancel()

	resp, err := c.gen.GenerateContent(ctx, c.options.TextModel, genai.Text(namingPrompt(palette)), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(namingTemperature),
	})
	if err != nil {
		MetricNamings.WithLabelValues(outcomeCallError).Inc()
		return "", fmt.Errorf("%w: %v", ErrNaming, err)
	}

	name := CleanName(responseText(resp))
	if name == "" {
		MetricNamings.WithLabelValues(outcomeEmpty).Inc()
		return "", fmt.Errorf("%w: AI returned an empty name", ErrNaming)
	}

	MetricNamings.WithLabelValues(outcomeSuccess).Inc()
	return name, nil
}

var quoteStripper = strings.NewReplacer(`"`, "", "“", "", "”", "")

// CleanName trims whitespace and removes quote characters from a model reply.
func CleanName(raw string) string {
	return strings.TrimSpace(quoteStripper.Replace(strings.TrimSpace(raw)))
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	return resp.Text()
}
