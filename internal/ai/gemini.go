package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"carapi/internal/config"
)

// GeminiExtractor implements Extractor using Google's Gemini API.
type GeminiExtractor struct {
	client *genai.Client
	model  string
}

// NewGeminiExtractor creates a Gemini-backed extractor from config.
func NewGeminiExtractor(ctx context.Context, cfg config.GeminiConfig) (*GeminiExtractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiExtractor{client: client, model: cfg.Model}, nil
}

var _ Extractor = (*GeminiExtractor)(nil)

// Extract sends the image plus the variant's prompt to Gemini and parses
// the JSON payload out of the free-form response. It does not retry on
// inference-service errors; the caller owns backoff and timeout policy.
func (g *GeminiExtractor) Extract(ctx context.Context, image []byte, mimeType string, variant PromptVariant) (RawAttributes, error) {
	if len(image) == 0 {
		return nil, &ExtractionError{Kind: KindUpstream, Err: fmt.Errorf("no image provided")}
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	parts := []*genai.Part{
		genai.NewPartFromText(promptFor(variant)),
		{InlineData: &genai.Blob{Data: image, MIMEType: mimeType}},
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, &ExtractionError{Kind: KindUpstream, Err: fmt.Errorf("generate content: %w", err)}
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, &ExtractionError{Kind: KindUpstream, Err: fmt.Errorf("empty response from gemini")}
	}

	attrs, err := ParseAttributes(result.Text())
	if err != nil {
		return nil, err
	}

	if result.UsageMetadata != nil {
		log.Info().
			Str("model", g.model).
			Int("inputTokens", int(result.UsageMetadata.PromptTokenCount)).
			Int("outputTokens", int(result.UsageMetadata.CandidatesTokenCount)).
			Int("variant", int(variant)).
			Msg("vision extraction llm call")
	}

	return attrs, nil
}

// ParseAttributes parses a model response into RawAttributes. The raw
// text may be wrapped in markdown code fences; those are stripped before
// strict JSON parsing. A parse failure yields an ExtractionError of kind
// KindMalformedResponse instead of an opaque error.
func ParseAttributes(text string) (RawAttributes, error) {
	cleaned := stripCodeFences(text)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, &ExtractionError{
			Kind: KindMalformedResponse,
			Err:  fmt.Errorf("no JSON object found in response: %s", text),
		}
	}

	var attrs RawAttributes
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &attrs); err != nil {
		return nil, &ExtractionError{
			Kind: KindMalformedResponse,
			Err:  fmt.Errorf("parse response JSON: %w", err),
		}
	}
	return attrs, nil
}

func stripCodeFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
