package itinerary

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"tripwise/internal/app/models"
	"tripwise/internal/pkg/config"
)

// Generator produces raw itinerary text from a rendered prompt. Repeated
// calls with the same prompt are not expected to return identical output.
type Generator interface {
	GenerateItineraryText(ctx context.Context, prompt string) (string, error)
}

var _ Generator = (*GeminiGenerator)(nil)

// GeminiGenerator calls the Gemini API with a bounded output-token budget.
// The API key is read from server-side configuration only.
type GeminiGenerator struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
	logger *zap.Logger
}

func NewGeminiGenerator(ctx context.Context, cfg config.GeminiConfig, logger *zap.Logger) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiGenerator{
		client: client,
		model:  cfg.Model,
		config: &genai.GenerateContentConfig{
			Temperature:     genai.Ptr[float32](cfg.Temperature),
			MaxOutputTokens: cfg.MaxOutputTokens,
		},
		logger: logger,
	}, nil
}

// GenerateItineraryText sends the prompt to Gemini and returns the raw
// generated text. Transport errors and empty candidate lists both map to
// models.ErrGenerationFailed; no retries are attempted.
func (g *GeminiGenerator) GenerateItineraryText(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.Tracer("ItineraryGenerator").Start(ctx, "GenerateItineraryText", trace.WithAttributes(
		attribute.String("gen_ai.request.model", g.model),
		attribute.Int("prompt.length", len(prompt)),
	))
	defer span.End()

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		g.logger.Error("Gemini call failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Generation request failed")
		return "", fmt.Errorf("%w: %w", models.ErrGenerationFailed, err)
	}

	if len(result.Candidates) == 0 {
		span.SetStatus(codes.Error, "No candidates returned")
		return "", fmt.Errorf("%w: no candidates in response", models.ErrGenerationFailed)
	}

	text := result.Text()
	if text == "" {
		span.SetStatus(codes.Error, "Empty candidate text")
		return "", fmt.Errorf("%w: empty response text", models.ErrGenerationFailed)
	}

	span.SetAttributes(attribute.Int("response.length", len(text)))
	span.SetStatus(codes.Ok, "Content generated")
	return text, nil
}
