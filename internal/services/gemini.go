package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"google.golang.org/genai"
)

// maxEmbedInputChars is the input ceiling the provider imposes; text is
// truncated before the call (extraction already capped it well below this).
const maxEmbedInputChars = 40000

type EmbeddingService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddingWithRetry(ctx context.Context, text string, maxRetries int, initialDelay time.Duration) ([]float32, error)
	Dimension() int
}

type geminiService struct {
	client     *genai.Client
	embedModel string
	dimension  int
}

func NewGeminiService(apiKey, embedModel string, dimension int) (EmbeddingService, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:     client,
		embedModel: embedModel,
		dimension:  dimension,
	}, nil
}

// Dimension implements EmbeddingService.
func (g *geminiService) Dimension() int {
	return g.dimension
}

// GenerateEmbedding implements EmbeddingService. The returned vector length
// is asserted against the configured dimension; a disagreement is fatal and
// never silently truncated or padded.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, newPermanentError(CodeProviderRejected, nil, "embedding input is empty")
	}

	if len(text) > maxEmbedInputChars {
		text = text[:maxEmbedInputChars]
	}

	config := &genai.EmbedContentConfig{
		OutputDimensionality: genai.Ptr(int32(g.dimension)),
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), config)
	if err != nil {
		return nil, classifyEmbeddingError(err)
	}

	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, newPermanentError(CodeProviderRejected, nil, "embedding provider returned an empty result")
	}

	vector := result.Embeddings[0].Values
	if len(vector) != g.dimension {
		return nil, newPermanentError(CodeDimensionMismatch, nil,
			"embedding dimension %d does not match configured dimension %d", len(vector), g.dimension)
	}

	return vector, nil
}

// GenerateEmbeddingWithRetry implements EmbeddingService. Only transient
// provider failures are retried; input rejections fail immediately.
func (g *geminiService) GenerateEmbeddingWithRetry(ctx context.Context, text string, maxRetries int, initialDelay time.Duration) ([]float32, error) {
	var lastErr error
	delay := initialDelay

	for attempt := 1; attempt <= maxRetries; attempt++ {
		vector, err := g.GenerateEmbedding(ctx, text)
		if err == nil {
			return vector, nil
		}
		if !IsRetryable(err) {
			return nil, err
		}

		lastErr = err

		if attempt < maxRetries {
			log.Printf("⚠️  Embedding attempt %d failed: %v. Retrying in %s...", attempt, err, delay)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}

// classifyEmbeddingError separates timeouts and provider outages (retryable)
// from input rejections (not retryable).
func classifyEmbeddingError(err error) *PipelineError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 || apiErr.Code >= 500 {
			return newTransientError(CodeProviderUnavailable, err, "embedding provider unavailable (HTTP %d)", apiErr.Code)
		}
		return newPermanentError(CodeProviderRejected, err, "embedding provider rejected the request (HTTP %d)", apiErr.Code)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return newTransientError(CodeProviderUnavailable, err, "embedding request timed out")
	}

	// Network-level failure without an HTTP status
	return newTransientError(CodeProviderUnavailable, err, "failed to reach embedding provider")
}
