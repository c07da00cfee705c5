// Package voyage provides an embedding service adapter for the Voyage AI API.
package voyage

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/alexandria/internal/adapters/driven/embedding"
	"github.com/custodia-labs/alexandria/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.voyageai.com/v1"
	DefaultModel      = "voyage-3"
	DefaultDimensions = 1024
	DefaultTimeout    = 60 * time.Second

	// BatchSize is the most texts sent in one request.
	BatchSize = 128

	// RequestsPerSecond paces calls under the free-tier limit.
	RequestsPerSecond = 5

	// APIKeyEnv names the credential in error messages.
	APIKeyEnv = "VOYAGE_API_KEY"
)

// Input types tell Voyage how the text will be used.
const (
	inputTypeDocument = "document"
	inputTypeQuery    = "query"
)

// Config holds configuration for the Voyage embedding service.
type Config struct {
	// APIKey is the Voyage API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.voyageai.com/v1).
	BaseURL string

	// Model is the embedding model (default: voyage-3).
	Model string

	// Dimensions is the vector size the model produces (default: 1024).
	Dimensions int

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// RequestsPerSecond overrides the request pacing. Zero uses the default.
	RequestsPerSecond float64
}

// EmbeddingService generates embeddings using Voyage AI.
type EmbeddingService struct {
	api        *embedding.Client
	model      string
	dimensions int
}

type embeddingRequest struct {
	Input     []string `json:"input"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type"`
}

type embeddingResponse struct {
	Data []embedding.IndexedVector `json:"data"`
}

// NewEmbeddingService creates a new Voyage embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, embedding.MissingCredential(APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = RequestsPerSecond
	}

	return &EmbeddingService{
		api: &embedding.Client{
			Provider: "Voyage",
			BaseURL:  cfg.BaseURL,
			APIKey:   cfg.APIKey,
			HTTP:     &http.Client{Timeout: cfg.Timeout},
			Limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		},
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// EmbedDocuments embeds texts in batches of BatchSize.
func (s *EmbeddingService) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return embedding.InBatches(ctx, texts, BatchSize, func(ctx context.Context, batch []string) ([][]float32, error) {
		return s.call(ctx, batch, inputTypeDocument)
	})
}

// EmbedQuery embeds a search query.
func (s *EmbeddingService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.call(ctx, []string{text}, inputTypeQuery)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (s *EmbeddingService) call(ctx context.Context, texts []string, inputType string) ([][]float32, error) {
	var resp embeddingResponse
	if err := s.api.Post(ctx, "/embeddings", embeddingRequest{Input: texts, Model: s.model, InputType: inputType}, &resp); err != nil {
		return nil, err
	}
	vectors, err := embedding.ByIndex("Voyage", resp.Data)
	if err != nil {
		return nil, err
	}
	if err := embedding.CheckVectors("Voyage", vectors, len(texts), s.dimensions); err != nil {
		return nil, err
	}
	return vectors, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping embeds a one-word query to check the key and the endpoint.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	_, err := s.EmbedQuery(ctx, "ping")
	return err
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
