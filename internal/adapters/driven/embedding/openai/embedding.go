// Package openai provides an embedding service adapter for OpenAI-compatible
// /embeddings APIs.
package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/alexandria/internal/adapters/driven/embedding"
	"github.com/custodia-labs/alexandria/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "text-embedding-3-small"
	DefaultTimeout = 60 * time.Second

	// BatchSize is the most inputs sent in one request.
	BatchSize = 256

	// RequestsPerSecond paces calls to stay clear of tier-1 limits.
	RequestsPerSecond = 5

	// APIKeyEnv names the credential in error messages.
	APIKeyEnv = "OPENAI_API_KEY"
)

// Model dimensions for OpenAI embedding models.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Config holds configuration for the OpenAI embedding service.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the embedding model to use (default: text-embedding-3-small).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// Dimensions overrides the default dimension for the model.
	// Only text-embedding-3-* models can shorten their output.
	Dimensions int

	// RequestsPerSecond overrides the request pacing. Zero uses the default.
	RequestsPerSecond float64
}

// EmbeddingService generates embeddings using an OpenAI-compatible API.
type EmbeddingService struct {
	api        *embedding.Client
	model      string
	dimensions int
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []embedding.IndexedVector `json:"data"`
}

// errorMessage pulls error.message out of an OpenAI error body.
func errorMessage(body []byte) string {
	var e struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil || e.Error == nil {
		return ""
	}
	return e.Error.Message
}

// NewEmbeddingService creates a new OpenAI embedding service.
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
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = RequestsPerSecond
	}

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		var ok bool
		dimensions, ok = modelDimensions[cfg.Model]
		if !ok {
			dimensions = 1536
		}
	}

	return &EmbeddingService{
		api: &embedding.Client{
			Provider:     "OpenAI",
			BaseURL:      cfg.BaseURL,
			APIKey:       cfg.APIKey,
			HTTP:         &http.Client{Timeout: cfg.Timeout},
			Limiter:      rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
			ErrorMessage: errorMessage,
		},
		model:      cfg.Model,
		dimensions: dimensions,
	}, nil
}

// EmbedDocuments embeds texts in batches of BatchSize.
func (s *EmbeddingService) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return embedding.InBatches(ctx, texts, BatchSize, s.call)
}

// EmbedQuery embeds a search query.
func (s *EmbeddingService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.call(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (s *EmbeddingService) call(ctx context.Context, texts []string) ([][]float32, error) {
	req := embeddingRequest{Model: s.model, Input: texts}
	// Only the text-embedding-3 family accepts a shortened output size.
	if strings.HasPrefix(s.model, "text-embedding-3-") {
		req.Dimensions = s.dimensions
	}

	var resp embeddingResponse
	if err := s.api.Post(ctx, "/embeddings", req, &resp); err != nil {
		return nil, err
	}
	vectors, err := embedding.ByIndex("OpenAI", resp.Data)
	if err != nil {
		return nil, err
	}
	if err := embedding.CheckVectors("OpenAI", vectors, len(texts), s.dimensions); err != nil {
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

// Ping lists models, which checks the key without running inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/models")
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
