// Package ollama provides an embedding service adapter using a local Ollama daemon.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/custodia-labs/alexandria/internal/adapters/driven/embedding"
	"github.com/custodia-labs/alexandria/internal/core/domain"
	"github.com/custodia-labs/alexandria/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "bge-large"
	DefaultTimeout    = 120 * time.Second
	DefaultDimensions = 1024

	// BatchSize is the most texts sent in one /api/embed call.
	BatchSize = 64
)

// Config holds configuration for the Ollama embedding service.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the embedding model to use (default: bge-large).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// Dimensions is the embedding vector size (model-dependent, default 1024).
	Dimensions int
}

// EmbeddingService generates embeddings using Ollama.
type EmbeddingService struct {
	client     *api.Client
	baseURL    string
	model      string
	dimensions int
}

// NewEmbeddingService creates a new Ollama embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: invalid Ollama URL %q", domain.ErrConfiguration, cfg.BaseURL)
	}

	return &EmbeddingService{
		client:     api.NewClient(base, &http.Client{Timeout: cfg.Timeout}),
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// EmbedDocuments embeds texts in batches of BatchSize.
func (s *EmbeddingService) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return embedding.InBatches(ctx, texts, BatchSize, s.embed)
}

// EmbedQuery embeds a search query.
func (s *EmbeddingService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (s *EmbeddingService) embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := s.client.Embed(ctx, &api.EmbedRequest{
		Model: s.model,
		Input: texts,
	})
	if err != nil {
		return nil, s.wrap(err)
	}

	if err := embedding.CheckVectors("Ollama", resp.Embeddings, len(texts), s.dimensions); err != nil {
		return nil, err
	}
	return resp.Embeddings, nil
}

// wrap distinguishes API errors from an unreachable daemon.
func (s *EmbeddingService) wrap(err error) error {
	var status api.StatusError
	if errors.As(err, &status) {
		msg := status.ErrorMessage
		if msg == "" {
			msg = status.Status
		}
		return &embedding.StatusError{Provider: "Ollama", StatusCode: status.StatusCode, Body: msg}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: Failed to connect to Ollama at %s: %v", domain.ErrEmbeddingUnavailable, s.baseURL, err)
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping checks the daemon is reachable without running inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if err := s.client.Heartbeat(ctx); err != nil {
		return s.wrap(err)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
