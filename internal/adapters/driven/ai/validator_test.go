package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/alexandria/internal/core/domain"
)

func TestConfigValidator_ValidateEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Ollama is running"))
	}))
	defer server.Close()

	validator := NewConfigValidator()

	err := validator.ValidateEmbedding(context.Background(), domain.EmbeddingSettings{
		Provider: domain.EmbeddingProviderOllama,
		BaseURL:  server.URL,
	})
	assert.NoError(t, err)

	err = validator.ValidateEmbedding(context.Background(), domain.EmbeddingSettings{
		Provider: domain.EmbeddingProviderOpenAI,
	})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestConfigValidator_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	validator := NewConfigValidator().WithTimeout(50 * time.Millisecond)
	assert.Equal(t, 50*time.Millisecond, validator.timeout)
	assert.Equal(t, 50*time.Millisecond, validator.WithTimeout(0).timeout)

	err := validator.ValidateEmbedding(context.Background(), domain.EmbeddingSettings{
		Provider: domain.EmbeddingProviderOllama,
		BaseURL:  server.URL,
	})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestConfigValidator_UnreachableProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	err := NewConfigValidator().ValidateEmbedding(context.Background(), domain.EmbeddingSettings{
		Provider: domain.EmbeddingProviderOpenAI,
		APIKey:   "bad",
		BaseURL:  server.URL,
	})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Contains(t, err.Error(), "openai service unreachable")
}

func TestNewConfigValidator_DefaultTimeout(t *testing.T) {
	assert.Equal(t, 5*time.Second, NewConfigValidator().timeout)
}
