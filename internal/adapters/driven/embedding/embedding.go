// Package embedding holds the checks and batching shared by the embedding
// provider adapters in its subpackages.
package embedding

import (
	"context"
	"fmt"

	"github.com/custodia-labs/alexandria/internal/core/domain"
)

// StatusError is a non-2xx response from a provider API.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Body)
}

// Is reports provider failures as domain.ErrEmbeddingUnavailable.
func (e *StatusError) Is(target error) bool {
	return target == domain.ErrEmbeddingUnavailable
}

// MissingCredential reports an unset credential as a configuration error.
func MissingCredential(envVar string) error {
	return fmt.Errorf("%w: %s environment variable is not set", domain.ErrConfiguration, envVar)
}

// CheckVectors validates a provider response: one non-empty vector per
// input, each of length dim when dim is positive.
func CheckVectors(provider string, vectors [][]float32, want, dim int) error {
	if len(vectors) != want {
		return fmt.Errorf("%w: %s API returned unexpected response: expected %d embeddings, got %d",
			domain.ErrEmbeddingUnavailable, provider, want, len(vectors))
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return fmt.Errorf("%w: %s API returned invalid embedding at index %d",
				domain.ErrEmbeddingUnavailable, provider, i)
		}
		if dim > 0 && len(v) != dim {
			return fmt.Errorf("%w: %s API returned a %d-dimensional embedding at index %d, expected %d",
				domain.ErrEmbeddingUnavailable, provider, len(v), i, dim)
		}
	}
	return nil
}

// BatchFunc embeds one batch.
type BatchFunc func(ctx context.Context, batch []string) ([][]float32, error)

// InBatches calls fn on consecutive slices of at most size texts, in order,
// and concatenates the results. The first failing batch aborts the run.
func InBatches(ctx context.Context, texts []string, size int, fn BatchFunc) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if size <= 0 {
		size = len(texts)
	}

	total := (len(texts) + size - 1) / size
	out := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += size {
		end := min(start+size, len(texts))
		vectors, err := fn(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("Embedding failed on batch %d/%d (texts %d-%d): %w",
				start/size+1, total, start, end-1, err)
		}
		out = append(out, vectors...)
	}

	return out, nil
}

// ToFloat32 narrows a JSON-decoded vector.
func ToFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
