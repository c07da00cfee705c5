package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/alexandria/internal/core/domain"
)

// Client talks JSON to a bearer-authenticated embeddings API. Every request
// waits on Limiter first.
type Client struct {
	Provider string
	BaseURL  string
	APIKey   string
	HTTP     *http.Client
	Limiter  *rate.Limiter

	// ErrorMessage extracts a readable message from an error body. When
	// nil or when it returns "", the raw body is used.
	ErrorMessage func(body []byte) string
}

// Post sends in as JSON to BaseURL+path and decodes the 2xx reply into out.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: decode response: %w", domain.ErrEmbeddingUnavailable, c.tag(), err)
	}
	return nil
}

// Get issues a request whose reply body is discarded. Used for pings.
func (c *Client) Get(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodGet, path, http.NoBody)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimSuffix(c.BaseURL, "/")+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: send request: %w", domain.ErrEmbeddingUnavailable, c.tag(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read response: %w", domain.ErrEmbeddingUnavailable, c.tag(), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(raw)
		if c.ErrorMessage != nil {
			if m := c.ErrorMessage(raw); m != "" {
				msg = m
			}
		}
		return nil, &StatusError{Provider: c.Provider, StatusCode: resp.StatusCode, Body: msg}
	}
	return raw, nil
}

func (c *Client) tag() string { return strings.ToLower(c.Provider) }

// IndexedVector is one entry of the {"data":[{"index":..,"embedding":..}]}
// shape shared by OpenAI-style APIs.
type IndexedVector struct {
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

// ByIndex places each vector at its reported index. The APIs do not
// promise input order.
func ByIndex(provider string, data []IndexedVector) ([][]float32, error) {
	out := make([][]float32, len(data))
	for _, d := range data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("%w: %s: embedding index %d out of range",
				domain.ErrEmbeddingUnavailable, strings.ToLower(provider), d.Index)
		}
		out[d.Index] = ToFloat32(d.Embedding)
	}
	return out, nil
}
