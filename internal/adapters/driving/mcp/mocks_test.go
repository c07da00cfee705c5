package mcp

import (
	"context"
	"fmt"

	"github.com/custodia-labs/alexandria/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results  []domain.SearchResult
	err      error
	lastOpts domain.SearchOptions
	calls    int
}

func (m *mockSearchService) Search(
	_ context.Context,
	_ string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.calls++
	m.lastOpts = opts
	return m.results, m.err
}

// mockSourceService is a mock implementation of driving.SourceService.
type mockSourceService struct {
	sources   []domain.Source
	endpoints []domain.Chunk
	specs     map[string]string
	err       error
}

func (m *mockSourceService) List(_ context.Context) ([]domain.Source, error) {
	return m.sources, m.err
}

func (m *mockSourceService) GetByName(_ context.Context, name string) (*domain.Source, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.sources {
		if m.sources[i].Name == name {
			return &m.sources[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrSourceNotFound, name)
}

func (m *mockSourceService) Endpoints(ctx context.Context, name string) ([]domain.Chunk, error) {
	if _, err := m.GetByName(ctx, name); err != nil {
		return nil, err
	}
	return m.endpoints, nil
}

func (m *mockSourceService) Spec(ctx context.Context, name string) (string, error) {
	if _, err := m.GetByName(ctx, name); err != nil {
		return "", err
	}
	spec, ok := m.specs[name]
	if !ok {
		return "", fmt.Errorf("%w: %q has no API spec", domain.ErrNotFound, name)
	}
	return spec, nil
}

func (m *mockSourceService) Remove(ctx context.Context, name string) error {
	_, err := m.GetByName(ctx, name)
	return err
}
