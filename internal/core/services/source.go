package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/alexandria/internal/core/domain"
	"github.com/custodia-labs/alexandria/internal/core/ports/driven"
	"github.com/custodia-labs/alexandria/internal/core/ports/driving"
)

// Ensure SourceService implements the interface.
var _ driving.SourceService = (*SourceService)(nil)

// SourceService answers questions about indexed sources.
type SourceService struct {
	sourceStore driven.SourceStore
	chunkStore  driven.ChunkStore
}

// NewSourceService creates a new source service.
func NewSourceService(sourceStore driven.SourceStore, chunkStore driven.ChunkStore) *SourceService {
	return &SourceService{
		sourceStore: sourceStore,
		chunkStore:  chunkStore,
	}
}

// List returns all indexed sources ordered by name.
func (s *SourceService) List(ctx context.Context) ([]domain.Source, error) {
	sources, err := s.sourceStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return sources, nil
}

// GetByName returns the named source or domain.ErrSourceNotFound.
func (s *SourceService) GetByName(ctx context.Context, name string) (*domain.Source, error) {
	source, err := s.sourceStore.GetByName(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", domain.ErrSourceNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}
	return source, nil
}

// Endpoints returns a source's endpoint chunks ordered by path, then method.
func (s *SourceService) Endpoints(ctx context.Context, name string) ([]domain.Chunk, error) {
	source, err := s.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	chunks, err := s.chunkStore.GetChunksBySource(ctx, source.ID, domain.ChunkKindEndpoint)
	if err != nil {
		return nil, fmt.Errorf("get endpoints: %w", err)
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		pi, pj := chunks[i].MetadataString("path"), chunks[j].MetadataString("path")
		if pi != pj {
			return pi < pj
		}
		return methodOrder(chunks[i].MetadataString("method")) < methodOrder(chunks[j].MetadataString("method"))
	})
	return chunks, nil
}

// Spec returns the raw spec text of a source. Docs-only sources have none.
func (s *SourceService) Spec(ctx context.Context, name string) (string, error) {
	source, err := s.GetByName(ctx, name)
	if err != nil {
		return "", err
	}
	if source.SpecContent == "" {
		return "", fmt.Errorf("%w: %q has no API spec", domain.ErrNotFound, name)
	}
	return source.SpecContent, nil
}

// Remove deletes a source and all its chunks.
func (s *SourceService) Remove(ctx context.Context, name string) error {
	source, err := s.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if err := s.sourceStore.Delete(ctx, source.ID); err != nil {
		return fmt.Errorf("remove source: %w", err)
	}
	return nil
}

// httpMethods lists operation methods in the order endpoints are reported.
var httpMethods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

func methodOrder(method string) int {
	for i, m := range httpMethods {
		if strings.EqualFold(m, method) {
			return i
		}
	}
	return len(httpMethods)
}
