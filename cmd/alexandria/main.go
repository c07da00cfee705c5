// Command alexandria indexes OpenAPI specs and markdown docs for hybrid search.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/alexandria/internal/adapters/driven/ai"
	"github.com/custodia-labs/alexandria/internal/adapters/driven/config/file"
	"github.com/custodia-labs/alexandria/internal/adapters/driven/parser/markdown"
	"github.com/custodia-labs/alexandria/internal/adapters/driven/parser/openapi"
	"github.com/custodia-labs/alexandria/internal/adapters/driven/registry"
	"github.com/custodia-labs/alexandria/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/alexandria/internal/adapters/driving/cli"
	"github.com/custodia-labs/alexandria/internal/core/domain"
	"github.com/custodia-labs/alexandria/internal/core/ports/driven"
	"github.com/custodia-labs/alexandria/internal/core/services"
	"github.com/custodia-labs/alexandria/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.Execute(ctx, version, wire)
	if err == nil {
		return
	}
	if !errors.Is(err, cli.ErrSourcesFailed) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	stop()
	os.Exit(1)
}

// wire builds the services from settings. An embedding provider that cannot
// be created is not fatal here: search falls back to full-text and ingest
// reports the cause.
func wire(_ context.Context) (*cli.Services, error) {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}

	embedder, embedErr := ai.CreateEmbeddingService(settings.Embedding)
	if embedErr != nil {
		logger.Debug("embedding provider unavailable: %v", embedErr)
	}

	dimension := storeDimension(settings.Embedding, embedder)
	logger.Debug("opening %s (dimension %d)", settings.Storage.Path, dimension)

	store, err := sqlite.NewStore(settings.Storage.Path, dimension)
	if err != nil {
		if embedder != nil {
			embedder.Close()
		}
		return nil, err
	}

	fusion := domain.DefaultFusionConfig()
	fusion.DefaultLimit = settings.Search.Limit

	return &cli.Services{
		Ingest: services.NewIngestOrchestrator(
			store.SourceStore(),
			store.ChunkStore(),
			embedder,
			openapi.New(),
			markdown.New(),
		),
		Search: services.NewSearchService(
			store.SearchEngine(),
			store.VectorIndex(),
			store.ChunkStore(),
			store.SourceStore(),
			embedder,
			services.WithFusionConfig(fusion),
		),
		Source:       services.NewSourceService(store.SourceStore(), store.ChunkStore()),
		Settings:     settingsService,
		Registry:     registry.NewLoader(),
		Validator:    ai.NewConfigValidator(),
		EmbeddingErr: embedErr,
		Close: func() error {
			if embedder != nil {
				embedder.Close()
			}
			return store.Close()
		},
	}, nil
}

// storeDimension picks the vector size the store is opened with: the live
// provider's, else the configured override, else the provider default.
func storeDimension(settings domain.EmbeddingSettings, embedder driven.EmbeddingService) int {
	if embedder != nil {
		return embedder.Dimensions()
	}
	if settings.Dimensions > 0 {
		return settings.Dimensions
	}
	if d := domain.DefaultEmbeddingDimensions()[settings.Provider]; d > 0 {
		return d
	}
	return domain.DefaultDimension
}
