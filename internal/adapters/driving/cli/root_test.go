package cli

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/alexandria/internal/core/domain"
)

// mockIngestService records ingestion calls.
type mockIngestService struct {
	calls   []domain.RegistryEntry
	opts    domain.IngestOptions
	summary *domain.BatchSummary
	err     error
}

func (m *mockIngestService) IngestAPI(
	_ context.Context, name, specPath, docsPath string, opts domain.IngestOptions,
) (*domain.IngestResult, error) {
	m.calls = append(m.calls, domain.RegistryEntry{Name: name, SpecPath: specPath, DocsPath: docsPath})
	m.opts = opts
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IngestResult{Source: name, Total: 4, Embedded: 4, Duration: 120 * time.Millisecond}, nil
}

func (m *mockIngestService) IngestDocs(
	_ context.Context, name, docsPath string, opts domain.IngestOptions,
) (*domain.IngestResult, error) {
	m.calls = append(m.calls, domain.RegistryEntry{Name: name, DocsPath: docsPath})
	m.opts = opts
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IngestResult{Source: name, Unchanged: true}, nil
}

func (m *mockIngestService) IngestRegistry(
	_ context.Context, entries []domain.RegistryEntry, opts domain.IngestOptions,
) (*domain.BatchSummary, error) {
	m.calls = append(m.calls, entries...)
	m.opts = opts
	for _, e := range entries {
		opts.Progress(domain.IngestEvent{Source: e.Name})
		opts.Progress(domain.IngestEvent{
			Source: e.Name, Done: true,
			Result: &domain.IngestResult{Source: e.Name, Unchanged: true},
		})
	}
	if m.summary != nil {
		return m.summary, m.err
	}
	return &domain.BatchSummary{}, m.err
}

// mockSearchService returns fixed results.
type mockSearchService struct {
	results  []domain.SearchResult
	lastOpts domain.SearchOptions
	err      error
}

func (m *mockSearchService) Search(_ context.Context, _ string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.lastOpts = opts
	return m.results, m.err
}

// mockSourceService serves a fixed source list.
type mockSourceService struct {
	sources   []domain.Source
	endpoints []domain.Chunk
	removed   []string
}

func (m *mockSourceService) List(_ context.Context) ([]domain.Source, error) {
	return m.sources, nil
}

func (m *mockSourceService) GetByName(_ context.Context, name string) (*domain.Source, error) {
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
	return "openapi: 3.0.0", nil
}

func (m *mockSourceService) Remove(ctx context.Context, name string) error {
	if _, err := m.GetByName(ctx, name); err != nil {
		return err
	}
	m.removed = append(m.removed, name)
	return nil
}

// mockSettingsService holds settings in memory.
type mockSettingsService struct {
	settings domain.AppSettings
	setCalls int
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.EmbeddingProvider, model, apiKey string) error {
	m.setCalls++
	m.settings.Embedding = domain.EmbeddingSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// mockRegistryLoader returns fixed entries.
type mockRegistryLoader struct {
	entries  []domain.RegistryEntry
	lastPath string
	err      error
}

func (m *mockRegistryLoader) Load(path string) ([]domain.RegistryEntry, error) {
	m.lastPath = path
	return m.entries, m.err
}

// mockValidator records validations.
type mockValidator struct {
	err   error
	calls int
}

func (m *mockValidator) ValidateEmbedding(_ context.Context, _ domain.EmbeddingSettings) error {
	m.calls++
	return m.err
}

// testServices exposes the mocks installed by setupTestServices.
type testServices struct {
	ingest    *mockIngestService
	search    *mockSearchService
	source    *mockSourceService
	settings  *mockSettingsService
	registry  *mockRegistryLoader
	validator *mockValidator
}

// setupTestServices installs mock services with a small fixture and returns
// a cleanup func that restores globals and flags.
func setupTestServices() func() {
	_, cleanup := setupTestServicesWith()
	return cleanup
}

func setupTestServicesWith() (*testServices, func()) {
	ts := &testServices{
		ingest: &mockIngestService{},
		search: &mockSearchService{
			results: []domain.SearchResult{{
				Chunk: domain.Chunk{
					ID: "c1", SourceID: "src-pay", Kind: domain.ChunkKindEndpoint,
					Title: "POST /payments", Content: "Creates a payment.",
					Metadata: map[string]any{"method": "post", "path": "/payments"},
				},
				Score:      0.0325,
				SourceName: "payments",
			}},
		},
		source: &mockSourceService{
			sources: []domain.Source{
				{ID: "src-pay", Name: "payments", Version: "2.1.0", SpecPath: "/specs/payments.yaml"},
				{ID: "src-arch", Name: "arch", DocsPath: "/docs/arch"},
			},
			endpoints: []domain.Chunk{
				{Title: "GET /payments", Metadata: map[string]any{"method": "get", "path": "/payments"}},
				{Title: "POST /payments", Metadata: map[string]any{"method": "post", "path": "/payments"}},
			},
		},
		settings:  &mockSettingsService{settings: domain.DefaultAppSettings()},
		registry:  &mockRegistryLoader{},
		validator: &mockValidator{},
	}
	ts.settings.settings.Registry.Path = "apis.yml"

	SetServices(&Services{
		Ingest:    ts.ingest,
		Search:    ts.search,
		Source:    ts.source,
		Settings:  ts.settings,
		Registry:  ts.registry,
		Validator: ts.validator,
	})

	return ts, func() {
		SetServices(&Services{})
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}
}

// resetFlags restores package-level flag variables between tests.
func resetFlags() {
	ingestAPI, ingestSpec, ingestDocs, ingestDocsOnly = "", "", "", ""
	ingestAll, ingestForce, ingestWatch = false, false, false
	ingestRegistry = ""
	searchLimit = domain.DefaultSearchLimit
	searchJSON = false
	searchAPI = ""
	searchTypes = nil
	versionShort = false
	embedProviderFlag, embedModelFlag = "", ""
	for _, c := range []*cobra.Command{ingestCmd, searchCmd, versionCmd, settingsEmbeddingCmd} {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			f.Changed = false
			if f.Value.Type() == "stringSlice" {
				_ = f.Value.(pflag.SliceValue).Replace(nil)
			} else {
				_ = f.Value.Set(f.DefValue)
			}
		})
	}
}

// run executes the root command with args and returns combined output.
func run(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}
