// Package cli provides the Alexandria command-line interface built on cobra.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/alexandria/internal/core/ports/driven"
	"github.com/custodia-labs/alexandria/internal/core/ports/driving"
	"github.com/custodia-labs/alexandria/internal/logger"
)

// ErrSourcesFailed is returned when a batch finished but some sources failed.
// main maps it to exit status 1 without printing it again.
var ErrSourcesFailed = errors.New("one or more sources failed")

// Services holds everything the commands need. Close releases the store.
type Services struct {
	Ingest    driving.IngestService
	Search    driving.SearchService
	Source    driving.SourceService
	Settings  driving.SettingsService
	Registry  driven.RegistryLoader
	Validator driven.AIConfigValidator

	// EmbeddingErr explains why no embedding provider could be created.
	// Search still works on full-text alone; ingestion reports it.
	EmbeddingErr error

	Close func() error
}

// ServiceFactory builds Services once the flags are parsed.
type ServiceFactory func(ctx context.Context) (*Services, error)

var (
	version = "dev"
	verbose bool

	ingestService   driving.IngestService
	searchService   driving.SearchService
	sourceService   driving.SourceService
	settingsService driving.SettingsService
	registryLoader  driven.RegistryLoader
	configValidator driven.AIConfigValidator
	embeddingErr    error

	factory      ServiceFactory
	closeService func() error
)

// skipServices marks commands that run without opening the store.
const skipServices = "skip-services"

var rootCmd = &cobra.Command{
	Use:   "alexandria",
	Short: "Hybrid search over API specs and documentation",
	Long: `Alexandria ingests OpenAPI specs and markdown documentation into a local
SQLite index and answers natural-language queries with hybrid full-text and
vector search. Results are also served to AI assistants over MCP.`,
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline details to stderr")
}

// prepare enables verbose logging and builds services on first use.
func prepare(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[skipServices] == "true" || factory == nil || searchService != nil {
		return nil
	}

	svc, err := factory(cmd.Context())
	if err != nil {
		return err
	}
	SetServices(svc)
	return nil
}

// SetServices installs the services used by all commands.
func SetServices(svc *Services) {
	ingestService = svc.Ingest
	searchService = svc.Search
	sourceService = svc.Source
	settingsService = svc.Settings
	registryLoader = svc.Registry
	configValidator = svc.Validator
	embeddingErr = svc.EmbeddingErr
	closeService = svc.Close
}

// Execute runs the root command. Services are built lazily by f so that
// commands such as version never open the store.
func Execute(ctx context.Context, v string, f ServiceFactory) error {
	if v != "" {
		version = v
	}
	factory = f
	defer func() {
		if closeService != nil {
			if err := closeService(); err != nil {
				logger.Warn("closing store: %v", err)
			}
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}
