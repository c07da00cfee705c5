package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/alexandria/internal/adapters/driven/registry"
	"github.com/custodia-labs/alexandria/internal/adapters/driven/watcher"
	"github.com/custodia-labs/alexandria/internal/core/domain"
	"github.com/custodia-labs/alexandria/internal/logger"
)

var (
	ingestAPI      string
	ingestSpec     string
	ingestDocs     string
	ingestDocsOnly string
	ingestAll      bool
	ingestRegistry string
	ingestForce    bool
	ingestWatch    bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest API specs and documentation",
	Long: `Parses OpenAPI specs and markdown docs into chunks, embeds the chunks that
changed since the last run, and commits them to the index in one transaction.

Sources whose files are unchanged are skipped unless --force is given.

Examples:
  # One API with its guides
  alexandria ingest --api payments --spec ./payments.yaml --docs ./docs/payments

  # A standalone docs set
  alexandria ingest --docs-only arch --docs ./docs/architecture

  # Everything in apis.yml, re-ingesting on change
  alexandria ingest --all --watch`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestAPI, "api", "", "name of the API to ingest")
	ingestCmd.Flags().StringVar(&ingestSpec, "spec", "", "path to the OpenAPI spec (with --api)")
	ingestCmd.Flags().StringVar(&ingestDocs, "docs", "", "directory of markdown docs")
	ingestCmd.Flags().StringVar(&ingestDocsOnly, "docs-only", "", "name of a docs-only source (with --docs)")
	ingestCmd.Flags().BoolVar(&ingestAll, "all", false, "ingest every entry in the registry")
	ingestCmd.Flags().StringVar(&ingestRegistry, "registry", "", "registry file (default from settings, apis.yml)")
	ingestCmd.Flags().BoolVar(&ingestForce, "force", false, "re-parse sources even when their files are unchanged")
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "keep running and re-ingest when files change")
	ingestCmd.MarkFlagsMutuallyExclusive("api", "docs-only", "all")
	ingestCmd.MarkFlagsOneRequired("api", "docs-only", "all")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if embeddingErr != nil {
		return fmt.Errorf("embedding provider unavailable: %w", embeddingErr)
	}

	var (
		entries      []domain.RegistryEntry
		registryPath string
	)
	switch {
	case ingestAPI != "":
		if ingestSpec == "" {
			return errors.New("--spec is required with --api")
		}
		entries = []domain.RegistryEntry{{Name: ingestAPI, SpecPath: ingestSpec, DocsPath: ingestDocs}}
	case ingestDocsOnly != "":
		if ingestDocs == "" {
			return errors.New("--docs is required with --docs-only")
		}
		entries = []domain.RegistryEntry{{Name: ingestDocsOnly, DocsPath: ingestDocs}}
	default:
		var err error
		entries, registryPath, err = loadRegistry()
		if err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	runErr := ingestEntries(ctx, cmd, entries, ingestAll, domain.IngestOptions{Force: ingestForce})
	if !ingestWatch {
		return runErr
	}
	if runErr != nil && !errors.Is(runErr, ErrSourcesFailed) {
		return runErr
	}
	return watchAndIngest(ctx, cmd, entries, registryPath)
}

// loadRegistry reads the registry named by --registry or the settings and
// returns its entries and path.
func loadRegistry() ([]domain.RegistryEntry, string, error) {
	if registryLoader == nil {
		return nil, "", errors.New("registry loader not configured")
	}

	path := ingestRegistry
	if path == "" && settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return nil, "", fmt.Errorf("failed to get settings: %w", err)
		}
		path = settings.Registry.Path
	}
	if path == "" {
		path = registry.DefaultFileName
	}

	entries, err := registryLoader.Load(path)
	if err != nil {
		return nil, "", err
	}
	logger.Debug("registry %s: %d entries", path, len(entries))
	return entries, path, nil
}

// ingestEntries runs a single source directly, or the entries as a batch.
func ingestEntries(
	ctx context.Context,
	cmd *cobra.Command,
	entries []domain.RegistryEntry,
	batch bool,
	opts domain.IngestOptions,
) error {
	if !batch && len(entries) == 1 {
		return ingestOne(ctx, cmd, entries[0], opts)
	}

	opts.Progress = func(ev domain.IngestEvent) {
		switch {
		case !ev.Done:
			cmd.Printf("Ingesting %s...\n", titleStyle.Render(ev.Source))
		case ev.Err != nil:
			cmd.Println(errorStyle.Render(fmt.Sprintf("  Error ingesting %s: %v", ev.Source, ev.Err)))
		default:
			cmd.Println(ev.Result.Summary())
		}
	}

	summary, err := ingestService.IngestRegistry(ctx, entries, opts)
	if summary != nil {
		cmd.Println()
		cmd.Println(successStyle.Render(summary.String()))
	}
	if err != nil {
		return err
	}
	if len(summary.Failures) > 0 {
		return ErrSourcesFailed
	}
	return nil
}

func ingestOne(ctx context.Context, cmd *cobra.Command, entry domain.RegistryEntry, opts domain.IngestOptions) error {
	cmd.Printf("Ingesting %s...\n", titleStyle.Render(entry.Name))

	var result *domain.IngestResult
	var err error
	if entry.DocsOnly() {
		result, err = ingestService.IngestDocs(ctx, entry.Name, entry.DocsPath, opts)
	} else {
		result, err = ingestService.IngestAPI(ctx, entry.Name, entry.SpecPath, entry.DocsPath, opts)
	}
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", entry.Name, err)
	}

	cmd.Println(result.Summary())
	cmd.Printf("Done in %s.\n", domain.FormatDuration(result.Duration))
	return nil
}

// watchAndIngest re-ingests the affected entries whenever their files
// change. When registryPath is set, an edit to the registry reloads it and
// re-ingests every entry; unchanged sources are skipped by hash.
func watchAndIngest(ctx context.Context, cmd *cobra.Command, entries []domain.RegistryEntry, registryPath string) error {
	w, err := watcher.New(watcher.DefaultDebounce)
	if err != nil {
		return err
	}
	defer w.Close()

	var registryAbs string
	if registryPath != "" {
		if registryAbs, err = filepath.Abs(registryPath); err != nil {
			return err
		}
		if err := w.AddFile(registryAbs); err != nil {
			return err
		}
	}

	owners, err := watchEntries(w, entries)
	if err != nil {
		return err
	}
	batch := registryPath != ""

	cmd.Println(metaStyle.Render(fmt.Sprintf("Watching %d source(s) for changes. Press Ctrl+C to stop.", len(entries))))

	return w.Run(ctx, func(ctx context.Context, changed []string) {
		affected := affectedEntries(entries, owners, changed)

		if registryAbs != "" && slices.Contains(changed, registryAbs) {
			reloaded, _, err := loadRegistry()
			if err != nil {
				logger.Error("reloading registry: %v", err)
				return
			}
			if owners, err = watchEntries(w, reloaded); err != nil {
				logger.Error("%v", err)
				return
			}
			entries, affected = reloaded, reloaded
		}

		if len(affected) == 0 {
			return
		}
		cmd.Printf("\n%s changed, re-ingesting %d source(s)\n",
			time.Now().Format("15:04:05"), len(affected))
		if err := ingestEntries(ctx, cmd, affected, batch, domain.IngestOptions{}); err != nil && !errors.Is(err, ErrSourcesFailed) {
			logger.Error("%v", err)
		}
	})
}

// watchEntries adds every spec and docs path to w and indexes entries by path.
func watchEntries(w *watcher.Watcher, entries []domain.RegistryEntry) (map[string][]domain.RegistryEntry, error) {
	owners := make(map[string][]domain.RegistryEntry)
	for _, e := range entries {
		if e.SpecPath != "" {
			if err := w.AddFile(e.SpecPath); err != nil {
				return nil, err
			}
		}
		if e.DocsPath != "" {
			if err := w.AddDir(e.DocsPath); err != nil {
				return nil, err
			}
		}
		for _, p := range watchedPaths(e) {
			owners[p] = append(owners[p], e)
		}
	}
	return owners, nil
}
