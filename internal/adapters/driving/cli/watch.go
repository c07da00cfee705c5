package cli

import (
	"path/filepath"

	"github.com/custodia-labs/alexandria/internal/core/domain"
)

// watchedPaths returns the absolute paths that trigger re-ingesting e.
func watchedPaths(e domain.RegistryEntry) []string {
	var paths []string
	if e.SpecPath != "" {
		if abs, err := filepath.Abs(e.SpecPath); err == nil {
			paths = append(paths, abs)
		}
	}
	if e.DocsPath != "" {
		if abs, err := filepath.Abs(e.DocsPath); err == nil {
			paths = append(paths, abs)
		}
	}
	return paths
}

// affectedEntries maps changed files back to their entries, keeping registry
// order. A changed markdown file belongs to the entry owning its directory.
func affectedEntries(
	entries []domain.RegistryEntry,
	owners map[string][]domain.RegistryEntry,
	changed []string,
) []domain.RegistryEntry {
	hit := make(map[string]bool)
	for _, p := range changed {
		for _, e := range owners[p] {
			hit[e.Name] = true
		}
		for _, e := range owners[filepath.Dir(p)] {
			hit[e.Name] = true
		}
	}

	var out []domain.RegistryEntry
	for _, e := range entries {
		if hit[e.Name] {
			out = append(out, e)
		}
	}
	return out
}
