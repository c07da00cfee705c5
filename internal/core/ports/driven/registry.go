package driven

import "github.com/custodia-labs/alexandria/internal/core/domain"

// RegistryLoader reads the registry file that declares which sources to ingest.
type RegistryLoader interface {
	// Load returns the declared sources with paths resolved against the
	// registry's directory.
	Load(path string) ([]domain.RegistryEntry, error)
}
