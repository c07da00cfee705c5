package driven

// ConfigStore persists settings under flat dot-separated keys such as
// "embedding.model". Missing keys and mismatched types read as zero values.
type ConfigStore interface {
	GetString(key string) string
	GetInt(key string) int

	// Set stores one value and persists it.
	Set(key string, value any) error

	// Update stores several values and persists them in a single write.
	Update(values map[string]any) error

	// Path returns the backing file location.
	Path() string
}
