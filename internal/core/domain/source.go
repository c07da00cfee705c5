package domain

import "time"

// Source is a named documentation collection: one API spec with optional
// markdown docs, or a standalone docs set.
type Source struct {
	// ID is derived from Name and never changes for the same name.
	ID string

	// Name is the unique, user-facing identifier (e.g. "payments").
	Name string

	// Version is the spec's info.version, empty for docs-only sources.
	Version string

	// SpecPath is the location of the OpenAPI spec, if any.
	SpecPath string

	// DocsPath is the markdown directory, if any.
	DocsPath string

	// SourceHash covers every raw byte that produced this source's chunks.
	SourceHash string

	// SpecContent is the raw spec text as last ingested.
	SpecContent string

	// CreatedAt is when the source was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the source was last re-ingested.
	UpdatedAt time.Time
}

// HasSpec returns true if the source was ingested from an API spec.
func (s Source) HasSpec() bool {
	return s.SpecPath != ""
}

// RegistryEntry is one source declared in a registry file, with paths
// already resolved.
type RegistryEntry struct {
	// Name is the source name.
	Name string

	// SpecPath is the absolute spec location, empty for docs-only entries.
	SpecPath string

	// DocsPath is the absolute docs directory, may be empty.
	DocsPath string
}

// DocsOnly returns true if the entry has no spec.
func (e RegistryEntry) DocsOnly() bool {
	return e.SpecPath == ""
}
