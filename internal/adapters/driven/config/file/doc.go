// Package file provides the TOML-backed configuration store.
//
// Keys are addressed in dot notation ("embedding.provider") and written to
// disk as nested tables:
//
//	[embedding]
//	provider = "ollama"
package file
