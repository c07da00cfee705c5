// Package domain holds the types every layer shares: sources and their
// chunks, search options and results, ingestion outcomes, settings, and the
// sentinel errors that classify failures as fatal or degradable.
//
// It imports only the standard library. Everything else in internal/
// depends on domain, never the reverse.
package domain
