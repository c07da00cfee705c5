// Package services wires the driven ports into the ingestion, search,
// source and settings use cases. Nothing here touches SQL, HTTP or the
// filesystem directly.
package services
