// Package parser groups the document parsers that turn source files into
// chunks. Parsers are pure with respect to their input: the same bytes
// always yield the same chunk ids and content hashes.
//
// Subpackages:
//   - openapi: OpenAPI 3.x specs (YAML or JSON)
//   - markdown: heading-sectioned markdown guides
package parser
