// Package openapi parses OpenAPI 3.x specs into overview, endpoint and schema
// chunks.
package openapi

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/alexandria/internal/core/domain"
	"github.com/custodia-labs/alexandria/internal/core/identity"
	"github.com/custodia-labs/alexandria/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.SpecParser = (*Parser)(nil)

// MinSchemaProperties is the smallest component schema that gets its own chunk.
const MinSchemaProperties = 3

// methods are the operation keys of a path item, in output order.
var methods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// Parser parses OpenAPI documents in YAML or JSON.
type Parser struct{}

// New creates an OpenAPI parser.
func New() *Parser {
	return &Parser{}
}

// ParseSpec reads and chunks the spec at path.
func (p *Parser) ParseSpec(ctx context.Context, path, sourceID string) (*driven.SpecDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, parseError(sourceID, path, err)
	}

	root, err := decode(raw)
	if err != nil {
		return nil, parseError(sourceID, path, err)
	}

	if version := scalar(root, "openapi"); !strings.HasPrefix(version, "3.") {
		found := version
		if found == "" {
			found = scalar(root, "swagger")
		}
		if found == "" {
			found = "unknown"
		}
		return nil, fmt.Errorf("%w: Spec at %s is not OpenAPI 3.x (found: %s). Only OpenAPI 3.x is supported.",
			domain.ErrUnsupportedFormat, path, found)
	}

	b := &builder{sourceID: sourceID, r: &resolver{root: root}}
	info := field(root, "info")

	chunks := []domain.Chunk{b.overview(root)}
	endpoints, err := b.endpoints(root)
	if err != nil {
		return nil, parseError(sourceID, path, err)
	}
	chunks = append(chunks, endpoints...)
	schemas, err := b.schemas(root)
	if err != nil {
		return nil, parseError(sourceID, path, err)
	}
	chunks = append(chunks, schemas...)

	return &driven.SpecDocument{
		Title:   scalar(info, "title"),
		Version: scalar(info, "version"),
		Raw:     raw,
		Chunks:  chunks,
	}, nil
}

func parseError(sourceID, path string, err error) error {
	return fmt.Errorf("%w: Failed to parse OpenAPI spec for %q at %s: %v", domain.ErrInvalidInput, sourceID, path, err)
}

// builder renders chunks for one document.
type builder struct {
	sourceID string
	r        *resolver
}

func (b *builder) chunk(id string, kind domain.ChunkKind, title string, lines []string, metadata map[string]any) domain.Chunk {
	content := strings.Join(lines, "\n")
	return domain.Chunk{
		ID:          id,
		SourceID:    b.sourceID,
		Kind:        kind,
		Title:       title,
		Content:     content,
		ContentHash: identity.ContentHash(content),
		Metadata:    metadata,
	}
}

func (b *builder) overview(root *yaml.Node) domain.Chunk {
	info := field(root, "info")
	title := scalar(info, "title")

	lines := []string{"# " + title, "\nVersion: " + scalar(info, "version")}
	if desc := scalar(info, "description"); desc != "" {
		lines = append(lines, "\n"+desc)
	}
	if servers := items(field(root, "servers")); len(servers) > 0 {
		lines = append(lines, "\n## Servers\n")
		for _, s := range servers {
			line := "- " + scalar(s, "url")
			if desc := scalar(s, "description"); desc != "" {
				line += " (" + desc + ")"
			}
			lines = append(lines, line)
		}
	}

	return b.chunk(identity.OverviewID(b.sourceID), domain.ChunkKindOverview, title, lines, nil)
}

func (b *builder) endpoints(root *yaml.Node) ([]domain.Chunk, error) {
	var chunks []domain.Chunk

	for _, p := range entries(field(root, "paths")) {
		pathItem, err := b.r.deref(p.value)
		if err != nil {
			return nil, err
		}
		shared, err := b.parameters(field(pathItem, "parameters"))
		if err != nil {
			return nil, err
		}

		for _, method := range methods {
			op := field(pathItem, method)
			if op == nil {
				continue
			}
			chunk, err := b.endpoint(p.key, method, op, shared)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", strings.ToUpper(method), p.key, err)
			}
			chunks = append(chunks, chunk)
		}
	}

	return chunks, nil
}

func (b *builder) endpoint(path, method string, op *yaml.Node, shared []*yaml.Node) (domain.Chunk, error) {
	title := strings.ToUpper(method) + " " + path
	lines := []string{"# " + title}
	if summary := scalar(op, "summary"); summary != "" {
		lines = append(lines, "\n"+summary)
	}
	if desc := scalar(op, "description"); desc != "" {
		lines = append(lines, "\n"+desc)
	}

	own, err := b.parameters(field(op, "parameters"))
	if err != nil {
		return domain.Chunk{}, err
	}
	if params := mergeParameters(shared, own); len(params) > 0 {
		lines = append(lines, "\n## Parameters\n")
		for _, param := range params {
			line := fmt.Sprintf("- **%s** [%s]", scalar(param, "name"), scalar(param, "in"))
			schema, err := b.r.deref(field(param, "schema"))
			if err != nil {
				return domain.Chunk{}, err
			}
			if t := scalar(schema, "type"); t != "" {
				line += " : " + t
			}
			if scalar(param, "required") == "true" {
				line += " (required)"
			}
			lines = append(lines, line)
		}
	}

	if bodyRef := field(op, "requestBody"); bodyRef != nil {
		body, err := b.r.deref(bodyRef)
		if err != nil {
			return domain.Chunk{}, err
		}
		if content := entries(field(body, "content")); len(content) > 0 {
			lines = append(lines, "\n## Request Body\n")
			for _, media := range content {
				lines = append(lines, "Content-Type: "+media.key)
				if rendered, ok, err := b.mediaSchema(media.value); err != nil {
					return domain.Chunk{}, err
				} else if ok {
					lines = append(lines, rendered)
				}
			}
		}
	}

	if responses := entries(field(op, "responses")); len(responses) > 0 {
		lines = append(lines, "\n## Responses\n")
		for _, status := range responses {
			resp, err := b.r.deref(status.value)
			if err != nil {
				return domain.Chunk{}, err
			}
			lines = append(lines, fmt.Sprintf("### %s: %s", status.key, scalar(resp, "description")))
			for _, media := range entries(field(resp, "content")) {
				lines = append(lines, "\nContent-Type: "+media.key)
				if rendered, ok, err := b.mediaSchema(media.value); err != nil {
					return domain.Chunk{}, err
				} else if ok {
					lines = append(lines, rendered)
				}
			}
		}
	}

	var operationID, summary any
	if id := scalar(op, "operationId"); id != "" {
		operationID = id
	}
	if s := scalar(op, "summary"); s != "" {
		summary = s
	}
	metadata := map[string]any{
		"path":        path,
		"method":      method,
		"tags":        stringList(op, "tags"),
		"operationId": operationID,
		"summary":     summary,
	}

	return b.chunk(identity.EndpointID(b.sourceID, method, path), domain.ChunkKindEndpoint, title, lines, metadata), nil
}

// parameters dereferences a parameter list.
func (b *builder) parameters(list *yaml.Node) ([]*yaml.Node, error) {
	var out []*yaml.Node
	for _, item := range items(list) {
		param, err := b.r.deref(item)
		if err != nil {
			return nil, err
		}
		out = append(out, param)
	}
	return out, nil
}

// mergeParameters lists path-level parameters the operation does not
// override, then the operation's own.
func mergeParameters(shared, own []*yaml.Node) []*yaml.Node {
	key := func(n *yaml.Node) string { return scalar(n, "in") + ":" + scalar(n, "name") }

	overridden := make(map[string]bool, len(own))
	for _, p := range own {
		overridden[key(p)] = true
	}

	var out []*yaml.Node
	for _, p := range shared {
		if !overridden[key(p)] {
			out = append(out, p)
		}
	}
	return append(out, own...)
}

// mediaSchema renders the schema of a media type object, if it has one.
func (b *builder) mediaSchema(media *yaml.Node) (string, bool, error) {
	schemaNode := field(media, "schema")
	if schemaNode == nil {
		return "", false, nil
	}
	schema, err := b.r.deref(schemaNode)
	if err != nil {
		return "", false, err
	}
	rendered, err := b.renderSchema(schema)
	return rendered, true, err
}

// renderSchema summarises a schema as a short bullet list.
func (b *builder) renderSchema(schema *yaml.Node) (string, error) {
	var lines []string
	schemaType := scalar(schema, "type")
	properties := entries(field(schema, "properties"))
	itemsNode := field(schema, "items")

	switch {
	case schemaType == "object" && properties != nil:
		lines = append(lines, "- type: object", "  properties:")
		for _, prop := range properties {
			resolved, err := b.r.deref(prop.value)
			if err != nil {
				return "", err
			}
			lines = append(lines, fmt.Sprintf("    - %s (%s)%s", prop.key, typeOrUnknown(resolved), describe(resolved)))
		}
	case schemaType == "array" && itemsNode != nil:
		resolved, err := b.r.deref(itemsNode)
		if err != nil {
			return "", err
		}
		itemType := scalar(resolved, "type")
		if itemType == "" {
			itemType = "object"
		}
		lines = append(lines, "- type: array of "+itemType)
	case schemaType != "":
		lines = append(lines, "- type: "+schemaType)
	}

	return strings.Join(lines, "\n"), nil
}

func (b *builder) schemas(root *yaml.Node) ([]domain.Chunk, error) {
	var chunks []domain.Chunk

	for _, entry := range entries(field(field(root, "components"), "schemas")) {
		schema, err := b.r.deref(entry.value)
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", entry.key, err)
		}
		properties := entries(field(schema, "properties"))
		if len(properties) < MinSchemaProperties {
			continue
		}

		required := make(map[string]bool)
		for _, name := range stringList(schema, "required") {
			required[name] = true
		}

		lines := []string{"# " + entry.key}
		if desc := scalar(schema, "description"); desc != "" {
			lines = append(lines, "\n"+desc)
		}
		lines = append(lines, "\n## Properties\n")
		for _, prop := range properties {
			resolved, err := b.r.deref(prop.value)
			if err != nil {
				return nil, fmt.Errorf("schema %s: %w", entry.key, err)
			}
			line := fmt.Sprintf("- **%s** (%s)", prop.key, typeOrUnknown(resolved))
			if required[prop.key] {
				line += " (required)"
			}
			lines = append(lines, line+describe(resolved))
		}

		metadata := map[string]any{
			"schemaName":    entry.key,
			"propertyCount": len(properties),
		}
		chunks = append(chunks, b.chunk(identity.SchemaID(b.sourceID, entry.key), domain.ChunkKindSchema, entry.key, lines, metadata))
	}

	return chunks, nil
}

func typeOrUnknown(schema *yaml.Node) string {
	if t := scalar(schema, "type"); t != "" {
		return t
	}
	return "unknown"
}

func describe(schema *yaml.Node) string {
	if desc := scalar(schema, "description"); desc != "" {
		return " - " + desc
	}
	return ""
}
