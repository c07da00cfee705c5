package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/alexandria/internal/core/domain"
	"github.com/custodia-labs/alexandria/internal/logger"
)

// ArchSourceName is the docs source searched by search-arch-docs.
const ArchSourceName = "arch"

// ListAPIsInput is the input schema for list-apis. It takes no arguments.
type ListAPIsInput struct{}

// SearchInput is the input schema for search-docs and search-api-docs.
type SearchInput struct {
	Query   string   `json:"query" jsonschema:"natural language search query"`
	APIName string   `json:"apiName,omitempty" jsonschema:"filter results to a specific API by name"`
	Types   []string `json:"types,omitempty" jsonschema:"filter by chunk types: overview, endpoint, schema, glossary, use-case, guide"`
	Limit   int      `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 20)"`
}

// ArchSearchInput is the input schema for search-arch-docs.
type ArchSearchInput struct {
	Query string   `json:"query" jsonschema:"natural language search query"`
	Types []string `json:"types,omitempty" jsonschema:"filter by chunk types: overview, endpoint, schema, glossary, use-case, guide"`
	Limit int      `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 20)"`
}

// APINameInput is the input schema for tools addressing one API.
type APINameInput struct {
	APIName string `json:"apiName" jsonschema:"name of the API"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list-apis",
		Title:       "List APIs",
		Description: "List all indexed API documentation sources with their names and versions",
	}, s.handleListAPIs)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:  "search-docs",
		Title: "Search Documentation",
		Description: "Search indexed API documentation using natural language. " +
			"Returns relevant chunks ranked by hybrid search (vector + full-text).",
	}, s.handleSearchDocs)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:  "search-api-docs",
		Title: "Search API Documentation",
		Description: "Search indexed API documentation: endpoints, schemas, request/response formats and API behaviour. " +
			"Use this when you need to find information about a specific API.",
	}, s.handleSearchAPIDocs)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:  "search-arch-docs",
		Title: "Search Architecture Documentation",
		Description: "Search architecture documentation. Use this when you need to understand architecture concepts, " +
			"write code to expose an API, or write code to consume an API.",
	}, s.handleSearchArchDocs)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get-api-endpoints",
		Title:       "Get API Endpoints",
		Description: "List all endpoints for a specific API, showing HTTP method, path, and summary",
	}, s.handleGetAPIEndpoints)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get-api-spec",
		Title:       "Get API Spec",
		Description: "Return the full raw OpenAPI specification for an API",
	}, s.handleGetAPISpec)
}

// handleListAPIs handles the list-apis tool invocation.
func (s *Server) handleListAPIs(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListAPIsInput,
) (*mcp.CallToolResult, any, error) {
	sources, err := s.ports.Source.List(ctx)
	if err != nil {
		return failure("Failed to list APIs", err), nil, nil
	}
	return text(formatAPIList(sources)), nil, nil
}

// handleSearchDocs handles the search-docs tool invocation.
func (s *Server) handleSearchDocs(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, any, error) {
	return s.search(ctx, input.Query, input.APIName, input.Types, input.Limit), nil, nil
}

// handleSearchAPIDocs handles the search-api-docs tool invocation.
func (s *Server) handleSearchAPIDocs(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, any, error) {
	return s.search(ctx, input.Query, input.APIName, input.Types, input.Limit), nil, nil
}

// handleSearchArchDocs handles the search-arch-docs tool invocation.
func (s *Server) handleSearchArchDocs(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ArchSearchInput,
) (*mcp.CallToolResult, any, error) {
	_, err := s.ports.Source.GetByName(ctx, ArchSourceName)
	if errors.Is(err, domain.ErrSourceNotFound) {
		return errorText("Architecture documentation not indexed. Run ingestion first."), nil, nil
	}
	if err != nil {
		return failure("Search failed", err), nil, nil
	}
	return s.search(ctx, input.Query, ArchSourceName, input.Types, input.Limit), nil, nil
}

// search resolves the optional API name and kinds, then runs the query.
func (s *Server) search(ctx context.Context, query, apiName string, types []string, limit int) *mcp.CallToolResult {
	opts := domain.SearchOptions{Limit: limit}

	if apiName != "" {
		src, err := s.ports.Source.GetByName(ctx, apiName)
		if errors.Is(err, domain.ErrSourceNotFound) {
			return errorText(msgAPINotFound(apiName))
		}
		if err != nil {
			return failure("Search failed", err)
		}
		opts.SourceID = src.ID
	}

	if len(types) > 0 {
		kinds, err := domain.ParseChunkKinds(types)
		if err != nil {
			return failure("Search failed", err)
		}
		opts.Kinds = kinds
	}

	logger.Debug("mcp: search %q (api=%q, types=%v)", query, apiName, types)
	results, err := s.ports.Search.Search(ctx, query, opts)
	if err != nil {
		return failure("Search failed", err)
	}
	return text(formatSearchResults(results))
}

// handleGetAPIEndpoints handles the get-api-endpoints tool invocation.
func (s *Server) handleGetAPIEndpoints(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input APINameInput,
) (*mcp.CallToolResult, any, error) {
	endpoints, err := s.ports.Source.Endpoints(ctx, input.APIName)
	if errors.Is(err, domain.ErrSourceNotFound) {
		return text(msgAPINotFound(input.APIName)), nil, nil
	}
	if err != nil {
		return failure("Failed to list endpoints", err), nil, nil
	}
	return text(formatEndpointList(input.APIName, endpoints)), nil, nil
}

// handleGetAPISpec handles the get-api-spec tool invocation.
func (s *Server) handleGetAPISpec(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input APINameInput,
) (*mcp.CallToolResult, any, error) {
	spec, err := s.ports.Source.Spec(ctx, input.APIName)
	switch {
	case errors.Is(err, domain.ErrSourceNotFound):
		return errorText(msgAPINotFound(input.APIName)), nil, nil
	case errors.Is(err, domain.ErrNotFound):
		return errorText(fmt.Sprintf("No spec content stored for %q.", input.APIName)), nil, nil
	case err != nil:
		return failure("Failed to get spec", err), nil, nil
	}
	return text(spec), nil, nil
}

func text(s string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: s}},
	}
}

func errorText(s string) *mcp.CallToolResult {
	r := text(s)
	r.IsError = true
	return r
}

func failure(prefix string, err error) *mcp.CallToolResult {
	logger.Warn("mcp: %s: %v", prefix, err)
	return errorText(fmt.Sprintf("%s: %v", prefix, err))
}
