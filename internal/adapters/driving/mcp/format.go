package mcp

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/alexandria/internal/core/domain"
)

// Messages for expected-empty states.
const (
	msgNoAPIs    = "No APIs indexed yet."
	msgNoResults = "No results found for your query."
)

func msgAPINotFound(name string) string {
	return fmt.Sprintf("API %q not found.", name)
}

func msgNoEndpoints(name string) string {
	return fmt.Sprintf("No endpoints found for %q.", name)
}

// formatAPIList renders indexed sources as a markdown list.
func formatAPIList(sources []domain.Source) string {
	if len(sources) == 0 {
		return msgNoAPIs
	}

	var sb strings.Builder
	sb.WriteString("## Indexed APIs\n")
	for _, src := range sources {
		sb.WriteString("\n- **")
		sb.WriteString(src.Name)
		sb.WriteString("**")
		if src.Version != "" {
			fmt.Fprintf(&sb, " (v%s)", src.Version)
		}
		if !src.HasSpec() {
			sb.WriteString(" (docs)")
		}
	}
	return sb.String()
}

// formatSearchResults renders hits with their kind and source name.
func formatSearchResults(results []domain.SearchResult) string {
	if len(results) == 0 {
		return msgNoResults
	}

	sections := make([]string, len(results))
	for i, r := range results {
		source := r.SourceName
		if source == "" {
			source = r.Chunk.SourceID
		}
		sections[i] = fmt.Sprintf("### %s\n`%s` · %s\n\n%s", r.Chunk.Title, r.Chunk.Kind, source, r.Chunk.Content)
	}
	return "## Search Results\n\n" + strings.Join(sections, "\n\n---\n\n")
}

// formatEndpointList renders endpoint chunks as method, path and title.
func formatEndpointList(name string, endpoints []domain.Chunk) string {
	if len(endpoints) == 0 {
		return msgNoEndpoints(name)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s Endpoints\n", name)
	for _, c := range endpoints {
		method := strings.ToUpper(c.MetadataString("method"))
		path := c.MetadataString("path")
		if method != "" && path != "" {
			fmt.Fprintf(&sb, "\n- **%s** `%s` - %s", method, path, c.Title)
		} else {
			fmt.Fprintf(&sb, "\n- %s", c.Title)
		}
	}
	return sb.String()
}
