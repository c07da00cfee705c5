package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for Alexandria resources.
	uriScheme = "alexandria://"

	sourcesURI = uriScheme + "sources"
)

// sourceInfo is the JSON shape of one entry in the sources resource.
type sourceInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Version   string    `json:"version,omitempty"`
	SpecPath  string    `json:"specPath,omitempty"`
	DocsPath  string    `json:"docsPath,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         sourcesURI,
		Name:        "sources",
		Description: "All indexed API and documentation sources",
		MIMEType:    "application/json",
	}, s.handleSourcesResource)
}

// handleSourcesResource returns every indexed source as JSON.
func (s *Server) handleSourcesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	sources, err := s.ports.Source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}

	infos := make([]sourceInfo, len(sources))
	for i, src := range sources {
		infos[i] = sourceInfo{
			ID:        src.ID,
			Name:      src.Name,
			Version:   src.Version,
			SpecPath:  src.SpecPath,
			DocsPath:  src.DocsPath,
			UpdatedAt: src.UpdatedAt,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling sources: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
