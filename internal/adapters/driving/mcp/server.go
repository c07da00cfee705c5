package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/alexandria/internal/logger"
)

// Version is reported to clients during initialization.
const Version = "0.1.0"

// HTTPPath is where the streamable HTTP transport is mounted.
const HTTPPath = "/mcp"

const instructions = `Alexandria indexes OpenAPI specs and markdown docs.
Use search-docs for natural-language questions, or search-api-docs and search-arch-docs
to restrict results to spec chunks or guides. Use list-apis, get-api-endpoints and
get-api-spec to browse, or read the alexandria://sources resource.`

const shutdownTimeout = 5 * time.Second

// Server exposes the search and source services as MCP tools and resources.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer validates ports and registers every tool and resource.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(
			&mcp.Implementation{Name: "alexandria", Version: Version},
			&mcp.ServerOptions{Instructions: instructions},
		),
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run serves JSON-RPC over stdio until ctx is cancelled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	logger.Debug("mcp: serving over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the HTTP routes: the streamable transport at HTTPPath
// and a plain liveness probe at /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(HTTPPath, mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

// RunHTTP serves Handler on addr until ctx is cancelled, then drains open
// requests for up to shutdownTimeout.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("mcp: shutdown: %v", err)
		}
	}()

	logger.Debug("mcp: serving over http on %s%s", addr, HTTPPath)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}
