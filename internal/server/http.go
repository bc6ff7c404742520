package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

// MCPEndpoint is the path of the streamable HTTP MCP endpoint.
const MCPEndpoint = "/mcp"

// HTTPServerConfig configures the streamable HTTP transport.
type HTTPServerConfig struct {
	// DisableStreaming answers every request with a single JSON response
	// instead of an SSE stream
	DisableStreaming bool

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set
	TLSCertFile string
	TLSKeyFile  string

	Health *HealthChecker
	Logger *slog.Logger
}

// HTTPServer serves the MCP server over streamable HTTP together with the
// health endpoints.
type HTTPServer struct {
	mcpServer  *mcpserver.MCPServer
	sc         *ServerContext
	config     HTTPServerConfig
	httpServer *http.Server
}

// NewHTTPServer creates a streamable HTTP server for mcpSrv.
func NewHTTPServer(mcpSrv *mcpserver.MCPServer, sc *ServerContext, config HTTPServerConfig) (*HTTPServer, error) {
	if mcpSrv == nil {
		return nil, fmt.Errorf("MCP server is required")
	}
	if sc == nil {
		return nil, fmt.Errorf("server context is required")
	}
	if (config.TLSCertFile == "") != (config.TLSKeyFile == "") {
		return nil, fmt.Errorf("both TLS certificate and key files must be provided")
	}
	if config.Health == nil {
		config.Health = NewHealthChecker(sc)
	}
	if config.Logger == nil {
		config.Logger = sc.Logger()
	}

	return &HTTPServer{
		mcpServer: mcpSrv,
		sc:        sc,
		config:    config,
	}, nil
}

// Handler returns the mux serving the MCP endpoint and the health endpoints.
func (s *HTTPServer) Handler() http.Handler {
	opts := []mcpserver.StreamableHTTPOption{
		mcpserver.WithEndpointPath(MCPEndpoint),
	}
	if s.config.DisableStreaming {
		opts = append(opts, mcpserver.WithDisableStreaming(true))
	}
	streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer, opts...)

	mux := http.NewServeMux()
	mux.Handle(MCPEndpoint, InstrumentHTTP(MCPEndpoint, s.sc.Metrics(), streamable))
	s.config.Health.RegisterHealthEndpoints(mux)

	return Recovery(s.config.Logger, mux)
}

// Start listens on addr and blocks until the server is shut down.
func (s *HTTPServer) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if s.config.TLSCertFile != "" {
		s.config.Logger.Info("starting HTTPS server", "addr", addr, "endpoint", MCPEndpoint)
		return s.httpServer.ListenAndServeTLS(s.config.TLSCertFile, s.config.TLSKeyFile)
	}
	s.config.Logger.Info("starting HTTP server", "addr", addr, "endpoint", MCPEndpoint)
	return s.httpServer.ListenAndServe()
}

// Shutdown marks the server as not ready and gracefully stops it.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.config.Health.SetReady(false)
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
