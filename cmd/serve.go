package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/gdrivehelper/internal/instrumentation"
	"github.com/teemow/gdrivehelper/internal/logging"
	"github.com/teemow/gdrivehelper/internal/resources"
	"github.com/teemow/gdrivehelper/internal/server"
	"github.com/teemow/gdrivehelper/internal/tools/docs_tools"
	"github.com/teemow/gdrivehelper/internal/tools/drive_tools"
	"github.com/teemow/gdrivehelper/internal/tools/sheets_tools"
	"github.com/teemow/gdrivehelper/pkg/google"
)

// Supported MCP transports.
const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

// serveOptions holds the flags of the serve command.
type serveOptions struct {
	transport        string
	httpAddr         string
	yolo             bool
	disableStreaming bool
	tlsCertFile      string
	tlsKeyFile       string
	metricsEnabled   bool
	metricsAddr      string
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide Google Drive,
Docs and Sheets tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport on /mcp

Safety Mode:
  By default, the server operates in read-only mode, providing only listing and
  lookup tools. Use --yolo to enable write operations (uploads, deletions,
  document creation, sheet updates).

Credentials:
  Every tool takes an optional account argument. The token of that account is
  loaded from the token store on first use and refreshed tokens are saved back.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			loadServeEnvVars(cmd, &opts)
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.transport, "transport", transportStdio, "Transport type: stdio or streamable-http. Can also use MCP_TRANSPORT env var.")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport). Can also use MCP_HTTP_ADDR env var.")
	cmd.Flags().BoolVar(&opts.yolo, "yolo", false, "Enable write operations (uploads, deletions, sheet updates). Default is read-only mode.")
	cmd.Flags().BoolVar(&opts.disableStreaming, "disable-streaming", false, "Disable streaming for HTTP transport (for compatibility with certain clients)")
	cmd.Flags().StringVar(&opts.tlsCertFile, "tls-cert-file", "", "Path to TLS certificate file (PEM format). If provided with --tls-key-file, enables HTTPS. Can also use TLS_CERT_FILE env var.")
	cmd.Flags().StringVar(&opts.tlsKeyFile, "tls-key-file", "", "Path to TLS private key file (PEM format). If provided with --tls-cert-file, enables HTTPS. Can also use TLS_KEY_FILE env var.")
	cmd.Flags().BoolVar(&opts.metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func loadServeEnvVars(cmd *cobra.Command, opts *serveOptions) {
	envFallback(cmd, "transport", "MCP_TRANSPORT", &opts.transport)
	envFallback(cmd, "http-addr", "MCP_HTTP_ADDR", &opts.httpAddr)
	envFallback(cmd, "tls-cert-file", "TLS_CERT_FILE", &opts.tlsCertFile)
	envFallback(cmd, "tls-key-file", "TLS_KEY_FILE", &opts.tlsKeyFile)
	envFallback(cmd, "metrics-addr", "METRICS_ADDR", &opts.metricsAddr)

	if !cmd.Flags().Changed("metrics-enabled") {
		if v := os.Getenv("METRICS_ENABLED"); v != "" {
			if enabled, err := strconv.ParseBool(v); err == nil {
				opts.metricsEnabled = enabled
			}
		}
	}
}

func runServe(ctx context.Context, opts serveOptions) error {
	if opts.transport != transportStdio && opts.transport != transportStreamableHTTP {
		return fmt.Errorf("unsupported transport type: %s (supported: %s, %s)", opts.transport, transportStdio, transportStreamableHTTP)
	}
	logger := globals.logger
	if logger == nil {
		logger = slog.Default()
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	instrConfig.TokenStore = globals.tokenStore

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	store, err := globals.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	clientOpts := globals.clientOptions()
	if provider.Enabled() {
		clientOpts = append(clientOpts, google.WithMetrics(provider.Metrics()))
	}

	serverContext, err := server.NewServerContext(ctx, store, clientOpts...)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("error during server context shutdown", logging.Err(err))
		}
	}()
	if provider.Enabled() {
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging))
	}

	mcpSrv := mcpserver.NewMCPServer("gdrivehelper", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
		mcpserver.WithRecovery(),
	)

	readOnly := !opts.yolo
	if readOnly {
		logger.Info("starting server in READ-ONLY mode (use --yolo to enable write operations)")
	} else {
		logger.Info("starting server with WRITE operations enabled (--yolo flag is set)")
	}

	if err := registerAllTools(mcpSrv, serverContext, readOnly); err != nil {
		return err
	}

	if opts.transport == transportStdio {
		return runStdioServer(mcpSrv)
	}
	return runStreamableHTTPServer(ctx, mcpSrv, serverContext, provider, opts, logger)
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	if err := mcpserver.ServeStdio(mcpSrv); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Drive tools",
			register: func() error {
				return drive_tools.RegisterDriveTools(mcpSrv, sc, readOnly)
			},
		},
		{
			name: "Docs tools",
			register: func() error {
				return docs_tools.RegisterDocsTools(mcpSrv, sc, readOnly)
			},
		},
		{
			name: "Sheets tools",
			register: func() error {
				return sheets_tools.RegisterSheetsTools(mcpSrv, sc, readOnly)
			},
		},
		{
			name: "account resources",
			register: func() error {
				return resources.RegisterAccountResources(mcpSrv, sc)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, provider *instrumentation.Provider, opts serveOptions, logger *slog.Logger) error {
	metricsServer, err := startMetricsServer(provider, opts, logger)
	if err != nil {
		return err
	}
	if metricsServer != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("error during metrics server shutdown", logging.Err(err))
			}
		}()
	}

	httpServer, err := server.NewHTTPServer(mcpSrv, sc, server.HTTPServerConfig{
		DisableStreaming: opts.disableStreaming,
		TLSCertFile:      opts.tlsCertFile,
		TLSKeyFile:       opts.tlsKeyFile,
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(opts.httpAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}

// startMetricsServer starts the Prometheus endpoint when the provider exports
// to Prometheus. It returns nil when metrics are disabled.
func startMetricsServer(provider *instrumentation.Provider, opts serveOptions, logger *slog.Logger) (*server.MetricsServer, error) {
	if !opts.metricsEnabled || !provider.Enabled() || !provider.ServesPrometheus() {
		return nil, nil
	}

	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    opts.metricsAddr,
		InstrumentationProvider: provider,
		Logger:                  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	go func() {
		if err := metricsServer.Start(); err != nil {
			logger.Error("metrics server failed", logging.Err(err))
		}
	}()
	return metricsServer, nil
}
