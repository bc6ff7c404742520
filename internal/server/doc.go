// Package server provides the MCP server context, health endpoints and the
// HTTP plumbing for the gdrivehelper MCP server.
//
// # Key Components
//
// ServerContext manages Drive, Docs and Sheets clients with lazy
// initialization and caching per account. Credentials are read from a
// tokenstore.Store and refreshed tokens are written back to it.
//
// HealthChecker serves /healthz, /readyz and /healthz/detailed for the
// streamable HTTP transport.
//
// MetricsServer exposes Prometheus metrics on a dedicated port, and
// InstrumentHTTP records request counts and latencies of the MCP endpoint.
package server
