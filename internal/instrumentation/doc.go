// Package instrumentation provides OpenTelemetry instrumentation for
// gdrivehelper.
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Drive, Docs and Sheets calls by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of call durations
//   - drive_bytes_transferred_total: Bytes uploaded and downloaded, by direction
//   - sheets_cells_written_total: Cells reported as written by update and append calls
//
// Credential Metrics:
//   - oauth_token_refresh_total: Counter of access token refresh attempts by result
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Tracing
//
// Spans are created for MCP tool invocations (tool.<name>) and Google API
// calls (google.<service>.<operation>).
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: gdrivehelper)
//   - AUDIT_LOGGING_ENABLED / AUDIT_LOGGING_INCLUDE_READS: audit trail of tool calls
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordGoogleAPIOperation(ctx, instrumentation.ServiceSheets,
//		instrumentation.OperationAppendRow, instrumentation.StatusSuccess, time.Since(start))
package instrumentation
