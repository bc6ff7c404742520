package common

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/gdrivehelper/internal/instrumentation"
	"github.com/teemow/gdrivehelper/internal/logging"
	"github.com/teemow/gdrivehelper/internal/server"
)

// ToolInfo describes a tool for metrics, tracing and audit logging.
type ToolInfo struct {
	Name string

	// Service and Operation name the Google API call the tool makes
	Service   string
	Operation string

	// ResourceArg is the argument holding the targeted file, folder or
	// spreadsheet ID, if any
	ResourceArg string

	ReadOnly bool
}

// InstrumentedToolHandler wraps a tool handler with a span, tool metrics
// and audit logging.
//
// Usage:
//
//	s.AddTool(tool, common.InstrumentedToolHandler(common.ToolInfo{Name: "drive_list_files", ReadOnly: true}, sc, handler))
func InstrumentedToolHandler(info ToolInfo, sc *server.ServerContext, handler mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		account := GetAccountFromArgs(args)

		attrs := []attribute.KeyValue{
			attribute.String(instrumentation.SpanAttrAccount, account),
			attribute.Bool(instrumentation.SpanAttrReadOnly, info.ReadOnly),
		}
		resourceID := ""
		if info.ResourceArg != "" {
			resourceID = OptionalString(args, info.ResourceArg)
		}
		if resourceID != "" {
			attrs = append(attrs, instrumentation.ResourceID(resourceID))
		}

		ctx, span := instrumentation.StartToolSpan(ctx, info.Name, attrs...)
		defer span.End()

		start := time.Now()
		invocation := instrumentation.NewToolInvocation(info.Name).
			WithSpanContext(ctx).
			WithAccount(account).
			WithService(info.Service, info.Operation).
			WithResource(resourceID).
			WithReadOnly(info.ReadOnly)

		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		switch {
		case err != nil:
			status = instrumentation.StatusError
			invocation.CompleteWithError(err)
			instrumentation.SetSpanError(span, err)
		case result != nil && result.IsError:
			status = instrumentation.StatusError
			invocation.Complete(false, nil)
			invocation.Error = resultText(result)
			span.SetAttributes(attribute.Bool("mcp.tool.is_error", true))
		default:
			invocation.CompleteSuccess()
			instrumentation.SetSpanSuccess(span)
		}

		sc.Logger().DebugContext(ctx, "tool call",
			logging.Tool(info.Name),
			logging.Account(account),
			logging.Status(status),
			slog.Duration(logging.KeyDuration, duration))
		sc.Metrics().RecordToolInvocation(ctx, info.Name, status, account, duration)
		sc.AuditLogger().LogToolInvocation(invocation)

		return result, err
	}
}

// resultText returns the first text content of a tool result.
func resultText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}
