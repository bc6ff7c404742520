package google

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/option"

	"github.com/teemow/gdrivehelper/internal/instrumentation"
	"github.com/teemow/gdrivehelper/internal/logging"
)

// ClientConfig holds settings shared by the Drive, Docs and Sheets clients.
type ClientConfig struct {
	// APIOptions are appended after the authenticated HTTP client, so an
	// option.WithHTTPClient here replaces it.
	APIOptions []option.ClientOption

	// BuildOptions are used when a client is created from a CredentialInput.
	BuildOptions []BuildOption

	Metrics *instrumentation.Metrics
	Logger  *slog.Logger
}

// ClientOption configures a ClientConfig.
type ClientOption func(*ClientConfig)

// WithAPIOptions adds google.golang.org/api client options, such as a
// custom endpoint.
func WithAPIOptions(opts ...option.ClientOption) ClientOption {
	return func(c *ClientConfig) {
		c.APIOptions = append(c.APIOptions, opts...)
	}
}

// WithBuildOptions forwards options to BuildCredentials.
func WithBuildOptions(opts ...BuildOption) ClientOption {
	return func(c *ClientConfig) {
		c.BuildOptions = append(c.BuildOptions, opts...)
	}
}

func WithMetrics(m *instrumentation.Metrics) ClientOption {
	return func(c *ClientConfig) {
		c.Metrics = m
	}
}

func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *ClientConfig) {
		c.Logger = logger
	}
}

// NewClientConfig applies opts over the defaults.
func NewClientConfig(opts ...ClientOption) *ClientConfig {
	c := &ClientConfig{}
	for _, opt := range opts {
		opt(c)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// ServiceOptions returns the option list for a google.golang.org/api
// NewService call authenticated with creds.
func (c *ClientConfig) ServiceOptions(ctx context.Context, creds *Credentials) []option.ClientOption {
	opts := make([]option.ClientOption, 0, len(c.APIOptions)+1)
	if creds != nil {
		opts = append(opts, option.WithHTTPClient(creds.HTTPClient(ctx)))
	}
	return append(opts, c.APIOptions...)
}

// Credentials builds credentials from input with the configured build
// options followed by extra.
func (c *ClientConfig) Credentials(ctx context.Context, input CredentialInput, extra ...BuildOption) (*Credentials, error) {
	opts := append([]BuildOption{WithRefreshMetrics(c.Metrics)}, c.BuildOptions...)
	opts = append(opts, extra...)
	return BuildCredentials(ctx, input, opts...)
}

// Observe runs fn as the Google API call service.operation, recording a
// client span, duration metrics and a debug log line. resourceID may be empty.
func (c *ClientConfig) Observe(ctx context.Context, service, operation, resourceID string, fn func(ctx context.Context) error) error {
	var attrs []attribute.KeyValue
	if resourceID != "" {
		attrs = append(attrs, instrumentation.ResourceID(resourceID))
	}
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, service, operation, attrs...)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	c.Metrics.RecordGoogleAPIOperation(ctx, service, operation, status, duration)

	c.logger().DebugContext(ctx, "google api call",
		logging.Service(service),
		logging.Operation(operation),
		logging.ResourceID(resourceID),
		logging.Status(status),
		slog.Duration(logging.KeyDuration, duration),
		logging.Err(err))

	return err
}

func (c *ClientConfig) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
