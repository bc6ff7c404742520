package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/gdrivehelper/internal/instrumentation"
)

func newTestProvider(t *testing.T, enabled bool, exporter string) *instrumentation.Provider {
	t.Helper()
	ctx := context.Background()
	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         enabled,
		MetricsExporter: exporter,
		TracingExporter: instrumentation.ExporterNone,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })
	return provider
}

func TestNewMetricsServer(t *testing.T) {
	tests := []struct {
		name     string
		provider func(t *testing.T) *instrumentation.Provider
		addr     string
		wantAddr string
		wantErr  string
	}{
		{
			name: "prometheus exporter",
			provider: func(t *testing.T) *instrumentation.Provider {
				return newTestProvider(t, true, instrumentation.ExporterPrometheus)
			},
			addr:     ":9091",
			wantAddr: ":9091",
		},
		{
			name: "default addr",
			provider: func(t *testing.T) *instrumentation.Provider {
				return newTestProvider(t, true, instrumentation.ExporterPrometheus)
			},
			wantAddr: DefaultMetricsAddr,
		},
		{
			name:     "nil provider",
			provider: func(*testing.T) *instrumentation.Provider { return nil },
			wantErr:  "instrumentation provider is required",
		},
		{
			name:     "disabled provider",
			provider: func(t *testing.T) *instrumentation.Provider { return newTestProvider(t, false, "") },
			wantErr:  "instrumentation provider is not enabled",
		},
		{
			name: "stdout exporter",
			provider: func(t *testing.T) *instrumentation.Provider {
				return newTestProvider(t, true, instrumentation.ExporterStdout)
			},
			wantErr: "metrics exporter is not prometheus",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, err := NewMetricsServer(MetricsServerConfig{
				Addr:                    tt.addr,
				InstrumentationProvider: tt.provider(t),
			})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAddr, srv.Addr())
		})
	}
}

func TestMetricsServer_Handler(t *testing.T) {
	provider := newTestProvider(t, true, instrumentation.ExporterPrometheus)
	provider.Metrics().RecordGoogleAPIOperation(context.Background(), instrumentation.ServiceDrive, instrumentation.OperationListFiles, instrumentation.StatusSuccess, 10*time.Millisecond)

	srv, err := NewMetricsServer(MetricsServerConfig{InstrumentationProvider: provider})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "google_api_operations_total")

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMetricsServer_StartAndShutdown(t *testing.T) {
	srv, err := NewMetricsServer(MetricsServerConfig{
		Addr:                    "127.0.0.1:0",
		InstrumentationProvider: newTestProvider(t, true, instrumentation.ExporterPrometheus),
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err, "graceful shutdown must not surface as a Start error")
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}
}

func TestMetricsServer_ShutdownWithoutStart(t *testing.T) {
	srv, err := NewMetricsServer(MetricsServerConfig{
		InstrumentationProvider: newTestProvider(t, true, instrumentation.ExporterPrometheus),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, srv.Shutdown(ctx))
}
