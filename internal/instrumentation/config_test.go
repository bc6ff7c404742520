package instrumentation

import (
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	for _, key := range []string{"OTEL_SERVICE_NAME", "INSTRUMENTATION_ENABLED", "METRICS_EXPORTER", "TRACING_EXPORTER", "OTEL_TRACES_SAMPLER_ARG", "AUDIT_LOGGING_ENABLED"} {
		t.Setenv(key, "")
	}

	config := DefaultConfig()

	if config.ServiceName != "gdrivehelper" {
		t.Errorf("expected ServiceName 'gdrivehelper', got %q", config.ServiceName)
	}
	if !config.Enabled {
		t.Error("expected Enabled to be true by default")
	}
	if config.MetricsExporter != ExporterPrometheus {
		t.Errorf("expected MetricsExporter 'prometheus', got %q", config.MetricsExporter)
	}
	if config.TracingExporter != ExporterNone {
		t.Errorf("expected TracingExporter 'none', got %q", config.TracingExporter)
	}
	if config.TraceSamplingRate != 0.1 {
		t.Errorf("expected TraceSamplingRate 0.1, got %f", config.TraceSamplingRate)
	}
	if !config.AuditLogging.Enabled || config.AuditLogging.IncludeReads {
		t.Errorf("unexpected audit defaults: %+v", config.AuditLogging)
	}
}

func TestDefaultConfig_FromEnv(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "test-service")
	t.Setenv("INSTRUMENTATION_ENABLED", "false")
	t.Setenv("METRICS_EXPORTER", "stdout")
	t.Setenv("TRACING_EXPORTER", "stdout")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.5")
	t.Setenv("AUDIT_LOGGING_INCLUDE_READS", "true")

	config := DefaultConfig()

	if config.ServiceName != "test-service" {
		t.Errorf("expected ServiceName 'test-service', got %q", config.ServiceName)
	}
	if config.Enabled {
		t.Error("expected Enabled to be false")
	}
	if config.MetricsExporter != ExporterStdout || config.TracingExporter != ExporterStdout {
		t.Errorf("unexpected exporters %q/%q", config.MetricsExporter, config.TracingExporter)
	}
	if config.TraceSamplingRate != 0.5 {
		t.Errorf("expected TraceSamplingRate 0.5, got %f", config.TraceSamplingRate)
	}
	if !config.AuditLogging.IncludeReads {
		t.Error("expected IncludeReads to be true")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{
			name:   "valid defaults",
			config: Config{MetricsExporter: ExporterPrometheus, TracingExporter: ExporterNone, TraceSamplingRate: 0.1},
		},
		{
			name:    "sampling rate too high",
			config:  Config{TraceSamplingRate: 1.5},
			wantErr: "sampling rate",
		},
		{
			name:    "sampling rate negative",
			config:  Config{TraceSamplingRate: -0.1},
			wantErr: "sampling rate",
		},
		{
			name:    "invalid metrics exporter",
			config:  Config{MetricsExporter: "statsd"},
			wantErr: "invalid metrics exporter",
		},
		{
			name:    "invalid tracing exporter",
			config:  Config{TracingExporter: "jaeger"},
			wantErr: "invalid tracing exporter",
		},
		{
			name:    "otlp tracing without endpoint",
			config:  Config{TracingExporter: ExporterOTLP},
			wantErr: "OTLP endpoint is required",
		},
		{
			name:    "otlp metrics without endpoint",
			config:  Config{MetricsExporter: ExporterOTLP},
			wantErr: "OTLP endpoint is required",
		},
		{
			name:   "otlp with endpoint",
			config: Config{MetricsExporter: ExporterOTLP, TracingExporter: ExporterOTLP, OTLPEndpoint: "localhost:4318"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("GDH_TEST_STR", "value")
	t.Setenv("GDH_TEST_BOOL", "true")
	t.Setenv("GDH_TEST_BAD_BOOL", "maybe")
	t.Setenv("GDH_TEST_FLOAT", "0.25")
	t.Setenv("GDH_TEST_BAD_FLOAT", "abc")

	if got := getEnvOrDefault("GDH_TEST_STR", "d"); got != "value" {
		t.Errorf("getEnvOrDefault = %q", got)
	}
	if got := getEnvOrDefault("GDH_TEST_MISSING", "d"); got != "d" {
		t.Errorf("getEnvOrDefault missing = %q", got)
	}
	if got := getEnvBoolOrDefault("GDH_TEST_BOOL", false); !got {
		t.Error("getEnvBoolOrDefault = false, want true")
	}
	if got := getEnvBoolOrDefault("GDH_TEST_BAD_BOOL", true); !got {
		t.Error("getEnvBoolOrDefault with invalid value should return default")
	}
	if got := getEnvFloatOrDefault("GDH_TEST_FLOAT", 0); got != 0.25 {
		t.Errorf("getEnvFloatOrDefault = %f", got)
	}
	if got := getEnvFloatOrDefault("GDH_TEST_BAD_FLOAT", 0.1); got != 0.1 {
		t.Errorf("getEnvFloatOrDefault invalid = %f", got)
	}
}
