package instrumentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

const (
	testAccount   = "work"
	testToolWrite = "sheets_update_table"
	testToolRead  = "drive_list_files"
)

func TestToolInvocation_NewAndComplete(t *testing.T) {
	ti := NewToolInvocation(testToolWrite)

	if ti.Tool != testToolWrite {
		t.Errorf("Tool = %q, want %q", ti.Tool, testToolWrite)
	}
	if ti.StartTime.IsZero() {
		t.Error("StartTime should not be zero")
	}

	ti.CompleteSuccess()

	if !ti.Success {
		t.Error("Success should be true")
	}
	if ti.Duration < 0 {
		t.Error("Duration should not be negative")
	}
	if ti.Status() != StatusSuccess {
		t.Errorf("Status() = %q, want %q", ti.Status(), StatusSuccess)
	}
}

func TestToolInvocation_CompleteWithError(t *testing.T) {
	ti := NewToolInvocation(testToolWrite).CompleteWithError(errors.New("permission denied"))

	if ti.Success {
		t.Error("Success should be false")
	}
	if ti.Error != "permission denied" {
		t.Errorf("Error = %q, want %q", ti.Error, "permission denied")
	}
	if ti.Status() != StatusError {
		t.Errorf("Status() = %q, want %q", ti.Status(), StatusError)
	}
}

func TestToolInvocation_Chaining(t *testing.T) {
	ti := NewToolInvocation(testToolWrite).
		WithAccount(testAccount).
		WithService(ServiceSheets, OperationUpdateValues).
		WithResource("sheet-1").
		WithReadOnly(false).
		WithSpanContext(context.Background())

	if ti.Account != testAccount {
		t.Errorf("Account = %q, want %q", ti.Account, testAccount)
	}
	if ti.ServiceName != ServiceSheets || ti.Operation != OperationUpdateValues {
		t.Errorf("service/operation = %q/%q", ti.ServiceName, ti.Operation)
	}
	if ti.ResourceID != "sheet-1" {
		t.Errorf("ResourceID = %q", ti.ResourceID)
	}
	if ti.TraceID != "" {
		t.Errorf("TraceID = %q, want empty without a span", ti.TraceID)
	}
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestAuditLogger_LogToolInvocation(t *testing.T) {
	tests := []struct {
		name      string
		config    AuditLoggingConfig
		readOnly  bool
		success   bool
		wantLines int
		wantMsg   string
		wantLevel string
	}{
		{"write success", AuditLoggingConfig{Enabled: true}, false, true, 1, "tool_executed", "INFO"},
		{"write failure", AuditLoggingConfig{Enabled: true}, false, false, 1, "tool_failed", "WARN"},
		{"read skipped", AuditLoggingConfig{Enabled: true}, true, true, 0, "", ""},
		{"read included", AuditLoggingConfig{Enabled: true, IncludeReads: true}, true, true, 1, "tool_executed", "INFO"},
		{"disabled", AuditLoggingConfig{Enabled: false}, false, true, 0, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			al := NewAuditLoggerWithConfig(slog.New(slog.NewJSONHandler(&buf, nil)), tt.config)

			tool := testToolWrite
			if tt.readOnly {
				tool = testToolRead
			}
			ti := NewToolInvocation(tool).WithAccount(testAccount).WithReadOnly(tt.readOnly)
			if tt.success {
				ti.CompleteSuccess()
			} else {
				ti.CompleteWithError(errors.New("quota exceeded"))
			}
			al.LogToolInvocation(ti)

			lines := decodeLines(t, &buf)
			if len(lines) != tt.wantLines {
				t.Fatalf("got %d log lines, want %d", len(lines), tt.wantLines)
			}
			if tt.wantLines == 0 {
				return
			}
			if lines[0]["msg"] != tt.wantMsg {
				t.Errorf("msg = %v, want %q", lines[0]["msg"], tt.wantMsg)
			}
			if lines[0]["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %q", lines[0]["level"], tt.wantLevel)
			}
			if lines[0]["component"] != "audit" {
				t.Errorf("component = %v, want audit", lines[0]["component"])
			}
			if lines[0]["account"] != testAccount {
				t.Errorf("account = %v, want %q", lines[0]["account"], testAccount)
			}
		})
	}
}

func TestAuditLogger_NilSafe(t *testing.T) {
	var al *AuditLogger
	al.LogToolInvocation(NewToolInvocation(testToolWrite).CompleteSuccess())

	NewAuditLogger(nil).LogToolInvocation(nil)
}
