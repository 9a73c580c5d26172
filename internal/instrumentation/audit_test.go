package instrumentation

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestToolInvocation_NewAndComplete(t *testing.T) {
	ti := NewToolInvocation("get_pod")

	if ti.Tool != "get_pod" {
		t.Errorf("Tool = %q, want %q", ti.Tool, "get_pod")
	}
	if ti.StartTime.IsZero() {
		t.Error("StartTime should not be zero")
	}

	time.Sleep(time.Millisecond)
	ti.CompleteSuccess()

	if !ti.Success {
		t.Error("Success should be true")
	}
	if ti.Duration == 0 {
		t.Error("Duration should be non-zero")
	}
	if ti.Error != "" {
		t.Errorf("Error should be empty, got %q", ti.Error)
	}
}

func TestToolInvocation_CompleteWithError(t *testing.T) {
	ti := NewToolInvocation("delete_pod").CompleteWithError(errors.New("permission denied"))

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

func TestToolInvocation_LogAttrs(t *testing.T) {
	ti := NewToolInvocation("delete_pod").
		WithResource("production", "pod", "nginx-abc123").
		CompleteSuccess()

	attrMap := make(map[string]slog.Attr)
	for _, attr := range ti.LogAttrs() {
		attrMap[attr.Key] = attr
	}

	for _, key := range []string{"tool", "duration", "success", "namespace", "resource_type", "resource_name"} {
		if _, ok := attrMap[key]; !ok {
			t.Errorf("Missing attribute: %s", key)
		}
	}
	for _, key := range []string{"error", "trace_id", "span_id"} {
		if _, ok := attrMap[key]; ok {
			t.Errorf("Empty attribute %s should be omitted", key)
		}
	}
}

func TestToolInvocation_WithSpanContext(t *testing.T) {
	if ti := NewToolInvocation("test").WithSpanContext(context.Background()); ti.TraceID != "" || ti.SpanID != "" {
		t.Error("expected empty trace context without a span")
	}

	ctx, span, _ := createTestSpanContext()
	defer span.End()
	if ti := NewToolInvocation("test").WithSpanContext(ctx); ti.TraceID == "" || ti.SpanID == "" {
		t.Error("expected trace context from span")
	}
}

func TestAuditLogger_LogToolInvocation(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	al.LogToolInvocation(NewToolInvocation("scale_deployment").CompleteWithError(errors.New("boom")))

	out := buf.String()
	if !strings.Contains(out, `"level":"WARN"`) {
		t.Errorf("failed invocation should log at warn: %s", out)
	}
	if !strings.Contains(out, `"tool":"scale_deployment"`) {
		t.Errorf("missing tool attribute: %s", out)
	}
}

func TestAuditLogger_New(t *testing.T) {
	if al := NewAuditLogger(nil); al.logger == nil {
		t.Error("logger should not be nil when created with nil")
	}

	logger := slog.Default()
	if al := NewAuditLogger(logger); al.logger != logger {
		t.Error("logger should be the provided logger")
	}
}
