package instrumentation

import (
	"context"
	"log/slog"
	"time"
)

// ToolInvocation is the audit record of one MCP tool call.
type ToolInvocation struct {
	Tool         string
	Namespace    string
	ResourceType string
	ResourceName string
	StartTime    time.Time
	Duration     time.Duration
	Success      bool
	Error        string
	TraceID      string
	SpanID       string
}

// NewToolInvocation starts the record of a call to tool.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{Tool: tool, StartTime: time.Now()}
}

// WithResource records the target of the call.
func (ti *ToolInvocation) WithResource(namespace, resourceType, resourceName string) *ToolInvocation {
	ti.Namespace = namespace
	ti.ResourceType = resourceType
	ti.ResourceName = resourceName
	return ti
}

// WithSpanContext records the trace context carried by ctx.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	ti.TraceID = GetTraceID(ctx)
	ti.SpanID = GetSpanID(ctx)
	return ti
}

// Complete closes the record.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// CompleteSuccess closes the record as successful.
func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.Complete(true, nil)
}

// CompleteWithError closes the record as failed.
func (ti *ToolInvocation) CompleteWithError(err error) *ToolInvocation {
	return ti.Complete(false, err)
}

// Status returns StatusSuccess or StatusError.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns the record as slog attributes. Empty fields are omitted.
func (ti *ToolInvocation) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}
	optional := []struct{ key, value string }{
		{"namespace", ti.Namespace},
		{"resource_type", ti.ResourceType},
		{"resource_name", ti.ResourceName},
		{"error", ti.Error},
		{"trace_id", ti.TraceID},
		{"span_id", ti.SpanID},
	}
	for _, o := range optional {
		if o.value != "" {
			attrs = append(attrs, slog.String(o.key, o.value))
		}
	}
	return attrs
}

// AuditLogger writes tool invocation records.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger returns an AuditLogger writing to logger, or to the default
// logger when logger is nil.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{logger: logger}
}

// LogToolInvocation logs ti at info level, or warn level when it failed.
func (a *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	level := slog.LevelInfo
	if !ti.Success {
		level = slog.LevelWarn
	}
	a.logger.LogAttrs(context.Background(), level, "tool invocation", ti.LogAttrs()...)
}
