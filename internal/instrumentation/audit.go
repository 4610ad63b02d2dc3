package instrumentation

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ToolInvocation captures one MCP tool call for audit logging.
type ToolInvocation struct {
	ID        string
	Tool      string
	Arguments map[string]any
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string
	TraceID   string
	SpanID    string
}

// NewToolInvocation starts tracking an invocation of tool.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		ID:        uuid.NewString(),
		Tool:      tool,
		StartTime: time.Now(),
	}
}

// WithArguments attaches the call arguments. Only argument names are logged.
func (ti *ToolInvocation) WithArguments(args map[string]any) *ToolInvocation {
	ti.Arguments = args
	return ti
}

// WithSpanContext copies the trace and span ids from ctx, if any.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	ti.TraceID = GetTraceID(ctx)
	ti.SpanID = GetSpanID(ctx)
	return ti
}

// Complete marks the invocation as finished.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// CompleteSuccess marks the invocation as successful.
func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.Complete(true, nil)
}

// CompleteWithError marks the invocation as failed.
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

// ArgumentNames returns the sorted names of the supplied arguments. Values are
// omitted because ids and filters can be sensitive.
func (ti *ToolInvocation) ArgumentNames() []string {
	names := make([]string, 0, len(ti.Arguments))
	for name := range ti.Arguments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LogAuditAttrs returns the full attribute set for the audit trail.
func (ti *ToolInvocation) LogAuditAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("invocation_id", ti.ID),
		slog.String("tool", ti.Tool),
		slog.Any("arguments", ti.ArgumentNames()),
		slog.Time("start_time", ti.StartTime),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}
	return attrs
}

// AuditLogger writes tool invocation records.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates an AuditLogger. A nil logger falls back to slog.Default().
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{logger: logger}
}

// LogToolInvocation writes one audit record. Failed invocations are logged at
// warn level.
func (al *AuditLogger) LogToolInvocation(ctx context.Context, ti *ToolInvocation) {
	if al == nil || ti == nil {
		return
	}
	level := slog.LevelInfo
	if !ti.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(ctx, level, "tool_invocation", ti.LogAuditAttrs()...)
}
