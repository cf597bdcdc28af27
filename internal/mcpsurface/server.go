package mcpsurface

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/TodayNightt/branchy-text-editor/internal/editorstate"
	"github.com/TodayNightt/branchy-text-editor/pkg/observability"
)

const (
	serverName    = "branchy"
	serverVersion = "1.0.0"
	toolCount     = 10
)

// Deps holds injectable dependencies for the MCP server, matching the
// teacher's pkg/mcp/server.go ServerDeps shape.
type Deps struct {
	Logger  *slog.Logger
	Metrics *observability.REDMetrics
	Tracer  trace.Tracer
	// Meter, when non-nil, is used to build per-parse counters/histograms
	// (observability.AnalysisMetrics) and the file-table/tree-cache hit-miss
	// gauges (observability.RegisterCacheMetrics). Both are wired into the
	// editorstate.State built for this Surface.
	Meter metric.Meter
}

// Surface wraps the MCP SDK server with the editor's command-surface tool
// registrations.
type Surface struct {
	inner   *mcpsdk.Server
	mu      sync.RWMutex
	tools   []string
	metrics *observability.REDMetrics
	tracer  trace.Tracer
	state   *editorstate.State
}

// NewSurface builds a Surface backed by a fresh editorstate.State and
// registers ten §6 commands as MCP tools; get_current_language_theme and
// get_editor_config are not registered.
func NewSurface(deps Deps) (*Surface, error) {
	state, err := editorstate.New()
	if err != nil {
		return nil, fmt.Errorf("build editor state: %w", err)
	}

	if deps.Meter != nil {
		analysisMetrics, err := observability.NewAnalysisMetrics(deps.Meter)
		if err != nil {
			return nil, fmt.Errorf("build analysis metrics: %w", err)
		}

		state.SetMetrics(analysisMetrics)

		if err := observability.RegisterCacheMetrics(deps.Meter, state.FileCacheStats(), state.TreeCacheStats()); err != nil {
			return nil, fmt.Errorf("register cache metrics: %w", err)
		}
	}

	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{Name: serverName, Version: serverVersion},
		opts,
	)

	s := &Surface{
		inner:   inner,
		tools:   make([]string, 0, toolCount),
		metrics: deps.Metrics,
		tracer:  deps.Tracer,
		state:   state,
	}

	s.registerTools()

	return s, nil
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Surface) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)

	return names
}

// Run starts the MCP server on stdio transport, blocking until the context
// is canceled or the connection closes.
func (s *Surface) Run(ctx context.Context) error {
	if err := s.inner.Run(ctx, &mcpsdk.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

func (s *Surface) registerTools() {
	addTool(s, ToolGetFileSystemInfo, "List a directory's contents recursively up to a depth cutoff.", handleGetFileSystemInfo)
	addTool(s, ToolOpenFile, "Open a file for editing, classifying its language from its extension.", s.handleOpenFile)
	addTool(s, ToolCloseFile, "Close an open file; idempotent on an unknown id.", s.handleCloseFile)
	addTool(s, ToolGetSourceCodeIfAny, "Return a file's current buffer, reparsing it if a parser is available.", s.handleGetSourceCodeIfAny)
	addTool(s, ToolSaveFile, "Write a file's current buffer to disk.", s.handleSaveFile)
	addTool(s, ToolHandleFileChanges, "Apply a buffer change (and optional incremental edit) and reparse.", s.handleFileChanges)
	addTool(s, ToolSetHighlights, "Compute the delta-encoded semantic token stream for a (sub-)buffer.", s.handleSetHighlights)
	addTool(s, ToolReset, "Clear the file table and tree cache.", s.handleReset)
	addTool(s, ToolGetTokensLegend, "Return the modified token-type/modifier legend for a language.", s.handleGetTokensLegend)
	addTool(s, ToolGetCurrentlySupportedLangs, "List every supported LanguageTag.", s.handleGetCurrentlySupportedLanguage)
}

func addTool[Input any](
	s *Surface,
	name, description string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{Name: name, Description: description},
		withMetrics(s.metrics, name, withTracing(s.tracer, name, handler)))

	s.trackTool(name)
}

func (s *Surface) trackTool(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}

const (
	mcpSpanPrefix  = "mcp."
	traceIDMetaKey = "trace_id"
)

// withTracing wraps a tool handler with an OTel span per invocation,
// carried over from the teacher's pkg/mcp/server.go withTracing verbatim.
func withTracing[Input any](
	tracer trace.Tracer,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if tracer == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx, span := tracer.Start(ctx, mcpSpanPrefix+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)

		sc := span.SpanContext()
		if sc.IsSampled() && result != nil {
			traceContent := &mcpsdk.TextContent{Text: fmt.Sprintf("%s=%s", traceIDMetaKey, sc.TraceID().String())}
			result.Content = append(result.Content, traceContent)
		}

		return result, output, err
	}
}

// withMetrics wraps a tool handler with RED metrics, carried over from the
// teacher's pkg/mcp/server.go withMetrics verbatim.
func withMetrics[Input any](
	metrics *observability.REDMetrics,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if metrics == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		start := time.Now()

		decInflight := metrics.TrackInflight(ctx, mcpSpanPrefix+toolName)
		defer decInflight()

		result, output, err := handler(ctx, req, input)

		status := "ok"
		if err != nil || (result != nil && result.IsError) {
			status = "error"
		}

		metrics.RecordRequest(ctx, mcpSpanPrefix+toolName, status, time.Since(start))

		return result, output, err
	}
}
