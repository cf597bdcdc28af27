package observability

import "log/slog"

// AppMode identifies the surface the process is running as, stamped onto
// every log record and the resource's app.mode attribute.
type AppMode string

const (
	// ModeCLI marks a process driven from the command line.
	ModeCLI AppMode = "cli"
	// ModeMCP marks a process serving the MCP tool surface over stdio.
	ModeMCP AppMode = "mcp"
)

// defaultShutdownTimeoutSec bounds how long Providers.Shutdown waits for
// exporters to flush when Config.ShutdownTimeoutSec is unset.
const defaultShutdownTimeoutSec = 5

// defaultServiceName is used when a caller constructs Config via DefaultConfig.
const defaultServiceName = "branchy"

// Config controls observability provider construction.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Mode           AppMode

	LogLevel slog.Level
	LogJSON  bool

	OTLPEndpoint string
	OTLPInsecure bool
	OTLPHeaders  map[string]string

	// DebugTrace forces the always-on sampler regardless of env vars or SampleRatio.
	DebugTrace bool
	// SampleRatio is used by the TraceIDRatio sampler when no OTEL_TRACES_SAMPLER env var is set.
	SampleRatio float64
	// TraceVerbose disables the PII/high-cardinality attribute filter when true.
	TraceVerbose bool

	ShutdownTimeoutSec int
}

// DefaultConfig returns a Config with no-op exporters (no OTLP endpoint),
// text logging at info level, and the parent-based always-on sampler.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}
