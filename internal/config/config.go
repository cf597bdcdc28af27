package config

import (
	"errors"
	"log/slog"

	"github.com/TodayNightt/branchy-text-editor/pkg/observability"
)

// Config is the top-level process configuration for the editor backend.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Editor        EditorConfig        `mapstructure:"editor"`
}

// ServerConfig controls the MCP command surface.
type ServerConfig struct {
	// Transport selects how the command surface is exposed ("stdio" or "http").
	Transport string `mapstructure:"transport"`
	// MetricsAddr is loaded from config but not read by any command; no
	// metrics or health HTTP server is started.
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// ObservabilityConfig mirrors observability.Config in a viper-unmarshallable shape.
type ObservabilityConfig struct {
	OTLPEndpoint       string            `mapstructure:"otlp_endpoint"`
	OTLPInsecure       bool              `mapstructure:"otlp_insecure"`
	OTLPHeaders        map[string]string `mapstructure:"otlp_headers"`
	LogJSON            bool              `mapstructure:"log_json"`
	LogLevel           string            `mapstructure:"log_level"`
	DebugTrace         bool              `mapstructure:"debug_trace"`
	SampleRatio        float64           `mapstructure:"sample_ratio"`
	TraceVerbose       bool              `mapstructure:"trace_verbose"`
	ShutdownTimeoutSec int               `mapstructure:"shutdown_timeout_sec"`
}

// EditorConfig holds editor-backend resource knobs: parser pool size and the
// path to the persisted UI theme/config document (see internal/appconfig).
type EditorConfig struct {
	ParserPoolSize  int    `mapstructure:"parser_pool_size"`
	MaxOpenFiles    int    `mapstructure:"max_open_files"`
	ConfigDirectory string `mapstructure:"config_directory"`
}

// Sentinel errors for configuration validation.
var (
	ErrInvalidTransport      = errors.New("server.transport must be \"stdio\" or \"http\"")
	ErrInvalidSampleRatio    = errors.New("observability.sample_ratio must be between 0 and 1")
	ErrInvalidShutdownTime   = errors.New("observability.shutdown_timeout_sec must be non-negative")
	ErrInvalidParserPoolSize = errors.New("editor.parser_pool_size must be positive")
	ErrInvalidMaxOpenFiles   = errors.New("editor.max_open_files must be positive")
	ErrInvalidLogLevel       = errors.New("observability.log_level must be one of debug, info, warn, error")
)

const maxSampleRatio = 1.0

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if c.Server.Transport != "stdio" && c.Server.Transport != "http" {
		return ErrInvalidTransport
	}

	if c.Observability.SampleRatio < 0 || c.Observability.SampleRatio > maxSampleRatio {
		return ErrInvalidSampleRatio
	}

	if c.Observability.ShutdownTimeoutSec < 0 {
		return ErrInvalidShutdownTime
	}

	if _, err := parseLogLevel(c.Observability.LogLevel); err != nil {
		return err
	}

	if c.Editor.ParserPoolSize <= 0 {
		return ErrInvalidParserPoolSize
	}

	if c.Editor.MaxOpenFiles <= 0 {
		return ErrInvalidMaxOpenFiles
	}

	return nil
}

func parseLogLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, ErrInvalidLogLevel
	}
}

// ToObservabilityConfig translates the unmarshalled Config into the
// observability.Config shape expected by observability.Init, filling in
// ServiceName/Mode/ServiceVersion from runtime context.
func (c *Config) ToObservabilityConfig(serviceName, serviceVersion string, mode observability.AppMode) observability.Config {
	level, _ := parseLogLevel(c.Observability.LogLevel)

	return observability.Config{
		ServiceName:        serviceName,
		ServiceVersion:     serviceVersion,
		Mode:               mode,
		LogLevel:           level,
		LogJSON:            c.Observability.LogJSON,
		OTLPEndpoint:       c.Observability.OTLPEndpoint,
		OTLPInsecure:       c.Observability.OTLPInsecure,
		OTLPHeaders:        c.Observability.OTLPHeaders,
		DebugTrace:         c.Observability.DebugTrace,
		SampleRatio:        c.Observability.SampleRatio,
		TraceVerbose:       c.Observability.TraceVerbose,
		ShutdownTimeoutSec: c.Observability.ShutdownTimeoutSec,
	}
}
