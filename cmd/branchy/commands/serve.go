// Package commands implements the cmd/branchy subcommands.
package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/TodayNightt/branchy-text-editor/internal/config"
	"github.com/TodayNightt/branchy-text-editor/internal/mcpsurface"
	"github.com/TodayNightt/branchy-text-editor/pkg/observability"
)

// errHTTPTransportNotImplemented is returned when the process config
// requests server.transport=http; only stdio is wired today.
var errHTTPTransportNotImplemented = errors.New("server.transport=http is not implemented, use stdio")

// NewServeCommand builds the `branchy serve` subcommand: the MCP command
// surface over stdio, grounded in the teacher's cmd/codefang/commands/mcp.go
// (there a //go:build ignore draft; here the live server command).
func NewServeCommand() *cobra.Command {
	var debug bool

	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the editor command surface over MCP stdio",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport exposing
the editor's file/highlight command surface: get_file_system_info,
open_file, close_file, get_source_code_if_any, save_file,
handle_file_changes, set_highlights, reset, get_tokens_legend, and
get_currently_supported_language.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			procCfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			if procCfg.Server.Transport != "stdio" {
				return errHTTPTransportNotImplemented
			}

			providers, err := initServeObservability(procCfg, debug)
			if err != nil {
				return err
			}

			defer func() {
				if shutdownErr := providers.Shutdown(context.Background()); shutdownErr != nil {
					providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
				}
			}()

			red, err := observability.NewREDMetrics(providers.Meter)
			if err != nil {
				return err
			}

			deps := mcpsurface.Deps{Logger: providers.Logger, Metrics: red, Tracer: providers.Tracer, Meter: providers.Meter}

			srv, err := mcpsurface.NewSurface(deps)
			if err != nil {
				return err
			}

			return srv.Run(cobraCmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a .branchy config file (defaults to CWD/$HOME lookup)")

	return cmd
}

func initServeObservability(procCfg *config.Config, debug bool) (observability.Providers, error) {
	cfg := procCfg.ToObservabilityConfig("branchy", "", observability.ModeMCP)

	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		cfg.OTLPEndpoint = endpoint
	}

	if headers := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); headers != "" {
		cfg.OTLPHeaders = observability.ParseOTLPHeaders(headers)
	}

	if os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true" {
		cfg.OTLPInsecure = true
	}

	cfg.LogJSON = true

	if debug {
		cfg.LogLevel = slog.LevelDebug
		cfg.DebugTrace = true
	}

	return observability.Init(cfg)
}
