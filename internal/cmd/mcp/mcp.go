// Package mcp parses MCP command flags and selects stdio or HTTP transport.
package mcp

import (
	"context"
	"flag"
	"fmt"

	"github.com/sirupsen/logrus"

	entrypoint "github.com/louisbranch/sect.ascension/internal/platform/cmd"
	mcpservice "github.com/louisbranch/sect.ascension/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	Addr      string `env:"SECT_ASCENSION_GAME_ADDR"     envDefault:"localhost:8082"`
	HTTPAddr  string `env:"SECT_ASCENSION_MCP_HTTP_ADDR" envDefault:"localhost:8081"`
	Transport string `env:"SECT_ASCENSION_MCP_TRANSPORT" envDefault:"stdio"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "game server address")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	switch mcpservice.TransportKind(cfg.Transport) {
	case mcpservice.TransportStdio, mcpservice.TransportHTTP:
	default:
		return Config{}, fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
	return cfg, nil
}

// Run starts the MCP protocol adapter.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.Run(ctx, entrypoint.ServiceMCP, func(ctx context.Context, log *logrus.Entry) error {
		return mcpservice.Run(ctx, mcpservice.Config{
			GRPCAddr:  cfg.Addr,
			HTTPAddr:  cfg.HTTPAddr,
			Transport: mcpservice.TransportKind(cfg.Transport),
			Log:       log,
		})
	})
}
