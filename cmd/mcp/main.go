// Command mcp exposes a game server as MCP tools and resources.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	mcpcmd "github.com/louisbranch/sect.ascension/internal/cmd/mcp"
	"github.com/louisbranch/sect.ascension/internal/platform/config"
)

func main() {
	cfg, err := mcpcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("mcp: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = mcpcmd.Run(ctx, cfg)
	stop()
	if err != nil {
		config.Exitf("mcp: %v", err)
	}
}
