// Command scenario plays a Lua scenario script against a game.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	scenariocmd "github.com/louisbranch/sect.ascension/internal/cmd/scenario"
	"github.com/louisbranch/sect.ascension/internal/platform/config"
)

func main() {
	cfg, err := scenariocmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("scenario: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = scenariocmd.Run(ctx, cfg)
	stop()
	if err != nil {
		config.Exitf("scenario: %v", err)
	}
}
