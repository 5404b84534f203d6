// Command game serves sect.v1.SectService over gRPC.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	gamecmd "github.com/louisbranch/sect.ascension/internal/cmd/game"
	"github.com/louisbranch/sect.ascension/internal/platform/config"
)

func main() {
	cfg, err := gamecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("game: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = gamecmd.Run(ctx, cfg)
	stop()
	if err != nil {
		config.Exitf("game: %v", err)
	}
}
