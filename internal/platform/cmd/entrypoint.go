// Package cmd holds the startup shared by the game, mcp and scenario
// commands.
package cmd

import (
	"context"
	"errors"
	"flag"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/louisbranch/sect.ascension/internal/platform/config"
	"github.com/louisbranch/sect.ascension/internal/platform/logging"
	"github.com/louisbranch/sect.ascension/internal/platform/otel"
)

// Service names tag log entries and trace resources.
const (
	ServiceGame     = "game"
	ServiceMCP      = "mcp"
	ServiceScenario = "scenario"
)

const telemetryShutdownTimeout = 5 * time.Second

// ParseConfig loads env values, including envDefault tags, into cfg.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses flags over values already loaded by ParseConfig.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// NewLogger builds the logger for service from SECT_ASCENSION_LOG_*.
func NewLogger(service string) (*logrus.Entry, error) {
	var cfg logging.Config
	if err := config.ParseEnv(&cfg); err != nil {
		return nil, err
	}
	return logging.New(cfg, nil).WithField("service", service), nil
}

// Run builds the service logger, installs tracing and calls fn. Tracing is
// flushed after fn returns.
func Run(ctx context.Context, service string, fn func(context.Context, *logrus.Entry) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return errors.New("service name is required")
	}
	if fn == nil {
		return errors.New("run function is required")
	}
	log, err := NewLogger(service)
	if err != nil {
		return err
	}
	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			log.WithError(err).Warn("telemetry shutdown")
		}
	}()

	log.Debug("starting")
	err = fn(ctx, log)
	if err != nil {
		log.WithError(err).Error("stopped with error")
	} else {
		log.Debug("stopped")
	}
	return err
}
