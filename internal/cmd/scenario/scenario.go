// Package scenario parses scenario command flags and runs a Lua script.
package scenario

import (
	"context"
	"errors"
	"flag"
	"time"

	"github.com/sirupsen/logrus"

	entrypoint "github.com/louisbranch/sect.ascension/internal/platform/cmd"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/sect"
	"github.com/louisbranch/sect.ascension/internal/tools/scenario"
)

// Config holds scenario command configuration.
type Config struct {
	// GRPCAddr targets a running game server. Empty plays in-process.
	GRPCAddr   string        `env:"SECT_ASCENSION_GAME_ADDR"`
	Scenario   string        `env:"SECT_ASCENSION_SCENARIO_FILE"`
	Assertions bool          `env:"SECT_ASCENSION_SCENARIO_ASSERT"  envDefault:"true"`
	Verbose    bool          `env:"SECT_ASCENSION_SCENARIO_VERBOSE"`
	Timeout    time.Duration `env:"SECT_ASCENSION_SCENARIO_TIMEOUT" envDefault:"10s"`

	Sect sect.Config `envPrefix:"SECT_ASCENSION_"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "game server address (empty runs in-process)")
	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "path to scenario lua file")
	fs.BoolVar(&cfg.Assertions, "assert", cfg.Assertions, "enable assertions (disable to log expectations)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "timeout per step")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the in-process engine tunables.
func (c Config) Validate() error {
	return c.Sect.Validate()
}

// Run executes the scenario command.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Scenario == "" {
		return errors.New("scenario path is required")
	}

	mode := scenario.AssertionStrict
	if !cfg.Assertions {
		mode = scenario.AssertionLogOnly
	}
	return entrypoint.Run(ctx, entrypoint.ServiceScenario, func(ctx context.Context, log *logrus.Entry) error {
		return scenario.RunFile(ctx, scenario.Config{
			GRPCAddr:   cfg.GRPCAddr,
			Timeout:    cfg.Timeout,
			Assertions: mode,
			Verbose:    cfg.Verbose,
			Logger:     log.WithField("scenario", cfg.Scenario),
			Sect:       cfg.Sect,
		}, cfg.Scenario)
	})
}
