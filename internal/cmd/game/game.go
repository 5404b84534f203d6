// Package game parses game command flags and starts the sect server.
package game

import (
	"context"
	"flag"
	"fmt"

	"github.com/sirupsen/logrus"

	entrypoint "github.com/louisbranch/sect.ascension/internal/platform/cmd"
	server "github.com/louisbranch/sect.ascension/internal/services/game/app"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/sect"
)

// Config holds game command configuration.
type Config struct {
	Port        int    `env:"SECT_ASCENSION_GAME_PORT"    envDefault:"8082"`
	Addr        string `env:"SECT_ASCENSION_GAME_ADDR"`
	DBPath      string `env:"SECT_ASCENSION_GAME_DB_PATH" envDefault:"data/game.db"`
	CatalogPath string `env:"SECT_ASCENSION_CATALOG_PATH"`

	Sect sect.Config `envPrefix:"SECT_ASCENSION_"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The game server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The game server listen address (overrides -port)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "The sqlite journal path")
	fs.StringVar(&cfg.CatalogPath, "catalog", cfg.CatalogPath, "A YAML content catalog replacing the embedded one")
	fs.Int64Var(&cfg.Sect.Seed, "seed", cfg.Sect.Seed, "Seed for new sessions (0 picks one per session)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the engine tunables.
func (c Config) Validate() error {
	return c.Sect.Validate()
}

// ListenAddr resolves the address the server binds.
func (c Config) ListenAddr() string {
	if c.Addr != "" {
		return c.Addr
	}
	return fmt.Sprintf(":%d", c.Port)
}

// Run starts the sect gRPC service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.Run(ctx, entrypoint.ServiceGame, func(ctx context.Context, log *logrus.Entry) error {
		return server.Run(ctx, server.Config{
			Addr:        cfg.ListenAddr(),
			DBPath:      cfg.DBPath,
			CatalogPath: cfg.CatalogPath,
			Sect:        cfg.Sect,
			Log:         log,
		})
	})
}
