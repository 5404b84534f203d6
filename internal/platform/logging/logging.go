// Package logging configures the structured logger used by the engine and
// its services.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Config selects level and output format.
type Config struct {
	Level  string `env:"SECT_ASCENSION_LOG_LEVEL"  envDefault:"info"`
	Format string `env:"SECT_ASCENSION_LOG_FORMAT" envDefault:"text"`
}

// New builds a logger writing to out. Unknown levels fall back to info.
func New(cfg Config, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stderr
	}
	logger := logrus.New()
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(strings.TrimSpace(cfg.Format), "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// Discard returns a logger that drops every entry. Tests and in-process
// tooling use it when no output is wanted.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// Validate reports an unsupported format.
func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Format)) {
	case "", "text", "json":
		return nil
	default:
		return fmt.Errorf("unsupported log format %q", c.Format)
	}
}
