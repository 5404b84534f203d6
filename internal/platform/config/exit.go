package config

import (
	"fmt"
	"io"
	"os"
)

var (
	exitOutput io.Writer = os.Stderr
	exit                 = os.Exit
)

// Exitf prints a formatted message to stderr and exits with status 1. The
// commands call it when flags or env cannot be parsed, before any logger
// exists.
func Exitf(format string, args ...any) {
	fmt.Fprintf(exitOutput, format+"\n", args...)
	exit(1)
}
