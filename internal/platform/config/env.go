// Package config holds the env parsing and exit helpers shared by commands.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Validator is implemented by configs that check themselves after parsing.
type Validator interface {
	Validate() error
}

// ParseEnv fills target from the environment and validates it when target
// is a Validator.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if v, ok := target.(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("invalid env: %w", err)
		}
	}
	return nil
}
