package sect

import (
	"fmt"

	"github.com/louisbranch/sect.ascension/internal/services/game/domain/outcome"
)

// Config tunes a session. Zero starting values fall back to the catalog.
type Config struct {
	Seed              int64   `env:"SEED"`
	AutoTribulation   bool    `env:"AUTO_TRIBULATION"    envDefault:"true"`
	AutoRecruit       bool    `env:"AUTO_RECRUIT"        envDefault:"true"`
	TaskSuccessRate   float64 `env:"TASK_SUCCESS_RATE"   envDefault:"0.8"`
	StartingResources int     `env:"STARTING_RESOURCES"`
	StartingDisciples int     `env:"STARTING_DISCIPLES"`

	IdleEnergyRecovery       float64 `env:"IDLE_ENERGY_RECOVERY"       envDefault:"10"`
	IdleConstitutionRecovery float64 `env:"IDLE_CONSTITUTION_RECOVERY" envDefault:"5"`

	Combat outcome.CombatParams
}

// DefaultConfig mirrors the env defaults.
func DefaultConfig() Config {
	return Config{
		AutoTribulation:          true,
		AutoRecruit:              true,
		TaskSuccessRate:          outcome.DefaultTaskSuccessRate,
		IdleEnergyRecovery:       10,
		IdleConstitutionRecovery: 5,
		Combat:                   outcome.DefaultCombatParams(),
	}
}

// Validate checks ranges.
func (c Config) Validate() error {
	if c.TaskSuccessRate < 0 || c.TaskSuccessRate > 1 {
		return fmt.Errorf("task success rate must be within [0,1], got %v", c.TaskSuccessRate)
	}
	if c.StartingResources < 0 || c.StartingDisciples < 0 {
		return fmt.Errorf("starting values must not be negative")
	}
	if c.IdleEnergyRecovery < 0 || c.IdleConstitutionRecovery < 0 {
		return fmt.Errorf("idle recovery must not be negative")
	}
	return nil
}
