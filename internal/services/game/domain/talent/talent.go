// Package talent defines the closed set of talents a disciple can carry.
package talent

import (
	"fmt"
	"strings"
)

// Type identifies a talent. Unknown names are rejected by Parse so a typo in
// content or transport input cannot produce an inert modifier.
type Type string

const (
	Fire      Type = "FIRE"
	Water     Type = "WATER"
	Wood      Type = "WOOD"
	Metal     Type = "METAL"
	Earth     Type = "EARTH"
	Thunder   Type = "THUNDER"
	Ice       Type = "ICE"
	Wind      Type = "WIND"
	Sword     Type = "SWORD"
	Alchemy   Type = "ALCHEMY"
	Formation Type = "FORMATION"
	Beast     Type = "BEAST"
	Medical   Type = "MEDICAL"
)

// MinLevel and MaxLevel bound a talent level.
const (
	MinLevel = 1
	MaxLevel = 10
)

// All lists every talent in declaration order.
var All = []Type{Fire, Water, Wood, Metal, Earth, Thunder, Ice, Wind, Sword, Alchemy, Formation, Beast, Medical}

// Recruitable lists the talents a random recruit can roll.
var Recruitable = []Type{Fire, Water, Wood, Metal, Earth, Sword, Alchemy, Formation, Medical}

// Talent is a talent type at a level.
type Talent struct {
	Type  Type
	Level int
}

// Parse canonicalizes a talent name.
func Parse(value string) (Type, error) {
	upper := strings.ToUpper(strings.TrimSpace(value))
	upper = strings.TrimPrefix(upper, "TALENT_")
	for _, t := range All {
		if string(t) == upper {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown talent %q", value)
}

// Valid reports whether t is a known talent.
func (t Type) Valid() bool {
	for _, known := range All {
		if known == t {
			return true
		}
	}
	return false
}

// Bonus is the native reward bonus granted by a talent at level.
func Bonus(level int) float64 {
	return float64(level) * 0.1
}

// Validate checks type and level bounds.
func (t Talent) Validate() error {
	if !t.Type.Valid() {
		return fmt.Errorf("unknown talent %q", t.Type)
	}
	if t.Level < MinLevel || t.Level > MaxLevel {
		return fmt.Errorf("talent %s level %d outside %d..%d", t.Type, t.Level, MinLevel, MaxLevel)
	}
	return nil
}
