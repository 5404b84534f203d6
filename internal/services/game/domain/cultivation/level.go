// Package cultivation defines progression tiers and intra-tier progress.
package cultivation

import (
	"fmt"
	"math"
	"strings"
)

// Level is a cultivation tier. Its integer value is the tier index used by
// suitability and combat resolution.
type Level int

const (
	QiRefining Level = iota
	Foundation
	GoldenCore
	NascentSoul
	SpiritSevering
	VoidRefinement
	Ascension
)

// Levels lists every tier in ascending order.
var Levels = []Level{QiRefining, Foundation, GoldenCore, NascentSoul, SpiritSevering, VoidRefinement, Ascension}

var levelNames = [...]string{
	"QI_REFINING",
	"FOUNDATION",
	"GOLDEN_CORE",
	"NASCENT_SOUL",
	"SPIRIT_SEVERING",
	"VOID_REFINEMENT",
	"ASCENSION",
}

// String returns the canonical label.
func (l Level) String() string {
	if l < QiRefining || l > Ascension {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel canonicalizes a tier label.
func ParseLevel(value string) (Level, error) {
	upper := strings.ToUpper(strings.TrimSpace(value))
	for i, name := range levelNames {
		if name == upper {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("unknown cultivation level %q", value)
}

// BaseLifespan is the lifespan a disciple reaches on entering the tier.
func (l Level) BaseLifespan() int {
	switch l {
	case QiRefining:
		return 150
	case Foundation:
		return 300
	case GoldenCore:
		return 500
	case NascentSoul:
		return 1000
	case SpiritSevering:
		return 2000
	case VoidRefinement:
		return 5000
	case Ascension:
		return math.MaxInt32
	default:
		panic(fmt.Sprintf("cultivation: no lifespan for %v", l))
	}
}

// RequiresTribulation reports whether leaving this tier is gated by a
// tribulation roll.
func (l Level) RequiresTribulation() bool {
	return l > QiRefining
}

// Next returns the following tier. Ascension has none.
func (l Level) Next() (Level, bool) {
	if l >= Ascension {
		return l, false
	}
	return l + 1, true
}

// HeritageBonus is the tribulation bonus left behind by a disciple who dies
// at this tier. Tiers below NascentSoul leave nothing.
func (l Level) HeritageBonus() (float64, bool) {
	switch {
	case l < NascentSoul:
		return 0, false
	case l == NascentSoul:
		return 0.10, true
	case l == SpiritSevering:
		return 0.15, true
	case l == VoidRefinement:
		return 0.20, true
	default:
		return 0.05, true
	}
}
