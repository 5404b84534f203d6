package task

import (
	"fmt"
	"strings"

	"github.com/louisbranch/sect.ascension/internal/services/game/domain/talent"
)

// Kind classifies a task.
type Kind string

const (
	KindGathering   Kind = "GATHERING"
	KindCombat      Kind = "COMBAT"
	KindExploration Kind = "EXPLORATION"
	KindAuxiliary   Kind = "AUXILIARY"
	KindInvestment  Kind = "INVESTMENT"
)

// Kinds lists every task kind in a stable order.
var Kinds = []Kind{KindGathering, KindCombat, KindExploration, KindAuxiliary, KindInvestment}

// Profile is the default duration and per-turn cost of a kind.
type Profile struct {
	Duration         int
	EnergyCost       int
	ConstitutionCost int
}

// DefaultProfile returns the baseline profile for kind.
func DefaultProfile(kind Kind) Profile {
	switch kind {
	case KindGathering:
		return Profile{Duration: 1, EnergyCost: 5, ConstitutionCost: 2}
	case KindCombat:
		return Profile{Duration: 2, EnergyCost: 15, ConstitutionCost: 10}
	case KindExploration:
		return Profile{Duration: 3, EnergyCost: 10, ConstitutionCost: 5}
	case KindAuxiliary:
		return Profile{Duration: 1, EnergyCost: 5, ConstitutionCost: 3}
	case KindInvestment:
		return Profile{Duration: 4, EnergyCost: 3, ConstitutionCost: 1}
	default:
		panic(fmt.Sprintf("task: no profile for kind %q", kind))
	}
}

// RewardTalent is the talent whose bonus scales the cultivation reward of a
// kind. Kinds without one report false.
func RewardTalent(kind Kind) (talent.Type, bool) {
	switch kind {
	case KindGathering:
		return talent.Wood, true
	case KindCombat:
		return talent.Sword, true
	case KindAuxiliary:
		return talent.Formation, true
	default:
		return "", false
	}
}

// ParseKind canonicalizes a kind label.
func ParseKind(value string) (Kind, error) {
	upper := strings.ToUpper(strings.TrimSpace(value))
	upper = strings.TrimPrefix(upper, "TASK_KIND_")
	for _, k := range Kinds {
		if string(k) == upper {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown task kind %q", value)
}
