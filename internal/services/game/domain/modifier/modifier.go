// Package modifier resolves effective attribute values from native values and
// layered modifiers.
//
// # Resolution
//
// Modifiers matching a target are partitioned by application. When any
// override is present the override with the highest priority wins, ties going
// to the most recently added modifier, and every other term is ignored.
// Otherwise:
//
//	effective = (native + Σ additive) * (1 + Σ multiplicative)
//
// # Matching
//
// Targets compare by value, including the talent parameter of a talent-bonus
// target, so a bonus for one talent never resolves against another.
package modifier

import (
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/sect.ascension/internal/platform/errors"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/talent"
)

// TargetKind names the attribute or rate a modifier adjusts.
type TargetKind string

const (
	TargetDaoHeart                TargetKind = "DAO_HEART"
	TargetEnergy                  TargetKind = "ENERGY"
	TargetConstitution            TargetKind = "CONSTITUTION"
	TargetTalentBonus             TargetKind = "TALENT_BONUS"
	TargetTribulationSuccessRate  TargetKind = "TRIBULATION_SUCCESS_RATE"
	TargetTaskReward              TargetKind = "TASK_REWARD"
	TargetTaskSuitability         TargetKind = "TASK_SUITABILITY"
	TargetTaskDifficulty          TargetKind = "TASK_DIFFICULTY"
	TargetIncome                  TargetKind = "INCOME"
	TargetEnergyConsumption       TargetKind = "ENERGY_CONSUMPTION"
	TargetConstitutionConsumption TargetKind = "CONSTITUTION_CONSUMPTION"
	TargetCultivationSpeed        TargetKind = "CULTIVATION_SPEED"
	TargetCombatPower             TargetKind = "COMBAT_POWER"
)

var targetKinds = []TargetKind{
	TargetDaoHeart,
	TargetEnergy,
	TargetConstitution,
	TargetTalentBonus,
	TargetTribulationSuccessRate,
	TargetTaskReward,
	TargetTaskSuitability,
	TargetTaskDifficulty,
	TargetIncome,
	TargetEnergyConsumption,
	TargetConstitutionConsumption,
	TargetCultivationSpeed,
	TargetCombatPower,
}

// Target is a comparable modifier target. Talent is set only for
// TargetTalentBonus.
type Target struct {
	Kind   TargetKind
	Talent talent.Type
}

// For returns a plain target of kind.
func For(kind TargetKind) Target {
	return Target{Kind: kind}
}

// TalentBonus returns the talent-bonus target for t.
func TalentBonus(t talent.Type) Target {
	return Target{Kind: TargetTalentBonus, Talent: t}
}

// String renders the target, including its parameter.
func (t Target) String() string {
	if t.Kind == TargetTalentBonus {
		return string(t.Kind) + "(" + string(t.Talent) + ")"
	}
	return string(t.Kind)
}

// Validate checks the target is a known kind with a well-formed parameter.
func (t Target) Validate() error {
	known := false
	for _, k := range targetKinds {
		if k == t.Kind {
			known = true
			break
		}
	}
	if !known {
		return apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("unknown modifier target %q", t.Kind))
	}
	if t.Kind == TargetTalentBonus {
		if !t.Talent.Valid() {
			return apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("talent bonus target needs a known talent, got %q", t.Talent))
		}
	} else if t.Talent != "" {
		return apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("target %s takes no talent", t.Kind))
	}
	return nil
}

// ParseTargetKind canonicalizes a target label.
func ParseTargetKind(value string) (TargetKind, error) {
	upper := strings.ToUpper(strings.TrimSpace(value))
	for _, k := range targetKinds {
		if string(k) == upper {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown modifier target %q", value)
}

// ApplicationKind selects how a modifier combines with the native value.
type ApplicationKind string

const (
	Additive       ApplicationKind = "ADDITIVE"
	Multiplicative ApplicationKind = "MULTIPLICATIVE"
	Override       ApplicationKind = "OVERRIDE"
)

// ParseApplicationKind canonicalizes an application label.
func ParseApplicationKind(value string) (ApplicationKind, error) {
	switch ApplicationKind(strings.ToUpper(strings.TrimSpace(value))) {
	case Additive:
		return Additive, nil
	case Multiplicative:
		return Multiplicative, nil
	case Override:
		return Override, nil
	default:
		return "", fmt.Errorf("unknown modifier application %q", value)
	}
}

// Application is an application kind with its value. A multiplicative value
// of 0.2 means +20%.
type Application struct {
	Kind  ApplicationKind
	Value float64
}

// Source tags where a modifier came from.
type Source string

const (
	SourceTalent      Source = "TALENT"
	SourceEquipment   Source = "EQUIPMENT"
	SourceBuff        Source = "BUFF"
	SourceDebuff      Source = "DEBUFF"
	SourcePill        Source = "PILL"
	SourceHeritage    Source = "HERITAGE"
	SourceEnvironment Source = "ENVIRONMENT"
	SourceBuilding    Source = "BUILDING"
	SourceSystem      Source = "SYSTEM"
)

// Modifier adjusts one target.
type Modifier struct {
	ID          string
	Name        string
	Target      Target
	Application Application
	Source      Source
	Priority    int
	// Duration counts remaining turns. Nil means permanent.
	Duration *int
	// Seq orders modifiers by insertion. Higher is more recent.
	Seq uint64
}

// New builds a permanent modifier.
func New(name string, target Target, app Application, source Source) Modifier {
	return Modifier{Name: name, Target: target, Application: app, Source: source}
}

// WithDuration returns a copy lasting turns ticks.
func (m Modifier) WithDuration(turns int) Modifier {
	d := turns
	m.Duration = &d
	return m
}

// WithPriority returns a copy with priority p.
func (m Modifier) WithPriority(p int) Modifier {
	m.Priority = p
	return m
}

// Permanent reports whether the modifier never expires.
func (m Modifier) Permanent() bool {
	return m.Duration == nil
}

// Clone copies the duration pointer so the copy ticks independently.
func (m Modifier) Clone() Modifier {
	if m.Duration != nil {
		d := *m.Duration
		m.Duration = &d
	}
	return m
}

// Validate checks target and duration.
func (m Modifier) Validate() error {
	if err := m.Target.Validate(); err != nil {
		return err
	}
	switch m.Application.Kind {
	case Additive, Multiplicative, Override:
	default:
		return apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("unknown modifier application %q", m.Application.Kind))
	}
	if m.Duration != nil && *m.Duration <= 0 {
		return apperrors.New(apperrors.CodeInvalidArgument, "modifier duration must be positive")
	}
	return nil
}
