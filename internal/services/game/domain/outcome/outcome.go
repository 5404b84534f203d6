// Package outcome resolves probabilistic task, combat and tribulation
// outcomes from effective values.
//
// Every draw comes from a Roller supplied by the caller. A session passes its
// seeded source, so identical state and inputs produce identical outcomes.
// A draw succeeds when it is strictly below the chance.
package outcome

import (
	"math"

	"github.com/louisbranch/sect.ascension/internal/services/game/domain/modifier"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/talent"
)

// Roller yields uniform draws in [0,1).
type Roller interface {
	Float64() float64
}

// Verdict is the result of a resolved task for one participant.
type Verdict string

const (
	VerdictSuccess Verdict = "SUCCESS"
	VerdictFailure Verdict = "FAILURE"
	VerdictDeath   Verdict = "DEATH"
)

// DefaultTaskSuccessRate is the success chance of non-combat tasks.
const DefaultTaskSuccessRate = 0.8

// CombatParams shape the combat curves. Both chances are linear in the gap
// between effective combat power and enemy level, clamped to [0,1].
type CombatParams struct {
	Base       float64 `env:"COMBAT_BASE"        envDefault:"0.5"  yaml:"base"`
	Slope      float64 `env:"COMBAT_SLOPE"       envDefault:"0.15" yaml:"slope"`
	DeathBase  float64 `env:"COMBAT_DEATH_BASE"  envDefault:"0.2"  yaml:"death_base"`
	DeathSlope float64 `env:"COMBAT_DEATH_SLOPE" envDefault:"0.1"  yaml:"death_slope"`
}

// DefaultCombatParams returns the standard curves.
func DefaultCombatParams() CombatParams {
	return CombatParams{Base: 0.5, Slope: 0.15, DeathBase: 0.2, DeathSlope: 0.1}
}

// SuccessChance is the chance power beats an enemy of level enemy.
func (p CombatParams) SuccessChance(power, enemy float64) float64 {
	return Clamp01(p.Base + p.Slope*(power-enemy))
}

// DeathChance is the chance a failed fight is fatal.
func (p CombatParams) DeathChance(power, enemy float64) float64 {
	return Clamp01(p.DeathBase + p.DeathSlope*(enemy-power))
}

// Clamp01 bounds v to [0,1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Clamp bounds v to [lo,hi].
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// Combat is a resolved fight.
type Combat struct {
	Verdict       Verdict
	SuccessChance float64
	DeathChance   float64
}

// ResolveCombat draws success and, on failure, death.
func ResolveCombat(r Roller, p CombatParams, power, enemy float64) Combat {
	c := Combat{
		SuccessChance: p.SuccessChance(power, enemy),
		DeathChance:   p.DeathChance(power, enemy),
	}
	switch {
	case r.Float64() < c.SuccessChance:
		c.Verdict = VerdictSuccess
	case r.Float64() < c.DeathChance:
		c.Verdict = VerdictDeath
	default:
		c.Verdict = VerdictFailure
	}
	return c
}

// ResolveTask draws a non-combat completion.
func ResolveTask(r Roller, rate float64) Verdict {
	if r.Float64() < Clamp01(rate) {
		return VerdictSuccess
	}
	return VerdictFailure
}

// ProgressReward scales a task's cultivation reward by the talent bonus of
// the kind's reward talent and the cultivation speed modifiers. talentLevel
// is 0 when the kind has no reward talent or the disciple lacks it.
func ProgressReward(base int, rewardTalent talent.Type, talentLevel int, mods []modifier.Modifier) int {
	bonus := 0.0
	if rewardTalent != "" {
		bonus = modifier.ResolveFor(talent.Bonus(talentLevel), mods, modifier.TalentBonus(rewardTalent))
	}
	raw := float64(base) * (1 + bonus)
	speed := modifier.ResolveFor(raw, mods, modifier.For(modifier.TargetCultivationSpeed))
	return max(0, int(speed))
}

// ResourceReward scales a resource reward by task reward modifiers.
func ResourceReward(base int, mods []modifier.Modifier) int {
	return max(0, int(modifier.ResolveFor(float64(base), mods, modifier.For(modifier.TargetTaskReward))))
}
