package condition

import "github.com/louisbranch/sect.ascension/internal/services/game/domain/modifier"

// Modifier pairs a condition with the modifier it releases. Sects own these;
// they are never copied into a disciple's own set.
type Modifier struct {
	When     Condition
	Modifier modifier.Modifier
}

// Applicable returns copies of the pool modifiers whose condition holds for s.
func Applicable(pool []Modifier, s Snapshot) []modifier.Modifier {
	var out []modifier.Modifier
	for _, cm := range pool {
		if Evaluate(cm.When, s) {
			out = append(out, cm.Modifier.Clone())
		}
	}
	return out
}

// Unconditional returns copies of the pool modifiers whose condition always
// holds. Sect-scoped targets such as income resolve against these.
func Unconditional(pool []Modifier) []modifier.Modifier {
	var out []modifier.Modifier
	for _, cm := range pool {
		if IsAlways(cm.When) {
			out = append(out, cm.Modifier.Clone())
		}
	}
	return out
}
