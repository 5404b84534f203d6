package modifier

import "fmt"

// Matching returns the modifiers whose target equals target, in input order.
func Matching(mods []Modifier, target Target) []Modifier {
	var out []Modifier
	for _, m := range mods {
		if m.Target == target {
			out = append(out, m)
		}
	}
	return out
}

// Resolve computes the effective value of native under mods. Callers pass
// modifiers already matched to a single target.
func Resolve(native float64, mods []Modifier) float64 {
	var (
		additive       float64
		multiplicative float64
		override       *Modifier
	)
	for i := range mods {
		m := &mods[i]
		switch m.Application.Kind {
		case Additive:
			additive += m.Application.Value
		case Multiplicative:
			multiplicative += m.Application.Value
		case Override:
			if override == nil || outranks(m, override) {
				override = m
			}
		default:
			panic(fmt.Sprintf("modifier: unknown application %q on %s", m.Application.Kind, m.ID))
		}
	}
	if override != nil {
		return override.Application.Value
	}
	return (native + additive) * (1 + multiplicative)
}

// outranks reports whether candidate beats current. Later slice positions
// win remaining ties, so the >= on Seq is intentional.
func outranks(candidate, current *Modifier) bool {
	if candidate.Priority != current.Priority {
		return candidate.Priority > current.Priority
	}
	return candidate.Seq >= current.Seq
}

// ResolveFor matches mods against target and resolves native.
func ResolveFor(native float64, mods []Modifier, target Target) float64 {
	return Resolve(native, Matching(mods, target))
}
