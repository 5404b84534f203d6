package modifier

import (
	"math"
	"testing"

	"github.com/louisbranch/sect.ascension/internal/services/game/domain/talent"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func add(v float64) Modifier {
	return New("add", For(TargetEnergy), Application{Kind: Additive, Value: v}, SourceBuff)
}

func mul(v float64) Modifier {
	return New("mul", For(TargetEnergy), Application{Kind: Multiplicative, Value: v}, SourceBuff)
}

func over(v float64, priority int, seq uint64) Modifier {
	m := New("over", For(TargetEnergy), Application{Kind: Override, Value: v}, SourceSystem)
	m.Priority = priority
	m.Seq = seq
	return m
}

func TestResolveAdditiveOnly(t *testing.T) {
	got := Resolve(50, []Modifier{add(10), add(-3), add(0.5)})
	if !approx(got, 57.5) {
		t.Fatalf("resolve = %v, want 57.5", got)
	}
}

func TestResolveMultiplicativeOnly(t *testing.T) {
	got := Resolve(50, []Modifier{mul(0.2), mul(0.3)})
	if !approx(got, 75) {
		t.Fatalf("resolve = %v, want 75", got)
	}
}

func TestResolveAdditiveThenMultiplicative(t *testing.T) {
	got := Resolve(100, []Modifier{mul(0.5), add(20)})
	if !approx(got, 180) {
		t.Fatalf("resolve = %v, want 180", got)
	}
}

func TestResolveNoModifiers(t *testing.T) {
	if got := Resolve(42, nil); got != 42 {
		t.Fatalf("resolve = %v, want 42", got)
	}
}

func TestResolveOverrideIgnoresEverythingElse(t *testing.T) {
	for _, native := range []float64{0, 30, 1000} {
		got := Resolve(native, []Modifier{add(10), over(80, 0, 1), mul(1)})
		if got != 80 {
			t.Fatalf("resolve(%v) = %v, want 80", native, got)
		}
	}
}

func TestResolveOverrideHighestPriorityWins(t *testing.T) {
	got := Resolve(0, []Modifier{over(10, 5, 1), over(20, 1, 9), over(30, 3, 2)})
	if got != 10 {
		t.Fatalf("resolve = %v, want 10", got)
	}
}

func TestResolveOverrideTieGoesToMostRecent(t *testing.T) {
	got := Resolve(0, []Modifier{over(10, 2, 7), over(20, 2, 3)})
	if got != 10 {
		t.Fatalf("higher seq: resolve = %v, want 10", got)
	}

	got = Resolve(0, []Modifier{over(10, 2, 0), over(20, 2, 0)})
	if got != 20 {
		t.Fatalf("equal seq: resolve = %v, want later slice entry 20", got)
	}
}

func TestMatchingIsExactIncludingTalent(t *testing.T) {
	fire := New("fire", TalentBonus(talent.Fire), Application{Kind: Additive, Value: 0.3}, SourceTalent)
	water := New("water", TalentBonus(talent.Water), Application{Kind: Additive, Value: 0.5}, SourceTalent)
	energy := add(5)
	mods := []Modifier{fire, water, energy}

	got := ResolveFor(0.1, mods, TalentBonus(talent.Fire))
	if !approx(got, 0.4) {
		t.Fatalf("fire bonus = %v, want 0.4", got)
	}
	if got := ResolveFor(0, mods, TalentBonus(talent.Wood)); got != 0 {
		t.Fatalf("wood bonus = %v, want 0", got)
	}
	if got := len(Matching(mods, For(TargetEnergy))); got != 1 {
		t.Fatalf("energy matches = %d, want 1", got)
	}
}

func TestResolvePanicsOnUnknownApplication(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on unknown application")
		}
	}()
	Resolve(1, []Modifier{{Application: Application{Kind: "SQUARE"}}})
}

func TestTargetValidate(t *testing.T) {
	if err := TalentBonus(talent.Sword).Validate(); err != nil {
		t.Fatalf("validate talent bonus: %v", err)
	}
	if err := (Target{Kind: TargetTalentBonus}).Validate(); err == nil {
		t.Fatal("expected talent bonus without talent to fail")
	}
	if err := (Target{Kind: TargetEnergy, Talent: talent.Fire}).Validate(); err == nil {
		t.Fatal("expected energy with talent to fail")
	}
	if err := (Target{Kind: "LUCK"}).Validate(); err == nil {
		t.Fatal("expected unknown kind to fail")
	}
}

func TestModifierValidateDuration(t *testing.T) {
	if err := add(1).WithDuration(0).Validate(); err == nil {
		t.Fatal("expected zero duration to fail")
	}
	if err := add(1).WithDuration(2).Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
