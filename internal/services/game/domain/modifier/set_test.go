package modifier

import "testing"

func TestTickRemovesAtDuration(t *testing.T) {
	for _, d := range []int{1, 2, 5} {
		s := NewSet(nil)
		timed := s.Add(add(1).WithDuration(d))

		for tick := 1; tick < d; tick++ {
			if removed := s.Tick(); removed != 0 {
				t.Fatalf("d=%d tick %d removed %d, want 0", d, tick, removed)
			}
			if s.Len() != 1 {
				t.Fatalf("d=%d tick %d: modifier gone early", d, tick)
			}
		}
		if removed := s.Tick(); removed != 1 {
			t.Fatalf("d=%d final tick removed %d, want 1", d, removed)
		}
		if s.Remove(timed.ID) {
			t.Fatalf("d=%d: modifier still present after expiry", d)
		}
	}
}

func TestTickKeepsPermanent(t *testing.T) {
	s := NewSet(nil)
	s.Add(add(1))
	s.Add(add(2).WithDuration(1))

	for i := 0; i < 100; i++ {
		s.Tick()
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Len())
	}
	if !s.All()[0].Permanent() {
		t.Fatal("remaining modifier should be permanent")
	}
}

func TestAddAssignsIDAndSeq(t *testing.T) {
	seq := &Sequence{}
	a := NewSet(seq)
	b := NewSet(seq)

	first := a.Add(add(1))
	second := b.Add(add(1))
	named := a.Add(Modifier{ID: "fixed", Target: For(TargetEnergy), Application: Application{Kind: Additive}})

	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("ids = %q, %q; want distinct non-empty", first.ID, second.ID)
	}
	if second.Seq <= first.Seq {
		t.Fatalf("shared sequence not monotonic: %d then %d", first.Seq, second.Seq)
	}
	if named.ID != "fixed" {
		t.Fatalf("id = %q, want fixed", named.ID)
	}
}

func TestAddCopiesDuration(t *testing.T) {
	s := NewSet(nil)
	m := add(1).WithDuration(3)
	s.Add(m)
	s.Tick()
	if *m.Duration != 3 {
		t.Fatalf("caller duration = %d, want untouched 3", *m.Duration)
	}
}

func TestRemoveBySourceAndClear(t *testing.T) {
	s := NewSet(nil)
	s.Add(New("a", For(TargetEnergy), Application{Kind: Additive, Value: 1}, SourcePill))
	s.Add(New("b", For(TargetEnergy), Application{Kind: Additive, Value: 1}, SourcePill))
	s.Add(New("c", For(TargetEnergy), Application{Kind: Additive, Value: 1}, SourceHeritage))

	if got := s.RemoveBySource(SourcePill); got != 2 {
		t.Fatalf("removed = %d, want 2", got)
	}
	if s.Len() != 1 || s.All()[0].Source != SourceHeritage {
		t.Fatalf("remaining = %+v, want heritage only", s.All())
	}
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("len after clear = %d", s.Len())
	}
}

func TestMatchingReturnsCopies(t *testing.T) {
	s := NewSet(nil)
	s.Add(add(1).WithDuration(4))

	got := s.Matching(For(TargetEnergy))
	*got[0].Duration = 1
	s.Tick()
	if s.Len() != 1 {
		t.Fatal("mutating a matched copy changed the set")
	}
}
