package world

import "testing"

func TestDistance(t *testing.T) {
	if got := Distance(Position{X: 1, Y: 2}, Position{X: -2, Y: 4}); got != 5 {
		t.Fatalf("distance = %d, want 5", got)
	}
}

func TestReachable(t *testing.T) {
	home := Position{}
	targets := []Position{{X: 5, Y: 5}, {X: 2, Y: 1}}

	if !Reachable(home, 3, targets) {
		t.Fatal("expected nearest target within budget 3")
	}
	if Reachable(home, 2, targets) {
		t.Fatal("expected no target within budget 2")
	}
	if !Reachable(home, 0, nil) {
		t.Fatal("expected empty target set to be unconstrained")
	}
}

func TestBoundsClamp(t *testing.T) {
	b := Bounds{Min: Position{X: -2, Y: -2}, Max: Position{X: 2, Y: 2}}
	tests := []struct {
		in, want Position
	}{
		{in: Position{X: 0, Y: 0}, want: Position{X: 0, Y: 0}},
		{in: Position{X: 3, Y: 0}, want: Position{X: 2, Y: 0}},
		{in: Position{X: -5, Y: 9}, want: Position{X: -2, Y: 2}},
	}
	for _, tc := range tests {
		if got := b.Clamp(tc.in); got != tc.want {
			t.Fatalf("Clamp(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if b.Contains(Position{X: 3, Y: 0}) || !b.Contains(Position{X: 2, Y: -2}) {
		t.Fatal("contains mismatch at the edge")
	}
	far := Position{X: 100, Y: -100}
	if got := (Bounds{}).Clamp(far); got != far {
		t.Fatalf("unbounded clamp = %v, want %v", got, far)
	}
}

func TestAddStep(t *testing.T) {
	p := Position{X: 1, Y: 1}
	if got := p.Add(Steps[0]); got != (Position{X: 1, Y: 2}) {
		t.Fatalf("step = %v, want {1 2}", got)
	}
}
