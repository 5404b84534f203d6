package talent

import (
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Type
	}{
		{in: "fire", want: Fire},
		{in: " Sword ", want: Sword},
		{in: "TALENT_FORMATION", want: Formation},
	}
	for _, tc := range tests {
		got, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Parse(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseRejectsUnknown(t *testing.T) {
	if _, err := Parse("firre"); err == nil {
		t.Fatal("expected unknown talent error")
	}
}

func TestBonus(t *testing.T) {
	if got := Bonus(7); math.Abs(got-0.7) > 1e-9 {
		t.Fatalf("Bonus(7) = %v, want 0.7", got)
	}
}

func TestValidate(t *testing.T) {
	if err := (Talent{Type: Wood, Level: 10}).Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := (Talent{Type: Wood, Level: 11}).Validate(); err == nil {
		t.Fatal("expected level bound error")
	}
	if err := (Talent{Type: "SAND", Level: 1}).Validate(); err == nil {
		t.Fatal("expected unknown type error")
	}
}
