package pagination

import (
	"errors"
	"testing"
)

func TestSize(t *testing.T) {
	cfg := SizeConfig{Default: 20, Max: 100}
	tests := []struct {
		requested int32
		want      int
	}{
		{0, 20},
		{-3, 20},
		{7, 7},
		{500, 100},
	}
	for _, tt := range tests {
		if got := Size(tt.requested, cfg); got != tt.want {
			t.Fatalf("Size(%d) = %d, want %d", tt.requested, got, tt.want)
		}
	}
	if got := Size(0, SizeConfig{}); got != 1 {
		t.Fatalf("Size with empty config = %d, want 1", got)
	}
}

func TestOrder(t *testing.T) {
	cfg := OrderConfig{Allowed: []string{"id", "age", "age desc"}}
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "id", false},
		{"AGE   Desc", "age desc", false},
		{" age ", "age", false},
		{"name", "", true},
	}
	for _, tt := range tests {
		got, err := Order(tt.in, cfg)
		if (err != nil) != tt.wantErr {
			t.Fatalf("Order(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("Order(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got, _ := Order("", OrderConfig{Default: "age", Allowed: []string{"id", "age"}}); got != "age" {
		t.Fatalf("explicit default = %q, want age", got)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	offset, err := Offset(Token(42))
	if err != nil {
		t.Fatalf("offset: %v", err)
	}
	if offset != 42 {
		t.Fatalf("offset = %d, want 42", offset)
	}
}

func TestOffsetRejectsForeignTokens(t *testing.T) {
	for _, token := range []string{"1", "!!", Token(0)[:2], "b2Zmc2V0Oi0x"} {
		if _, err := Offset(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Offset(%q) err = %v, want ErrInvalidToken", token, err)
		}
	}
}

func TestPaginate(t *testing.T) {
	cfg := SizeConfig{Default: 2, Max: 10}

	first, err := Paginate(5, Request{}, cfg)
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if first.Start != 0 || first.End != 2 || first.Next == "" {
		t.Fatalf("first = %+v", first)
	}
	last, err := Paginate(5, Request{Size: 10, Token: first.Next}, cfg)
	if err != nil {
		t.Fatalf("last page: %v", err)
	}
	if last.Start != 2 || last.End != 5 || last.Next != "" {
		t.Fatalf("last = %+v", last)
	}
	past, err := Paginate(5, Request{Token: Token(9)}, cfg)
	if err != nil {
		t.Fatalf("past end: %v", err)
	}
	if past.Start != 5 || past.End != 5 {
		t.Fatalf("past = %+v, want empty window at 5", past)
	}
}
