package filter

import (
	"testing"

	"github.com/louisbranch/sect.ascension/internal/services/game/domain/cultivation"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/disciple"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/talent"
)

func roster() []disciple.View {
	return []disciple.View{
		{
			ID: "disciple-0001", Name: "Lin", Kind: disciple.KindOuter, DaoHeart: 50, Energy: 100, Age: 16,
			Cultivation: cultivation.Progress{Level: cultivation.QiRefining},
			Talents:     []talent.Talent{{Type: talent.Wood, Level: 3}},
		},
		{
			ID: "disciple-0002", Name: "Mei", Kind: disciple.KindInner, DaoHeart: 72, Energy: 40, Age: 40,
			Cultivation: cultivation.Progress{Level: cultivation.Foundation},
			Talents:     []talent.Talent{{Type: talent.Sword, Level: 5}, {Type: talent.Fire, Level: 2}},
			CurrentTask: "task-000003",
		},
		{
			ID: "disciple-0003", Name: "Shen", Kind: disciple.KindPersonal, DaoHeart: 61, Energy: 90, Age: 120,
			Cultivation: cultivation.Progress{Level: cultivation.GoldenCore},
		},
	}
}

func TestParseDiscipleFilter(t *testing.T) {
	tests := []struct {
		filter string
		want   []string
	}{
		{"", []string{"disciple-0001", "disciple-0002", "disciple-0003"}},
		{`kind = "INNER"`, []string{"disciple-0002"}},
		{`dao_heart > 60`, []string{"disciple-0002", "disciple-0003"}},
		{`kind = "INNER" AND dao_heart > 60`, []string{"disciple-0002"}},
		{`kind = "OUTER" OR age >= 100`, []string{"disciple-0001", "disciple-0003"}},
		{`talent = "SWORD"`, []string{"disciple-0002"}},
		{`talent != "SWORD"`, []string{"disciple-0001", "disciple-0003"}},
		{`tier = "FOUNDATION"`, []string{"disciple-0002"}},
		{`tier_index >= 1 AND energy < 50`, []string{"disciple-0002"}},
		{`task = ""`, []string{"disciple-0001", "disciple-0003"}},
		{`NOT kind = "PERSONAL"`, []string{"disciple-0001", "disciple-0002"}},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			keep, err := ParseDiscipleFilter(tt.filter)
			if err != nil {
				t.Fatalf("parse %q: %v", tt.filter, err)
			}
			var got []string
			for _, d := range roster() {
				if keep(d) {
					got = append(got, d.ID)
				}
			}
			if len(got) != len(tt.want) {
				t.Fatalf("matches = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("matches = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestParseDiscipleFilterRejects(t *testing.T) {
	for _, filter := range []string{
		`unknown = "x"`,
		`kind = `,
		`dao_heart = "high"`,
	} {
		if _, err := ParseDiscipleFilter(filter); err == nil {
			t.Fatalf("parse %q: expected error", filter)
		}
	}
}
