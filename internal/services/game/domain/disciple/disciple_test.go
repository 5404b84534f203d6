package disciple

import (
	"testing"

	"github.com/louisbranch/sect.ascension/internal/services/game/domain/cultivation"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/modifier"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/talent"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/task"
)

func TestNewDefaults(t *testing.T) {
	d, err := New(Params{ID: "d1", Name: "Yun", Kind: KindInner, Talents: []talent.Talent{{Type: talent.Wood, Level: 3}}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if d.Age != 16 || d.DaoHeart != 50 || d.Lifespan != 150 {
		t.Fatalf("defaults = age %d dao %v lifespan %d", d.Age, d.DaoHeart, d.Lifespan)
	}
	if d.Cultivation.Level != cultivation.QiRefining {
		t.Fatalf("level = %s, want QI_REFINING", d.Cultivation.Level)
	}
	if d.TalentLevel(talent.Wood) != 3 || d.HasTalent(talent.Fire) {
		t.Fatal("talent lookup mismatch")
	}
	if !d.Alive() || d.Busy() {
		t.Fatal("new disciple should be alive and idle")
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New(Params{ID: "", Kind: KindOuter}); err == nil {
		t.Fatal("expected missing id error")
	}
	if _, err := New(Params{ID: "d1", Kind: "ELDER"}); err == nil {
		t.Fatal("expected kind error")
	}
	if _, err := New(Params{ID: "d1", Kind: KindOuter, Talents: []talent.Talent{{Type: talent.Fire, Level: 0}}}); err == nil {
		t.Fatal("expected talent level error")
	}
}

func TestAdjustClamps(t *testing.T) {
	d, _ := New(Params{ID: "d1", Kind: KindOuter})
	d.AdjustEnergy(-250)
	d.AdjustConstitution(30)
	d.AdjustDaoHeart(80)
	if d.Energy != 0 || d.Constitution != 100 || d.DaoHeart != 100 {
		t.Fatalf("clamped = %v/%v/%v, want 0/100/100", d.Energy, d.Constitution, d.DaoHeart)
	}
}

func TestAdvanceExtendsLifespan(t *testing.T) {
	d, _ := New(Params{ID: "d1", Kind: KindOuter})
	d.Cultivation.Gain(100)
	if !d.Advance(map[task.Kind]int{task.KindCombat: 1}) {
		t.Fatal("expected advance")
	}
	if d.Lifespan != 300 {
		t.Fatalf("lifespan = %d, want 300", d.Lifespan)
	}
	if d.Cultivation.Requirements[task.KindCombat].Needed != 1 {
		t.Fatal("expected next tier requirements")
	}
}

func TestViewIsIndependent(t *testing.T) {
	d, _ := New(Params{ID: "d1", Kind: KindOuter, Talents: []talent.Talent{{Type: talent.Fire, Level: 1}}})
	d.Modifiers.Add(modifier.New("x", modifier.For(modifier.TargetEnergy), modifier.Application{Kind: modifier.Additive, Value: 1}, modifier.SourceBuff))

	v := d.View()
	v.Talents[0].Level = 9
	v.Modifiers[0].Name = "changed"
	if d.Talents[0].Level != 1 || d.Modifiers.All()[0].Name != "x" {
		t.Fatal("view mutation leaked")
	}
}

func TestNewCanonicalizesKind(t *testing.T) {
	d, err := New(Params{ID: "d1", Kind: " inner "})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if d.Kind != KindInner || d.View().Kind != KindInner {
		t.Fatalf("kind = %q, want %q", d.Kind, KindInner)
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("disciple_kind_personal"); err != nil || k != KindPersonal {
		t.Fatalf("ParseKind = %q, %v", k, err)
	}
}
