package catalog

import (
	"strings"
	"testing"

	"github.com/louisbranch/sect.ascension/internal/services/game/domain/condition"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/cultivation"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/modifier"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/talent"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/task"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if c.Start.Resources != 1000 || c.Start.Disciples != 3 {
		t.Fatalf("start = %+v", c.Start)
	}
	if c.DemonLevel != 10 {
		t.Fatalf("demon level = %d, want 10", c.DemonLevel)
	}
	if got := c.Needed(cultivation.Foundation)[task.KindCombat]; got != 1 {
		t.Fatalf("foundation combat requirement = %d, want 1", got)
	}
	tree, err := c.Tree()
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	if tree.Root() != "main_hall" {
		t.Fatalf("root = %q, want main_hall", tree.Root())
	}
	if len(c.Sites) == 0 || len(c.Names) == 0 {
		t.Fatal("expected sites and names")
	}
}

func TestMonsterRules(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	m := c.Monsters
	if m.MoveChance != 0.5 || m.TrainChance != 0.3 {
		t.Fatalf("monster actions = %+v, want move 0.5 train 0.3", m)
	}
	if !m.Spawn.Enabled() || m.Spawn.MinLevel != 1 || m.Spawn.MaxLevel != 3 {
		t.Fatalf("spawn = %+v", m.Spawn)
	}
	if len(m.Spawn.Templates) != 1 || m.Spawn.Templates[0].Kind != task.KindCombat {
		t.Fatalf("spawn templates = %+v", m.Spawn.Templates)
	}
	if c.Bounds.Unbounded() || !c.Bounds.Contains(c.Sites[0].Position) {
		t.Fatalf("bounds = %+v", c.Bounds)
	}
	for _, site := range c.Sites {
		if !c.Bounds.Contains(site.Position) {
			t.Fatalf("site %s at %v outside bounds", site.ID, site.Position)
		}
	}

	bare, err := Load([]byte("start: {resources: 10}\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if bare.Monsters.Spawn.Enabled() || !bare.Bounds.Unbounded() {
		t.Fatalf("bare catalog monsters = %+v bounds = %+v", bare.Monsters, bare.Bounds)
	}
}

func TestSiteInvadable(t *testing.T) {
	tests := []struct {
		kind SiteKind
		want bool
	}{
		{SiteVillage, true},
		{SiteFaction, true},
		{SiteDanger, false},
		{SiteRealm, false},
		{SiteMonster, false},
	}
	for _, tc := range tests {
		if got := (Site{Kind: tc.kind}).Invadable(); got != tc.want {
			t.Fatalf("Invadable(%s) = %v, want %v", tc.kind, got, tc.want)
		}
	}
}

func TestNeededReturnsCopy(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	needed := c.Needed(cultivation.Foundation)
	needed[task.KindCombat] = 99
	if c.Needed(cultivation.Foundation)[task.KindCombat] != 1 {
		t.Fatal("Needed should not expose catalog state")
	}
}

func TestGrantConditionsCompile(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	grants := map[string]condition.Modifier{}
	for _, b := range c.Buildings {
		for _, g := range b.Grants {
			grants[g.Modifier.Name] = g
		}
	}

	tithe := grants["Main Hall Tithe"]
	if !condition.IsAlways(tithe.When) {
		t.Fatalf("tithe condition = %v, want always", tithe.When)
	}
	if tithe.Modifier.Source != modifier.SourceBuilding {
		t.Fatalf("tithe source = %s", tithe.Modifier.Source)
	}

	still := grants["Still Mind"]
	want := condition.Attribute{Attr: condition.AttrDaoHeart, Op: condition.GE, Value: 60}
	if still.When != condition.Condition(want) {
		t.Fatalf("still mind condition = %#v", still.When)
	}

	roots := grants["Verdant Roots"]
	if roots.Modifier.Target != modifier.TalentBonus(talent.Wood) {
		t.Fatalf("verdant roots target = %v", roots.Modifier.Target)
	}

	drilled := grants["Drilled Forms"]
	if _, ok := drilled.When.(condition.Or); !ok {
		t.Fatalf("drilled forms condition = %T, want Or", drilled.When)
	}
	breath := grants["Deep Breath"]
	if _, ok := breath.When.(condition.Not); !ok {
		t.Fatalf("deep breath condition = %T, want Not", breath.When)
	}
}

func TestTemplateAvailability(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	clan, ok := c.Site("azure_clan")
	if !ok {
		t.Fatal("azure_clan missing")
	}
	trade := clan.Templates[0]

	ok, err = trade.Available(Env{Reputation: 9})
	if err != nil || ok {
		t.Fatalf("Available(rep 9) = %v, %v, want false", ok, err)
	}
	ok, err = trade.Available(Env{Reputation: 10})
	if err != nil || !ok {
		t.Fatalf("Available(rep 10) = %v, %v, want true", ok, err)
	}

	village, _ := c.Site("green_village")
	ok, err = village.Templates[0].Available(Env{})
	if err != nil || !ok {
		t.Fatalf("unconditional template = %v, %v", ok, err)
	}
}

func TestTemplateParamsUseMonsterLevel(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	den, _ := c.Site("wolf_den")
	den.Level = 4
	p := den.Templates[0].Params("task-000001", den, 7)
	if p.EnemyLevel != 4 {
		t.Fatalf("enemy level = %d, want 4", p.EnemyLevel)
	}
	if p.CreatedTurn != 7 || p.SiteID != "wolf_den" {
		t.Fatalf("params = %+v", p)
	}
	if len(p.ValidPositions) != 1 || p.ValidPositions[0] != den.Position {
		t.Fatalf("valid positions = %v", p.ValidPositions)
	}
	if _, err := task.New(p); err != nil {
		t.Fatalf("task.New() error = %v", err)
	}
}

func TestLoadRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "unknown talent",
			doc: `
buildings:
  - id: hall
    cost: 10
    grants:
      - {name: x, target: TALENT_BONUS, talent: SHADOW, apply: ADDITIVE, value: 1}
`,
			want: "SHADOW",
		},
		{
			name: "talent bonus without talent",
			doc: `
buildings:
  - id: hall
    cost: 10
    grants:
      - {name: x, target: TALENT_BONUS, apply: ADDITIVE, value: 1}
`,
			want: "grant",
		},
		{
			name: "two roots",
			doc: `
buildings:
  - {id: a, cost: 1}
  - {id: b, cost: 1}
`,
			want: "second root",
		},
		{
			name: "ambiguous condition",
			doc: `
buildings:
  - id: hall
    cost: 10
    grants:
      - name: x
        target: INCOME
        apply: ADDITIVE
        value: 1
        when: {always: true, kind: INNER}
`,
			want: "exactly one",
		},
		{
			name: "bad predicate",
			doc: `
sites:
  - id: s
    kind: VILLAGE
    templates:
      - {name: t, kind: GATHERING, when: "Reputation >="}
`,
			want: "compile when",
		},
		{
			name: "non-boolean predicate",
			doc: `
sites:
  - id: s
    kind: VILLAGE
    templates:
      - {name: t, kind: GATHERING, when: "Reputation + 1"}
`,
			want: "compile when",
		},
		{
			name: "unknown level",
			doc: `
requirements:
  MORTAL: {COMBAT: 1}
`,
			want: "requirements",
		},
		{
			name: "inverted bounds",
			doc: `
bounds: {min: {x: 3, y: 0}, max: {x: -3, y: 0}}
`,
			want: "bounds",
		},
		{
			name: "move chance above one",
			doc: `
monsters: {move_chance: 1.5}
`,
			want: "move_chance",
		},
		{
			name: "spawn without names",
			doc: `
monsters:
  spawn: {chance: 0.1, min_level: 1, max_level: 2}
`,
			want: "name",
		},
		{
			name: "spawn levels inverted",
			doc: `
monsters:
  spawn: {chance: 0.1, min_level: 3, max_level: 2, names: [Boar]}
`,
			want: "levels",
		},
		{
			name: "spawn template kind",
			doc: `
monsters:
  spawn:
    templates:
      - {name: t, kind: DUELING}
`,
			want: "monsters",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load([]byte(tc.doc))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Load() error = %v, want containing %q", err, tc.want)
			}
		})
	}
}
