package catalog

import (
	"errors"
	"fmt"

	"github.com/louisbranch/sect.ascension/internal/services/game/domain/building"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/condition"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/cultivation"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/disciple"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/modifier"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/talent"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/task"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/world"
)

type document struct {
	Version      int                       `yaml:"version"`
	Start        startDoc                  `yaml:"start"`
	DemonLevel   int                       `yaml:"demon_level"`
	Requirements map[string]map[string]int `yaml:"requirements"`
	Names        []string                  `yaml:"names"`
	Buildings    []buildingDoc             `yaml:"buildings"`
	Sites        []siteDoc                 `yaml:"sites"`
	Bounds       *boundsDoc                `yaml:"bounds"`
	Monsters     monstersDoc               `yaml:"monsters"`
}

type boundsDoc struct {
	Min positionDoc `yaml:"min"`
	Max positionDoc `yaml:"max"`
}

type monstersDoc struct {
	MoveChance  float64  `yaml:"move_chance"`
	TrainChance float64  `yaml:"train_chance"`
	Spawn       spawnDoc `yaml:"spawn"`
}

type spawnDoc struct {
	Chance     float64       `yaml:"chance"`
	MinLevel   int           `yaml:"min_level"`
	MaxLevel   int           `yaml:"max_level"`
	GrowthRate float64       `yaml:"growth_rate"`
	Names      []string      `yaml:"names"`
	Templates  []templateDoc `yaml:"templates"`
}

type startDoc struct {
	Resources  int `yaml:"resources"`
	Reputation int `yaml:"reputation"`
	Disciples  int `yaml:"disciples"`
}

type buildingDoc struct {
	ID     string     `yaml:"id"`
	Name   string     `yaml:"name"`
	Parent string     `yaml:"parent"`
	Cost   int        `yaml:"cost"`
	Grants []grantDoc `yaml:"grants"`
}

type grantDoc struct {
	Name     string        `yaml:"name"`
	Target   string        `yaml:"target"`
	Talent   string        `yaml:"talent"`
	Apply    string        `yaml:"apply"`
	Value    float64       `yaml:"value"`
	Priority int           `yaml:"priority"`
	When     *conditionDoc `yaml:"when"`
}

// conditionDoc sets exactly one of its fields.
type conditionDoc struct {
	Always      bool            `yaml:"always"`
	Attribute   *attributeDoc   `yaml:"attribute"`
	Tier        *tierDoc        `yaml:"tier"`
	Kind        string          `yaml:"kind"`
	HasTalent   string          `yaml:"has_talent"`
	TalentLevel *talentLevelDoc `yaml:"talent_level"`
	And         []conditionDoc  `yaml:"and"`
	Or          []conditionDoc  `yaml:"or"`
	Not         *conditionDoc   `yaml:"not"`
}

type attributeDoc struct {
	Attr  string  `yaml:"attr"`
	Op    string  `yaml:"op"`
	Value float64 `yaml:"value"`
}

type tierDoc struct {
	Op    string `yaml:"op"`
	Level string `yaml:"level"`
}

type talentLevelDoc struct {
	Talent string `yaml:"talent"`
	Op     string `yaml:"op"`
	Level  int    `yaml:"level"`
}

type siteDoc struct {
	ID         string        `yaml:"id"`
	Name       string        `yaml:"name"`
	Kind       string        `yaml:"kind"`
	Position   positionDoc   `yaml:"position"`
	Prosperity int           `yaml:"prosperity"`
	Danger     int           `yaml:"danger"`
	Level      int           `yaml:"level"`
	GrowthRate float64       `yaml:"growth_rate"`
	Templates  []templateDoc `yaml:"templates"`
}

type positionDoc struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

type templateDoc struct {
	Name             string     `yaml:"name"`
	Kind             string     `yaml:"kind"`
	Duration         int        `yaml:"duration"`
	EnergyCost       int        `yaml:"energy_cost"`
	ConstitutionCost int        `yaml:"constitution_cost"`
	EnemyLevel       int        `yaml:"enemy_level"`
	DangerLevel      int        `yaml:"danger_level"`
	Skill            string     `yaml:"skill"`
	MaxParticipants  int        `yaml:"max_participants"`
	ExpiryTurns      int        `yaml:"expiry_turns"`
	Rewards          rewardsDoc `yaml:"rewards"`
	When             string     `yaml:"when"`
}

type rewardsDoc struct {
	Progress   int `yaml:"progress"`
	Resources  int `yaml:"resources"`
	Reputation int `yaml:"reputation"`
	DaoHeart   int `yaml:"dao_heart"`
}

func (d document) compile() (*Catalog, error) {
	if d.Start.Disciples < 0 || d.Start.Resources < 0 {
		return nil, errors.New("start values must not be negative")
	}
	c := &Catalog{
		Start: Start{
			Resources:  d.Start.Resources,
			Reputation: d.Start.Reputation,
			Disciples:  d.Start.Disciples,
		},
		DemonLevel:   d.DemonLevel,
		Requirements: make(map[cultivation.Level]map[task.Kind]int, len(d.Requirements)),
		Names:        append([]string(nil), d.Names...),
	}

	for levelName, counts := range d.Requirements {
		level, err := cultivation.ParseLevel(levelName)
		if err != nil {
			return nil, fmt.Errorf("requirements: %w", err)
		}
		needed := make(map[task.Kind]int, len(counts))
		for kindName, n := range counts {
			kind, err := task.ParseKind(kindName)
			if err != nil {
				return nil, fmt.Errorf("requirements %s: %w", level, err)
			}
			if n < 0 {
				return nil, fmt.Errorf("requirements %s: %s count must not be negative", level, kind)
			}
			needed[kind] = n
		}
		c.Requirements[level] = needed
	}

	for _, bd := range d.Buildings {
		b, err := bd.compile()
		if err != nil {
			return nil, err
		}
		c.Buildings = append(c.Buildings, b)
	}
	if _, err := c.Tree(); err != nil {
		return nil, fmt.Errorf("buildings: %w", err)
	}

	seen := make(map[string]bool, len(d.Sites))
	for _, sd := range d.Sites {
		if seen[sd.ID] {
			return nil, fmt.Errorf("site %s: duplicate id", sd.ID)
		}
		seen[sd.ID] = true
		s, err := sd.compile()
		if err != nil {
			return nil, err
		}
		c.Sites = append(c.Sites, s)
	}

	if b := d.Bounds; b != nil {
		c.Bounds = world.Bounds{
			Min: world.Position{X: b.Min.X, Y: b.Min.Y},
			Max: world.Position{X: b.Max.X, Y: b.Max.Y},
		}
		if c.Bounds.Min.X > c.Bounds.Max.X || c.Bounds.Min.Y > c.Bounds.Max.Y {
			return nil, errors.New("bounds: min must not exceed max")
		}
	}
	monsters, err := d.Monsters.compile()
	if err != nil {
		return nil, err
	}
	c.Monsters = monsters
	return c, nil
}

func (md monstersDoc) compile() (MonsterRules, error) {
	chances := []struct {
		name string
		p    float64
	}{
		{"move_chance", md.MoveChance},
		{"train_chance", md.TrainChance},
		{"spawn chance", md.Spawn.Chance},
		{"spawn growth_rate", md.Spawn.GrowthRate},
	}
	for _, c := range chances {
		if c.p < 0 || c.p > 1 {
			return MonsterRules{}, fmt.Errorf("monsters: %s must be within [0,1]", c.name)
		}
	}
	sd := md.Spawn
	rule := SpawnRule{
		Chance:     sd.Chance,
		MinLevel:   sd.MinLevel,
		MaxLevel:   sd.MaxLevel,
		GrowthRate: sd.GrowthRate,
		Names:      append([]string(nil), sd.Names...),
	}
	if rule.Chance > 0 {
		if len(rule.Names) == 0 {
			return MonsterRules{}, errors.New("monsters: spawn needs at least one name")
		}
		if rule.MinLevel < 1 || rule.MaxLevel < rule.MinLevel {
			return MonsterRules{}, fmt.Errorf("monsters: spawn levels %d..%d are invalid", rule.MinLevel, rule.MaxLevel)
		}
	}
	for _, td := range sd.Templates {
		t, err := td.compile()
		if err != nil {
			return MonsterRules{}, fmt.Errorf("monsters: %w", err)
		}
		rule.Templates = append(rule.Templates, t)
	}
	return MonsterRules{MoveChance: md.MoveChance, TrainChance: md.TrainChance, Spawn: rule}, nil
}

func (bd buildingDoc) compile() (building.Building, error) {
	b := building.Building{ID: bd.ID, Name: bd.Name, BaseCost: bd.Cost, Parent: bd.Parent}
	for _, gd := range bd.Grants {
		g, err := gd.compile()
		if err != nil {
			return building.Building{}, fmt.Errorf("building %s: %w", bd.ID, err)
		}
		b.Grants = append(b.Grants, g)
	}
	return b, nil
}

func (gd grantDoc) compile() (condition.Modifier, error) {
	kind, err := modifier.ParseTargetKind(gd.Target)
	if err != nil {
		return condition.Modifier{}, fmt.Errorf("grant %q: %w", gd.Name, err)
	}
	target := modifier.For(kind)
	if gd.Talent != "" {
		t, err := talent.Parse(gd.Talent)
		if err != nil {
			return condition.Modifier{}, fmt.Errorf("grant %q: %w", gd.Name, err)
		}
		target.Talent = t
	}
	if err := target.Validate(); err != nil {
		return condition.Modifier{}, fmt.Errorf("grant %q: %w", gd.Name, err)
	}
	app, err := modifier.ParseApplicationKind(gd.Apply)
	if err != nil {
		return condition.Modifier{}, fmt.Errorf("grant %q: %w", gd.Name, err)
	}
	when := condition.Condition(condition.Always{})
	if gd.When != nil {
		if when, err = gd.When.compile(); err != nil {
			return condition.Modifier{}, fmt.Errorf("grant %q: %w", gd.Name, err)
		}
	}
	m := modifier.New(gd.Name, target, modifier.Application{Kind: app, Value: gd.Value}, modifier.SourceBuilding).
		WithPriority(gd.Priority)
	return condition.Modifier{When: when, Modifier: m}, nil
}

func (cd conditionDoc) compile() (condition.Condition, error) {
	var (
		out condition.Condition
		set int
	)
	if cd.Always {
		out = condition.Always{}
		set++
	}
	if a := cd.Attribute; a != nil {
		attr, err := condition.ParseAttr(a.Attr)
		if err != nil {
			return nil, err
		}
		op, err := condition.ParseOp(a.Op)
		if err != nil {
			return nil, err
		}
		out = condition.Attribute{Attr: attr, Op: op, Value: a.Value}
		set++
	}
	if tr := cd.Tier; tr != nil {
		op, err := condition.ParseOp(tr.Op)
		if err != nil {
			return nil, err
		}
		level, err := cultivation.ParseLevel(tr.Level)
		if err != nil {
			return nil, err
		}
		out = condition.Tier{Op: op, Level: level}
		set++
	}
	if cd.Kind != "" {
		kind, err := disciple.ParseKind(cd.Kind)
		if err != nil {
			return nil, err
		}
		out = condition.KindIs{Kind: kind}
		set++
	}
	if cd.HasTalent != "" {
		t, err := talent.Parse(cd.HasTalent)
		if err != nil {
			return nil, err
		}
		out = condition.HasTalent{Talent: t}
		set++
	}
	if tl := cd.TalentLevel; tl != nil {
		t, err := talent.Parse(tl.Talent)
		if err != nil {
			return nil, err
		}
		op, err := condition.ParseOp(tl.Op)
		if err != nil {
			return nil, err
		}
		out = condition.TalentLevel{Talent: t, Op: op, Level: tl.Level}
		set++
	}
	if len(cd.And) > 0 {
		members, err := compileAll(cd.And)
		if err != nil {
			return nil, err
		}
		out = condition.And(members)
		set++
	}
	if len(cd.Or) > 0 {
		members, err := compileAll(cd.Or)
		if err != nil {
			return nil, err
		}
		out = condition.Or(members)
		set++
	}
	if cd.Not != nil {
		inner, err := cd.Not.compile()
		if err != nil {
			return nil, err
		}
		out = condition.Not{C: inner}
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("condition must set exactly one form, got %d", set)
	}
	return out, nil
}

func compileAll(docs []conditionDoc) ([]condition.Condition, error) {
	out := make([]condition.Condition, 0, len(docs))
	for _, d := range docs {
		c, err := d.compile()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (sd siteDoc) compile() (Site, error) {
	kind, err := parseSiteKind(sd.Kind)
	if err != nil {
		return Site{}, fmt.Errorf("site %s: %w", sd.ID, err)
	}
	if sd.GrowthRate < 0 || sd.GrowthRate > 1 {
		return Site{}, fmt.Errorf("site %s: growth rate must be within [0,1]", sd.ID)
	}
	s := Site{
		ID:         sd.ID,
		Name:       sd.Name,
		Kind:       kind,
		Position:   world.Position{X: sd.Position.X, Y: sd.Position.Y},
		Prosperity: sd.Prosperity,
		Danger:     sd.Danger,
		Level:      sd.Level,
		GrowthRate: sd.GrowthRate,
	}
	for _, td := range sd.Templates {
		t, err := td.compile()
		if err != nil {
			return Site{}, fmt.Errorf("site %s: %w", sd.ID, err)
		}
		s.Templates = append(s.Templates, t)
	}
	return s, nil
}

func (td templateDoc) compile() (Template, error) {
	kind, err := task.ParseKind(td.Kind)
	if err != nil {
		return Template{}, fmt.Errorf("template %q: %w", td.Name, err)
	}
	t := Template{
		Name:             td.Name,
		Kind:             kind,
		Duration:         td.Duration,
		EnergyCost:       td.EnergyCost,
		ConstitutionCost: td.ConstitutionCost,
		EnemyLevel:       td.EnemyLevel,
		DangerLevel:      td.DangerLevel,
		MaxParticipants:  td.MaxParticipants,
		ExpiryTurns:      td.ExpiryTurns,
		Rewards: task.Rewards{
			Progress:   td.Rewards.Progress,
			Resources:  td.Rewards.Resources,
			Reputation: td.Rewards.Reputation,
			DaoHeart:   td.Rewards.DaoHeart,
		},
		When: td.When,
	}
	if td.Skill != "" {
		skill, err := talent.Parse(td.Skill)
		if err != nil {
			return Template{}, fmt.Errorf("template %q: %w", td.Name, err)
		}
		t.Skill = skill
	}
	if t.program, err = compilePredicate(td.When); err != nil {
		return Template{}, fmt.Errorf("template %q: compile when: %w", td.Name, err)
	}
	return t, nil
}
