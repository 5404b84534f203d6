// Package catalog loads the sect's content tables: buildings and their
// grants, map sites with task templates, tier requirements and recruit names.
//
// The default catalog is embedded; Load accepts any YAML document of the same
// shape. Every label is parsed into its domain enum at load time and template
// predicates are compiled, so a loaded Catalog never fails later on bad input.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"gopkg.in/yaml.v3"

	"github.com/louisbranch/sect.ascension/internal/services/game/domain/building"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/cultivation"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/talent"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/task"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/world"
)

//go:embed data/catalog.yaml
var defaultDocument []byte

// SiteKind classifies a map site.
type SiteKind string

const (
	SiteVillage SiteKind = "VILLAGE"
	SiteFaction SiteKind = "FACTION"
	SiteDanger  SiteKind = "DANGER"
	SiteRealm   SiteKind = "REALM"
	SiteMonster SiteKind = "MONSTER"
)

func parseSiteKind(value string) (SiteKind, error) {
	k := SiteKind(strings.ToUpper(strings.TrimSpace(value)))
	switch k {
	case SiteVillage, SiteFaction, SiteDanger, SiteRealm, SiteMonster:
		return k, nil
	}
	return "", fmt.Errorf("unknown site kind %q", value)
}

// Start holds a new sect's opening state.
type Start struct {
	Resources  int
	Reputation int
	Disciples  int
}

// Template produces tasks at a site.
type Template struct {
	Name             string
	Kind             task.Kind
	Duration         int
	EnergyCost       int
	ConstitutionCost int
	EnemyLevel       int
	DangerLevel      int
	Skill            talent.Type
	MaxParticipants  int
	ExpiryTurns      int
	Rewards          task.Rewards
	When             string

	program *vm.Program
}

// Available reports whether the template's predicate holds in env. A template
// without a predicate is always available.
func (t Template) Available(env Env) (bool, error) {
	if t.program == nil {
		return true, nil
	}
	out, err := vm.Run(t.program, env)
	if err != nil {
		return false, fmt.Errorf("template %q: %w", t.Name, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// Site is a location on the sect's map.
type Site struct {
	ID         string
	Name       string
	Kind       SiteKind
	Position   world.Position
	Prosperity int
	Danger     int
	Level      int
	GrowthRate float64
	Templates  []Template

	// Invading is the id of the village or faction a monster stands on.
	Invading string
}

// Invadable reports whether a monster landing on the site invades it.
func (s Site) Invadable() bool {
	return s.Kind == SiteVillage || s.Kind == SiteFaction
}

// MonsterRules drive monsters between turns. Each idle monster moves one
// step with MoveChance, otherwise trains and levels with TrainChance.
type MonsterRules struct {
	MoveChance  float64
	TrainChance float64
	Spawn       SpawnRule
}

// SpawnRule places a new monster with Chance per turn, named from Names, at a
// level within [MinLevel, MaxLevel].
type SpawnRule struct {
	Chance     float64
	MinLevel   int
	MaxLevel   int
	GrowthRate float64
	Names      []string
	Templates  []Template
}

// Enabled reports whether the rule can spawn anything.
func (r SpawnRule) Enabled() bool {
	return r.Chance > 0 && len(r.Names) > 0
}

// Catalog is the parsed content.
type Catalog struct {
	Start        Start
	DemonLevel   int
	Requirements map[cultivation.Level]map[task.Kind]int
	Names        []string
	Buildings    []building.Building
	Sites        []Site
	Bounds       world.Bounds
	Monsters     MonsterRules
}

// Default parses the embedded catalog.
func Default() (*Catalog, error) {
	return Load(defaultDocument)
}

// Load parses a catalog document.
func Load(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return doc.compile()
}

// Needed returns the task counts required to leave level.
func (c *Catalog) Needed(level cultivation.Level) map[task.Kind]int {
	src := c.Requirements[level]
	out := make(map[task.Kind]int, len(src))
	for k, n := range src {
		out[k] = n
	}
	return out
}

// Tree builds a fresh progression tree from the catalog buildings.
func (c *Catalog) Tree() (*building.Tree, error) {
	tree := building.NewTree()
	for _, b := range c.Buildings {
		if err := tree.Add(b); err != nil {
			return nil, err
		}
	}
	return tree, nil
}

// Site returns the site with id.
func (c *Catalog) Site(id string) (Site, bool) {
	for _, s := range c.Sites {
		if s.ID == id {
			return s, true
		}
	}
	return Site{}, false
}

// Env is the data available to template predicates.
type Env struct {
	Turn       int
	Reputation int
	Resources  int
	Disciples  int
	Built      int
	Site       string
	Prosperity int
	Level      int
}

func compilePredicate(src string) (*vm.Program, error) {
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}
	return expr.Compile(src, expr.Env(Env{}), expr.AsBool())
}

// Params instantiates the template at site as task params. Combat templates
// without an explicit enemy level fight the site's monster level.
func (t Template) Params(id string, site Site, turn int) task.Params {
	enemy := t.EnemyLevel
	if t.Kind == task.KindCombat && enemy == 0 {
		enemy = site.Level
	}
	return task.Params{
		ID:               id,
		Name:             t.Name,
		Kind:             t.Kind,
		SiteID:           site.ID,
		Rewards:          t.Rewards,
		EnemyLevel:       enemy,
		DangerLevel:      t.DangerLevel,
		Skill:            t.Skill,
		Duration:         t.Duration,
		EnergyCost:       t.EnergyCost,
		ConstitutionCost: t.ConstitutionCost,
		ExpiryTurns:      t.ExpiryTurns,
		MaxParticipants:  t.MaxParticipants,
		CreatedTurn:      turn,
		ValidPositions:   []world.Position{site.Position},
	}
}
