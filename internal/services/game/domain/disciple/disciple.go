// Package disciple defines the sect's actor entity.
package disciple

import (
	"fmt"
	"slices"
	"strings"

	"github.com/louisbranch/sect.ascension/internal/services/game/domain/cultivation"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/modifier"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/talent"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/task"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/world"
)

// Kind is a disciple's standing within the sect.
type Kind string

const (
	KindOuter    Kind = "OUTER"
	KindInner    Kind = "INNER"
	KindPersonal Kind = "PERSONAL"
)

// Kinds lists every kind in rank order.
var Kinds = []Kind{KindOuter, KindInner, KindPersonal}

// ParseKind canonicalizes a kind label.
func ParseKind(value string) (Kind, error) {
	upper := strings.ToUpper(strings.TrimSpace(value))
	upper = strings.TrimPrefix(upper, "DISCIPLE_KIND_")
	for _, k := range Kinds {
		if string(k) == upper {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown disciple kind %q", value)
}

// Attribute bounds and starting values.
const (
	AttributeMin = 0
	AttributeMax = 100

	StartingAge          = 16
	StartingDaoHeart     = 50
	StartingEnergy       = 100
	StartingConstitution = 100
	DefaultMovement      = 6
)

// Params describe a new disciple.
type Params struct {
	ID           string
	Name         string
	Kind         Kind
	Talents      []talent.Talent
	Requirements map[task.Kind]int
	Position     world.Position
	Modifiers    *modifier.Sequence
}

// Disciple is an actor owned by a sect.
type Disciple struct {
	ID      string
	Name    string
	Kind    Kind
	Talents []talent.Talent

	Energy       float64
	Constitution float64
	DaoHeart     float64
	Age          int
	Lifespan     int

	Cultivation cultivation.Progress
	Modifiers   *modifier.Set

	// CurrentTask is the id of the task the disciple is attached to, or "".
	CurrentTask string

	Position world.Position
	Movement int
}

// New builds a disciple with starting attributes at QiRefining.
func New(p Params) (*Disciple, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, fmt.Errorf("disciple id is required")
	}
	kind, err := ParseKind(string(p.Kind))
	if err != nil {
		return nil, err
	}
	p.Kind = kind
	for _, t := range p.Talents {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	return &Disciple{
		ID:           p.ID,
		Name:         p.Name,
		Kind:         p.Kind,
		Talents:      slices.Clone(p.Talents),
		Energy:       StartingEnergy,
		Constitution: StartingConstitution,
		DaoHeart:     StartingDaoHeart,
		Age:          StartingAge,
		Lifespan:     cultivation.QiRefining.BaseLifespan(),
		Cultivation:  cultivation.NewProgress(cultivation.QiRefining, p.Requirements),
		Modifiers:    modifier.NewSet(p.Modifiers),
		Position:     p.Position,
		Movement:     DefaultMovement,
	}, nil
}

// Busy reports whether the disciple is attached to a task.
func (d *Disciple) Busy() bool {
	return d.CurrentTask != ""
}

// Alive reports whether the disciple is within their lifespan.
func (d *Disciple) Alive() bool {
	return d.Age < d.Lifespan
}

// TalentLevel returns the level of t, or 0 when the disciple lacks it.
func (d *Disciple) TalentLevel(t talent.Type) int {
	best := 0
	for _, have := range d.Talents {
		if have.Type == t && have.Level > best {
			best = have.Level
		}
	}
	return best
}

// HasTalent reports whether the disciple carries t.
func (d *Disciple) HasTalent(t talent.Type) bool {
	return d.TalentLevel(t) > 0
}

// Clamp bounds a native attribute value.
func Clamp(v float64) float64 {
	return max(AttributeMin, min(AttributeMax, v))
}

// AdjustEnergy adds delta to energy within bounds.
func (d *Disciple) AdjustEnergy(delta float64) {
	d.Energy = Clamp(d.Energy + delta)
}

// AdjustConstitution adds delta to constitution within bounds.
func (d *Disciple) AdjustConstitution(delta float64) {
	d.Constitution = Clamp(d.Constitution + delta)
}

// AdjustDaoHeart adds delta to dao heart within bounds.
func (d *Disciple) AdjustDaoHeart(delta float64) {
	d.DaoHeart = Clamp(d.DaoHeart + delta)
}

// Advance moves to the next tier and extends lifespan to its base.
func (d *Disciple) Advance(needed map[task.Kind]int) bool {
	if !d.Cultivation.Advance(needed) {
		return false
	}
	d.Lifespan = d.Cultivation.Level.BaseLifespan()
	return true
}

// View is an immutable projection of a disciple.
type View struct {
	ID           string
	Name         string
	Kind         Kind
	Talents      []talent.Talent
	Energy       float64
	Constitution float64
	DaoHeart     float64
	Age          int
	Lifespan     int
	Cultivation  cultivation.Progress
	SubTier      cultivation.SubTier
	Modifiers    []modifier.Modifier
	CurrentTask  string
	Position     world.Position
	Movement     int
}

// View projects the disciple.
func (d *Disciple) View() View {
	return View{
		ID:           d.ID,
		Name:         d.Name,
		Kind:         d.Kind,
		Talents:      slices.Clone(d.Talents),
		Energy:       d.Energy,
		Constitution: d.Constitution,
		DaoHeart:     d.DaoHeart,
		Age:          d.Age,
		Lifespan:     d.Lifespan,
		Cultivation:  d.Cultivation.Clone(),
		SubTier:      d.Cultivation.SubTier(),
		Modifiers:    d.Modifiers.All(),
		CurrentTask:  d.CurrentTask,
		Position:     d.Position,
		Movement:     d.Movement,
	}
}
