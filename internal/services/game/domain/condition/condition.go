// Package condition evaluates predicates over a disciple's attribute
// snapshot and gates sect-owned conditional modifiers.
//
// Conditions are evaluated fresh on every resolution call. Disciple state
// changes every turn, so nothing here caches a verdict.
package condition

import (
	"fmt"
	"strings"

	"github.com/louisbranch/sect.ascension/internal/services/game/domain/cultivation"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/disciple"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/talent"
)

// Snapshot is the native state a condition reads.
type Snapshot struct {
	DaoHeart     float64
	Energy       float64
	Constitution float64
	Age          int
	Level        cultivation.Level
	Kind         disciple.Kind
	Talents      map[talent.Type]int
}

// SnapshotOf captures d's native attributes.
func SnapshotOf(d *disciple.Disciple) Snapshot {
	talents := make(map[talent.Type]int, len(d.Talents))
	for _, t := range d.Talents {
		talents[t.Type] = max(talents[t.Type], t.Level)
	}
	return Snapshot{
		DaoHeart:     d.DaoHeart,
		Energy:       d.Energy,
		Constitution: d.Constitution,
		Age:          d.Age,
		Level:        d.Cultivation.Level,
		Kind:         d.Kind,
		Talents:      talents,
	}
}

// Condition is a closed set of predicates. Only this package implements it.
type Condition interface {
	fmt.Stringer
	isCondition()
}

// Op is a comparison operator.
type Op string

const (
	GT Op = ">"
	LT Op = "<"
	EQ Op = "="
	GE Op = ">="
	LE Op = "<="
)

// ParseOp canonicalizes an operator label.
func ParseOp(value string) (Op, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case ">", "GT":
		return GT, nil
	case "<", "LT":
		return LT, nil
	case "=", "==", "EQ":
		return EQ, nil
	case ">=", "GE":
		return GE, nil
	case "<=", "LE":
		return LE, nil
	default:
		return "", fmt.Errorf("unknown comparison %q", value)
	}
}

func (o Op) compare(a, b float64) bool {
	switch o {
	case GT:
		return a > b
	case LT:
		return a < b
	case EQ:
		return a == b
	case GE:
		return a >= b
	case LE:
		return a <= b
	default:
		panic(fmt.Sprintf("condition: unknown operator %q", string(o)))
	}
}

// Attr names a numeric attribute.
type Attr string

const (
	AttrDaoHeart     Attr = "DAO_HEART"
	AttrEnergy       Attr = "ENERGY"
	AttrConstitution Attr = "CONSTITUTION"
	AttrAge          Attr = "AGE"
)

// ParseAttr canonicalizes an attribute label.
func ParseAttr(value string) (Attr, error) {
	switch a := Attr(strings.ToUpper(strings.TrimSpace(value))); a {
	case AttrDaoHeart, AttrEnergy, AttrConstitution, AttrAge:
		return a, nil
	default:
		return "", fmt.Errorf("unknown attribute %q", value)
	}
}

func (a Attr) read(s Snapshot) float64 {
	switch a {
	case AttrDaoHeart:
		return s.DaoHeart
	case AttrEnergy:
		return s.Energy
	case AttrConstitution:
		return s.Constitution
	case AttrAge:
		return float64(s.Age)
	default:
		panic(fmt.Sprintf("condition: unknown attribute %q", string(a)))
	}
}

// Always holds for every snapshot.
type Always struct{}

// Attribute compares a numeric attribute against Value.
type Attribute struct {
	Attr  Attr
	Op    Op
	Value float64
}

// Tier compares the cultivation level against Level.
type Tier struct {
	Op    Op
	Level cultivation.Level
}

// KindIs matches the disciple kind.
type KindIs struct {
	Kind disciple.Kind
}

// HasTalent holds when the disciple carries Talent at any level.
type HasTalent struct {
	Talent talent.Type
}

// TalentLevel compares a talent's level. A missing talent reads as level 0.
type TalentLevel struct {
	Talent talent.Type
	Op     Op
	Level  int
}

// And holds when every member holds. An empty And holds.
type And []Condition

// Or holds when any member holds. An empty Or does not hold.
type Or []Condition

// Not negates C.
type Not struct {
	C Condition
}

func (Always) isCondition()      {}
func (Attribute) isCondition()   {}
func (Tier) isCondition()        {}
func (KindIs) isCondition()      {}
func (HasTalent) isCondition()   {}
func (TalentLevel) isCondition() {}
func (And) isCondition()         {}
func (Or) isCondition()          {}
func (Not) isCondition()         {}

// Evaluate reports whether c holds for s. A nil condition holds.
func Evaluate(c Condition, s Snapshot) bool {
	switch c := c.(type) {
	case nil, Always:
		return true
	case Attribute:
		return c.Op.compare(c.Attr.read(s), c.Value)
	case Tier:
		return c.Op.compare(float64(s.Level), float64(c.Level))
	case KindIs:
		return s.Kind == c.Kind
	case HasTalent:
		return s.Talents[c.Talent] > 0
	case TalentLevel:
		return c.Op.compare(float64(s.Talents[c.Talent]), float64(c.Level))
	case And:
		for _, member := range c {
			if !Evaluate(member, s) {
				return false
			}
		}
		return true
	case Or:
		for _, member := range c {
			if Evaluate(member, s) {
				return true
			}
		}
		return false
	case Not:
		return !Evaluate(c.C, s)
	default:
		panic(fmt.Sprintf("condition: unhandled %T", c))
	}
}

// IsAlways reports whether c holds unconditionally by construction.
func IsAlways(c Condition) bool {
	switch c.(type) {
	case nil, Always:
		return true
	default:
		return false
	}
}

func (Always) String() string { return "always" }

func (c Attribute) String() string {
	return fmt.Sprintf("%s %s %g", c.Attr, c.Op, c.Value)
}

func (c Tier) String() string {
	return fmt.Sprintf("level %s %s", c.Op, c.Level)
}

func (c KindIs) String() string {
	return fmt.Sprintf("kind = %s", c.Kind)
}

func (c HasTalent) String() string {
	return fmt.Sprintf("has %s", c.Talent)
}

func (c TalentLevel) String() string {
	return fmt.Sprintf("%s level %s %d", c.Talent, c.Op, c.Level)
}

func (c And) String() string {
	return join(c, " AND ")
}

func (c Or) String() string {
	return join(c, " OR ")
}

func (c Not) String() string {
	if c.C == nil {
		return "NOT always"
	}
	return "NOT (" + c.C.String() + ")"
}

func join(members []Condition, sep string) string {
	parts := make([]string, 0, len(members))
	for _, m := range members {
		if m == nil {
			parts = append(parts, Always{}.String())
			continue
		}
		parts = append(parts, "("+m.String()+")")
	}
	return strings.Join(parts, sep)
}
