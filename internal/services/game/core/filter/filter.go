// Package filter compiles AIP-160 filter expressions into predicates over
// disciple projections.
//
// Supported fields:
//
//	id, name, kind, tier, talent, task   string
//	tier_index, dao_heart, energy, constitution, age, lifespan, progress   int
//
// Numeric fields compare against integer literals. talent matches when any
// of the disciple's talents has the given type. task is the current task id,
// empty for an idle disciple.
package filter

import (
	"fmt"
	"strings"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	"github.com/louisbranch/sect.ascension/internal/services/game/domain/disciple"
)

// Predicate reports whether a disciple matches.
type Predicate func(disciple.View) bool

// All matches every disciple.
func All(disciple.View) bool { return true }

// DiscipleDeclarations returns the field declarations for disciple filtering.
func DiscipleDeclarations() (*filtering.Declarations, error) {
	return filtering.NewDeclarations(
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent("id", filtering.TypeString),
		filtering.DeclareIdent("name", filtering.TypeString),
		filtering.DeclareIdent("kind", filtering.TypeString),
		filtering.DeclareIdent("tier", filtering.TypeString),
		filtering.DeclareIdent("talent", filtering.TypeString),
		filtering.DeclareIdent("tier_index", filtering.TypeInt),
		filtering.DeclareIdent("dao_heart", filtering.TypeInt),
		filtering.DeclareIdent("energy", filtering.TypeInt),
		filtering.DeclareIdent("constitution", filtering.TypeInt),
		filtering.DeclareIdent("age", filtering.TypeInt),
		filtering.DeclareIdent("lifespan", filtering.TypeInt),
		filtering.DeclareIdent("progress", filtering.TypeInt),
		filtering.DeclareIdent("task", filtering.TypeString),
	)
}

type field struct {
	text   func(disciple.View) []string
	number func(disciple.View) float64
}

var fields = map[string]field{
	"id":   {text: one(func(d disciple.View) string { return d.ID })},
	"name": {text: one(func(d disciple.View) string { return d.Name })},
	"kind": {text: one(func(d disciple.View) string { return string(d.Kind) })},
	"tier": {text: one(func(d disciple.View) string { return d.Cultivation.Level.String() })},
	"talent": {text: func(d disciple.View) []string {
		out := make([]string, 0, len(d.Talents))
		for _, t := range d.Talents {
			out = append(out, string(t.Type))
		}
		return out
	}},
	"tier_index":   {number: func(d disciple.View) float64 { return float64(d.Cultivation.Level) }},
	"dao_heart":    {number: func(d disciple.View) float64 { return d.DaoHeart }},
	"energy":       {number: func(d disciple.View) float64 { return d.Energy }},
	"constitution": {number: func(d disciple.View) float64 { return d.Constitution }},
	"age":          {number: func(d disciple.View) float64 { return float64(d.Age) }},
	"lifespan":     {number: func(d disciple.View) float64 { return float64(d.Lifespan) }},
	"progress":     {number: func(d disciple.View) float64 { return float64(d.Cultivation.Progress) }},
	"task":         {text: one(func(d disciple.View) string { return d.CurrentTask })},
}

func one(get func(disciple.View) string) func(disciple.View) []string {
	return func(d disciple.View) []string { return []string{get(d)} }
}

// ParseDiscipleFilter parses an AIP-160 filter expression into a predicate.
// An empty filter matches every disciple.
func ParseDiscipleFilter(filterStr string) (Predicate, error) {
	if strings.TrimSpace(filterStr) == "" {
		return All, nil
	}

	decls, err := DiscipleDeclarations()
	if err != nil {
		return nil, fmt.Errorf("create declarations: %w", err)
	}

	filter, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return nil, fmt.Errorf("parse filter: %w", err)
	}
	if filter.CheckedExpr == nil {
		return All, nil
	}
	return compileExpr(filter.CheckedExpr.Expr)
}

func compileExpr(e *expr.Expr) (Predicate, error) {
	if e == nil {
		return All, nil
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_CallExpr:
		return compileCall(kind.CallExpr)
	default:
		return nil, fmt.Errorf("unsupported expression type: %T", kind)
	}
}

func compileCall(call *expr.Expr_Call) (Predicate, error) {
	switch call.Function {
	case filtering.FunctionAnd, "_&&_":
		return combine(call.Args, func(a, b bool) bool { return a && b })
	case filtering.FunctionOr, "_||_":
		return combine(call.Args, func(a, b bool) bool { return a || b })
	case filtering.FunctionNot, "!_":
		if len(call.Args) != 1 {
			return nil, fmt.Errorf("NOT requires 1 argument")
		}
		inner, err := compileExpr(call.Args[0])
		if err != nil {
			return nil, err
		}
		return func(d disciple.View) bool { return !inner(d) }, nil
	case filtering.FunctionEquals, "_==_":
		return compileComparison(call.Args, "=")
	case filtering.FunctionNotEquals, "_!=_":
		return compileComparison(call.Args, "!=")
	case filtering.FunctionLessThan, "_<_":
		return compileComparison(call.Args, "<")
	case filtering.FunctionLessEquals, "_<=_":
		return compileComparison(call.Args, "<=")
	case filtering.FunctionGreaterThan, "_>_":
		return compileComparison(call.Args, ">")
	case filtering.FunctionGreaterEquals, "_>=_":
		return compileComparison(call.Args, ">=")
	default:
		return nil, fmt.Errorf("unsupported function: %s", call.Function)
	}
}

func combine(args []*expr.Expr, op func(a, b bool) bool) (Predicate, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("logical operator requires 2 arguments")
	}
	left, err := compileExpr(args[0])
	if err != nil {
		return nil, err
	}
	right, err := compileExpr(args[1])
	if err != nil {
		return nil, err
	}
	return func(d disciple.View) bool { return op(left(d), right(d)) }, nil
}

func compileComparison(args []*expr.Expr, op string) (Predicate, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("comparison requires 2 arguments")
	}

	name, err := extractFieldName(args[0])
	if err != nil {
		return nil, err
	}
	f, ok := fields[name]
	if !ok {
		return nil, fmt.Errorf("unknown field: %s", name)
	}
	value, err := extractValue(args[1])
	if err != nil {
		return nil, err
	}

	switch v := value.(type) {
	case string:
		if f.text == nil {
			return nil, fmt.Errorf("field %s is not a string", name)
		}
		return compareText(f.text, op, v)
	case int64:
		if f.number == nil {
			return nil, fmt.Errorf("field %s is not numeric", name)
		}
		return compareNumber(f.number, op, float64(v))
	case float64:
		if f.number == nil {
			return nil, fmt.Errorf("field %s is not numeric", name)
		}
		return compareNumber(f.number, op, v)
	default:
		return nil, fmt.Errorf("unsupported value type: %T", v)
	}
}

// compareText matches when any value of a multi-valued field satisfies op.
func compareText(get func(disciple.View) []string, op, want string) (Predicate, error) {
	var cmp func(got string) bool
	switch op {
	case "=":
		cmp = func(got string) bool { return strings.EqualFold(got, want) }
	case "!=":
		return func(d disciple.View) bool {
			for _, got := range get(d) {
				if strings.EqualFold(got, want) {
					return false
				}
			}
			return true
		}, nil
	case "<":
		cmp = func(got string) bool { return got < want }
	case "<=":
		cmp = func(got string) bool { return got <= want }
	case ">":
		cmp = func(got string) bool { return got > want }
	case ">=":
		cmp = func(got string) bool { return got >= want }
	}
	return func(d disciple.View) bool {
		for _, got := range get(d) {
			if cmp(got) {
				return true
			}
		}
		return false
	}, nil
}

func compareNumber(get func(disciple.View) float64, op string, want float64) (Predicate, error) {
	switch op {
	case "=":
		return func(d disciple.View) bool { return get(d) == want }, nil
	case "!=":
		return func(d disciple.View) bool { return get(d) != want }, nil
	case "<":
		return func(d disciple.View) bool { return get(d) < want }, nil
	case "<=":
		return func(d disciple.View) bool { return get(d) <= want }, nil
	case ">":
		return func(d disciple.View) bool { return get(d) > want }, nil
	case ">=":
		return func(d disciple.View) bool { return get(d) >= want }, nil
	}
	return nil, fmt.Errorf("unsupported operator: %s", op)
}

func extractFieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_IdentExpr:
		return kind.IdentExpr.Name, nil
	default:
		return "", fmt.Errorf("expected identifier, got %T", kind)
	}
}

func extractValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_ConstExpr:
		return extractConstValue(kind.ConstExpr)
	default:
		return nil, fmt.Errorf("expected constant, got %T", kind)
	}
}

func extractConstValue(c *expr.Constant) (any, error) {
	if c == nil {
		return nil, fmt.Errorf("nil constant")
	}

	switch kind := c.ConstantKind.(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		return kind.Int64Value, nil
	case *expr.Constant_Uint64Value:
		return int64(kind.Uint64Value), nil
	case *expr.Constant_DoubleValue:
		return kind.DoubleValue, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}
