package scenario

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// AssertionMode selects how failed expectations are reported.
type AssertionMode int

const (
	// AssertionStrict fails the scenario on the first unmet expectation.
	AssertionStrict AssertionMode = iota
	// AssertionLogOnly logs unmet expectations and keeps going.
	AssertionLogOnly
)

// Assertions reports expectation failures according to Mode.
type Assertions struct {
	Mode AssertionMode
	Log  *logrus.Entry
}

// Failf reports a failed expectation. It returns an error only in strict mode.
func (a Assertions) Failf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if a.Mode == AssertionLogOnly {
		if a.Log != nil {
			a.Log.Warn("expectation failed: " + msg)
		}
		return nil
	}
	return fmt.Errorf("expectation failed: %s", msg)
}

// comparators are the operators accepted in an expectation table.
var comparators = map[string]func(got, want float64) bool{
	"eq":  func(g, w float64) bool { return g == w },
	"ne":  func(g, w float64) bool { return g != w },
	"gt":  func(g, w float64) bool { return g > w },
	"gte": func(g, w float64) bool { return g >= w },
	"lt":  func(g, w float64) bool { return g < w },
	"lte": func(g, w float64) bool { return g <= w },
}

// checkExpectations compares doc with want and returns one message per
// mismatch. Keys are dotted paths; a leading # measures length. A table
// value holds comparator operators, anything else must match exactly.
func checkExpectations(doc map[string]any, want map[string]any) []string {
	keys := make([]string, 0, len(want))
	for k := range want {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var failures []string
	for _, key := range keys {
		got, ok := resolve(doc, key)
		if !ok {
			failures = append(failures, fmt.Sprintf("%s: missing", key))
			continue
		}
		switch expected := want[key].(type) {
		case map[string]any:
			failures = append(failures, compareOps(key, got, expected)...)
		default:
			if !equal(got, expected) {
				failures = append(failures, fmt.Sprintf("%s = %v, want %v", key, got, expected))
			}
		}
	}
	return failures
}

func compareOps(key string, got any, ops map[string]any) []string {
	names := make([]string, 0, len(ops))
	for op := range ops {
		names = append(names, op)
	}
	sort.Strings(names)

	var failures []string
	g, gok := toFloat(got)
	for _, op := range names {
		cmp, known := comparators[op]
		if !known {
			failures = append(failures, fmt.Sprintf("%s: unknown operator %q", key, op))
			continue
		}
		w, wok := toFloat(ops[op])
		if !gok || !wok {
			failures = append(failures, fmt.Sprintf("%s: %s needs numbers, got %v and %v", key, op, got, ops[op]))
			continue
		}
		if !cmp(g, w) {
			failures = append(failures, fmt.Sprintf("%s = %v, want %s %v", key, got, op, ops[op]))
		}
	}
	return failures
}

// resolve walks a dotted path through maps and lists.
func resolve(doc map[string]any, path string) (any, bool) {
	length := strings.HasPrefix(path, "#")
	path = strings.TrimPrefix(path, "#")

	var current any = doc
	for _, part := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[part]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			current = node[i]
		default:
			return nil, false
		}
	}
	if !length {
		return current, true
	}
	switch node := current.(type) {
	case []any:
		return len(node), true
	case map[string]any:
		return len(node), true
	case string:
		return len(node), true
	default:
		return nil, false
	}
}

func equal(got, want any) bool {
	if g, ok := toFloat(got); ok {
		w, ok := toFloat(want)
		return ok && g == w
	}
	return fmt.Sprint(got) == fmt.Sprint(want)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
