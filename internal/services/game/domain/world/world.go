// Package world holds grid positions used to bound where disciples can work.
package world

// Position is a cell on the sect's map grid.
type Position struct {
	X int
	Y int
}

// Distance is the Manhattan distance between two cells.
func Distance(a, b Position) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Reachable reports whether any target lies within budget steps of from.
// An empty target set places no spatial constraint.
func Reachable(from Position, budget int, targets []Position) bool {
	if len(targets) == 0 {
		return true
	}
	for _, target := range targets {
		if Distance(from, target) <= budget {
			return true
		}
	}
	return false
}

// Steps are the four cardinal moves, in the order a random draw indexes them.
var Steps = []Position{{X: 0, Y: 1}, {X: 0, Y: -1}, {X: 1, Y: 0}, {X: -1, Y: 0}}

// Add offsets p by step.
func (p Position) Add(step Position) Position {
	return Position{X: p.X + step.X, Y: p.Y + step.Y}
}

// Bounds is an inclusive rectangle on the grid. The zero Bounds is unbounded.
type Bounds struct {
	Min Position
	Max Position
}

// Unbounded reports whether b places no limit.
func (b Bounds) Unbounded() bool {
	return b == Bounds{}
}

// Clamp moves p to the nearest cell inside b.
func (b Bounds) Clamp(p Position) Position {
	if b.Unbounded() {
		return p
	}
	return Position{
		X: min(max(p.X, b.Min.X), b.Max.X),
		Y: min(max(p.Y, b.Min.Y), b.Max.Y),
	}
}

// Contains reports whether p lies inside b.
func (b Bounds) Contains(p Position) bool {
	return b.Clamp(p) == p
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
