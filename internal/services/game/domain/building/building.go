// Package building models the sect's progression tree.
//
// Buildings form a single rooted tree indexed by id. A building may be built
// once its parent is built. The cost of every building doubles with each
// building already built anywhere in the tree.
package building

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/louisbranch/sect.ascension/internal/services/game/domain/condition"
)

var (
	// ErrDuplicate is returned when a building id is already present.
	ErrDuplicate = errors.New("building already exists")
	// ErrInvalidParent is returned for a second root or a missing parent.
	ErrInvalidParent = errors.New("invalid parent")
	// ErrNotFound is returned for unknown building ids.
	ErrNotFound = errors.New("building not found")
	// ErrAlreadyBuilt is returned when building twice.
	ErrAlreadyBuilt = errors.New("building already built")
	// ErrPrerequisite is returned when the parent is not built yet.
	ErrPrerequisite = errors.New("parent building not built")
	// ErrInsufficientResources is returned when resources do not cover the cost.
	ErrInsufficientResources = errors.New("insufficient resources")
	// ErrCostOverflow is returned when the doubled cost no longer fits an int.
	ErrCostOverflow = errors.New("building cost overflow")
)

// Building is a node of the tree.
type Building struct {
	ID       string
	Name     string
	BaseCost int
	Parent   string
	Built    bool
	Grants   []condition.Modifier
}

// Tree is an id-indexed building tree with a single root.
type Tree struct {
	nodes      map[string]*Building
	children   map[string][]string
	root       string
	builtCount int
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{
		nodes:    make(map[string]*Building),
		children: make(map[string][]string),
	}
}

// Add inserts a building. The first building without a parent becomes the
// root; every other building must name a parent already in the tree.
func (t *Tree) Add(b Building) error {
	if b.ID == "" {
		return fmt.Errorf("building id is required")
	}
	if b.BaseCost < 0 {
		return fmt.Errorf("building %s: base cost must not be negative", b.ID)
	}
	if _, ok := t.nodes[b.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, b.ID)
	}
	if b.Parent == "" {
		if t.root != "" {
			return fmt.Errorf("%w: %s would be a second root", ErrInvalidParent, b.ID)
		}
	} else if _, ok := t.nodes[b.Parent]; !ok {
		return fmt.Errorf("%w: %s references missing %s", ErrInvalidParent, b.ID, b.Parent)
	}

	node := b
	node.Built = false
	node.Grants = append([]condition.Modifier(nil), b.Grants...)
	t.nodes[b.ID] = &node
	if b.Parent == "" {
		t.root = b.ID
	} else {
		t.children[b.Parent] = append(t.children[b.Parent], b.ID)
	}
	return nil
}

// Root returns the root id, empty for an empty tree.
func (t *Tree) Root() string {
	return t.root
}

// BuiltCount returns the number of built buildings.
func (t *Tree) BuiltCount() int {
	return t.builtCount
}

// Get returns a copy of a building.
func (t *Tree) Get(id string) (Building, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return Building{}, false
	}
	return copyOf(n), true
}

// CanBuild reports whether id exists, is unbuilt and its parent is built.
func (t *Tree) CanBuild(id string) bool {
	return t.check(id) == nil
}

func (t *Tree) check(id string) error {
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if n.Built {
		return fmt.Errorf("%w: %s", ErrAlreadyBuilt, id)
	}
	if n.Parent != "" && !t.nodes[n.Parent].Built {
		return fmt.Errorf("%w: %s needs %s", ErrPrerequisite, id, n.Parent)
	}
	return nil
}

// Cost returns base_cost * 2^built_count for id.
func (t *Tree) Cost(id string) (int, error) {
	n, ok := t.nodes[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return scaledCost(n.BaseCost, t.builtCount)
}

func scaledCost(base, built int) (int, error) {
	if base == 0 {
		return 0, nil
	}
	if built >= 62 {
		return 0, ErrCostOverflow
	}
	factor := 1 << built
	if base > math.MaxInt/factor {
		return 0, ErrCostOverflow
	}
	return base * factor, nil
}

// Build marks id built when it is buildable and resources cover the cost.
// It returns the granted conditional modifiers and the cost paid. Nothing
// changes on error.
func (t *Tree) Build(id string, resources int) ([]condition.Modifier, int, error) {
	if err := t.check(id); err != nil {
		return nil, 0, err
	}
	cost, err := t.Cost(id)
	if err != nil {
		return nil, 0, err
	}
	if resources < cost {
		return nil, 0, fmt.Errorf("%w: %s costs %d, have %d", ErrInsufficientResources, id, cost, resources)
	}
	n := t.nodes[id]
	n.Built = true
	t.builtCount++
	return append([]condition.Modifier(nil), n.Grants...), cost, nil
}

// Buildable returns the ids that can be built now, sorted.
func (t *Tree) Buildable() []string {
	var ids []string
	for id := range t.nodes {
		if t.CanBuild(id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Children returns the direct children of id in insertion order.
func (t *Tree) Children(id string) []string {
	return append([]string(nil), t.children[id]...)
}

// Depth returns the number of edges between id and the root.
func (t *Tree) Depth(id string) (int, error) {
	n, ok := t.nodes[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	depth := 0
	for n.Parent != "" {
		n = t.nodes[n.Parent]
		depth++
	}
	return depth, nil
}

// All returns copies of every building, sorted by depth then id.
func (t *Tree) All() []Building {
	out := make([]Building, 0, len(t.nodes))
	depths := make(map[string]int, len(t.nodes))
	for id, n := range t.nodes {
		out = append(out, copyOf(n))
		depths[id], _ = t.Depth(id)
	}
	sort.Slice(out, func(i, j int) bool {
		if depths[out[i].ID] != depths[out[j].ID] {
			return depths[out[i].ID] < depths[out[j].ID]
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func copyOf(n *Building) Building {
	b := *n
	b.Grants = append([]condition.Modifier(nil), n.Grants...)
	return b
}
