package building

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/louisbranch/sect.ascension/internal/services/game/domain/condition"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/modifier"
)

func sampleTree(t *testing.T) *Tree {
	t.Helper()
	tree := NewTree()
	for _, b := range []Building{
		{ID: "hall", Name: "Main Hall", BaseCost: 100},
		{ID: "library", Name: "Library", BaseCost: 100, Parent: "hall"},
		{ID: "forge", Name: "Forge", BaseCost: 150, Parent: "hall"},
		{ID: "archive", Name: "Archive", BaseCost: 200, Parent: "library"},
	} {
		if err := tree.Add(b); err != nil {
			t.Fatalf("add %s: %v", b.ID, err)
		}
	}
	return tree
}

func TestAddRejectsInvalidShapes(t *testing.T) {
	tree := sampleTree(t)

	tests := []struct {
		name string
		b    Building
		want error
	}{
		{name: "duplicate", b: Building{ID: "hall", BaseCost: 1}, want: ErrDuplicate},
		{name: "second root", b: Building{ID: "gate", BaseCost: 1}, want: ErrInvalidParent},
		{name: "missing parent", b: Building{ID: "gate", BaseCost: 1, Parent: "nowhere"}, want: ErrInvalidParent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tree.Add(tc.b); !errors.Is(err, tc.want) {
				t.Fatalf("Add() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCostDoublesWithGlobalBuiltCount(t *testing.T) {
	tree := sampleTree(t)

	cost, err := tree.Cost("hall")
	if err != nil || cost != 100 {
		t.Fatalf("cost = %d, %v, want 100", cost, err)
	}
	if _, paid, err := tree.Build("hall", 1000); err != nil || paid != 100 {
		t.Fatalf("build hall paid %d, %v", paid, err)
	}
	if _, paid, err := tree.Build("library", 1000); err != nil || paid != 200 {
		t.Fatalf("build library paid %d, %v, want 200", paid, err)
	}
	cost, err = tree.Cost("archive")
	if err != nil || cost != 800 {
		t.Fatalf("archive cost = %d, %v, want 800", cost, err)
	}
	cost, err = tree.Cost("forge")
	if err != nil || cost != 600 {
		t.Fatalf("forge cost = %d, %v, want 600", cost, err)
	}
}

func TestCostOf100AfterOneBuildIs200AndAfterTwoIs400(t *testing.T) {
	tree := NewTree()
	_ = tree.Add(Building{ID: "root", BaseCost: 100})
	_ = tree.Add(Building{ID: "a", BaseCost: 100, Parent: "root"})
	_ = tree.Add(Building{ID: "b", BaseCost: 100, Parent: "root"})

	if _, paid, _ := tree.Build("root", 10000); paid != 100 {
		t.Fatalf("first = %d, want 100", paid)
	}
	if _, paid, _ := tree.Build("a", 10000); paid != 200 {
		t.Fatalf("second = %d, want 200", paid)
	}
	if cost, _ := tree.Cost("b"); cost != 400 {
		t.Fatalf("third = %d, want 400", cost)
	}
}

func TestCanBuildAfterParentBuilt(t *testing.T) {
	tree := sampleTree(t)

	if tree.CanBuild("library") {
		t.Fatal("library should wait for hall")
	}
	if _, _, err := tree.Build("library", 1000); !errors.Is(err, ErrPrerequisite) {
		t.Fatalf("Build() = %v, want ErrPrerequisite", err)
	}
	if _, _, err := tree.Build("hall", 1000); err != nil {
		t.Fatalf("build hall: %v", err)
	}
	if !tree.CanBuild("library") {
		t.Fatal("library should be buildable once hall is built")
	}
	if tree.CanBuild("hall") {
		t.Fatal("hall is already built")
	}
	if _, _, err := tree.Build("hall", 1000); !errors.Is(err, ErrAlreadyBuilt) {
		t.Fatalf("rebuild = %v, want ErrAlreadyBuilt", err)
	}
}

func TestBuildFailureDoesNotMutate(t *testing.T) {
	tree := sampleTree(t)
	if _, _, err := tree.Build("hall", 99); !errors.Is(err, ErrInsufficientResources) {
		t.Fatalf("Build() = %v, want ErrInsufficientResources", err)
	}
	if tree.BuiltCount() != 0 {
		t.Fatalf("built count = %d, want 0", tree.BuiltCount())
	}
	if b, _ := tree.Get("hall"); b.Built {
		t.Fatal("hall should not be built")
	}
}

func TestBuildReturnsGrants(t *testing.T) {
	grant := condition.Modifier{
		When: condition.Always{},
		Modifier: modifier.New("hall income", modifier.For(modifier.TargetIncome),
			modifier.Application{Kind: modifier.Additive, Value: 10}, modifier.SourceBuilding),
	}
	tree := NewTree()
	if err := tree.Add(Building{ID: "hall", BaseCost: 10, Grants: []condition.Modifier{grant}}); err != nil {
		t.Fatalf("add: %v", err)
	}
	grants, _, err := tree.Build("hall", 10)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(grants) != 1 || grants[0].Modifier.Name != "hall income" {
		t.Fatalf("grants = %+v", grants)
	}
}

func TestCostOverflow(t *testing.T) {
	if _, err := scaledCost(math.MaxInt/2+1, 1); !errors.Is(err, ErrCostOverflow) {
		t.Fatalf("scaledCost() = %v, want ErrCostOverflow", err)
	}
	if _, err := scaledCost(1, 63); !errors.Is(err, ErrCostOverflow) {
		t.Fatalf("scaledCost() = %v, want ErrCostOverflow", err)
	}
	if got, err := scaledCost(0, 100); err != nil || got != 0 {
		t.Fatalf("free building = %d, %v", got, err)
	}
}

func TestNavigation(t *testing.T) {
	tree := sampleTree(t)

	if got := tree.Children("hall"); !reflect.DeepEqual(got, []string{"library", "forge"}) {
		t.Fatalf("children = %v", got)
	}
	if d, _ := tree.Depth("archive"); d != 2 {
		t.Fatalf("depth = %d, want 2", d)
	}
	if got := tree.Buildable(); !reflect.DeepEqual(got, []string{"hall"}) {
		t.Fatalf("buildable = %v", got)
	}
	_, _, _ = tree.Build("hall", 1000)
	if got := tree.Buildable(); !reflect.DeepEqual(got, []string{"forge", "library"}) {
		t.Fatalf("buildable = %v", got)
	}
	all := tree.All()
	if all[0].ID != "hall" || all[len(all)-1].ID != "archive" {
		t.Fatalf("all order = %v", all)
	}
}
