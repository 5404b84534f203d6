package sect

import (
	"sort"

	"github.com/louisbranch/sect.ascension/internal/services/game/domain/building"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/catalog"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/condition"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/cultivation"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/disciple"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/pill"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/task"
)

// View is a read-only projection of the whole sect. It shares no memory with
// the aggregate.
type View struct {
	ID          string
	Name        string
	Turn        int
	Phase       Phase
	State       State
	Resources   int
	Reputation  int
	Income      int
	Disciples   []disciple.View
	Tasks       []task.View
	Buildings   []BuildingView
	Heritages   []Heritage
	Pills       map[pill.Kind]int
	Sites       []catalog.Site
	Candidates  []string
	Conditional []condition.Modifier
}

// BuildingView projects a building with its current cost.
type BuildingView struct {
	building.Building
	Cost     int
	CanBuild bool
}

// Statistics summarizes the sect.
type Statistics struct {
	Turn        int
	Resources   int
	Reputation  int
	Alive       int
	ByKind      map[disciple.Kind]int
	ByTier      map[cultivation.Level]int
	Heritages   int
	Built       int
	LiveTasks   int
	Recruited   int
	Deaths      int
	Completed   int
	Expired     int
	FailedTasks int
	State       State
}

// View projects the sect.
func (s *Sect) View() View {
	return View{
		ID:          s.ID,
		Name:        s.Name,
		Turn:        s.turn,
		Phase:       s.phase,
		State:       s.state,
		Resources:   s.resources,
		Reputation:  s.reputation,
		Income:      s.Income(),
		Disciples:   s.Disciples(nil),
		Tasks:       s.Tasks(),
		Buildings:   s.Buildings(),
		Heritages:   s.Heritages(),
		Pills:       s.pills.Snapshot(),
		Sites:       s.Sites(),
		Candidates:  s.TribulationCandidates(),
		Conditional: s.Conditionals(),
	}
}

// Disciple projects one disciple.
func (s *Sect) Disciple(id string) (disciple.View, error) {
	d, err := s.disciple(id)
	if err != nil {
		return disciple.View{}, err
	}
	return d.View(), nil
}

// Disciples projects the roster in id order, keeping those keep accepts. A
// nil keep returns everyone.
func (s *Sect) Disciples(keep func(disciple.View) bool) []disciple.View {
	out := make([]disciple.View, 0, len(s.disciples))
	for _, id := range s.discipleIDs() {
		v := s.disciples[id].View()
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Task projects one live task.
func (s *Sect) Task(id string) (task.View, error) {
	t, err := s.task(id)
	if err != nil {
		return task.View{}, err
	}
	return t.View(), nil
}

// Tasks projects live tasks in id order.
func (s *Sect) Tasks() []task.View {
	out := make([]task.View, 0, len(s.tasks))
	for _, id := range s.taskIDs() {
		out = append(out, s.tasks[id].View())
	}
	return out
}

// Buildings projects the building tree, root first.
func (s *Sect) Buildings() []BuildingView {
	all := s.tree.All()
	out := make([]BuildingView, 0, len(all))
	for _, b := range all {
		cost, _ := s.tree.Cost(b.ID)
		out = append(out, BuildingView{Building: b, Cost: cost, CanBuild: s.tree.CanBuild(b.ID)})
	}
	return out
}

// Statistics summarizes the sect.
func (s *Sect) Statistics() Statistics {
	st := Statistics{
		Turn:        s.turn,
		Resources:   s.resources,
		Reputation:  s.reputation,
		Alive:       len(s.disciples),
		ByKind:      make(map[disciple.Kind]int),
		ByTier:      make(map[cultivation.Level]int),
		Heritages:   len(s.heritages),
		Built:       s.tree.BuiltCount(),
		LiveTasks:   len(s.tasks),
		Recruited:   s.tally.recruited,
		Deaths:      s.tally.deaths,
		Completed:   s.tally.completed,
		Expired:     s.tally.expired,
		FailedTasks: s.tally.failed,
		State:       s.state,
	}
	for _, d := range s.disciples {
		st.ByKind[d.Kind]++
		st.ByTier[d.Cultivation.Level]++
	}
	return st
}

func sortBy[T any](items []T, key func(T) string) {
	sort.Slice(items, func(i, j int) bool { return key(items[i]) < key(items[j]) })
}
