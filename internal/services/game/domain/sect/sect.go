// Package sect implements the sect aggregate and its turn orchestration.
//
// A Sect owns its disciples, live tasks, building tree, conditional modifier
// pool, pill inventory and heritages. All mutation goes through Sect
// methods; a failed operation returns a typed error and leaves state
// untouched. A Sect is not safe for concurrent use; the session registry
// serializes access.
//
// A turn runs in two phases. StartTurn ages the roster, collects income,
// recruits, recovers idle disciples and attempts breakthroughs. Monsters then
// move or train, grow and spawn, and tasks are offered before planning opens.
// During planning tasks are assigned, buildings raised and pills used. ResolveTurn advances the turn counter,
// expires due tasks, accrues progress on the rest, resolves completed tasks,
// ticks modifier durations and checks for victory or defeat.
package sect

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/sect.ascension/internal/platform/logging"
	platformotel "github.com/louisbranch/sect.ascension/internal/platform/otel"
	"github.com/louisbranch/sect.ascension/internal/platform/random"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/building"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/catalog"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/condition"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/cultivation"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/disciple"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/modifier"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/pill"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/task"
)

// Phase is the turn phase.
type Phase string

const (
	PhaseIdle     Phase = "IDLE"
	PhasePlanning Phase = "PLANNING"
)

// State is the game state.
type State string

const (
	StatePlaying State = "PLAYING"
	StateVictory State = "VICTORY"
	StateDefeat  State = "DEFEAT"
)

// Heritage is a tribulation bonus left behind by a fallen disciple.
type Heritage struct {
	ID     string
	Origin string
	Bonus  float64
}

// Params describe a new sect.
type Params struct {
	ID      string
	Name    string
	Config  Config
	Catalog *catalog.Catalog
	Logger  *logrus.Entry
	// Source overrides the seeded source. Tests use it to script draws.
	Source random.Source
}

// Sect is the aggregate root of a session.
type Sect struct {
	ID   string
	Name string

	cfg     Config
	catalog *catalog.Catalog
	rng     random.Source
	log     *logrus.Entry
	tracer  trace.Tracer
	seq     *modifier.Sequence

	turn       int
	phase      Phase
	state      State
	resources  int
	reputation int

	disciples  map[string]*disciple.Disciple
	tasks      map[string]*task.Task
	tree       *building.Tree
	pool       []condition.Modifier
	pills      *pill.Inventory
	heritages  map[string]Heritage
	sites      []catalog.Site
	candidates map[string]bool

	nextDisciple int
	nextTask     int
	nextHeritage int
	nextMonster  int
	tally        tally
}

type tally struct {
	recruited int
	deaths    int
	completed int
	expired   int
	failed    int
}

// New builds a sect with the catalog's opening roster.
func New(p Params) (*Sect, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("sect id is required")
	}
	if p.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if err := p.Config.Validate(); err != nil {
		return nil, err
	}
	tree, err := p.Catalog.Tree()
	if err != nil {
		return nil, err
	}
	src := p.Source
	if src == nil {
		seed := p.Config.Seed
		if seed == 0 {
			if seed, err = random.NewSeed(); err != nil {
				return nil, err
			}
		}
		src = random.New(seed)
	}
	log := p.Logger
	if log == nil {
		log = logrus.NewEntry(logging.Discard())
	}

	s := &Sect{
		ID:         p.ID,
		Name:       p.Name,
		cfg:        p.Config,
		catalog:    p.Catalog,
		rng:        src,
		log:        log.WithField("sect_id", p.ID),
		tracer:     platformotel.Tracer("sect"),
		seq:        &modifier.Sequence{},
		phase:      PhaseIdle,
		state:      StatePlaying,
		resources:  p.Catalog.Start.Resources,
		reputation: p.Catalog.Start.Reputation,
		disciples:  make(map[string]*disciple.Disciple),
		tasks:      make(map[string]*task.Task),
		tree:       tree,
		pills:      pill.NewInventory(),
		heritages:  make(map[string]Heritage),
		sites:      append([]catalog.Site(nil), p.Catalog.Sites...),
		candidates: make(map[string]bool),
	}
	if p.Config.StartingResources > 0 {
		s.resources = p.Config.StartingResources
	}
	count := p.Catalog.Start.Disciples
	if p.Config.StartingDisciples > 0 {
		count = p.Config.StartingDisciples
	}
	for range count {
		if _, err := s.recruit(); err != nil {
			return nil, err
		}
	}
	s.log.WithFields(logrus.Fields{"disciples": count, "resources": s.resources}).Info("sect founded")
	return s, nil
}

// Turn returns the current turn number.
func (s *Sect) Turn() int { return s.turn }

// Phase returns the current turn phase.
func (s *Sect) Phase() Phase { return s.phase }

// State returns the game state.
func (s *Sect) State() State { return s.state }

// Resources returns the sect's resources.
func (s *Sect) Resources() int { return s.resources }

// Reputation returns the sect's reputation.
func (s *Sect) Reputation() int { return s.reputation }

// AddDisciple admits a pre-built disciple. Its modifier set is rebound to
// the sect's sequence.
func (s *Sect) AddDisciple(p disciple.Params) (disciple.View, error) {
	if err := s.mutable(); err != nil {
		return disciple.View{}, err
	}
	if p.ID == "" {
		p.ID = s.newDiscipleID()
	}
	if _, ok := s.disciples[p.ID]; ok {
		return disciple.View{}, failed(ErrInvalidArgument, map[string]string{"disciple_id": p.ID}, fmt.Errorf("duplicate disciple id"))
	}
	if p.Requirements == nil {
		p.Requirements = s.catalog.Needed(cultivation.QiRefining)
	}
	p.Modifiers = s.seq
	d, err := disciple.New(p)
	if err != nil {
		return disciple.View{}, failed(ErrInvalidArgument, map[string]string{"disciple_id": p.ID}, err)
	}
	s.disciples[d.ID] = d
	return d.View(), nil
}

// AddTask registers a task built from p. An empty id is assigned the next
// task id; the created turn defaults to the current turn.
func (s *Sect) AddTask(p task.Params) (task.View, error) {
	if err := s.mutable(); err != nil {
		return task.View{}, err
	}
	if p.ID == "" {
		p.ID = s.newTaskID()
	} else if _, ok := s.tasks[p.ID]; ok {
		return task.View{}, failed(ErrInvalidArgument, map[string]string{"task_id": p.ID}, fmt.Errorf("duplicate task id"))
	}
	if p.CreatedTurn == 0 {
		p.CreatedTurn = s.turn
	}
	t, err := task.New(p)
	if err != nil {
		return task.View{}, err
	}
	s.tasks[t.ID] = t
	return t.View(), nil
}

// AddConditional appends a sect-wide conditional modifier to the pool.
func (s *Sect) AddConditional(m condition.Modifier) condition.Modifier {
	if m.When == nil {
		m.When = condition.Always{}
	}
	m.Modifier.Seq = s.seq.Next()
	if m.Modifier.ID == "" {
		m.Modifier.ID = fmt.Sprintf("sect-mod-%d", m.Modifier.Seq)
	}
	m.Modifier = m.Modifier.Clone()
	s.pool = append(s.pool, m)
	return m
}

// Conditionals returns a copy of the conditional modifier pool.
func (s *Sect) Conditionals() []condition.Modifier {
	out := make([]condition.Modifier, len(s.pool))
	for i, m := range s.pool {
		out[i] = condition.Modifier{When: m.When, Modifier: m.Modifier.Clone()}
	}
	return out
}

func (s *Sect) newDiscipleID() string {
	for {
		s.nextDisciple++
		id := fmt.Sprintf("disciple-%04d", s.nextDisciple)
		if _, ok := s.disciples[id]; !ok {
			return id
		}
	}
}

func (s *Sect) newTaskID() string {
	for {
		s.nextTask++
		id := fmt.Sprintf("task-%06d", s.nextTask)
		if _, ok := s.tasks[id]; !ok {
			return id
		}
	}
}

// mutable rejects mutation after the game ended.
func (s *Sect) mutable() error {
	if s.state != StatePlaying {
		return ErrGameOver
	}
	return nil
}

func (s *Sect) disciple(id string) (*disciple.Disciple, error) {
	d, ok := s.disciples[id]
	if !ok {
		return nil, notFound(ErrDiscipleNotFound, "disciple_id", id)
	}
	return d, nil
}

func (s *Sect) task(id string) (*task.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, notFound(ErrTaskNotFound, "task_id", id)
	}
	return t, nil
}

func (s *Sect) discipleIDs() []string {
	ids := make([]string, 0, len(s.disciples))
	for id := range s.disciples {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Sect) taskIDs() []string {
	ids := make([]string, 0, len(s.tasks))
	for id := range s.tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// modifiersFor is the fresh union of d's own modifiers and the pool entries
// whose condition holds for d right now.
func (s *Sect) modifiersFor(d *disciple.Disciple) []modifier.Modifier {
	own := d.Modifiers.All()
	return append(own, condition.Applicable(s.pool, condition.SnapshotOf(d))...)
}

// Effective resolves native against the modifiers that apply to the
// disciple for target.
func (s *Sect) Effective(discipleID string, target modifier.Target, native float64) (float64, error) {
	d, err := s.disciple(discipleID)
	if err != nil {
		return 0, err
	}
	if err := target.Validate(); err != nil {
		return 0, err
	}
	return modifier.ResolveFor(native, s.modifiersFor(d), target), nil
}

func (s *Sect) effective(d *disciple.Disciple, target modifier.Target, native float64) float64 {
	return modifier.ResolveFor(native, s.modifiersFor(d), target)
}

// AddModifier attaches m to a disciple's own set.
func (s *Sect) AddModifier(discipleID string, m modifier.Modifier) (modifier.Modifier, error) {
	d, err := s.disciple(discipleID)
	if err != nil {
		return modifier.Modifier{}, err
	}
	if err := m.Validate(); err != nil {
		return modifier.Modifier{}, err
	}
	return d.Modifiers.Add(m), nil
}
