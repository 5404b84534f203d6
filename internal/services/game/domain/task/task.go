// Package task models time-boxed sect tasks and their assignment lifecycle.
//
// A task moves through Unassigned, PartiallyAssigned and FullyAssigned as
// disciples join and leave, and ends Completed once shared progress reaches
// its duration or Expired once it outlives its expiry window. The aggregate
// always checks expiry before accruing progress, so a task reaching both
// thresholds on the same turn expires.
package task

import (
	"slices"

	"github.com/looplab/fsm"

	apperrors "github.com/louisbranch/sect.ascension/internal/platform/errors"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/talent"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/world"
)

// DefaultExpiryTurns is the expiry window of a task that does not set one.
const DefaultExpiryTurns = 5

var (
	// ErrFull indicates the task already has its maximum participants.
	ErrFull = apperrors.New(apperrors.CodeTaskFull, "task is full")
	// ErrClosed indicates the task already completed or expired.
	ErrClosed = apperrors.New(apperrors.CodeTaskClosed, "task is closed")
	// ErrNotAssigned indicates the disciple is not on the task.
	ErrNotAssigned = apperrors.New(apperrors.CodeTaskNotAssigned, "disciple is not assigned to task")
	// ErrInvalid indicates a malformed task definition.
	ErrInvalid = apperrors.New(apperrors.CodeInvalidArgument, "invalid task")
)

// Participant is one disciple attached to a task.
type Participant struct {
	DiscipleID string
	// StartedTurn is set on the first turn the participant accrues progress.
	StartedTurn int
	Started     bool
}

// Rewards are paid to the sect and the disciple on a successful completion.
type Rewards struct {
	Progress   int
	Resources  int
	Reputation int
	DaoHeart   int
}

// Params describe a new task.
type Params struct {
	ID      string
	Name    string
	Kind    Kind
	SiteID  string
	Rewards Rewards

	// EnemyLevel applies to combat, DangerLevel to exploration and Skill to
	// auxiliary tasks.
	EnemyLevel  int
	DangerLevel int
	Skill       talent.Type

	// Zero values take the kind profile defaults.
	Duration         int
	EnergyCost       int
	ConstitutionCost int
	ExpiryTurns      int
	MaxParticipants  int

	CreatedTurn    int
	ValidPositions []world.Position

	// Defends names the site a combat task protects from an invading monster
	// at SiteID.
	Defends string
}

// Task is a live task owned by a sect.
type Task struct {
	ID      string
	Name    string
	Kind    Kind
	SiteID  string
	Defends string
	Rewards Rewards

	EnemyLevel  int
	DangerLevel int
	Skill       talent.Type

	Duration         int
	EnergyCost       int
	ConstitutionCost int
	CreatedTurn      int
	ExpiryTurns      int
	MaxParticipants  int

	Participants   []Participant
	Progress       int
	ValidPositions []world.Position

	lifecycle *fsm.FSM
}

// New builds a task from params, filling profile defaults.
func New(p Params) (*Task, error) {
	if p.ID == "" {
		return nil, apperrors.Wrap(apperrors.CodeInvalidArgument, "task id is required", ErrInvalid)
	}
	kind, err := ParseKind(string(p.Kind))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidArgument, err.Error(), ErrInvalid)
	}
	p.Kind = kind
	if p.Skill != "" && !p.Skill.Valid() {
		return nil, apperrors.Wrap(apperrors.CodeInvalidArgument, "unknown skill "+string(p.Skill), ErrInvalid)
	}

	profile := DefaultProfile(p.Kind)
	t := &Task{
		ID:               p.ID,
		Name:             p.Name,
		Kind:             p.Kind,
		SiteID:           p.SiteID,
		Defends:          p.Defends,
		Rewards:          p.Rewards,
		EnemyLevel:       p.EnemyLevel,
		DangerLevel:      p.DangerLevel,
		Skill:            p.Skill,
		Duration:         orDefault(p.Duration, profile.Duration),
		EnergyCost:       orDefault(p.EnergyCost, profile.EnergyCost),
		ConstitutionCost: orDefault(p.ConstitutionCost, profile.ConstitutionCost),
		CreatedTurn:      p.CreatedTurn,
		ExpiryTurns:      orDefault(p.ExpiryTurns, DefaultExpiryTurns),
		MaxParticipants:  orDefault(p.MaxParticipants, 1),
		ValidPositions:   slices.Clone(p.ValidPositions),
		lifecycle:        newLifecycle(),
	}
	return t, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// State returns the lifecycle state.
func (t *Task) State() State {
	return State(t.lifecycle.Current())
}

// Finished reports whether the task completed or expired.
func (t *Task) Finished() bool {
	s := t.State()
	return s == StateCompleted || s == StateExpired
}

// Full reports whether no more participants fit.
func (t *Task) Full() bool {
	return len(t.Participants) >= t.MaxParticipants
}

// Has reports whether discipleID is a participant.
func (t *Task) Has(discipleID string) bool {
	return t.indexOf(discipleID) >= 0
}

func (t *Task) indexOf(discipleID string) int {
	for i, p := range t.Participants {
		if p.DiscipleID == discipleID {
			return i
		}
	}
	return -1
}

// CanAttach reports why discipleID cannot join, without mutating the task.
func (t *Task) CanAttach(discipleID string) error {
	if t.Finished() {
		return ErrClosed
	}
	if t.Has(discipleID) {
		return nil
	}
	if t.Full() {
		return ErrFull
	}
	return nil
}

// Attach appends discipleID to the participant list. Attaching a current
// participant is a no-op.
func (t *Task) Attach(discipleID string) error {
	if err := t.CanAttach(discipleID); err != nil {
		return err
	}
	if t.Has(discipleID) {
		return nil
	}
	t.Participants = append(t.Participants, Participant{DiscipleID: discipleID})
	t.restaff(true)
	return nil
}

// Detach removes discipleID from the participant list.
func (t *Task) Detach(discipleID string) error {
	if t.Finished() {
		return ErrClosed
	}
	i := t.indexOf(discipleID)
	if i < 0 {
		return ErrNotAssigned
	}
	t.Participants = slices.Delete(t.Participants, i, i+1)
	t.restaff(false)
	return nil
}

// Due reports whether the task has reached its expiry turn.
func (t *Task) Due(turn int) bool {
	return turn >= t.CreatedTurn+t.ExpiryTurns
}

// Expire force-detaches every participant and closes the task. It returns
// the released participant ids in assignment order.
func (t *Task) Expire() []string {
	released := t.ParticipantIDs()
	t.Participants = nil
	t.fire(eventExpire)
	return released
}

// Accrue records one turn of work. Each participant's start turn is set the
// first time it accrues, shared progress advances by one, and the task
// completes once progress reaches the duration. Unstaffed tasks do not
// accrue.
func (t *Task) Accrue(turn int) bool {
	if t.Finished() || len(t.Participants) == 0 {
		return false
	}
	for i := range t.Participants {
		if !t.Participants[i].Started {
			t.Participants[i].Started = true
			t.Participants[i].StartedTurn = turn
		}
	}
	t.Progress++
	if t.Progress >= t.Duration {
		t.fire(eventComplete)
		return true
	}
	return false
}

// ParticipantIDs returns participant ids in assignment order.
func (t *Task) ParticipantIDs() []string {
	ids := make([]string, 0, len(t.Participants))
	for _, p := range t.Participants {
		ids = append(ids, p.DiscipleID)
	}
	return ids
}

// View is an immutable projection of a task.
type View struct {
	ID               string
	Name             string
	Kind             Kind
	SiteID           string
	Defends          string
	State            State
	Rewards          Rewards
	EnemyLevel       int
	DangerLevel      int
	Skill            talent.Type
	Duration         int
	Progress         int
	EnergyCost       int
	ConstitutionCost int
	CreatedTurn      int
	ExpiryTurns      int
	MaxParticipants  int
	Participants     []Participant
	ValidPositions   []world.Position
}

// View projects the task.
func (t *Task) View() View {
	return View{
		ID:               t.ID,
		Name:             t.Name,
		Kind:             t.Kind,
		SiteID:           t.SiteID,
		Defends:          t.Defends,
		State:            t.State(),
		Rewards:          t.Rewards,
		EnemyLevel:       t.EnemyLevel,
		DangerLevel:      t.DangerLevel,
		Skill:            t.Skill,
		Duration:         t.Duration,
		Progress:         t.Progress,
		EnergyCost:       t.EnergyCost,
		ConstitutionCost: t.ConstitutionCost,
		CreatedTurn:      t.CreatedTurn,
		ExpiryTurns:      t.ExpiryTurns,
		MaxParticipants:  t.MaxParticipants,
		Participants:     slices.Clone(t.Participants),
		ValidPositions:   slices.Clone(t.ValidPositions),
	}
}
