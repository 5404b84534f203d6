package sect

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/louisbranch/sect.ascension/internal/services/game/domain/disciple"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/modifier"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/task"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/world"
)

// Assign attaches a disciple to a task. Every check runs before any state
// changes, so a rejected assignment leaves both entities as they were.
// Re-assigning a disciple to the task they already hold is a no-op.
func (s *Sect) Assign(taskID, discipleID string) error {
	if err := s.mutable(); err != nil {
		return err
	}
	t, err := s.task(taskID)
	if err != nil {
		return err
	}
	d, err := s.disciple(discipleID)
	if err != nil {
		return err
	}
	if d.CurrentTask == taskID && t.Has(discipleID) {
		return nil
	}
	if err := s.checkAssign(t, d); err != nil {
		return err
	}
	if err := t.Attach(d.ID); err != nil {
		return err
	}
	d.CurrentTask = t.ID
	s.log.WithFields(logrus.Fields{"task_id": t.ID, "disciple_id": d.ID, "state": t.State()}).Debug("disciple assigned")
	return nil
}

func (s *Sect) checkAssign(t *task.Task, d *disciple.Disciple) error {
	meta := map[string]string{"task_id": t.ID, "disciple_id": d.ID}
	if d.Busy() {
		return failed(ErrDiscipleBusy, meta, nil)
	}
	if err := t.CanAttach(d.ID); err != nil {
		return err
	}
	if !s.suitable(t, d) {
		return failed(ErrUnsuitable, meta, nil)
	}
	if !world.Reachable(d.Position, d.Movement, t.ValidPositions) {
		return failed(ErrOutOfRange, meta, nil)
	}
	return nil
}

// Unassign detaches a disciple from a task.
func (s *Sect) Unassign(taskID, discipleID string) error {
	if err := s.mutable(); err != nil {
		return err
	}
	t, err := s.task(taskID)
	if err != nil {
		return err
	}
	d, err := s.disciple(discipleID)
	if err != nil {
		return err
	}
	if d.CurrentTask != taskID {
		return failed(ErrNotAssigned, map[string]string{"task_id": t.ID, "disciple_id": d.ID}, task.ErrNotAssigned)
	}
	if err := t.Detach(d.ID); err != nil {
		return err
	}
	d.CurrentTask = ""
	return nil
}

// Suitable reports whether a disciple meets a task's requirement, ignoring
// availability and range.
func (s *Sect) Suitable(taskID, discipleID string) (bool, error) {
	t, err := s.task(taskID)
	if err != nil {
		return false, err
	}
	d, err := s.disciple(discipleID)
	if err != nil {
		return false, err
	}
	return s.suitable(t, d), nil
}

// suitable compares a task requirement against the disciple's effective tier.
func (s *Sect) suitable(t *task.Task, d *disciple.Disciple) bool {
	tier := s.effective(d, modifier.For(modifier.TargetTaskSuitability), float64(d.Cultivation.Level))
	switch t.Kind {
	case task.KindCombat:
		return tier >= float64(t.EnemyLevel)
	case task.KindExploration:
		return tier*10 >= float64(t.DangerLevel)
	case task.KindAuxiliary:
		return t.Skill == "" || d.HasTalent(t.Skill)
	default:
		return true
	}
}

// AutoAssign staffs open tasks with idle disciples. Tasks are visited in id
// order and each takes the first suitable, reachable idle disciple in id
// order until full. It returns the assignments made.
func (s *Sect) AutoAssign() ([]Assignment, error) {
	if err := s.mutable(); err != nil {
		return nil, err
	}
	var made []Assignment
	discipleIDs := s.discipleIDs()
	for _, tid := range s.taskIDs() {
		t := s.tasks[tid]
		for _, did := range discipleIDs {
			if t.Finished() || t.Full() {
				break
			}
			d := s.disciples[did]
			if s.checkAssign(t, d) != nil {
				continue
			}
			if err := s.Assign(tid, did); err != nil {
				if errors.Is(err, ErrGameOver) {
					return made, err
				}
				continue
			}
			made = append(made, Assignment{TaskID: tid, DiscipleID: did})
		}
	}
	return made, nil
}

// Assignment pairs a task with a disciple.
type Assignment struct {
	TaskID     string
	DiscipleID string
}
