package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"
)

// State is a task lifecycle state.
type State string

const (
	StateUnassigned        State = "unassigned"
	StatePartiallyAssigned State = "partially_assigned"
	StateFullyAssigned     State = "fully_assigned"
	StateCompleted         State = "completed"
	StateExpired           State = "expired"
)

const (
	eventJoin     = "join"
	eventFill     = "fill"
	eventLeave    = "leave"
	eventVacate   = "vacate"
	eventComplete = "complete"
	eventExpire   = "expire"
)

func newLifecycle() *fsm.FSM {
	open := []string{string(StateUnassigned), string(StatePartiallyAssigned)}
	staffed := []string{string(StatePartiallyAssigned), string(StateFullyAssigned)}
	return fsm.NewFSM(
		string(StateUnassigned),
		fsm.Events{
			{Name: eventJoin, Src: open, Dst: string(StatePartiallyAssigned)},
			{Name: eventFill, Src: open, Dst: string(StateFullyAssigned)},
			{Name: eventLeave, Src: staffed, Dst: string(StatePartiallyAssigned)},
			{Name: eventVacate, Src: staffed, Dst: string(StateUnassigned)},
			{Name: eventComplete, Src: staffed, Dst: string(StateCompleted)},
			{Name: eventExpire, Src: append(open, string(StateFullyAssigned)), Dst: string(StateExpired)},
		},
		fsm.Callbacks{},
	)
}

// fire applies event. A self transition is not an error. Any other refusal
// means the caller skipped a guard, which is a programming defect.
func (t *Task) fire(event string) {
	err := t.lifecycle.Event(context.Background(), event)
	if err == nil {
		return
	}
	var same fsm.NoTransitionError
	if errors.As(err, &same) {
		return
	}
	panic(fmt.Sprintf("task %s: %s from %s: %v", t.ID, event, t.lifecycle.Current(), err))
}

// restaff moves the lifecycle to match the participant count.
func (t *Task) restaff(joining bool) {
	n := len(t.Participants)
	switch {
	case n == 0:
		t.fire(eventVacate)
	case n >= t.MaxParticipants:
		t.fire(eventFill)
	case joining:
		t.fire(eventJoin)
	default:
		t.fire(eventLeave)
	}
}
