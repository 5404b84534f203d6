package sect

import (
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/outcome"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/task"
)

// EventType classifies a turn event.
type EventType string

const (
	EventAged              EventType = "AGED"
	EventDied              EventType = "DIED"
	EventHeritageLeft      EventType = "HERITAGE_LEFT"
	EventIncome            EventType = "INCOME"
	EventRecruited         EventType = "RECRUITED"
	EventRecovered         EventType = "RECOVERED"
	EventBreakthrough      EventType = "BREAKTHROUGH"
	EventTribulationPassed EventType = "TRIBULATION_PASSED"
	EventTribulationFailed EventType = "TRIBULATION_FAILED"
	EventTribulationReady  EventType = "TRIBULATION_READY"
	EventTaskSpawned       EventType = "TASK_SPAWNED"
	EventMonsterMoved      EventType = "MONSTER_MOVED"
	EventMonsterInvaded    EventType = "MONSTER_INVADED"
	EventMonsterGrew       EventType = "MONSTER_GREW"
	EventMonsterSpawned    EventType = "MONSTER_SPAWNED"
	EventMonsterSlain      EventType = "MONSTER_SLAIN"
	EventDemonAppeared     EventType = "DEMON_APPEARED"
	EventTaskExpired       EventType = "TASK_EXPIRED"
	EventTaskCompleted     EventType = "TASK_COMPLETED"
	EventModifiersExpired  EventType = "MODIFIERS_EXPIRED"
	EventGameOver          EventType = "GAME_OVER"
)

// Event is something that happened during a turn phase.
type Event struct {
	Type       EventType
	Turn       int
	DiscipleID string `json:",omitempty"`
	TaskID     string `json:",omitempty"`
	SiteID     string `json:",omitempty"`
	Amount     float64
	Detail     string `json:",omitempty"`
}

// Outcome is the result of a completed task for one participant.
type Outcome struct {
	TaskID     string
	DiscipleID string
	Kind       task.Kind
	Verdict    outcome.Verdict
	Chance     float64
	Progress   int
	Resources  int
	Reputation int
	DaoHeart   int
}

// TurnStart reports a StartTurn.
//
// Events are ordered by phase: aging and deaths, income, recruitment, idle
// recovery, breakthroughs, monster moves and invasions, monster growth and
// spawns, then task offers with defenses last. Within a phase
// they follow disciple, site or task id order.
type TurnStart struct {
	Turn   int
	Events []Event
	State  State
}

// Resolution reports a ResolveTurn.
//
// Expired lists the tasks that expired this turn by id. Outcomes are sorted
// by task id then disciple id. Events follow: task expiry, task completion
// and deaths in outcome order, modifier expiry, then game over.
type Resolution struct {
	Turn     int
	Expired  []string
	Outcomes []Outcome
	Events   []Event
	State    State
}
