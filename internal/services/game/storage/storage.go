package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/louisbranch/sect.ascension/internal/services/game/domain/sect"
)

// Stage names the turn phase a record was written for.
type Stage string

const (
	StageStart   Stage = "START"
	StageResolve Stage = "RESOLVE"
)

// TurnRecord is one journaled turn phase.
type TurnRecord struct {
	SessionID  string
	Turn       int
	Stage      Stage
	State      string
	EventCount int
	// PayloadJSON holds the full phase report.
	PayloadJSON []byte
	RecordedAt  time.Time
}

// OutcomeRecord is one participant outcome of a resolved turn.
type OutcomeRecord struct {
	SessionID  string
	Turn       int
	TaskID     string
	DiscipleID string
	Kind       string
	Verdict    string
	Chance     float64
	Progress   int
	Resources  int
	Reputation int
	DaoHeart   int
}

// JournalStore appends and reads turn records.
type JournalStore interface {
	AppendTurn(ctx context.Context, rec TurnRecord, outcomes []OutcomeRecord) error
	ListTurns(ctx context.Context, sessionID string) ([]TurnRecord, error)
	ListOutcomes(ctx context.Context, sessionID string, afterTurn int) ([]OutcomeRecord, error)
}

// TelemetryEvent is an operational observation, such as an audited rpc.
type TelemetryEvent struct {
	Timestamp  time.Time
	EventName  string
	Severity   string
	SessionID  string
	RequestID  string
	TraceID    string
	SpanID     string
	Attributes map[string]any
}

// TelemetryStore persists telemetry events.
type TelemetryStore interface {
	AppendTelemetryEvent(ctx context.Context, evt TelemetryEvent) error
}

// StartRecord builds the journal record of a StartTurn.
func StartRecord(sessionID string, start sect.TurnStart, at time.Time) (TurnRecord, error) {
	payload, err := json.Marshal(start)
	if err != nil {
		return TurnRecord{}, fmt.Errorf("encode turn start: %w", err)
	}
	return TurnRecord{
		SessionID:   sessionID,
		Turn:        start.Turn,
		Stage:       StageStart,
		State:       string(start.State),
		EventCount:  len(start.Events),
		PayloadJSON: payload,
		RecordedAt:  at.UTC(),
	}, nil
}

// ResolveRecord builds the journal record and outcome rows of a ResolveTurn.
func ResolveRecord(sessionID string, res sect.Resolution, at time.Time) (TurnRecord, []OutcomeRecord, error) {
	payload, err := json.Marshal(res)
	if err != nil {
		return TurnRecord{}, nil, fmt.Errorf("encode resolution: %w", err)
	}
	rec := TurnRecord{
		SessionID:   sessionID,
		Turn:        res.Turn,
		Stage:       StageResolve,
		State:       string(res.State),
		EventCount:  len(res.Events),
		PayloadJSON: payload,
		RecordedAt:  at.UTC(),
	}
	outcomes := make([]OutcomeRecord, 0, len(res.Outcomes))
	for _, o := range res.Outcomes {
		outcomes = append(outcomes, OutcomeRecord{
			SessionID:  sessionID,
			Turn:       res.Turn,
			TaskID:     o.TaskID,
			DiscipleID: o.DiscipleID,
			Kind:       string(o.Kind),
			Verdict:    string(o.Verdict),
			Chance:     o.Chance,
			Progress:   o.Progress,
			Resources:  o.Resources,
			Reputation: o.Reputation,
			DaoHeart:   o.DaoHeart,
		})
	}
	return rec, outcomes, nil
}
