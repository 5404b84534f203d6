package storage

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/louisbranch/sect.ascension/internal/services/game/domain/outcome"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/sect"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/task"
)

func TestResolveRecord(t *testing.T) {
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.FixedZone("x", 3600))
	res := sect.Resolution{
		Turn:  4,
		State: sect.StatePlaying,
		Outcomes: []sect.Outcome{
			{TaskID: "task-000001", DiscipleID: "disciple-0001", Kind: task.KindGathering, Verdict: outcome.VerdictSuccess, Chance: 0.8, Resources: 20},
		},
		Events: []sect.Event{{Type: sect.EventTaskCompleted, Turn: 4, TaskID: "task-000001"}},
	}

	rec, outcomes, err := ResolveRecord("s1", res, at)
	if err != nil {
		t.Fatalf("resolve record: %v", err)
	}
	if rec.Stage != StageResolve || rec.Turn != 4 || rec.EventCount != 1 {
		t.Fatalf("record = %+v, want resolve turn 4 with 1 event", rec)
	}
	if rec.RecordedAt.Location() != time.UTC {
		t.Fatalf("recorded at location = %v, want UTC", rec.RecordedAt.Location())
	}
	if len(outcomes) != 1 || outcomes[0].Verdict != "SUCCESS" || outcomes[0].Resources != 20 {
		t.Fatalf("outcomes = %+v", outcomes)
	}

	var decoded sect.Resolution
	if err := json.Unmarshal(rec.PayloadJSON, &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded.Outcomes[0].TaskID != "task-000001" {
		t.Fatalf("payload task = %s, want task-000001", decoded.Outcomes[0].TaskID)
	}
}

func TestStartRecord(t *testing.T) {
	rec, err := StartRecord("s1", sect.TurnStart{Turn: 2, State: sect.StatePlaying}, time.Now())
	if err != nil {
		t.Fatalf("start record: %v", err)
	}
	if rec.Stage != StageStart || rec.State != "PLAYING" {
		t.Fatalf("record = %+v, want START PLAYING", rec)
	}
}
