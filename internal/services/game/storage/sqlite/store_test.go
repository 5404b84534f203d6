package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/sect.ascension/internal/services/game/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func TestAppendTurnRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := store.AppendTurn(ctx, storage.TurnRecord{
		SessionID: "s1", Turn: 1, Stage: storage.StageStart, State: "PLAYING", EventCount: 2,
		PayloadJSON: []byte(`{"Turn":1}`), RecordedAt: at,
	}, nil); err != nil {
		t.Fatalf("append start: %v", err)
	}
	outcomes := []storage.OutcomeRecord{
		{SessionID: "s1", Turn: 1, TaskID: "task-000002", DiscipleID: "disciple-0001", Kind: "GATHERING", Verdict: "SUCCESS", Chance: 0.8, Progress: 10},
		{SessionID: "s1", Turn: 1, TaskID: "task-000001", DiscipleID: "disciple-0002", Kind: "COMBAT", Verdict: "DEATH", Chance: 0.4},
	}
	if err := store.AppendTurn(ctx, storage.TurnRecord{
		SessionID: "s1", Turn: 1, Stage: storage.StageResolve, State: "PLAYING", RecordedAt: at,
	}, outcomes); err != nil {
		t.Fatalf("append resolve: %v", err)
	}

	turns, err := store.ListTurns(ctx, "s1")
	if err != nil {
		t.Fatalf("list turns: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("turns = %d, want 2", len(turns))
	}
	if turns[0].Stage != storage.StageStart || turns[1].Stage != storage.StageResolve {
		t.Fatalf("stages = %s, %s, want START, RESOLVE", turns[0].Stage, turns[1].Stage)
	}
	if !turns[0].RecordedAt.Equal(at) {
		t.Fatalf("recorded at = %v, want %v", turns[0].RecordedAt, at)
	}
	if string(turns[1].PayloadJSON) != "{}" {
		t.Fatalf("empty payload = %q, want {}", turns[1].PayloadJSON)
	}

	got, err := store.ListOutcomes(ctx, "s1", 0)
	if err != nil {
		t.Fatalf("list outcomes: %v", err)
	}
	if len(got) != 2 || got[0].TaskID != "task-000001" {
		t.Fatalf("outcomes = %+v, want task-000001 first", got)
	}
	if got[0].Verdict != "DEATH" {
		t.Fatalf("verdict = %s, want DEATH", got[0].Verdict)
	}

	later, err := store.ListOutcomes(ctx, "s1", 1)
	if err != nil {
		t.Fatalf("list later outcomes: %v", err)
	}
	if len(later) != 0 {
		t.Fatalf("later outcomes = %d, want 0", len(later))
	}
}

func TestAppendTurnRejectsDuplicatesAtomically(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	rec := storage.TurnRecord{SessionID: "s1", Turn: 1, Stage: storage.StageResolve, State: "PLAYING"}
	if err := store.AppendTurn(ctx, rec, nil); err != nil {
		t.Fatalf("append: %v", err)
	}
	err := store.AppendTurn(ctx, rec, []storage.OutcomeRecord{
		{SessionID: "s1", Turn: 1, TaskID: "task-000001", DiscipleID: "disciple-0001", Kind: "GATHERING", Verdict: "SUCCESS"},
	})
	if err == nil {
		t.Fatal("expected duplicate turn to fail")
	}
	got, err := store.ListOutcomes(ctx, "s1", 0)
	if err != nil {
		t.Fatalf("list outcomes: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("outcomes = %d, want 0", len(got))
	}
}

func TestAppendTurnValidation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	tests := []struct {
		name     string
		rec      storage.TurnRecord
		outcomes []storage.OutcomeRecord
	}{
		{name: "missing session", rec: storage.TurnRecord{Turn: 1, Stage: storage.StageStart}},
		{name: "unknown stage", rec: storage.TurnRecord{SessionID: "s1", Turn: 1, Stage: "LATER"}},
		{
			name:     "foreign outcome",
			rec:      storage.TurnRecord{SessionID: "s1", Turn: 2, Stage: storage.StageResolve},
			outcomes: []storage.OutcomeRecord{{SessionID: "s2", Turn: 2}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.AppendTurn(ctx, tt.rec, tt.outcomes); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestAppendTelemetryEvent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.AppendTelemetryEvent(ctx, storage.TelemetryEvent{
		EventName:  "rpc.write",
		Severity:   "INFO",
		SessionID:  "s1",
		Attributes: map[string]any{"method": "/sect.v1.SectService/StartTurn"},
	}); err != nil {
		t.Fatalf("append telemetry: %v", err)
	}
	if err := store.AppendTelemetryEvent(ctx, storage.TelemetryEvent{Severity: "INFO"}); err == nil {
		t.Fatal("expected missing event name to fail")
	}
	if err := store.AppendTelemetryEvent(ctx, storage.TelemetryEvent{EventName: "rpc.read"}); err == nil {
		t.Fatal("expected missing severity to fail")
	}

	n, err := store.CountTelemetryEvents(ctx, "rpc.write")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), " "); err == nil {
		t.Fatal("expected empty path to fail")
	}
}

func TestClosedStoreRejectsWrites(t *testing.T) {
	var store *Store
	if err := store.AppendTelemetryEvent(context.Background(), storage.TelemetryEvent{EventName: "x", Severity: "INFO"}); err == nil {
		t.Fatal("expected nil store to fail")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}
