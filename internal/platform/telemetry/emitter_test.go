package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/louisbranch/sect.ascension/internal/services/game/storage"
)

type fakeTelemetryStore struct {
	last  storage.TelemetryEvent
	count int
}

func (s *fakeTelemetryStore) AppendTelemetryEvent(ctx context.Context, evt storage.TelemetryEvent) error {
	s.last = evt
	s.count++
	return nil
}

func TestEmitterNoopWhenNil(t *testing.T) {
	var emitter *Emitter
	if err := emitter.Emit(context.Background(), storage.TelemetryEvent{}); err != nil {
		t.Fatalf("emit = %v, want nil", err)
	}
	if err := (&Emitter{}).Emit(context.Background(), storage.TelemetryEvent{}); err != nil {
		t.Fatalf("emit without store = %v, want nil", err)
	}
}

func TestEmitterDefaults(t *testing.T) {
	store := &fakeTelemetryStore{}
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	emitter := &Emitter{store: store, clock: func() time.Time { return now }}

	if err := emitter.Emit(context.Background(), storage.TelemetryEvent{EventName: EventRPCWrite}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if store.count != 1 {
		t.Fatalf("count = %d, want 1", store.count)
	}
	if !store.last.Timestamp.Equal(now) {
		t.Fatalf("timestamp = %v, want %v", store.last.Timestamp, now)
	}
	if store.last.Severity != string(SeverityInfo) {
		t.Fatalf("severity = %q, want INFO", store.last.Severity)
	}
}

func TestEmitterPreservesFields(t *testing.T) {
	store := &fakeTelemetryStore{}
	set := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	emitter := NewEmitter(store)

	err := emitter.Emit(context.Background(), storage.TelemetryEvent{
		EventName: EventRPCRead,
		Severity:  string(SeverityWarn),
		Timestamp: set,
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if !store.last.Timestamp.Equal(set) {
		t.Fatalf("timestamp = %v, want %v", store.last.Timestamp, set)
	}
	if store.last.Severity != string(SeverityWarn) {
		t.Fatalf("severity = %q, want WARN", store.last.Severity)
	}
}
