package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/sect.ascension/internal/services/game/storage"
)

// AppendTelemetryEvent records an operational telemetry event.
func (s *Store) AppendTelemetryEvent(ctx context.Context, evt storage.TelemetryEvent) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(evt.EventName) == "" {
		return fmt.Errorf("event name is required")
	}
	if strings.TrimSpace(evt.Severity) == "" {
		return fmt.Errorf("severity is required")
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	var attrs []byte
	if len(evt.Attributes) > 0 {
		payload, err := json.Marshal(evt.Attributes)
		if err != nil {
			return fmt.Errorf("marshal telemetry attributes: %w", err)
		}
		attrs = payload
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO telemetry_events (timestamp, event_name, severity, session_id, request_id, trace_id, span_id, attributes_json)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		toMillis(evt.Timestamp), evt.EventName, evt.Severity,
		toNullString(evt.SessionID), toNullString(evt.RequestID),
		toNullString(evt.TraceID), toNullString(evt.SpanID), attrs,
	)
	if err != nil {
		return fmt.Errorf("append telemetry event: %w", err)
	}
	return nil
}

// CountTelemetryEvents counts events named name.
func (s *Store) CountTelemetryEvents(ctx context.Context, name string) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	var n int
	if err := s.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM telemetry_events WHERE event_name = ?", name).Scan(&n); err != nil {
		return 0, fmt.Errorf("count telemetry events: %w", err)
	}
	return n, nil
}

func toNullString(value string) sql.NullString {
	if strings.TrimSpace(value) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
