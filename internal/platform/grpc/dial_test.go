package grpc

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

func TestDialWaitsForHealth(t *testing.T) {
	srv := startHealthServer(t)
	srv.health.SetServingStatus(sectService, grpc_health_v1.HealthCheckResponse_SERVING)

	conn, err := Dial(context.Background(), DialConfig{Addr: srv.addr, Service: sectService, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if conn.Target() != srv.addr {
		t.Fatalf("target = %q, want %q", conn.Target(), srv.addr)
	}
}

func TestDialHealthStage(t *testing.T) {
	srv := startHealthServer(t)
	srv.health.SetServingStatus(sectService, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	_, err := Dial(context.Background(), DialConfig{Addr: srv.addr, Service: sectService, Timeout: 300 * time.Millisecond})
	var dialErr *DialError
	if !errors.As(err, &dialErr) {
		t.Fatalf("err = %v, want *DialError", err)
	}
	if dialErr.Stage != DialStageHealth {
		t.Fatalf("stage = %s, want health", dialErr.Stage)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestDialRequiresAddr(t *testing.T) {
	_, err := Dial(context.Background(), DialConfig{Addr: "  "})
	var dialErr *DialError
	if !errors.As(err, &dialErr) || dialErr.Stage != DialStageConnect {
		t.Fatalf("err = %v, want connect stage error", err)
	}
}

func TestDialErrorMessage(t *testing.T) {
	err := &DialError{Addr: "game:8082", Stage: DialStageHealth, Err: errors.New("boom")}
	if !strings.Contains(err.Error(), "game:8082: health: boom") {
		t.Fatalf("message = %q", err.Error())
	}
}
