package grpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	gogrpc "google.golang.org/grpc"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/louisbranch/sect.ascension/internal/platform/timeouts"
)

const (
	healthBackoffStart = 100 * time.Millisecond
	healthBackoffMax   = time.Second
)

// WaitForHealth polls the health service until service reports SERVING or
// ctx ends.
func WaitForHealth(ctx context.Context, conn gogrpc.ClientConnInterface, service string, log *logrus.Entry) error {
	if conn == nil {
		return errors.New("connection is required")
	}
	client := grpc_health_v1.NewHealthClient(conn)
	backoff := healthBackoffStart
	for attempt := 1; ; attempt++ {
		probeCtx, cancel := context.WithTimeout(ctx, timeouts.HealthProbe)
		resp, err := client.Check(probeCtx, &grpc_health_v1.HealthCheckRequest{Service: service})
		cancel()
		if err == nil && resp.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING {
			return nil
		}
		if log != nil {
			entry := log.WithFields(logrus.Fields{"service": service, "attempt": attempt})
			if err != nil {
				entry = entry.WithError(err)
			} else {
				entry = entry.WithField("status", resp.GetStatus().String())
			}
			entry.Debug("waiting for game server")
		}

		select {
		case <-ctx.Done():
			if err != nil {
				return fmt.Errorf("wait for health: %w (last probe: %v)", ctx.Err(), err)
			}
			return fmt.Errorf("wait for health: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, healthBackoffMax)
	}
}
