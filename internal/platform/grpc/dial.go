// Package grpc dials the game server for the MCP adapter and the scenario
// runner.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// DialStage names the part of Dial that failed.
type DialStage string

const (
	// DialStageConnect covers target parsing and client construction.
	DialStageConnect DialStage = "connect"
	// DialStageHealth covers waiting for the server to report SERVING.
	DialStageHealth DialStage = "health"
)

// DialError is returned by Dial.
type DialError struct {
	Addr  string
	Stage DialStage
	Err   error
}

// Error implements the error interface.
func (e *DialError) Error() string {
	return fmt.Sprintf("dial game server %s: %s: %v", e.Addr, e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *DialError) Unwrap() error {
	return e.Err
}

// DialConfig describes a connection to a game server.
type DialConfig struct {
	Addr string
	// Service is the health service name to wait on. Empty checks the
	// server as a whole.
	Service string
	// Timeout bounds the health wait. Zero relies on ctx alone.
	Timeout time.Duration
	// Log receives progress while waiting. Nil is silent.
	Log *logrus.Entry
	// Options replace ClientOptions when set.
	Options []gogrpc.DialOption
}

// ClientOptions are the dial options of every game client: plaintext
// transport and trace propagation through otelgrpc.
func ClientOptions() []gogrpc.DialOption {
	return []gogrpc.DialOption{
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
		gogrpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}
}

// Dial creates a client for cfg.Addr and blocks until the health service
// reports SERVING. The connection is closed when the wait fails.
func Dial(ctx context.Context, cfg DialConfig) (*gogrpc.ClientConn, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, &DialError{Stage: DialStageConnect, Err: errors.New("address is required")}
	}
	opts := cfg.Options
	if len(opts) == 0 {
		opts = ClientOptions()
	}
	conn, err := gogrpc.NewClient(addr, opts...)
	if err != nil {
		return nil, &DialError{Addr: addr, Stage: DialStageConnect, Err: err}
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	if err := WaitForHealth(ctx, conn, cfg.Service, cfg.Log); err != nil {
		_ = conn.Close()
		return nil, &DialError{Addr: addr, Stage: DialStageHealth, Err: err}
	}
	return conn, nil
}
