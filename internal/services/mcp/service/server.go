package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	platformgrpc "github.com/louisbranch/sect.ascension/internal/platform/grpc"
	"github.com/louisbranch/sect.ascension/internal/platform/timeouts"
	sectservice "github.com/louisbranch/sect.ascension/internal/services/game/api/grpc/sect"
	"github.com/louisbranch/sect.ascension/internal/services/mcp/domain"
)

const (
	serverName    = "Sect Ascension MCP"
	serverVersion = "0.1.0"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP serves the streamable HTTP transport.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	GRPCAddr  string
	Transport TransportKind
	// HTTPAddr defaults to localhost:8081 for HTTP transport.
	HTTPAddr string
	// Log must not write to stdout when Transport is stdio.
	Log *logrus.Entry
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
	conn      *grpc.ClientConn
	log       *logrus.Entry
	ctx       domain.Context
	ctxMu     sync.RWMutex
}

// newServer binds every tool and resource to caller. conn may be nil when
// the caller is not backed by a connection this server owns.
func newServer(caller domain.Caller, conn *grpc.ClientConn, log *logrus.Entry) *Server {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{
		SubscribeHandler:   resourceSubscribeHandler,
		UnsubscribeHandler: resourceUnsubscribeHandler,
	})
	server := &Server{mcpServer: mcpServer, conn: conn, log: log}
	notify := func(ctx context.Context, uri string) {
		if err := mcpServer.ResourceUpdated(ctx, &mcp.ResourceUpdatedNotificationParams{URI: uri}); err != nil {
			log.WithError(err).WithField("uri", uri).Warn("resource update notification failed")
		}
	}
	registerTools(mcpServer, caller, server.getContext, server.setContext, notify)
	registerResources(mcpServer, caller, server.getContext)
	return server
}

func resourceSubscribeHandler(_ context.Context, req *mcp.SubscribeRequest) error {
	if req == nil || req.Params == nil || strings.TrimSpace(req.Params.URI) == "" {
		return fmt.Errorf("resource uri is required")
	}
	return nil
}

func resourceUnsubscribeHandler(_ context.Context, req *mcp.UnsubscribeRequest) error {
	if req == nil || req.Params == nil || strings.TrimSpace(req.Params.URI) == "" {
		return fmt.Errorf("resource uri is required")
	}
	return nil
}

// Run is the service entrypoint for MCP and blocks until context cancellation.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}
	switch cfg.Transport {
	case TransportStdio:
		return runWithTransport(ctx, cfg, &mcp.StdioTransport{})
	case TransportHTTP:
		return runWithHTTP(ctx, cfg)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// runWithTransport dials the game server and serves MCP over transport.
func runWithTransport(ctx context.Context, cfg Config, transport mcp.Transport) error {
	conn, err := dialGameGRPC(ctx, grpcAddress(cfg.GRPCAddr), cfg.Log)
	if err != nil {
		return err
	}
	server := newServer(sectservice.NewClient(conn), conn, cfg.Log)
	return server.serveWithTransport(ctx, transport)
}

func runWithHTTP(ctx context.Context, cfg Config) error {
	httpAddr := cfg.HTTPAddr
	if httpAddr == "" {
		httpAddr = "localhost:8081"
	}
	conn, err := dialGameGRPC(ctx, grpcAddress(cfg.GRPCAddr), cfg.Log)
	if err != nil {
		return err
	}
	server := newServer(sectservice.NewClient(conn), conn, cfg.Log)
	defer server.Close()

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           server.HTTPHandler(),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	serveErr := make(chan error, 1)
	go func() {
		server.log.WithField("addr", httpAddr).Info("MCP HTTP listening")
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown MCP HTTP: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve MCP HTTP: %w", err)
	}
}

// HTTPHandler serves this MCP server over streamable HTTP.
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
}

// Close releases the gRPC connection held by the server.
func (s *Server) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	if err := s.conn.Close(); err != nil {
		return err
	}
	s.conn = nil
	return nil
}

// serveWithTransport runs the MCP session and closes the connection after.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	closeErr := s.Close()
	if closeErr != nil {
		if err == nil {
			return fmt.Errorf("close gRPC connection: %w", closeErr)
		}
		return fmt.Errorf("serve MCP: %v; close gRPC connection: %w", err, closeErr)
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

func (s *Server) setContext(ctx domain.Context) {
	s.ctxMu.Lock()
	defer s.ctxMu.Unlock()
	s.ctx = ctx
}

func (s *Server) getContext() domain.Context {
	s.ctxMu.RLock()
	defer s.ctxMu.RUnlock()
	return s.ctx
}

func dialGameGRPC(ctx context.Context, addr string, log *logrus.Entry) (*grpc.ClientConn, error) {
	conn, err := platformgrpc.Dial(ctx, platformgrpc.DialConfig{
		Addr:    addr,
		Service: sectservice.ServiceName,
		Timeout: timeouts.GRPCDial,
		Log:     log,
	})
	if err != nil {
		var dialErr *platformgrpc.DialError
		if errors.As(err, &dialErr) && dialErr.Stage == platformgrpc.DialStageHealth {
			return nil, fmt.Errorf("game server at %s is not serving: %w", addr, dialErr.Err)
		}
		return nil, err
	}
	return conn, nil
}

// grpcAddress defaults to the local game server.
func grpcAddress(addr string) string {
	if addr = strings.TrimSpace(addr); addr != "" {
		return addr
	}
	return "localhost:8082"
}
