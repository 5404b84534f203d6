package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/louisbranch/sect.ascension/internal/platform/timeouts"
	"github.com/louisbranch/sect.ascension/internal/services/game/api/grpc/interceptors"
	grpcmeta "github.com/louisbranch/sect.ascension/internal/services/game/api/grpc/metadata"
	sectservice "github.com/louisbranch/sect.ascension/internal/services/game/api/grpc/sect"
	"github.com/louisbranch/sect.ascension/internal/services/game/application"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/catalog"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/sect"
	"github.com/louisbranch/sect.ascension/internal/services/game/session"
	storagesqlite "github.com/louisbranch/sect.ascension/internal/services/game/storage/sqlite"
)

// Config configures a game server.
type Config struct {
	// Addr is the listen address, for example ":8082" or "127.0.0.1:0".
	Addr string
	// DBPath is the sqlite journal path. ":memory:" keeps the journal in process.
	DBPath string
	// CatalogPath optionally replaces the embedded content catalog.
	CatalogPath string
	Sect        sect.Config
	Log         *logrus.Entry
}

// Server hosts the sect service.
type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
	store      *storagesqlite.Store
	log        *logrus.Entry
}

// New creates a configured game server. The listener and journal are open
// when it returns.
func New(ctx context.Context, cfg Config) (*Server, error) {
	log := cfg.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if err := cfg.Sect.Validate(); err != nil {
		return nil, fmt.Errorf("sect config: %w", err)
	}
	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}
	store, err := openJournal(ctx, cfg.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	registry := session.NewRegistry(cat, cfg.Sect, log)
	app := application.New(registry, store, log)

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			grpcmeta.UnaryServerInterceptor(nil),
			interceptors.AuditInterceptor(store, sectservice.ReadMethods),
		),
	)
	healthServer := health.NewServer()
	sectservice.RegisterSectServiceServer(grpcServer, sectservice.NewService(app))
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(sectservice.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		listener:   listener,
		grpcServer: grpcServer,
		health:     healthServer,
		store:      store,
		log:        log,
	}, nil
}

// Addr returns the listener address for the game server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a game server until the context ends.
func Run(ctx context.Context, cfg Config) error {
	srv, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	return srv.Serve(ctx)
}

// Serve starts the game server and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.closeStore()

	s.log.WithField("addr", s.listener.Addr().String()).Info("game server listening")
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}

	select {
	case <-ctx.Done():
		if s.health != nil {
			s.health.Shutdown()
		}
		stopped := make(chan struct{})
		go func() {
			s.grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(timeouts.Shutdown):
			s.log.Warn("graceful stop timed out, closing connections")
			s.grpcServer.Stop()
		}
		return handleErr(<-serveErr)
	case err := <-serveErr:
		return handleErr(err)
	}
}

func (s *Server) closeStore() {
	if s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		s.log.WithError(err).Warn("close journal")
	}
}

func openJournal(ctx context.Context, path string) (*storagesqlite.Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = filepath.Join("data", "game.db")
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create storage dir: %w", err)
			}
		}
	}
	store, err := storagesqlite.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite journal: %w", err)
	}
	return store, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return catalog.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	cat, err := catalog.Load(data)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return cat, nil
}
