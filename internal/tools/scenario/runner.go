package scenario

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	platformgrpc "github.com/louisbranch/sect.ascension/internal/platform/grpc"
	"github.com/louisbranch/sect.ascension/internal/platform/timeouts"
	sectservice "github.com/louisbranch/sect.ascension/internal/services/game/api/grpc/sect"
	"github.com/louisbranch/sect.ascension/internal/services/game/application"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/catalog"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/sect"
	"github.com/louisbranch/sect.ascension/internal/services/game/session"
)

// Caller invokes SectService methods.
type Caller interface {
	Call(ctx context.Context, method string, req map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error)
}

// Config controls scenario execution.
type Config struct {
	// GRPCAddr is the game server. Empty runs an in-process game.
	GRPCAddr   string
	Timeout    time.Duration
	Assertions AssertionMode
	Verbose    bool
	Logger     *logrus.Entry
	// Sect configures the in-process game.
	Sect sect.Config
}

// DefaultConfig returns default runner configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:    timeouts.ScenarioStep,
		Assertions: AssertionStrict,
		Sect:       sect.DefaultConfig(),
	}
}

// Runner executes scenarios against SectService.
type Runner struct {
	conn       *grpc.ClientConn
	caller     Caller
	assertions Assertions
	log        *logrus.Entry
	verbose    bool
	timeout    time.Duration
}

// NewRunner connects to the configured game server, or starts an in-process
// game when no address is set.
func NewRunner(ctx context.Context, cfg Config) (*Runner, error) {
	if cfg.GRPCAddr == "" {
		return newLocalRunner(cfg)
	}
	conn, err := platformgrpc.Dial(ctx, platformgrpc.DialConfig{
		Addr:    cfg.GRPCAddr,
		Service: sectservice.ServiceName,
		Timeout: timeouts.GRPCDial,
		Log:     cfg.Logger,
	})
	if err != nil {
		return nil, err
	}
	r := NewRunnerWithCaller(sectservice.NewClient(conn), cfg)
	r.conn = conn
	return r, nil
}

func newLocalRunner(cfg Config) (*Runner, error) {
	cat, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	sectCfg := cfg.Sect
	if sectCfg == (sect.Config{}) {
		sectCfg = sect.DefaultConfig()
	}
	if err := sectCfg.Validate(); err != nil {
		return nil, err
	}
	log := loggerOrDefault(cfg.Logger)
	app := application.New(session.NewRegistry(cat, sectCfg, log), nil, log)
	return NewRunnerWithCaller(sectservice.NewClient(sectservice.NewLocalConn(sectservice.NewService(app))), cfg), nil
}

// NewRunnerWithCaller builds a Runner over caller.
func NewRunnerWithCaller(caller Caller, cfg Config) *Runner {
	log := loggerOrDefault(cfg.Logger)
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = timeouts.ScenarioStep
	}
	return &Runner{
		caller:     caller,
		assertions: Assertions{Mode: cfg.Assertions, Log: log},
		log:        log,
		verbose:    cfg.Verbose,
		timeout:    timeout,
	}
}

func loggerOrDefault(log *logrus.Entry) *logrus.Entry {
	if log == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return log
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// RunFile loads and executes a scenario file.
func RunFile(ctx context.Context, cfg Config, path string) error {
	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		return err
	}
	runner, err := NewRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()
	return runner.RunScenario(ctx, scenario)
}

// RunScenario executes the scenario steps in order and stops at the first
// failing step.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) error {
	if scenario == nil {
		return errors.New("scenario is required")
	}
	r.logf("scenario start: %s (%d steps)", scenario.Name, len(scenario.Steps))
	state := &scenarioState{seed: scenario.Seed, saved: map[string]any{}}

	for index, step := range scenario.Steps {
		stepNumber := index + 1
		r.logf("step %d/%d start: %s", stepNumber, len(scenario.Steps), step.Kind)
		stepStart := time.Now()
		stepCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := r.runStep(stepCtx, state, step)
		cancel()
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", stepNumber, step.Kind, err)
		}
		r.logf("step %d/%d done: %s (%s)", stepNumber, len(scenario.Steps), step.Kind, time.Since(stepStart))
	}
	r.logf("scenario done: %s", scenario.Name)
	return nil
}

func (r *Runner) logf(format string, args ...any) {
	if !r.verbose || r.log == nil {
		return
	}
	r.log.Infof(format, args...)
}
