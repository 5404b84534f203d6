package scenario

import (
	"context"
	"flag"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("scenario", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.GRPCAddr != "" {
		t.Fatalf("grpc addr = %q, want in-process default", cfg.GRPCAddr)
	}
	if !cfg.Assertions {
		t.Fatal("expected assertions to default to true")
	}
	if cfg.Timeout != 10*time.Second {
		t.Fatalf("timeout = %v, want 10s", cfg.Timeout)
	}
}

func TestParseConfigEnvAndFlags(t *testing.T) {
	t.Setenv("SECT_ASCENSION_SCENARIO_FILE", "env.lua")
	t.Setenv("SECT_ASCENSION_SEED", "77")
	fs := flag.NewFlagSet("scenario", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, []string{"-assert=false", "-grpc-addr", "game:8082", "-timeout", "2s"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Scenario != "env.lua" {
		t.Fatalf("scenario = %q, want env.lua", cfg.Scenario)
	}
	if cfg.Sect.Seed != 77 {
		t.Fatalf("seed = %d, want 77", cfg.Sect.Seed)
	}
	if cfg.Assertions || cfg.GRPCAddr != "game:8082" || cfg.Timeout != 2*time.Second {
		t.Fatalf("flags not applied: %+v", cfg)
	}
}

func TestRunRequiresScenario(t *testing.T) {
	if err := Run(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for missing scenario path")
	}
}
