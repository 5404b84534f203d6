// Package timeouts holds the durations shared by the game server and its
// clients.
package timeouts

import "time"

const (
	// GRPCDial caps the wait for a game server to come up and report
	// healthy.
	GRPCDial = 5 * time.Second

	// HealthProbe caps a single health check while waiting on a server.
	HealthProbe = time.Second

	// ToolCall caps the game call made by one MCP tool or resource read.
	ToolCall = 5 * time.Second

	// ScenarioStep caps one step of a Lua scenario. Resolving a turn in a
	// large sect is the slowest step.
	ScenarioStep = 10 * time.Second

	// ReadHeader limits how long the MCP HTTP transport waits for headers.
	ReadHeader = 5 * time.Second

	// Shutdown bounds graceful shutdown of the gRPC and HTTP servers.
	Shutdown = 5 * time.Second
)
