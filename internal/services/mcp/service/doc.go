// Package service hosts the MCP server of the sect game.
//
// The server dials the game gRPC endpoint once and exposes SectService
// operations as MCP tools over stdio or streamable HTTP.
package service
