package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/sect.ascension/internal/platform/timeouts"
	sectservice "github.com/louisbranch/sect.ascension/internal/services/game/api/grpc/sect"
)

// SetContextInput represents the MCP tool input for setting context.
type SetContextInput struct {
	SessionID string `json:"session_id" jsonschema:"session used when a tool call omits session_id"`
}

// SetContextResult represents the MCP tool output for setting context.
type SetContextResult struct {
	Context struct {
		SessionID string `json:"session_id" jsonschema:"session identifier"`
	} `json:"context" jsonschema:"current context"`
}

// ContextResourcePayload is the JSON body of the context resource.
type ContextResourcePayload struct {
	Context struct {
		SessionID *string `json:"session_id"`
	} `json:"context"`
}

// ContextResourceURI addresses the current context.
const ContextResourceURI = "context://current"

// SetContextTool defines the MCP tool schema for setting context.
func SetContextTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "set_context",
		Description: "Sets the default session_id for subsequent tool calls",
	}
}

// SetContextHandler validates the session exists and stores it as default.
func SetContextHandler(caller Caller, setContext func(Context), notify ResourceUpdateNotifier) mcp.ToolHandlerFor[SetContextInput, SetContextResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SetContextInput) (*mcp.CallToolResult, SetContextResult, error) {
		sid := strings.TrimSpace(input.SessionID)
		if sid == "" {
			return nil, SetContextResult{}, fmt.Errorf("session_id is required")
		}

		runCtx, cancel := context.WithTimeout(ctx, timeouts.ToolCall)
		defer cancel()
		callCtx, callMeta, err := NewOutgoingContext(runCtx, sid)
		if err != nil {
			return nil, SetContextResult{}, fmt.Errorf("create request metadata: %w", err)
		}
		if _, err := caller.Call(callCtx, sectservice.MethodGetSession, map[string]any{"session_id": sid}); err != nil {
			return nil, SetContextResult{}, fmt.Errorf("validate session: %w", err)
		}

		setContext(Context{SessionID: sid})
		NotifyResourceUpdates(ctx, notify, ContextResourceURI)

		result := SetContextResult{}
		result.Context.SessionID = sid
		return CallToolResultWithMetadata(callMeta), result, nil
	}
}

// ContextResource defines the MCP resource for the current context.
func ContextResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "context_current",
		Title:       "Current Context",
		Description: "Readable current MCP context (session_id)",
		MIMEType:    "application/json",
		URI:         ContextResourceURI,
	}
}

// ContextResourceHandler returns a readable current context resource.
func ContextResourceHandler(getContext func() Context) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if getContext == nil {
			return nil, fmt.Errorf("context getter function is not configured")
		}
		uri := ContextResourceURI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}
		if uri != ContextResourceURI {
			return nil, fmt.Errorf("invalid URI: expected %s, got %q", ContextResourceURI, uri)
		}

		payload := ContextResourcePayload{}
		if current := getContext(); current.SessionID != "" {
			payload.Context.SessionID = &current.SessionID
		}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal context: %w", err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: "application/json", Text: string(data)}},
		}, nil
	}
}

// SessionResourceTemplate defines the readable sect state resource.
func SessionResourceTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Name:        "sect_session",
		Title:       "Sect Session",
		Description: "Full sect state for a session",
		MIMEType:    "application/json",
		URITemplate: "sect://{session_id}",
	}
}

// SessionResourceHandler reads a session through GetSession.
func SessionResourceHandler(caller Caller) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if req == nil || req.Params == nil {
			return nil, fmt.Errorf("resource uri is required")
		}
		uri := req.Params.URI
		sid, ok := strings.CutPrefix(uri, "sect://")
		if !ok || strings.TrimSpace(sid) == "" || strings.Contains(sid, "/") {
			return nil, fmt.Errorf("invalid URI %q: expected sect://{session_id}", uri)
		}

		runCtx, cancel := context.WithTimeout(ctx, timeouts.ToolCall)
		defer cancel()
		callCtx, _, err := NewOutgoingContext(runCtx, sid)
		if err != nil {
			return nil, fmt.Errorf("create request metadata: %w", err)
		}
		resp, err := caller.Call(callCtx, sectservice.MethodGetSession, map[string]any{"session_id": sid})
		if err != nil {
			return nil, fmt.Errorf("get session: %w", err)
		}
		data, err := json.MarshalIndent(resp.AsMap(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal session: %w", err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: "application/json", Text: string(data)}},
		}, nil
	}
}
