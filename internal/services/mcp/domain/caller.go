package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/louisbranch/sect.ascension/internal/platform/timeouts"
	sectservice "github.com/louisbranch/sect.ascension/internal/services/game/api/grpc/sect"
)

// Caller invokes SectService methods. *sectservice.Client satisfies it.
type Caller interface {
	Call(ctx context.Context, method string, req map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error)
}

// Context is the default scope applied to tool calls.
type Context struct {
	SessionID string
}

// Result is the structured output of every sect tool.
type Result struct {
	Result map[string]any `json:"result" jsonschema:"the service response"`
}

// SessionURI names the session resource for sid.
func SessionURI(sid string) string {
	return "sect://" + sid
}

// resolveSession prefers the explicit id over the context default.
func resolveSession(explicit string, c Context) (string, error) {
	if sid := strings.TrimSpace(explicit); sid != "" {
		return sid, nil
	}
	if c.SessionID != "" {
		return c.SessionID, nil
	}
	return "", fmt.Errorf("session_id is required (pass it or call set_context)")
}

// requestBuilder maps a tool input onto a SectService request.
type requestBuilder[I any] func(I, Context) (map[string]any, error)

// callHandler builds a tool handler that sends one SectService call. Calls
// that are not reads notify the session resource.
func callHandler[I any](caller Caller, method string, getContext func() Context, notify ResourceUpdateNotifier, build requestBuilder[I]) mcp.ToolHandlerFor[I, Result] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input I) (*mcp.CallToolResult, Result, error) {
		scope := Context{}
		if getContext != nil {
			scope = getContext()
		}
		req, err := build(input, scope)
		if err != nil {
			return nil, Result{}, err
		}
		sid, _ := req["session_id"].(string)

		runCtx, cancel := context.WithTimeout(ctx, timeouts.ToolCall)
		defer cancel()

		callCtx, callMeta, err := NewOutgoingContext(runCtx, sid)
		if err != nil {
			return nil, Result{}, fmt.Errorf("create request metadata: %w", err)
		}

		var header metadata.MD
		resp, err := caller.Call(callCtx, method, req, grpc.Header(&header))
		if err != nil {
			return nil, Result{}, fmt.Errorf("%s failed: %w", method, err)
		}
		if resp == nil {
			return nil, Result{}, fmt.Errorf("%s response is missing", method)
		}
		out := Result{Result: resp.AsMap()}

		if !sectservice.ReadMethods[sectservice.FullMethod(method)] {
			if created, ok := out.Result["session_id"].(string); ok && sid == "" {
				sid = created
			}
			if sid != "" {
				NotifyResourceUpdates(ctx, notify, SessionURI(sid))
			}
		}
		return CallToolResultWithMetadata(MergeResponseMetadata(callMeta, header)), out, nil
	}
}
