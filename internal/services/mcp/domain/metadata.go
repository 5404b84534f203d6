package domain

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc/metadata"

	"github.com/louisbranch/sect.ascension/internal/platform/id"
	grpcmeta "github.com/louisbranch/sect.ascension/internal/services/game/api/grpc/metadata"
)

// ToolCallMetadata carries correlation identifiers for MCP tool calls.
type ToolCallMetadata struct {
	RequestID string
}

// ResourceUpdateNotifier notifies MCP clients about resource updates.
type ResourceUpdateNotifier func(ctx context.Context, uri string)

// NewOutgoingContext attaches a fresh request id and the session hint to ctx.
func NewOutgoingContext(ctx context.Context, sessionID string) (context.Context, ToolCallMetadata, error) {
	requestID, err := id.RequestID()
	if err != nil {
		return nil, ToolCallMetadata{}, err
	}
	callCtx := metadata.AppendToOutgoingContext(ctx, grpcmeta.RequestIDHeader, requestID)
	if sessionID != "" {
		callCtx = metadata.AppendToOutgoingContext(callCtx, grpcmeta.SessionIDHeader, sessionID)
	}
	return callCtx, ToolCallMetadata{RequestID: requestID}, nil
}

// MergeResponseMetadata prefers the request id echoed by the server.
func MergeResponseMetadata(sent ToolCallMetadata, header metadata.MD) ToolCallMetadata {
	if requestID := grpcmeta.FirstMetadataValue(header, grpcmeta.RequestIDHeader); requestID != "" {
		return ToolCallMetadata{RequestID: requestID}
	}
	return sent
}

// CallToolResultWithMetadata builds a tool result with correlation metadata.
func CallToolResultWithMetadata(meta ToolCallMetadata) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Meta: map[string]any{
			grpcmeta.RequestIDHeader: meta.RequestID,
		},
	}
}

// NotifyResourceUpdates sends resource update notifications for each URI provided.
func NotifyResourceUpdates(ctx context.Context, notify ResourceUpdateNotifier, uris ...string) {
	if notify == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	for _, uri := range uris {
		if strings.TrimSpace(uri) == "" {
			continue
		}
		notify(ctx, uri)
	}
}
