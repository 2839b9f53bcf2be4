// Package domain defines the MCP tools that drive a tabletop session through
// the game service.
package domain

import (
	"context"
	"time"

	"github.com/kopertop/ai-dnd-expo-sub000/internal/platform/id"
	grpcmeta "github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/api/grpc/metadata"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// grpcCallTimeout caps the time for a single gRPC call from an MCP tool handler.
const grpcCallTimeout = 5 * time.Second

// GameClient calls TabletopService methods with JSON-shaped values.
type GameClient interface {
	Call(ctx context.Context, method string, req, resp any) error
}

// ToolCallMetadata carries correlation identifiers for MCP tool calls.
type ToolCallMetadata struct {
	RequestID    string
	InvocationID string
}

// NewInvocationID generates an invocation identifier for a tool call.
func NewInvocationID() (string, error) {
	return id.NewID()
}

// NewRequestID generates a request identifier for a gRPC call.
func NewRequestID() (string, error) {
	return id.NewID()
}

// NewCallContext stores fresh correlation ids on ctx for the game client to
// forward as request headers.
func NewCallContext(ctx context.Context) (context.Context, ToolCallMetadata, error) {
	invocationID, err := NewInvocationID()
	if err != nil {
		return nil, ToolCallMetadata{}, err
	}
	requestID, err := NewRequestID()
	if err != nil {
		return nil, ToolCallMetadata{}, err
	}
	ctx = grpcmeta.WithInvocationID(ctx, invocationID)
	ctx = grpcmeta.WithRequestID(ctx, requestID)
	return ctx, ToolCallMetadata{RequestID: requestID, InvocationID: invocationID}, nil
}

// CallToolResultWithMetadata builds a tool result with correlation metadata.
func CallToolResultWithMetadata(meta ToolCallMetadata) *mcp.CallToolResult {
	result := &mcp.CallToolResult{
		Meta: map[string]any{
			grpcmeta.RequestIDHeader: meta.RequestID,
		},
	}
	if meta.InvocationID != "" {
		result.Meta[grpcmeta.InvocationIDHeader] = meta.InvocationID
	}
	return result
}
