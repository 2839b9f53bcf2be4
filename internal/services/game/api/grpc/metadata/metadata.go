package metadata

import (
	"context"
	"strings"

	"github.com/kopertop/ai-dnd-expo-sub000/internal/platform/id"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Header keys shared by the game service and its clients.
const (
	RequestIDHeader    = "x-tabletop-request-id"
	InvocationIDHeader = "x-tabletop-invocation-id"
	UserIDHeader       = "x-tabletop-user-id"
	RoleHeader         = "x-tabletop-role"
	SessionIDHeader    = "x-tabletop-session-id"
	LocaleHeader       = "x-tabletop-locale"
	AuthorizationKey   = "authorization"
)

type contextKey string

const (
	requestIDContextKey    contextKey = "tabletop-request-id"
	invocationIDContextKey contextKey = "tabletop-invocation-id"
)

// RequestIDFromContext returns the request ID stored in context.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDContextKey).(string)
	return value
}

// InvocationIDFromContext returns the MCP invocation ID stored in context.
func InvocationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(invocationIDContextKey).(string)
	return value
}

// WithRequestID stores the request ID in context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// WithInvocationID stores the invocation ID in context.
func WithInvocationID(ctx context.Context, invocationID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, invocationIDContextKey, invocationID)
}

// UserIDFromContext returns the user id header of an incoming call.
func UserIDFromContext(ctx context.Context) string {
	return incomingValue(ctx, UserIDHeader)
}

// RoleFromContext returns the role header of an incoming call.
func RoleFromContext(ctx context.Context) string {
	return incomingValue(ctx, RoleHeader)
}

// SessionIDFromContext returns the session routing hint of an incoming call.
func SessionIDFromContext(ctx context.Context) string {
	return incomingValue(ctx, SessionIDHeader)
}

// LocaleFromContext returns the locale header of an incoming call.
func LocaleFromContext(ctx context.Context) string {
	return incomingValue(ctx, LocaleHeader)
}

// BearerTokenFromContext returns the token of an "authorization: Bearer x"
// header, or "".
func BearerTokenFromContext(ctx context.Context) string {
	value := incomingValue(ctx, AuthorizationKey)
	scheme, token, ok := strings.Cut(value, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// IsPrintableASCII reports whether a string contains only printable ASCII characters.
func IsPrintableASCII(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < 0x20 || value[i] > 0x7e {
			return false
		}
	}
	return true
}

// FirstMetadataValue returns the first printable ASCII value for key.
func FirstMetadataValue(md metadata.MD, key string) string {
	for mdKey, values := range md {
		if !strings.EqualFold(mdKey, key) {
			continue
		}
		for _, value := range values {
			if IsPrintableASCII(value) {
				return value
			}
		}
	}
	return ""
}

// UnaryServerInterceptor makes sure every unary call has a request id,
// echoes it in the response headers and tags the active span with it.
func UnaryServerInterceptor(idGenerator func() (string, error)) grpc.UnaryServerInterceptor {
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		updated, requestID, invocationID, err := ensureRequestMetadata(ctx, idGenerator)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "ensure request metadata: %v", err)
		}
		if err := grpc.SetHeader(updated, responseHeaders(requestID, invocationID)); err != nil {
			return nil, status.Errorf(codes.Internal, "set response metadata: %v", err)
		}
		return handler(updated, req)
	}
}

// StreamServerInterceptor is UnaryServerInterceptor for streams.
func StreamServerInterceptor(idGenerator func() (string, error)) grpc.StreamServerInterceptor {
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	return func(srv any, stream grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		updated, requestID, invocationID, err := ensureRequestMetadata(stream.Context(), idGenerator)
		if err != nil {
			return status.Errorf(codes.Internal, "ensure request metadata: %v", err)
		}
		if err := stream.SetHeader(responseHeaders(requestID, invocationID)); err != nil {
			return status.Errorf(codes.Internal, "set response metadata: %v", err)
		}
		return handler(srv, &WrappedServerStream{ServerStream: stream, Ctx: updated})
	}
}

// WrappedServerStream overrides the context of a server stream.
type WrappedServerStream struct {
	grpc.ServerStream
	Ctx context.Context
}

// Context returns the replacement context.
func (w *WrappedServerStream) Context() context.Context {
	return w.Ctx
}

func ensureRequestMetadata(ctx context.Context, idGenerator func() (string, error)) (context.Context, string, string, error) {
	requestID := incomingValue(ctx, RequestIDHeader)
	invocationID := incomingValue(ctx, InvocationIDHeader)
	if requestID == "" {
		generated, err := idGenerator()
		if err != nil {
			return nil, "", "", err
		}
		requestID = generated
	}

	updated := WithRequestID(ctx, requestID)
	attrs := []attribute.KeyValue{attribute.String("tabletop.request_id", requestID)}
	if invocationID != "" {
		updated = WithInvocationID(updated, invocationID)
		attrs = append(attrs, attribute.String("tabletop.invocation_id", invocationID))
	}
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
	return updated, requestID, invocationID, nil
}

func incomingValue(ctx context.Context, header string) string {
	if ctx == nil {
		return ""
	}
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	return FirstMetadataValue(md, header)
}

func responseHeaders(requestID, invocationID string) metadata.MD {
	headers := metadata.Pairs(RequestIDHeader, requestID)
	if invocationID != "" {
		headers.Append(InvocationIDHeader, invocationID)
	}
	return headers
}
