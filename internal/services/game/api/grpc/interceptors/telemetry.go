// Package interceptors holds cross-cutting gRPC middleware for the game
// service.
package interceptors

import (
	"context"
	"log"
	"strings"
	"time"

	platformotel "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/otel"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/platform/requestctx"
	grpcmeta "github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/api/grpc/metadata"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Logf matches log.Printf.
type Logf func(format string, args ...any)

// LoggingInterceptor writes one summary line per unary call.
func LoggingInterceptor(logf Logf) grpc.UnaryServerInterceptor {
	if logf == nil {
		logf = log.Printf
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		started := time.Now()
		resp, err := handler(ctx, req)
		logCall(ctx, logf, info.FullMethod, sessionScope(ctx, req), started, err)
		return resp, err
	}
}

// StreamLoggingInterceptor writes one summary line when a stream ends.
func StreamLoggingInterceptor(logf Logf) grpc.StreamServerInterceptor {
	if logf == nil {
		logf = log.Printf
	}
	return func(srv any, stream grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		started := time.Now()
		err := handler(srv, stream)
		ctx := stream.Context()
		logCall(ctx, logf, info.FullMethod, grpcmeta.SessionIDFromContext(ctx), started, err)
		return err
	}
}

func logCall(ctx context.Context, logf Logf, method, sessionID string, started time.Time, err error) {
	caller, _ := requestctx.CallerFromContext(ctx)
	line := "grpc method=" + method +
		" code=" + status.Code(err).String() +
		" duration=" + time.Since(started).Round(time.Microsecond).String()
	if sessionID != "" {
		line += " session_id=" + sessionID
	}
	if caller.UserID != "" {
		line += " user_id=" + caller.UserID + " role=" + caller.Role
	}
	if requestID := grpcmeta.RequestIDFromContext(ctx); requestID != "" {
		line += " request_id=" + requestID
	}
	if fields := platformotel.LogFields(ctx); fields != "" {
		line += " " + fields
	}
	if err != nil {
		line += " err=" + quote(status.Convert(err).Message())
	}
	logf("%s", line)
}

// sessionScope reads session_id from a Struct request, falling back to the
// routing header.
func sessionScope(ctx context.Context, req any) string {
	if in, ok := req.(*structpb.Struct); ok {
		if v, ok := in.GetFields()["session_id"]; ok {
			if id := strings.TrimSpace(v.GetStringValue()); id != "" {
				return id
			}
		}
	}
	return grpcmeta.SessionIDFromContext(ctx)
}

func quote(s string) string {
	if strings.ContainsAny(s, " \t\"") {
		return `"` + strings.ReplaceAll(s, `"`, `'`) + `"`
	}
	return s
}
