package auth

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/platform/requestctx"
	grpcmeta "github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/api/grpc/metadata"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var (
	testKey = []byte("table-secret")
	testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func incoming(pairs ...string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(pairs...))
}

func bearer(t *testing.T, key []byte, issuer, userID, role string, ttl time.Duration) context.Context {
	t.Helper()
	token, err := IssueToken(key, issuer, userID, role, ttl, testNow)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return incoming(grpcmeta.AuthorizationKey, "Bearer "+token)
}

func TestIdentifyFromHeaders(t *testing.T) {
	a := New(Config{})

	caller, err := a.Identify(incoming(grpcmeta.UserIDHeader, "u-1", grpcmeta.RoleHeader, "HOST"))
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	if caller.UserID != "u-1" || caller.Role != requestctx.RoleHost {
		t.Fatalf("caller = %+v", caller)
	}

	caller, err = a.Identify(incoming(grpcmeta.UserIDHeader, "u-2", grpcmeta.RoleHeader, "wizard"))
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	if caller.Role != requestctx.RolePlayer {
		t.Fatalf("unknown role mapped to %q", caller.Role)
	}

	_, err = a.Identify(context.Background())
	if !apperrors.IsCode(err, apperrors.CodeUnauthenticated) {
		t.Fatalf("err = %v", err)
	}
}

func TestIdentifyFromBearerToken(t *testing.T) {
	a := New(Config{SigningKey: testKey, Issuer: "tabletop", Now: func() time.Time { return testNow }})

	caller, err := a.Identify(bearer(t, testKey, "tabletop", "u-1", "host", time.Hour))
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	if caller.UserID != "u-1" || caller.Role != requestctx.RoleHost {
		t.Fatalf("caller = %+v", caller)
	}

	tests := []struct {
		name string
		ctx  context.Context
	}{
		{"no token", incoming(grpcmeta.UserIDHeader, "u-1")},
		{"wrong key", bearer(t, []byte("other"), "tabletop", "u-1", "host", time.Hour)},
		{"wrong issuer", bearer(t, testKey, "elsewhere", "u-1", "host", time.Hour)},
		{"expired", bearer(t, testKey, "tabletop", "u-1", "host", -time.Minute)},
		{"no subject", bearer(t, testKey, "tabletop", "", "host", time.Hour)},
		{"garbage", incoming(grpcmeta.AuthorizationKey, "Bearer not-a-jwt")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := a.Identify(tc.ctx); !apperrors.IsCode(err, apperrors.CodeUnauthenticated) {
				t.Fatalf("err = %v", err)
			}
		})
	}
}

func TestIssueTokenRequiresKey(t *testing.T) {
	if _, err := IssueToken(nil, "", "u-1", "player", 0, testNow); err == nil {
		t.Fatal("expected error")
	}
}

func TestUnaryInterceptorStoresCaller(t *testing.T) {
	a := New(Config{})
	interceptor := a.UnaryServerInterceptor()

	var seen requestctx.Caller
	handler := func(ctx context.Context, req any) (any, error) {
		seen, _ = requestctx.CallerFromContext(ctx)
		return "ok", nil
	}
	resp, err := interceptor(incoming(grpcmeta.UserIDHeader, "u-9"), nil, &grpc.UnaryServerInfo{}, handler)
	if err != nil || resp != "ok" {
		t.Fatalf("resp = %v, err = %v", resp, err)
	}
	if seen.UserID != "u-9" || seen.Role != requestctx.RolePlayer {
		t.Fatalf("caller = %+v", seen)
	}

	_, err = interceptor(context.Background(), nil, &grpc.UnaryServerInfo{}, handler)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("code = %v", status.Code(err))
	}
}
