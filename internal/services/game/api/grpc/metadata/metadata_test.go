package metadata

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc/metadata"
)

func TestContextIDs(t *testing.T) {
	if RequestIDFromContext(nil) != "" || InvocationIDFromContext(nil) != "" {
		t.Fatal("nil context must carry no ids")
	}
	ctx := WithInvocationID(WithRequestID(nil, "req-1"), "inv-1")
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Fatalf("request id = %q", got)
	}
	if got := InvocationIDFromContext(ctx); got != "inv-1" {
		t.Fatalf("invocation id = %q", got)
	}
}

func TestPrintableFiltering(t *testing.T) {
	tests := map[string]bool{
		"":        false,
		"user-1":  true,
		"line\n":  false,
		"\x7f":    false,
		"ünicode": false,
	}
	for value, want := range tests {
		if got := IsPrintableASCII(value); got != want {
			t.Fatalf("IsPrintableASCII(%q) = %v, want %v", value, got, want)
		}
	}

	md := metadata.MD{"X-Tabletop-User-Id": {"\n", "user-1"}}
	if got := FirstMetadataValue(md, UserIDHeader); got != "user-1" {
		t.Fatalf("first value = %q", got)
	}
	if got := FirstMetadataValue(nil, UserIDHeader); got != "" {
		t.Fatalf("empty metadata value = %q", got)
	}
}

func TestIncomingAccessors(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(
		UserIDHeader, "user-1",
		RoleHeader, "host",
		SessionIDHeader, "session-1",
		LocaleHeader, "es-ES",
		AuthorizationKey, "Bearer abc.def",
	))

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"user", UserIDFromContext(ctx), "user-1"},
		{"role", RoleFromContext(ctx), "host"},
		{"session", SessionIDFromContext(ctx), "session-1"},
		{"locale", LocaleFromContext(ctx), "es-ES"},
		{"bearer", BearerTokenFromContext(ctx), "abc.def"},
		{"no metadata", UserIDFromContext(context.Background()), ""},
	}
	for _, tc := range tests {
		if tc.got != tc.want {
			t.Fatalf("%s = %q, want %q", tc.name, tc.got, tc.want)
		}
	}

	basic := metadata.NewIncomingContext(context.Background(), metadata.Pairs(AuthorizationKey, "Basic xyz"))
	if got := BearerTokenFromContext(basic); got != "" {
		t.Fatalf("basic auth read as bearer %q", got)
	}
}

func TestEnsureRequestMetadata(t *testing.T) {
	generate := func() (string, error) { return "generated", nil }

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(
		RequestIDHeader, "req-1",
		InvocationIDHeader, "inv-1",
	))
	updated, requestID, invocationID, err := ensureRequestMetadata(ctx, generate)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if requestID != "req-1" || invocationID != "inv-1" {
		t.Fatalf("ids = %s/%s", requestID, invocationID)
	}
	if RequestIDFromContext(updated) != "req-1" || InvocationIDFromContext(updated) != "inv-1" {
		t.Fatal("ids not stored in context")
	}

	updated, requestID, _, err = ensureRequestMetadata(context.Background(), generate)
	if err != nil {
		t.Fatalf("ensure without metadata: %v", err)
	}
	if requestID != "generated" || RequestIDFromContext(updated) != "generated" {
		t.Fatalf("request id = %q", requestID)
	}

	_, _, _, err = ensureRequestMetadata(context.Background(), func() (string, error) {
		return "", errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected generator error")
	}
}

func TestResponseHeaders(t *testing.T) {
	md := responseHeaders("req-1", "")
	if FirstMetadataValue(md, RequestIDHeader) != "req-1" || FirstMetadataValue(md, InvocationIDHeader) != "" {
		t.Fatalf("headers = %v", md)
	}
	md = responseHeaders("req-1", "inv-1")
	if FirstMetadataValue(md, InvocationIDHeader) != "inv-1" {
		t.Fatalf("headers = %v", md)
	}
}
