// Package requestctx carries the authenticated caller through a request.
package requestctx

import "context"

// Role values recognized by the game service.
const (
	RolePlayer = "player"
	RoleHost   = "host"
)

// Caller identifies who issued a request.
type Caller struct {
	UserID string
	Role   string
}

type callerContextKey struct{}

// WithCaller stores the caller in ctx.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, callerContextKey{}, caller)
}

// CallerFromContext returns the caller stored in ctx and whether one exists.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	if ctx == nil {
		return Caller{}, false
	}
	caller, ok := ctx.Value(callerContextKey{}).(Caller)
	return caller, ok
}

// UserIDFromContext returns the caller's user id, or "" when absent.
func UserIDFromContext(ctx context.Context) string {
	caller, _ := CallerFromContext(ctx)
	return caller.UserID
}
