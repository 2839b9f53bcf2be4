// Package auth resolves the caller of a game service request.
//
// With a signing key configured, callers present an HS256 bearer token whose
// subject is the user id and whose role claim is "host" or "player". Without
// one the x-tabletop-user-id and x-tabletop-role headers are trusted as-is,
// which suits local play and the bundled MCP bridge.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/platform/requestctx"
	grpcmeta "github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/api/grpc/metadata"
	"google.golang.org/grpc"
)

// Config controls caller resolution.
type Config struct {
	SigningKey []byte
	// Issuer, when set, must match the token's iss claim.
	Issuer string
	Now    func() time.Time
}

// Claims is the bearer token payload.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// Authenticator turns request metadata into a requestctx.Caller.
type Authenticator struct {
	cfg Config
}

// New returns an Authenticator for cfg.
func New(cfg Config) *Authenticator {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Authenticator{cfg: cfg}
}

// Identify resolves the caller of ctx.
func (a *Authenticator) Identify(ctx context.Context) (requestctx.Caller, error) {
	if len(a.cfg.SigningKey) == 0 {
		userID := strings.TrimSpace(grpcmeta.UserIDFromContext(ctx))
		if userID == "" {
			return requestctx.Caller{}, apperrors.New(apperrors.CodeUnauthenticated, "user id header is required")
		}
		return requestctx.Caller{UserID: userID, Role: normalizeRole(grpcmeta.RoleFromContext(ctx))}, nil
	}

	raw := grpcmeta.BearerTokenFromContext(ctx)
	if raw == "" {
		return requestctx.Caller{}, apperrors.New(apperrors.CodeUnauthenticated, "bearer token is required")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.cfg.Now),
	}
	if a.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.cfg.Issuer))
	}
	var claims Claims
	if _, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return a.cfg.SigningKey, nil
	}, opts...); err != nil {
		return requestctx.Caller{}, mapJWTError(err)
	}
	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return requestctx.Caller{}, apperrors.New(apperrors.CodeUnauthenticated, "token subject is required")
	}
	return requestctx.Caller{UserID: subject, Role: normalizeRole(claims.Role)}, nil
}

// IssueToken signs a bearer token for userID. A zero ttl never expires.
func IssueToken(key []byte, issuer, userID, role string, ttl time.Duration, now time.Time) (string, error) {
	if len(key) == 0 {
		return "", errors.New("signing key is required")
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			Issuer:   issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
		Role: normalizeRole(role),
	}
	if ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// UnaryServerInterceptor rejects unidentified calls and stores the caller
// in the request context.
func (a *Authenticator) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		caller, err := a.Identify(ctx)
		if err != nil {
			return nil, apperrors.HandleError(err, grpcmeta.LocaleFromContext(ctx))
		}
		return handler(requestctx.WithCaller(ctx, caller), req)
	}
}

// StreamServerInterceptor is UnaryServerInterceptor for streams.
func (a *Authenticator) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, stream grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx := stream.Context()
		caller, err := a.Identify(ctx)
		if err != nil {
			return apperrors.HandleError(err, grpcmeta.LocaleFromContext(ctx))
		}
		return handler(srv, &grpcmeta.WrappedServerStream{ServerStream: stream, Ctx: requestctx.WithCaller(ctx, caller)})
	}
}

func normalizeRole(role string) string {
	if strings.EqualFold(strings.TrimSpace(role), requestctx.RoleHost) {
		return requestctx.RoleHost
	}
	return requestctx.RolePlayer
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperrors.Wrap(apperrors.CodeUnauthenticated, "token is expired", err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return apperrors.Wrap(apperrors.CodeUnauthenticated, "token signature is invalid", err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return apperrors.Wrap(apperrors.CodeUnauthenticated, "token issuer mismatch", err)
	default:
		return apperrors.Wrap(apperrors.CodeUnauthenticated, "token is invalid", err)
	}
}
