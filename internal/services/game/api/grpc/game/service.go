package game

import (
	"context"
	"time"

	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/platform/requestctx"
	grpcmeta "github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/api/grpc/metadata"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/engine"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/notify"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/storage"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// handlerFunc serves one unary method.
type handlerFunc func(s *Service, ctx context.Context, caller engine.Caller, in *structpb.Struct) (any, error)

// Service implements TabletopServiceServer on top of an engine.
type Service struct {
	engine   *engine.Engine
	activity storage.ActivityReader
	roster   storage.RosterReader
	hub      *notify.Hub
	pageSize int
	clock    func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithActivityReader enables ListActivity.
func WithActivityReader(reader storage.ActivityReader) ServiceOption {
	return func(s *Service) { s.activity = reader }
}

// WithRosterReader enables ListRoster.
func WithRosterReader(reader storage.RosterReader) ServiceOption {
	return func(s *Service) { s.roster = reader }
}

// WithHub enables WatchSession.
func WithHub(hub *notify.Hub) ServiceOption {
	return func(s *Service) { s.hub = hub }
}

// WithDefaultPageSize sets the ListActivity page size used when a request
// names none.
func WithDefaultPageSize(size int) ServiceOption {
	return func(s *Service) { s.pageSize = size }
}

// WithClock replaces the clock used for watch snapshots.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService creates a Service.
func NewService(e *engine.Engine, opts ...ServiceOption) *Service {
	s := &Service{engine: e, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Invoke dispatches a unary method by name.
func (s *Service) Invoke(ctx context.Context, method string, in *structpb.Struct) (*structpb.Struct, error) {
	handler, ok := handlers[method]
	if !ok {
		return nil, status.Errorf(codes.Unimplemented, "method %s not implemented", method)
	}
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, handleDomainError(ctx, err)
	}
	result, err := handler(s, ctx, caller, in)
	if err != nil {
		return nil, handleDomainError(ctx, err)
	}
	out, err := EncodeStruct(result)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode %s response: %v", method, err)
	}
	return out, nil
}

// callerFrom converts the authenticated request caller for the engine.
func callerFrom(ctx context.Context) (engine.Caller, error) {
	caller, ok := requestctx.CallerFromContext(ctx)
	if !ok || caller.UserID == "" {
		return engine.Caller{}, apperrors.New(apperrors.CodeUnauthenticated, "caller identity is required")
	}
	return engine.Caller{UserID: caller.UserID, Host: caller.Role == requestctx.RoleHost}, nil
}

func handleDomainError(ctx context.Context, err error) error {
	return apperrors.HandleError(err, grpcmeta.LocaleFromContext(ctx))
}
