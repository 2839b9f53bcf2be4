package game

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "game.v1.TabletopService"

// Method names of TabletopService.
const (
	MethodCreateSession        = "CreateSession"
	MethodGetState             = "GetState"
	MethodStartSession         = "StartSession"
	MethodCompleteSession      = "CompleteSession"
	MethodCancelSession        = "CancelSession"
	MethodDeleteSession        = "DeleteSession"
	MethodAddCharacter         = "AddCharacter"
	MethodUpdateCharacter      = "UpdateCharacter"
	MethodDeleteCharacter      = "DeleteCharacter"
	MethodPlaceToken           = "PlaceToken"
	MethodRemoveToken          = "RemoveToken"
	MethodSetMap               = "SetMap"
	MethodPatchTile            = "PatchTile"
	MethodRollInitiative       = "RollInitiative"
	MethodStartTurn            = "StartTurn"
	MethodEndTurn              = "EndTurn"
	MethodUpdateTurn           = "UpdateTurn"
	MethodInterruptTurn        = "InterruptTurn"
	MethodResumeTurn           = "ResumeTurn"
	MethodAddToInitiative      = "AddToInitiative"
	MethodRemoveFromInitiative = "RemoveFromInitiative"
	MethodClearInitiative      = "ClearInitiative"
	MethodMoveToken            = "MoveToken"
	MethodBasicAttack          = "BasicAttack"
	MethodCastSpell            = "CastSpell"
	MethodApplyDamage          = "ApplyDamage"
	MethodApplyHealing         = "ApplyHealing"
	MethodPerceptionCheck      = "PerceptionCheck"
	MethodAbilityCheck         = "AbilityCheck"
	MethodRollDice             = "RollDice"
	MethodListActivity         = "ListActivity"
	MethodListRoster           = "ListRoster"
	MethodWatchSession         = "WatchSession"
)

// FullMethod returns the gRPC path of a method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// TabletopServiceServer is the server API for TabletopService.
type TabletopServiceServer interface {
	Invoke(ctx context.Context, method string, in *structpb.Struct) (*structpb.Struct, error)
	WatchSession(in *structpb.Struct, stream grpc.ServerStream) error
}

// ServiceDesc describes TabletopService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TabletopServiceServer)(nil),
	Methods:     unaryMethods(),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    MethodWatchSession,
			Handler:       watchSessionHandler,
			ServerStreams: true,
		},
	},
	Metadata: "game/v1/tabletop.proto",
}

// RegisterTabletopServiceServer registers srv on r.
func RegisterTabletopServiceServer(r grpc.ServiceRegistrar, srv TabletopServiceServer) {
	r.RegisterService(&ServiceDesc, srv)
}

func unaryMethods() []grpc.MethodDesc {
	names := []string{
		MethodCreateSession, MethodGetState, MethodStartSession, MethodCompleteSession,
		MethodCancelSession, MethodDeleteSession,
		MethodAddCharacter, MethodUpdateCharacter, MethodDeleteCharacter,
		MethodPlaceToken, MethodRemoveToken, MethodSetMap, MethodPatchTile,
		MethodRollInitiative, MethodStartTurn, MethodEndTurn, MethodUpdateTurn,
		MethodInterruptTurn, MethodResumeTurn, MethodAddToInitiative,
		MethodRemoveFromInitiative, MethodClearInitiative,
		MethodMoveToken, MethodBasicAttack, MethodCastSpell, MethodApplyDamage,
		MethodApplyHealing, MethodPerceptionCheck, MethodAbilityCheck, MethodRollDice,
		MethodListActivity, MethodListRoster,
	}
	out := make([]grpc.MethodDesc, len(names))
	for i, name := range names {
		out[i] = grpc.MethodDesc{MethodName: name, Handler: unaryHandler(name)}
	}
	return out
}

func unaryHandler(method string) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return srv.(TabletopServiceServer).Invoke(ctx, method, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return srv.(TabletopServiceServer).Invoke(ctx, method, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func watchSessionHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(TabletopServiceServer).WatchSession(in, stream)
}
