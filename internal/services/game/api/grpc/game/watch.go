package game

import (
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/notify"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ReasonSnapshot marks the first event of a watch, carrying the version
// the watcher starts from.
const ReasonSnapshot = "snapshot"

// WatchSession streams state-change events for one session until the
// client goes away or the session is deleted. Events may be dropped for slow watchers; each carries
// the session version so clients can refetch state.
func (s *Service) WatchSession(in *structpb.Struct, stream grpc.ServerStream) error {
	ctx := stream.Context()
	if s.hub == nil {
		return status.Error(codes.Unimplemented, "session watch is not configured")
	}
	caller, err := callerFrom(ctx)
	if err != nil {
		return handleDomainError(ctx, err)
	}
	var req sessionRequest
	if err := decodeRequest(in, &req); err != nil {
		return handleDomainError(ctx, err)
	}

	events, cancel := s.hub.Subscribe(req.SessionID)
	defer cancel()

	agg, err := s.engine.GetState(ctx, caller, req.SessionID)
	if err != nil {
		return handleDomainError(ctx, err)
	}
	snapshot := notify.Event{SessionID: req.SessionID, Reason: ReasonSnapshot, Version: agg.Version, At: s.clock().UTC()}
	if err := sendEvent(stream, snapshot); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			deleted := evt.Reason == notify.ReasonDeleted
			if evt.Version <= snapshot.Version && !deleted {
				continue
			}
			if err := sendEvent(stream, evt); err != nil {
				return err
			}
			if deleted {
				return nil
			}
		}
	}
}

func sendEvent(stream grpc.ServerStream, evt notify.Event) error {
	msg, err := EncodeStruct(evt)
	if err != nil {
		return status.Errorf(codes.Internal, "encode event: %v", err)
	}
	return stream.SendMsg(msg)
}
