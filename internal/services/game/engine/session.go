package engine

import (
	"context"
	"encoding/json"
	"errors"

	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/dice"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/grid"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/session"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/turn"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/notify"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/storage"
)

// CreateSessionInput describes a new session.
type CreateSessionInput struct {
	Quest json.RawMessage `json:"quest,omitempty"`
	Map   *grid.Map       `json:"map,omitempty"`
}

// CreateSession opens a waiting session hosted by the caller.
func (e *Engine) CreateSession(ctx context.Context, caller Caller, in CreateSessionInput) (agg *session.Aggregate, err error) {
	ctx, span := e.start(ctx, "create_session", "")
	defer func() { finish(span, err) }()

	if caller.UserID == "" {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "host id is required")
	}
	if err := session.ValidateQuest(in.Quest); err != nil {
		return nil, err
	}
	if in.Map != nil {
		if err := in.Map.Validate(); err != nil {
			return nil, err
		}
	}
	sessionID, err := e.newID()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnknown, "generate session id", err)
	}
	code, err := e.invite()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnknown, "generate invite code", err)
	}

	now := e.now().UTC()
	agg = &session.Aggregate{
		Session: session.Session{
			ID:         sessionID,
			InviteCode: code,
			HostID:     caller.UserID,
			Status:     session.StatusWaiting,
			Quest:      in.Quest,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
	}
	if in.Map != nil {
		agg.Map = in.Map.Clone()
		agg.Session.MapID = in.Map.ID
	}
	if err := e.store.CreateSession(ctx, agg); err != nil {
		return nil, err
	}
	e.publish(ctx, agg, "create_session", []record{{
		logType: session.LogSession,
		text:    "session created",
		data:    map[string]string{"host_id": caller.UserID, "invite_code": code},
	}})
	return agg, nil
}

// StartSession moves a waiting session to active.
func (e *Engine) StartSession(ctx context.Context, caller Caller, sessionID string) (*session.Aggregate, error) {
	return e.setStatus(ctx, caller, sessionID, "start_session", session.StatusActive)
}

// CompleteSession ends an active session.
func (e *Engine) CompleteSession(ctx context.Context, caller Caller, sessionID string) (*session.Aggregate, error) {
	return e.setStatus(ctx, caller, sessionID, "complete_session", session.StatusCompleted)
}

// CancelSession abandons a waiting or active session.
func (e *Engine) CancelSession(ctx context.Context, caller Caller, sessionID string) (*session.Aggregate, error) {
	return e.setStatus(ctx, caller, sessionID, "cancel_session", session.StatusCancelled)
}

func (e *Engine) setStatus(ctx context.Context, caller Caller, sessionID, op string, to session.Status) (*session.Aggregate, error) {
	return e.mutate(ctx, op, sessionID, func(agg *session.Aggregate, _ dice.Source) ([]record, error) {
		if err := e.requireHost(agg, caller); err != nil {
			return nil, err
		}
		from := agg.Session.Status
		if err := session.Transition(from, to); err != nil {
			return nil, err
		}
		agg.Session.Status = to
		if to.Closed() {
			turn.ClearOrder(&agg.Turn)
		}
		return []record{{
			logType: session.LogSession,
			text:    "session " + string(to),
			data:    map[string]string{"from": string(from), "to": string(to)},
		}}, nil
	})
}

// DeleteSession removes the session and everything it owns.
func (e *Engine) DeleteSession(ctx context.Context, caller Caller, sessionID string) (err error) {
	ctx, span := e.start(ctx, "delete_session", sessionID)
	defer func() { finish(span, err) }()

	agg, err := e.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := e.requireHost(agg, caller); err != nil {
		return err
	}
	if err := e.store.DeleteSession(ctx, sessionID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}
	e.announce(ctx, sessionID, notify.ReasonDeleted, agg.Version)
	return nil
}
