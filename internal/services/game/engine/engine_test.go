package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/session"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/storage"
)

func TestNewRequiresStore(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrStoreRequired) {
		t.Fatalf("err = %v", err)
	}
}

func TestCreateSessionAndLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	host := Caller{UserID: hostID}

	agg, err := h.engine.CreateSession(ctx, host, CreateSessionInput{Quest: json.RawMessage(`{"title":"Crypt"}`)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if agg.Session.Status != session.StatusWaiting || agg.Session.InviteCode != "ABC234" || agg.Version != 1 {
		t.Fatalf("created = %+v version=%d", agg.Session, agg.Version)
	}

	if _, err := h.engine.StartSession(ctx, Caller{UserID: playerOne}, agg.Session.ID); err == nil {
		t.Fatal("expected player start to fail")
	} else {
		assertCode(t, err, apperrors.CodeNotHost)
	}
	started, err := h.engine.StartSession(ctx, host, agg.Session.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.Session.Status != session.StatusActive || started.Version != 2 {
		t.Fatalf("started = %s v%d", started.Session.Status, started.Version)
	}
	_, err = h.engine.StartSession(ctx, host, agg.Session.ID)
	assertCode(t, err, apperrors.CodeSessionInvalidTransition)

	if _, err := h.engine.CompleteSession(ctx, host, agg.Session.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	_, err = h.engine.RollInitiative(ctx, host, agg.Session.ID)
	assertCode(t, err, apperrors.CodeSessionClosed)

	if len(h.notifier.events) != 3 {
		t.Fatalf("notifications = %d, want 3", len(h.notifier.events))
	}
}

func TestCreateSessionRejectsBadQuest(t *testing.T) {
	h := newHarness(t)
	_, err := h.engine.CreateSession(context.Background(), Caller{UserID: hostID}, CreateSessionInput{Quest: json.RawMessage(`{`)})
	assertCode(t, err, apperrors.CodeSessionInvalidQuest)
}

func TestDeleteSession(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	ctx := context.Background()

	err := h.engine.DeleteSession(ctx, Caller{UserID: playerOne}, sessionID)
	assertCode(t, err, apperrors.CodeNotHost)
	if err := h.engine.DeleteSession(ctx, Caller{UserID: hostID}, sessionID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = h.engine.GetState(ctx, Caller{UserID: hostID}, sessionID)
	assertCode(t, err, apperrors.CodeSessionNotFound)
}

func TestMutateRetriesVersionConflicts(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	h.store.conflicts = 2

	if _, err := h.engine.RollInitiative(context.Background(), Caller{UserID: hostID}, sessionID); err != nil {
		t.Fatalf("roll initiative: %v", err)
	}
	if h.store.saves != 3 {
		t.Fatalf("saves = %d, want 3", h.store.saves)
	}
	if got := h.store.get(t, sessionID).Version; got != 2 {
		t.Fatalf("version = %d, want 2", got)
	}
}

func TestMutateGivesUpAfterMaxTries(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	h.store.conflicts = DefaultMaxTries + 1

	_, err := h.engine.RollInitiative(context.Background(), Caller{UserID: hostID}, sessionID)
	if !errors.Is(err, storage.ErrVersionConflict) {
		t.Fatalf("err = %v, want version conflict", err)
	}
	if h.store.saves != DefaultMaxTries {
		t.Fatalf("saves = %d, want %d", h.store.saves, DefaultMaxTries)
	}
	if len(h.activity.entries) != 0 || len(h.notifier.events) != 0 {
		t.Fatal("side effects ran for a failed mutation")
	}
}

func TestDomainErrorsAreNotRetried(t *testing.T) {
	h := newHarness(t)
	h.seed(t)

	_, err := h.engine.RollInitiative(context.Background(), Caller{UserID: playerOne}, sessionID)
	assertCode(t, err, apperrors.CodeNotHost)
	if h.store.saves != 0 {
		t.Fatalf("saves = %d, want 0", h.store.saves)
	}
}

func TestSideEffectFailuresAreSwallowed(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	h.activity.err = errors.New("log down")
	h.notifier.err = errors.New("hub down")

	state, err := h.engine.RollInitiative(context.Background(), Caller{UserID: hostID}, sessionID)
	if err != nil {
		t.Fatalf("roll initiative: %v", err)
	}
	if len(state.Order) != 3 {
		t.Fatalf("order = %d entries", len(state.Order))
	}
	if got := h.store.get(t, sessionID).Version; got != 2 {
		t.Fatalf("version = %d, want 2", got)
	}
}

func TestHostFlagIsTrusted(t *testing.T) {
	h := newHarness(t)
	h.seed(t)

	if _, err := h.engine.RollInitiative(context.Background(), Caller{UserID: "dm-2", Host: true}, sessionID); err != nil {
		t.Fatalf("roll initiative as flagged host: %v", err)
	}
}

func TestRollDice(t *testing.T) {
	h := newHarness(t, 3, 5)
	h.seed(t)
	ctx := context.Background()

	free, err := h.engine.RollDice(ctx, player, "", "2d6+1")
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if free.Total != 9 || free.Breakdown != "2d6 [3, 5] + 1 = 9" {
		t.Fatalf("roll = %+v", free)
	}
	if len(h.activity.entries) != 0 {
		t.Fatalf("free roll logged %d entries", len(h.activity.entries))
	}

	logged, err := h.engine.RollDice(ctx, player, sessionID, "d4")
	if err != nil {
		t.Fatalf("session roll: %v", err)
	}
	if logged.Total != 3 {
		t.Fatalf("total = %d, want 3", logged.Total)
	}
	if got := h.activity.types(); len(got) != 1 || got[0] != session.LogRoll {
		t.Fatalf("activity = %v", got)
	}
	if h.store.saves != 0 {
		t.Fatalf("saves = %d, want 0", h.store.saves)
	}

	_, err = h.engine.RollDice(ctx, player, "", "banana")
	assertCode(t, err, apperrors.CodeDiceInvalidNotation)
	_, err = h.engine.RollDice(ctx, player, "missing", "d4")
	assertCode(t, err, apperrors.CodeSessionNotFound)
}
