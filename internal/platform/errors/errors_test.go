package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors/i18n"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var allCodes = []Code{
	CodeNotFound, CodeForbidden, CodeInvalidInput, CodeStateConflict, CodeAlreadyExists,
	CodeSessionNotFound, CodeCharacterNotFound, CodeTokenNotFound, CodeTargetNotFound, CodeMapNotSet,
	CodeNotHost, CodeNotOwner, CodeNotYourTurn, CodeUnauthenticated,
	CodeDiceInvalidNotation, CodeDiceInvalidSides, CodeSessionInvalidQuest, CodeCharacterEmptyName,
	CodeCharacterInvalidStats, CodeTokenInvalidKind, CodeMapInvalidDimensions, CodePositionOutOfBounds,
	CodeSpellUnknown, CodeSpellUnsupported, CodeAbilityUnknown, CodeActivityFilterInvalid, CodeActivityPageTokenBad,
	CodeInitiativeNoCombatants,
	CodeSessionInvalidTransition, CodeSessionClosed, CodeTurnPaused, CodeNoActiveTurn, CodeNotInInitiative,
	CodeAlreadyInInitiative, CodeTargetUnconscious, CodeActorUnconscious, CodeInsufficientActionPoints,
	CodeInsufficientMovement, CodeNoPath, CodeTileOccupied, CodeVersionConflict,
}

func TestEveryCodeHasKindAndMessage(t *testing.T) {
	cat := i18n.GetCatalog(DefaultLocale)
	for _, code := range allCodes {
		if code.Kind() == KindInternal {
			t.Fatalf("code %s has no kind", code)
		}
		if !cat.Has(string(code)) {
			t.Fatalf("code %s has no en-US message", code)
		}
	}
}

func TestGRPCCodeMapping(t *testing.T) {
	tests := []struct {
		code Code
		want codes.Code
	}{
		{CodeSessionNotFound, codes.NotFound},
		{CodeNotHost, codes.PermissionDenied},
		{CodeDiceInvalidNotation, codes.InvalidArgument},
		{CodeTurnPaused, codes.PermissionDenied},
		{CodeTargetUnconscious, codes.FailedPrecondition},
		{CodeSpellUnknown, codes.NotFound},
		{CodeVersionConflict, codes.Aborted},
		{CodeAlreadyExists, codes.AlreadyExists},
		{CodeUnauthenticated, codes.Unauthenticated},
		{CodeUnknown, codes.Internal},
	}
	for _, tt := range tests {
		if got := tt.code.GRPCCode(); got != tt.want {
			t.Fatalf("%s: GRPCCode = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("move: %w", New(CodeNoPath, "blocked"))
	if !errors.Is(err, New(CodeNoPath, "")) {
		t.Fatal("expected errors.Is to match by code")
	}
	if errors.Is(err, New(CodeNotHost, "")) {
		t.Fatal("expected different codes not to match")
	}
	if GetCode(err) != CodeNoPath {
		t.Fatalf("GetCode = %s", GetCode(err))
	}
	if KindOf(err) != KindStateConflict {
		t.Fatalf("KindOf = %s", KindOf(err))
	}
	if KindOf(errors.New("plain")) != KindInternal {
		t.Fatal("expected foreign errors to be internal")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(CodeStateConflict, "save session", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
}

func TestHandleErrorAttachesDetails(t *testing.T) {
	err := WithMetadata(CodeInsufficientActionPoints, "need 2 ap", map[string]string{"Required": "2", "Available": "0"})
	st, ok := status.FromError(HandleError(err, ""))
	if !ok {
		t.Fatal("expected gRPC status")
	}
	if st.Code() != codes.FailedPrecondition {
		t.Fatalf("code = %v", st.Code())
	}
	if st.Message() != "need 2 ap" {
		t.Fatalf("message = %q", st.Message())
	}

	var info *errdetails.ErrorInfo
	var localized *errdetails.LocalizedMessage
	for _, detail := range st.Details() {
		switch d := detail.(type) {
		case *errdetails.ErrorInfo:
			info = d
		case *errdetails.LocalizedMessage:
			localized = d
		}
	}
	if info == nil || info.GetReason() != string(CodeInsufficientActionPoints) || info.GetDomain() != Domain {
		t.Fatalf("unexpected error info %+v", info)
	}
	if localized == nil || localized.GetMessage() != "Not enough action points: need 2, have 0" {
		t.Fatalf("unexpected localized message %+v", localized)
	}
}

func TestHandleErrorPassesThroughStatus(t *testing.T) {
	in := status.Error(codes.Unavailable, "down")
	if got := HandleError(in, "en-US"); status.Code(got) != codes.Unavailable {
		t.Fatalf("expected status passthrough, got %v", got)
	}
}

func TestHandleErrorUnknown(t *testing.T) {
	if HandleError(nil, "") != nil {
		t.Fatal("expected nil for nil error")
	}
	if got := status.Code(HandleError(errors.New("boom"), "")); got != codes.Internal {
		t.Fatalf("expected internal, got %v", got)
	}
}
