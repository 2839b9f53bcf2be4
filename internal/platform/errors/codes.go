// Package errors provides structured domain errors with localized messages.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

// Kind groups codes into the failure classes callers branch on.
type Kind string

const (
	KindNotFound      Kind = "not_found"
	KindForbidden     Kind = "forbidden"
	KindInvalidInput  Kind = "invalid_input"
	KindStateConflict Kind = "state_conflict"
	KindInternal      Kind = "internal"
)

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Generic codes, one per kind.
	CodeNotFound      Code = "NOT_FOUND"
	CodeForbidden     Code = "FORBIDDEN"
	CodeInvalidInput  Code = "INVALID_INPUT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeAlreadyExists Code = "ALREADY_EXISTS"

	// Lookup failures
	CodeSessionNotFound   Code = "SESSION_NOT_FOUND"
	CodeCharacterNotFound Code = "CHARACTER_NOT_FOUND"
	CodeTokenNotFound     Code = "TOKEN_NOT_FOUND"
	CodeTargetNotFound    Code = "TARGET_NOT_FOUND"
	CodeMapNotSet         Code = "MAP_NOT_SET"
	CodeSpellUnknown      Code = "SPELL_UNKNOWN"

	// Authorization
	CodeNotHost     Code = "NOT_HOST"
	CodeNotOwner    Code = "NOT_OWNER"
	CodeNotYourTurn Code = "NOT_YOUR_TURN"
	CodeTurnPaused  Code = "TURN_PAUSED"

	// CodeUnauthenticated means the call carried no usable identity.
	CodeUnauthenticated Code = "UNAUTHENTICATED"

	// Input validation
	CodeDiceInvalidNotation    Code = "DICE_INVALID_NOTATION"
	CodeDiceInvalidSides       Code = "DICE_INVALID_SIDES"
	CodeSessionInvalidQuest    Code = "SESSION_INVALID_QUEST"
	CodeCharacterEmptyName     Code = "CHARACTER_EMPTY_NAME"
	CodeCharacterInvalidStats  Code = "CHARACTER_INVALID_STATS"
	CodeTokenInvalidKind       Code = "TOKEN_INVALID_KIND"
	CodeMapInvalidDimensions   Code = "MAP_INVALID_DIMENSIONS"
	CodePositionOutOfBounds    Code = "POSITION_OUT_OF_BOUNDS"
	CodeSpellUnsupported       Code = "SPELL_UNSUPPORTED"
	CodeAbilityUnknown         Code = "ABILITY_UNKNOWN"
	CodeActivityFilterInvalid  Code = "ACTIVITY_FILTER_INVALID"
	CodeActivityPageTokenBad   Code = "ACTIVITY_PAGE_TOKEN_INVALID"
	CodeInitiativeNoCombatants Code = "INITIATIVE_NO_COMBATANTS"

	// State conflicts
	CodeSessionInvalidTransition Code = "SESSION_INVALID_STATUS_TRANSITION"
	CodeSessionClosed            Code = "SESSION_CLOSED"
	CodeNoActiveTurn             Code = "NO_ACTIVE_TURN"
	CodeNotInInitiative          Code = "NOT_IN_INITIATIVE"
	CodeAlreadyInInitiative      Code = "ALREADY_IN_INITIATIVE"
	CodeTargetUnconscious        Code = "TARGET_UNCONSCIOUS"
	CodeActorUnconscious         Code = "ACTOR_UNCONSCIOUS"
	CodeInsufficientActionPoints Code = "INSUFFICIENT_ACTION_POINTS"
	CodeInsufficientMovement     Code = "INSUFFICIENT_MOVEMENT"
	CodeNoPath                   Code = "NO_PATH"
	CodeTileOccupied             Code = "TILE_OCCUPIED"
	CodeVersionConflict          Code = "VERSION_CONFLICT"
)

// Kind reports the failure class of the code.
func (c Code) Kind() Kind {
	switch c {
	case CodeNotFound,
		CodeSessionNotFound,
		CodeCharacterNotFound,
		CodeTokenNotFound,
		CodeTargetNotFound,
		CodeMapNotSet,
		CodeSpellUnknown:
		return KindNotFound

	case CodeForbidden,
		CodeNotHost,
		CodeNotOwner,
		CodeNotYourTurn,
		CodeTurnPaused,
		CodeUnauthenticated:
		return KindForbidden

	case CodeInvalidInput,
		CodeDiceInvalidNotation,
		CodeDiceInvalidSides,
		CodeSessionInvalidQuest,
		CodeCharacterEmptyName,
		CodeCharacterInvalidStats,
		CodeTokenInvalidKind,
		CodeMapInvalidDimensions,
		CodePositionOutOfBounds,
		CodeSpellUnsupported,
		CodeAbilityUnknown,
		CodeActivityFilterInvalid,
		CodeActivityPageTokenBad,
		CodeInitiativeNoCombatants:
		return KindInvalidInput

	case CodeStateConflict,
		CodeAlreadyExists,
		CodeSessionInvalidTransition,
		CodeSessionClosed,
		CodeNoActiveTurn,
		CodeNotInInitiative,
		CodeAlreadyInInitiative,
		CodeTargetUnconscious,
		CodeActorUnconscious,
		CodeInsufficientActionPoints,
		CodeInsufficientMovement,
		CodeNoPath,
		CodeTileOccupied,
		CodeVersionConflict:
		return KindStateConflict

	default:
		return KindInternal
	}
}

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeAlreadyExists:
		return codes.AlreadyExists
	case CodeVersionConflict:
		return codes.Aborted
	case CodeUnauthenticated:
		return codes.Unauthenticated
	}
	switch c.Kind() {
	case KindNotFound:
		return codes.NotFound
	case KindForbidden:
		return codes.PermissionDenied
	case KindInvalidInput:
		return codes.InvalidArgument
	case KindStateConflict:
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}
