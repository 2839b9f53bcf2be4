package storage

import (
	"context"

	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/actor"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/session"
)

// ErrNotFound indicates a requested persistence record is missing.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// ErrVersionConflict indicates the stored aggregate moved past the version
// the caller loaded. Callers reload and retry.
var ErrVersionConflict = apperrors.New(apperrors.CodeVersionConflict, "session version conflict")

// Store persists session aggregates.
type Store interface {
	// CreateSession inserts a new aggregate and sets its Version to 1.
	CreateSession(ctx context.Context, agg *session.Aggregate) error
	// LoadSession returns the current aggregate or ErrNotFound.
	LoadSession(ctx context.Context, sessionID string) (*session.Aggregate, error)
	// SaveSession writes agg if the stored version still equals agg.Version,
	// then advances agg.Version. Otherwise it returns ErrVersionConflict.
	SaveSession(ctx context.Context, agg *session.Aggregate) error
	// DeleteSession removes the session and everything it owns.
	DeleteSession(ctx context.Context, sessionID string) error
}

// ActivityLog appends activity entries. The engine never reads them back.
type ActivityLog interface {
	AppendActivity(ctx context.Context, entry session.LogEntry) (session.LogEntry, error)
}

// ActivityQuery selects a page of a session's activity, newest first.
type ActivityQuery struct {
	SessionID string
	// Filter is an AIP-160 expression over type, actor_id, actor_name, seq
	// and ts.
	Filter    string
	PageSize  int
	PageToken string
}

// ActivityPage is one page of activity entries.
type ActivityPage struct {
	Entries       []session.LogEntry
	NextPageToken string
}

// ActivityReader serves the activity read path outside the engine.
type ActivityReader interface {
	ListActivity(ctx context.Context, query ActivityQuery) (ActivityPage, error)
}

// RosterReader reads the character and token projections written with each
// saved aggregate.
type RosterReader interface {
	// ListCharacters returns a session's characters. A non-empty ownerID
	// keeps only that user's characters.
	ListCharacters(ctx context.Context, sessionID, ownerID string) ([]*actor.Character, error)
	ListTokens(ctx context.Context, sessionID string) ([]*actor.Token, error)
}
