package engine

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/cenkalti/backoff/v5"
	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/platform/id"
	platformotel "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/otel"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/random"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/actor"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/dice"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/session"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/notify"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMaxTries bounds the load-compute-save attempts of one call.
const DefaultMaxTries = 5

const tracerName = "github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/engine"

// ErrStoreRequired indicates a missing session store.
var ErrStoreRequired = errors.New("session store is required")

// Caller identifies who issued an operation. Host is asserted by the auth
// layer; the session's own host is recognized without it.
type Caller struct {
	UserID string
	Host   bool
}

// SourceFunc returns the dice source for one resolution attempt.
type SourceFunc func() (dice.Source, error)

// Engine runs session operations against a store.
type Engine struct {
	store    storage.Store
	activity storage.ActivityLog
	notifier notify.Notifier
	source   SourceFunc
	now      func() time.Time
	newID    func() (string, error)
	invite   func() (string, error)
	critical dice.CriticalMode
	maxTries uint
	policy   func() backoff.BackOff
	tracer   trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithActivityLog sets where activity entries are appended.
func WithActivityLog(activity storage.ActivityLog) Option {
	return func(e *Engine) { e.activity = activity }
}

// WithNotifier sets who hears about state changes.
func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithDice replaces the dice source factory.
func WithDice(source SourceFunc) Option {
	return func(e *Engine) {
		if source != nil {
			e.source = source
		}
	}
}

// WithSeed draws a fresh seeded source per attempt from seed.
func WithSeed(seed random.SeedFunc) Option {
	return func(e *Engine) {
		if seed != nil {
			e.source = seededSource(seed)
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDs replaces the identifier generators for records and invite codes.
func WithIDs(newID, invite func() (string, error)) Option {
	return func(e *Engine) {
		if newID != nil {
			e.newID = newID
		}
		if invite != nil {
			e.invite = invite
		}
	}
}

// WithCriticalMode selects how critical hits scale damage.
func WithCriticalMode(mode dice.CriticalMode) Option {
	return func(e *Engine) {
		if mode != "" {
			e.critical = mode
		}
	}
}

// WithMaxTries bounds the attempts made when saves race.
func WithMaxTries(n uint) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxTries = n
		}
	}
}

// WithBackOff replaces the retry delay policy. The factory runs once per
// call.
func WithBackOff(policy func() backoff.BackOff) Option {
	return func(e *Engine) {
		if policy != nil {
			e.policy = policy
		}
	}
}

// New builds an Engine over store.
func New(store storage.Store, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	e := &Engine{
		store:    store,
		source:   seededSource(random.NewSeed),
		now:      time.Now,
		newID:    id.NewID,
		invite:   id.NewInviteCode,
		critical: dice.CriticalDouble,
		maxTries: DefaultMaxTries,
		policy:   defaultBackOff,
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

func seededSource(seed random.SeedFunc) SourceFunc {
	return func() (dice.Source, error) {
		s, err := seed()
		if err != nil {
			return nil, err
		}
		return dice.NewSource(s), nil
	}
}

func defaultBackOff() backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 5 * time.Millisecond
	policy.MaxInterval = 100 * time.Millisecond
	return policy
}

// record is an activity entry drafted during a mutation.
type record struct {
	logType session.LogType
	actor   actor.Actor
	text    string
	data    any
}

// mutation computes the next aggregate in place and drafts its activity.
type mutation func(agg *session.Aggregate, src dice.Source) ([]record, error)

// errUnchanged ends a mutation without saving. Its records are still logged.
var errUnchanged = errors.New("aggregate unchanged")

func (e *Engine) start(ctx context.Context, op, sessionID string) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, "engine."+op, trace.WithAttributes(
		attribute.String("game.session_id", sessionID),
	))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (e *Engine) load(ctx context.Context, sessionID string) (*session.Aggregate, error) {
	if sessionID == "" {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "session id is required")
	}
	agg, err := e.store.LoadSession(ctx, sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperrors.WithMetadata(apperrors.CodeSessionNotFound, "session not found",
			map[string]string{"SessionID": sessionID})
	}
	if err != nil {
		return nil, err
	}
	return agg, nil
}

// mutate runs fn on a fresh copy of the session and saves the result,
// retrying from the load when another writer won the race. When fn returns
// errUnchanged nothing is saved and the stored session is returned.
func (e *Engine) mutate(ctx context.Context, op, sessionID string, fn mutation) (agg *session.Aggregate, err error) {
	ctx, span := e.start(ctx, op, sessionID)
	defer func() { finish(span, err) }()

	var (
		records []record
		saved   bool
	)
	attempt := func() (*session.Aggregate, error) {
		current, err := e.load(ctx, sessionID)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		src, err := e.source()
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		next := current.Clone()
		records, err = fn(next, src)
		if errors.Is(err, errUnchanged) {
			saved = false
			return current, nil
		}
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		next.Session.UpdatedAt = e.now().UTC()
		if err := e.store.SaveSession(ctx, next); err != nil {
			if errors.Is(err, storage.ErrVersionConflict) {
				log.Printf("session save conflict: session=%s op=%s version=%d", sessionID, op, current.Version)
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		saved = true
		return next, nil
	}

	agg, err = backoff.Retry(ctx, attempt,
		backoff.WithBackOff(e.policy()),
		backoff.WithMaxTries(e.maxTries),
	)
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("game.session_version", agg.Version))
	if !saved {
		e.appendActivity(ctx, agg.Session.ID, records)
		return agg, nil
	}
	e.publish(ctx, agg, op, records)
	return agg, nil
}

// observe runs fn against the stored session without saving it. Dice rolls
// use it: they log but change nothing.
func (e *Engine) observe(ctx context.Context, op, sessionID string, fn mutation) (agg *session.Aggregate, err error) {
	ctx, span := e.start(ctx, op, sessionID)
	defer func() { finish(span, err) }()

	agg, err = e.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	src, err := e.source()
	if err != nil {
		return nil, err
	}
	records, err := fn(agg.Clone(), src)
	if err != nil {
		return nil, err
	}
	e.appendActivity(ctx, agg.Session.ID, records)
	return agg, nil
}

// publish runs the side effects of a saved mutation. Failures are logged
// and dropped.
func (e *Engine) publish(ctx context.Context, agg *session.Aggregate, op string, records []record) {
	e.appendActivity(ctx, agg.Session.ID, records)
	e.announce(ctx, agg.Session.ID, op, agg.Version)
}

func (e *Engine) appendActivity(ctx context.Context, sessionID string, records []record) {
	if e.activity == nil {
		return
	}
	for _, r := range records {
		entry := session.LogEntry{
			SessionID:   sessionID,
			Type:        r.logType,
			Timestamp:   e.now().UTC(),
			Description: r.text,
		}
		if r.actor != nil {
			entry.ActorID = r.actor.EntityID()
			entry.ActorName = r.actor.Label()
		}
		if r.data != nil {
			data, err := json.Marshal(r.data)
			if err != nil {
				log.Printf("activity encode failed: session=%s type=%s err=%v", sessionID, r.logType, err)
			} else {
				entry.Data = data
			}
		}
		if _, err := e.activity.AppendActivity(ctx, entry); err != nil {
			log.Printf("activity append failed: session=%s type=%s err=%v %s",
				sessionID, r.logType, err, platformotel.LogFields(ctx))
		}
	}
}

func (e *Engine) announce(ctx context.Context, sessionID, reason string, version int64) {
	if e.notifier == nil {
		return
	}
	evt := notify.Event{SessionID: sessionID, Reason: reason, Version: version, At: e.now().UTC()}
	if err := e.notifier.SessionChanged(ctx, evt); err != nil {
		log.Printf("notify failed: session=%s reason=%s err=%v %s",
			sessionID, reason, err, platformotel.LogFields(ctx))
	}
}

func (e *Engine) isHost(agg *session.Aggregate, caller Caller) bool {
	return caller.Host || agg.IsHost(caller.UserID)
}

func (e *Engine) requireHost(agg *session.Aggregate, caller Caller) error {
	if e.isHost(agg, caller) {
		return nil
	}
	return apperrors.WithMetadata(apperrors.CodeNotHost, "caller is not the session host",
		map[string]string{"SessionID": agg.Session.ID})
}

// requireControl passes hosts and the owner of entityID.
func (e *Engine) requireControl(agg *session.Aggregate, caller Caller, entityID string) error {
	if e.isHost(agg, caller) || agg.Owns(caller.UserID, entityID) {
		return nil
	}
	return apperrors.WithMetadata(apperrors.CodeNotOwner, "caller does not control this actor",
		map[string]string{"EntityID": entityID})
}

func requireOpen(agg *session.Aggregate) error {
	if agg.Session.Status.Closed() {
		return apperrors.WithMetadata(apperrors.CodeSessionClosed, "session is closed",
			map[string]string{"SessionID": agg.Session.ID, "Status": string(agg.Session.Status)})
	}
	return nil
}

// requireTurn keeps players to their own turn while an encounter runs.
// Hosts pass. Entities outside the order must join through AddToInitiative
// first.
func (e *Engine) requireTurn(agg *session.Aggregate, caller Caller, entityID string) error {
	if e.isHost(agg, caller) || len(agg.Turn.Order) == 0 {
		return nil
	}
	if !agg.Turn.Contains(entityID) {
		return apperrors.WithMetadata(apperrors.CodeNotInInitiative, "not in initiative",
			map[string]string{"EntityID": entityID})
	}
	if agg.Turn.Paused != nil {
		return apperrors.New(apperrors.CodeTurnPaused, "turn is paused")
	}
	if agg.Turn.ActiveEntity() != entityID {
		return apperrors.WithMetadata(apperrors.CodeNotYourTurn, "not your turn",
			map[string]string{"EntityID": entityID, "ActiveID": agg.Turn.ActiveEntity()})
	}
	return nil
}

// GetState returns the current session aggregate.
func (e *Engine) GetState(ctx context.Context, _ Caller, sessionID string) (agg *session.Aggregate, err error) {
	ctx, span := e.start(ctx, "get_state", sessionID)
	defer func() { finish(span, err) }()
	return e.load(ctx, sessionID)
}
