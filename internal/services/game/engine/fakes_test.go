package engine

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/actor"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/dice"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/grid"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/session"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/notify"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/storage"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const (
	hostID    = "host-1"
	playerOne = "player-1"
	playerTwo = "player-2"
	sessionID = "session-1"
)

type fakeStore struct {
	mu        sync.Mutex
	sessions  map[string]*session.Aggregate
	conflicts int
	saves     int
	saveErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[string]*session.Aggregate)}
}

func (s *fakeStore) CreateSession(_ context.Context, agg *session.Aggregate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[agg.Session.ID]; ok {
		return apperrors.New(apperrors.CodeAlreadyExists, "session exists")
	}
	agg.Version = 1
	s.sessions[agg.Session.ID] = agg.Clone()
	return nil
}

func (s *fakeStore) LoadSession(_ context.Context, id string) (*session.Aggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	agg, ok := s.sessions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return agg.Clone(), nil
}

func (s *fakeStore) SaveSession(_ context.Context, agg *session.Aggregate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	current, ok := s.sessions[agg.Session.ID]
	if !ok {
		return storage.ErrNotFound
	}
	if s.conflicts > 0 {
		s.conflicts--
		return storage.ErrVersionConflict
	}
	if current.Version != agg.Version {
		return storage.ErrVersionConflict
	}
	agg.Version++
	s.sessions[agg.Session.ID] = agg.Clone()
	return nil
}

func (s *fakeStore) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *fakeStore) get(t *testing.T, id string) *session.Aggregate {
	t.Helper()
	agg, err := s.LoadSession(context.Background(), id)
	if err != nil {
		t.Fatalf("load %s: %v", id, err)
	}
	return agg
}

type fakeActivity struct {
	mu      sync.Mutex
	entries []session.LogEntry
	err     error
}

func (f *fakeActivity) AppendActivity(_ context.Context, entry session.LogEntry) (session.LogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return session.LogEntry{}, f.err
	}
	entry.Seq = int64(len(f.entries) + 1)
	f.entries = append(f.entries, entry)
	return entry, nil
}

func (f *fakeActivity) types() []session.LogType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]session.LogType, len(f.entries))
	for i, e := range f.entries {
		out[i] = e.Type
	}
	return out
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notify.Event
	err    error
}

func (f *fakeNotifier) SessionChanged(_ context.Context, evt notify.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	return f.err
}

type harness struct {
	engine   *Engine
	store    *fakeStore
	activity *fakeActivity
	notifier *fakeNotifier
}

func newHarness(t *testing.T, faces ...int) *harness {
	t.Helper()
	if len(faces) == 0 {
		faces = []int{10}
	}
	h := &harness{store: newFakeStore(), activity: &fakeActivity{}, notifier: &fakeNotifier{}}
	seq := dice.NewSequence(faces...)
	next := 0
	e, err := New(h.store,
		WithActivityLog(h.activity),
		WithNotifier(h.notifier),
		WithDice(func() (dice.Source, error) { return seq, nil }),
		WithClock(func() time.Time { return fixedNow }),
		WithIDs(func() (string, error) {
			next++
			return "id-" + strconv.Itoa(next), nil
		}, func() (string, error) { return "ABC234", nil }),
		WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	h.engine = e
	return h
}

// seed stores an active session on a 5x5 open map with two player
// characters, their tokens and a goblin.
func (h *harness) seed(t *testing.T) *session.Aggregate {
	t.Helper()
	m, err := grid.NewMap(5, 5)
	if err != nil {
		t.Fatalf("new map: %v", err)
	}
	agg := &session.Aggregate{
		Session: session.Session{
			ID:        sessionID,
			HostID:    hostID,
			Status:    session.StatusActive,
			CreatedAt: fixedNow,
			UpdatedAt: fixedNow,
		},
		Map: m,
		Characters: []*actor.Character{
			{
				ID:              "aria",
				OwnerID:         playerOne,
				Name:            "Aria",
				Level:           1,
				Race:            "human",
				Abilities:       actor.Abilities{Dexterity: 14, Wisdom: 14},
				Proficiencies:   []string{"perception"},
				Health:          10,
				MaxHealth:       10,
				ActionPoints:    3,
				MaxActionPoints: 3,
			},
			{
				ID:              "bryn",
				OwnerID:         playerTwo,
				Name:            "Bryn",
				Level:           1,
				Race:            "dwarf",
				Abilities:       actor.Abilities{Dexterity: 16},
				Health:          12,
				MaxHealth:       12,
				ActionPoints:    3,
				MaxActionPoints: 3,
			},
		},
		Tokens: []*actor.Token{
			{ID: "tok-aria", Kind: actor.TokenPlayer, CharacterID: "aria", Name: "Aria", X: 0, Y: 0},
			{ID: "tok-bryn", Kind: actor.TokenPlayer, CharacterID: "bryn", Name: "Bryn", X: 4, Y: 4},
			{
				ID:        "goblin",
				Kind:      actor.TokenNPC,
				Name:      "Goblin",
				X:         2,
				Y:         0,
				Health:    7,
				MaxHealth: 7,
				Stats: actor.TokenStats{
					ArmorClass:      12,
					AttackBonus:     4,
					Damage:          "1d6",
					DamageType:      actor.Slashing,
					ActionPoints:    3,
					MaxActionPoints: 3,
				},
			},
		},
	}
	if err := h.store.CreateSession(context.Background(), agg); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return agg
}

func assertCode(t *testing.T, err error, want apperrors.Code) {
	t.Helper()
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected %s error, got %v", want, err)
	}
	if appErr.Code != want {
		t.Fatalf("error code = %s, want %s (%v)", appErr.Code, want, err)
	}
}
