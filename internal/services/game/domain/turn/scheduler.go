package turn

import (
	"slices"
	"strconv"

	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/dice"
)

// Combatant is an entity entering initiative.
type Combatant struct {
	EntityID    string
	Type        EntityType
	DexModifier int
}

// SpeedFunc resolves the movement speed cached on a new turn.
type SpeedFunc func(entityID string, entityType EntityType) float64

// Patch carries the turn fields UpdateTurn may change. Nil fields are left
// alone.
type Patch struct {
	MovementUsed    *float64 `json:"movement_used,omitempty"`
	MajorActionUsed *bool    `json:"major_action_used,omitempty"`
	MinorActionUsed *bool    `json:"minor_action_used,omitempty"`
}

var (
	errNoCombatants = apperrors.New(apperrors.CodeInitiativeNoCombatants, "no combatants")
	errNoActiveTurn = apperrors.New(apperrors.CodeNoActiveTurn, "no active turn")
)

func rollEntry(c Combatant, src dice.Source) Entry {
	raw, _ := dice.RollDie(src, 20)
	return Entry{
		EntityID:   c.EntityID,
		Type:       c.Type,
		Initiative: raw + c.DexModifier,
		RawRoll:    raw,
		Modifier:   c.DexModifier,
	}
}

// RollInitiative replaces the order with a fresh d20 + DEX roll for each
// combatant, sorted by total descending. Ties keep the given order. The
// first entry becomes the active turn with turn number 1.
func RollInitiative(s *State, combatants []Combatant, src dice.Source, speed SpeedFunc) error {
	if len(combatants) == 0 {
		return errNoCombatants
	}
	seen := make(map[string]struct{}, len(combatants))
	order := make([]Entry, 0, len(combatants))
	for _, c := range combatants {
		if _, dup := seen[c.EntityID]; dup {
			continue
		}
		seen[c.EntityID] = struct{}{}
		order = append(order, rollEntry(c, src))
	}
	slices.SortStableFunc(order, func(a, b Entry) int { return b.Initiative - a.Initiative })

	s.Order = order
	s.Paused = nil
	s.TurnCount = 1
	s.Active = newTurn(order[0], 1, speed)
	return nil
}

// AddToOrder rolls for a late joiner and inserts it after every entry with
// an equal or higher total.
func AddToOrder(s *State, c Combatant, src dice.Source) (Entry, error) {
	if s.Contains(c.EntityID) {
		return Entry{}, apperrors.WithMetadata(apperrors.CodeAlreadyInInitiative, "already in initiative",
			map[string]string{"EntityID": c.EntityID})
	}
	entry := rollEntry(c, src)
	at := len(s.Order)
	for i, e := range s.Order {
		if e.Initiative < entry.Initiative {
			at = i
			break
		}
	}
	s.Order = slices.Insert(s.Order, at, entry)
	return entry, nil
}

// RemoveFromOrder drops entityID. If it held the active or paused turn,
// that pointer is cleared rather than advanced.
func RemoveFromOrder(s *State, entityID string) error {
	i := s.IndexOf(entityID)
	if i < 0 {
		return notInInitiative(entityID)
	}
	s.Order = slices.Delete(s.Order, i, i+1)
	if s.Active != nil && s.Active.EntityID == entityID {
		s.Active = nil
	}
	if s.Paused != nil && s.Paused.EntityID == entityID {
		s.Paused = nil
	}
	return nil
}

// ClearOrder ends the encounter.
func ClearOrder(s *State) {
	*s = State{}
}

// StartTurn forces the active turn onto entityID with fresh bookkeeping.
func StartTurn(s *State, entityType EntityType, entityID string, speed float64) *Turn {
	s.TurnCount++
	s.Paused = nil
	s.Active = &Turn{
		EntityID:   entityID,
		Type:       entityType,
		TurnNumber: s.TurnCount,
		Speed:      speed,
	}
	return s.Active
}

// EndTurn advances to the entry after the current one, wrapping to the top.
// A paused turn counts as current. With an empty order no turn is active.
func EndTurn(s *State, speed SpeedFunc) *Turn {
	current := ""
	switch {
	case s.Active != nil:
		current = s.Active.EntityID
	case s.Paused != nil:
		current = s.Paused.EntityID
	}
	s.Paused = nil
	if len(s.Order) == 0 {
		s.Active = nil
		return nil
	}
	next := 0
	if i := s.IndexOf(current); i >= 0 {
		next = (i + 1) % len(s.Order)
	}
	s.TurnCount++
	s.Active = newTurn(s.Order[next], s.TurnCount, speed)
	return s.Active
}

// UpdateTurn merges patch into the active turn. Movement is kept within
// [0, speed] when a speed is cached.
func UpdateTurn(s *State, patch Patch) (*Turn, error) {
	if s.Active == nil {
		if s.Paused != nil {
			return nil, apperrors.New(apperrors.CodeTurnPaused, "turn is paused")
		}
		return nil, errNoActiveTurn
	}
	if patch.MovementUsed != nil {
		used := max(*patch.MovementUsed, 0)
		if s.Active.Speed > 0 {
			used = min(used, s.Active.Speed)
		}
		s.Active.MovementUsed = used
	}
	if patch.MajorActionUsed != nil {
		s.Active.MajorActionUsed = *patch.MajorActionUsed
	}
	if patch.MinorActionUsed != nil {
		s.Active.MinorActionUsed = *patch.MinorActionUsed
	}
	return s.Active, nil
}

// Interrupt pauses the active turn. Calling it again while paused is a
// no-op.
func Interrupt(s *State) error {
	if s.Paused != nil && s.Active == nil {
		return nil
	}
	if s.Active == nil {
		return errNoActiveTurn
	}
	s.Paused = s.Active
	s.Active = nil
	return nil
}

// Resume restores the paused turn.
func Resume(s *State) error {
	if s.Paused == nil {
		if s.Active != nil {
			return nil
		}
		return errNoActiveTurn
	}
	s.Active = s.Paused
	s.Paused = nil
	return nil
}

func newTurn(e Entry, number int, speed SpeedFunc) *Turn {
	t := &Turn{EntityID: e.EntityID, Type: e.Type, TurnNumber: number}
	if speed != nil {
		t.Speed = speed(e.EntityID, e.Type)
	}
	return t
}

func notInInitiative(entityID string) error {
	return apperrors.WithMetadata(apperrors.CodeNotInInitiative, "not in initiative",
		map[string]string{"EntityID": entityID})
}

// Describe renders an entry for activity log text, e.g. "goblin 17 (15+2)".
func Describe(e Entry) string {
	sign := "+"
	mod := e.Modifier
	if mod < 0 {
		sign = "-"
		mod = -mod
	}
	return e.EntityID + " " + strconv.Itoa(e.Initiative) + " (" + strconv.Itoa(e.RawRoll) + sign + strconv.Itoa(mod) + ")"
}
