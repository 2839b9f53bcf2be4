package turn

import (
	"testing"

	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/dice"
)

func fixedSpeed(v float64) SpeedFunc {
	return func(string, EntityType) float64 { return v }
}

func rolled(t *testing.T, faces []int, combatants ...Combatant) *State {
	t.Helper()
	s := &State{}
	if err := RollInitiative(s, combatants, dice.NewSequence(faces...), fixedSpeed(6)); err != nil {
		t.Fatalf("roll initiative: %v", err)
	}
	return s
}

func TestRollInitiativeOrdersByTotal(t *testing.T) {
	s := rolled(t, []int{10, 15},
		Combatant{EntityID: "B", Type: EntityPlayer, DexModifier: 3},
		Combatant{EntityID: "A", Type: EntityNPC, DexModifier: 2},
	)
	if s.Order[0].EntityID != "A" || s.Order[0].Initiative != 17 {
		t.Fatalf("first = %+v", s.Order[0])
	}
	if s.Order[1].EntityID != "B" || s.Order[1].Initiative != 13 {
		t.Fatalf("second = %+v", s.Order[1])
	}
	if s.Active == nil || s.Active.EntityID != "A" || s.Active.TurnNumber != 1 || s.Active.Speed != 6 {
		t.Fatalf("active = %+v", s.Active)
	}
	if s.Phase() != PhaseTurnActive {
		t.Fatalf("phase = %q", s.Phase())
	}
}

func TestRollInitiativeStableOnTies(t *testing.T) {
	s := rolled(t, []int{12, 11, 12, 5},
		Combatant{EntityID: "first", DexModifier: 0},
		Combatant{EntityID: "second", DexModifier: 1},
		Combatant{EntityID: "third", DexModifier: 0},
		Combatant{EntityID: "fourth", DexModifier: 0},
	)
	want := []string{"first", "second", "third", "fourth"}
	for i, id := range want {
		if s.Order[i].EntityID != id {
			t.Fatalf("order[%d] = %s, want %s", i, s.Order[i].EntityID, id)
		}
	}
	for i := 1; i < len(s.Order); i++ {
		if s.Order[i].Initiative > s.Order[i-1].Initiative {
			t.Fatalf("order not descending at %d", i)
		}
	}
}

func TestRollInitiativeRequiresCombatants(t *testing.T) {
	err := RollInitiative(&State{}, nil, dice.NewSequence(1), nil)
	if !apperrors.IsCode(err, apperrors.CodeInitiativeNoCombatants) {
		t.Fatalf("err = %v", err)
	}
}

func TestEndTurnCyclesThroughOrder(t *testing.T) {
	s := rolled(t, []int{18, 12, 6},
		Combatant{EntityID: "a"}, Combatant{EntityID: "b"}, Combatant{EntityID: "c"},
	)
	start := s.Active.EntityID
	startNumber := s.Active.TurnNumber
	s.Active.MovementUsed = 4
	s.Active.MajorActionUsed = true

	for i := 0; i < len(s.Order); i++ {
		next := EndTurn(s, fixedSpeed(5))
		if next == nil || !s.Contains(next.EntityID) {
			t.Fatalf("end turn left the order: %+v", next)
		}
		if next.MovementUsed != 0 || next.MajorActionUsed || next.MinorActionUsed {
			t.Fatalf("bookkeeping not reset: %+v", next)
		}
	}
	if s.Active.EntityID != start {
		t.Fatalf("active = %s, want %s", s.Active.EntityID, start)
	}
	if s.Active.TurnNumber != startNumber+len(s.Order) {
		t.Fatalf("turn number = %d, want %d", s.Active.TurnNumber, startNumber+len(s.Order))
	}
}

func TestEndTurnEmptyOrder(t *testing.T) {
	s := &State{Active: &Turn{EntityID: "ghost"}}
	if got := EndTurn(s, nil); got != nil || s.Active != nil {
		t.Fatalf("expected no active turn, got %+v", got)
	}
}

func TestEndTurnFromPaused(t *testing.T) {
	s := rolled(t, []int{18, 12}, Combatant{EntityID: "a"}, Combatant{EntityID: "b"})
	if err := Interrupt(s); err != nil {
		t.Fatalf("interrupt: %v", err)
	}
	next := EndTurn(s, nil)
	if next.EntityID != "b" || s.Paused != nil {
		t.Fatalf("next = %+v paused = %+v", next, s.Paused)
	}
}

func TestAddToOrderInsertsAfterTies(t *testing.T) {
	s := rolled(t, []int{15, 10}, Combatant{EntityID: "a"}, Combatant{EntityID: "b"})
	entry, err := AddToOrder(s, Combatant{EntityID: "late", DexModifier: 0}, dice.NewSequence(10))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if entry.Initiative != 10 {
		t.Fatalf("entry = %+v", entry)
	}
	if got := s.IndexOf("late"); got != 2 {
		t.Fatalf("index = %d, want 2", got)
	}

	_, err = AddToOrder(s, Combatant{EntityID: "fast", DexModifier: 5}, dice.NewSequence(20))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if s.Order[0].EntityID != "fast" {
		t.Fatalf("order[0] = %s", s.Order[0].EntityID)
	}

	_, err = AddToOrder(s, Combatant{EntityID: "a"}, dice.NewSequence(1))
	if !apperrors.IsCode(err, apperrors.CodeAlreadyInInitiative) {
		t.Fatalf("duplicate err = %v", err)
	}
}

func TestRemoveFromOrderClearsPointers(t *testing.T) {
	s := rolled(t, []int{15, 10}, Combatant{EntityID: "a"}, Combatant{EntityID: "b"})
	if err := RemoveFromOrder(s, "a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if s.Active != nil || len(s.Order) != 1 {
		t.Fatalf("active = %+v order = %+v", s.Active, s.Order)
	}
	if err := RemoveFromOrder(s, "a"); !apperrors.IsCode(err, apperrors.CodeNotInInitiative) {
		t.Fatalf("err = %v", err)
	}

	s = rolled(t, []int{15, 10}, Combatant{EntityID: "a"}, Combatant{EntityID: "b"})
	_ = Interrupt(s)
	if err := RemoveFromOrder(s, "a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if s.Paused != nil {
		t.Fatalf("paused = %+v", s.Paused)
	}
}

func TestStartTurnOverrides(t *testing.T) {
	s := rolled(t, []int{15, 10}, Combatant{EntityID: "a"}, Combatant{EntityID: "b"})
	s.Active.MovementUsed = 3
	got := StartTurn(s, EntityNPC, "b", 4)
	if got.EntityID != "b" || got.TurnNumber != 2 || got.MovementUsed != 0 || got.Speed != 4 {
		t.Fatalf("turn = %+v", got)
	}
}

func TestUpdateTurn(t *testing.T) {
	s := rolled(t, []int{15}, Combatant{EntityID: "a"})
	moved := 9.0
	major := true
	got, err := UpdateTurn(s, Patch{MovementUsed: &moved, MajorActionUsed: &major})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.MovementUsed != 6 || !got.MajorActionUsed || got.MinorActionUsed {
		t.Fatalf("turn = %+v", got)
	}

	_ = Interrupt(s)
	if _, err := UpdateTurn(s, Patch{}); !apperrors.IsCode(err, apperrors.CodeTurnPaused) {
		t.Fatalf("paused err = %v", err)
	}
	if _, err := UpdateTurn(&State{}, Patch{}); !apperrors.IsCode(err, apperrors.CodeNoActiveTurn) {
		t.Fatalf("idle err = %v", err)
	}
}

func TestInterruptResume(t *testing.T) {
	s := rolled(t, []int{15}, Combatant{EntityID: "a"})
	s.Active.MovementUsed = 2
	if err := Interrupt(s); err != nil {
		t.Fatalf("interrupt: %v", err)
	}
	if err := Interrupt(s); err != nil {
		t.Fatalf("second interrupt: %v", err)
	}
	if s.Active != nil || s.Paused == nil || s.Phase() != PhaseTurnPaused {
		t.Fatalf("state = %+v", s)
	}
	if err := Resume(s); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if s.Paused != nil || s.Active == nil || s.Active.MovementUsed != 2 {
		t.Fatalf("state = %+v", s)
	}
	if err := Interrupt(&State{}); !apperrors.IsCode(err, apperrors.CodeNoActiveTurn) {
		t.Fatalf("err = %v", err)
	}
}

func TestClearOrder(t *testing.T) {
	s := rolled(t, []int{15}, Combatant{EntityID: "a"})
	ClearOrder(s)
	if s.Phase() != PhaseNoEncounter || s.TurnCount != 0 {
		t.Fatalf("state = %+v", s)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := rolled(t, []int{15, 3}, Combatant{EntityID: "a"}, Combatant{EntityID: "b"})
	c := s.Clone()
	c.Active.MovementUsed = 5
	c.Order[0].Initiative = 1
	if s.Active.MovementUsed != 0 || s.Order[0].Initiative == 1 {
		t.Fatal("clone shares state")
	}
}

func TestDescribe(t *testing.T) {
	got := Describe(Entry{EntityID: "goblin", Initiative: 13, RawRoll: 15, Modifier: -2})
	if got != "goblin 13 (15-2)" {
		t.Fatalf("describe = %q", got)
	}
}
