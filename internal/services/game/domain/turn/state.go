package turn

import (
	"slices"
	"strings"
)

// EntityType is the kind of combatant holding an initiative slot.
type EntityType string

const (
	EntityPlayer EntityType = "player"
	EntityNPC    EntityType = "npc"
)

// ParseEntityType accepts "player" or "npc", case-insensitively.
func ParseEntityType(value string) (EntityType, bool) {
	switch EntityType(strings.ToLower(strings.TrimSpace(value))) {
	case EntityPlayer:
		return EntityPlayer, true
	case EntityNPC:
		return EntityNPC, true
	}
	return "", false
}

// Entry is one slot in the initiative order.
type Entry struct {
	EntityID   string     `json:"entity_id"`
	Type       EntityType `json:"type"`
	Initiative int        `json:"initiative"`
	RawRoll    int        `json:"raw_roll"`
	Modifier   int        `json:"modifier"`
}

// Turn is the bookkeeping for the combatant currently acting.
type Turn struct {
	EntityID        string     `json:"entity_id"`
	Type            EntityType `json:"type"`
	TurnNumber      int        `json:"turn_number"`
	Speed           float64    `json:"speed"`
	MovementUsed    float64    `json:"movement_used"`
	MajorActionUsed bool       `json:"major_action_used"`
	MinorActionUsed bool       `json:"minor_action_used"`
}

// Phase names where the state machine is.
type Phase string

const (
	PhaseNoEncounter      Phase = "no_encounter"
	PhaseInitiativeRolled Phase = "initiative_rolled"
	PhaseTurnActive       Phase = "turn_active"
	PhaseTurnPaused       Phase = "turn_paused"
)

// State is the encounter portion of a session aggregate.
type State struct {
	Order     []Entry `json:"order,omitempty"`
	Active    *Turn   `json:"active,omitempty"`
	Paused    *Turn   `json:"paused,omitempty"`
	TurnCount int     `json:"turn_count"`
}

// Phase derives the state machine position.
func (s *State) Phase() Phase {
	switch {
	case s.Paused != nil:
		return PhaseTurnPaused
	case s.Active != nil:
		return PhaseTurnActive
	case len(s.Order) > 0:
		return PhaseInitiativeRolled
	default:
		return PhaseNoEncounter
	}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := State{Order: slices.Clone(s.Order), TurnCount: s.TurnCount}
	if s.Active != nil {
		active := *s.Active
		out.Active = &active
	}
	if s.Paused != nil {
		paused := *s.Paused
		out.Paused = &paused
	}
	return out
}

// IndexOf returns the position of entityID in the order, or -1.
func (s *State) IndexOf(entityID string) int {
	return slices.IndexFunc(s.Order, func(e Entry) bool { return e.EntityID == entityID })
}

// Contains reports whether entityID holds an initiative slot.
func (s *State) Contains(entityID string) bool {
	return s.IndexOf(entityID) >= 0
}

// ActiveEntity returns the acting entity, or "" when no turn is live.
func (s *State) ActiveEntity() string {
	if s.Active == nil {
		return ""
	}
	return s.Active.EntityID
}
