package session

import (
	"slices"

	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/actor"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/grid"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/turn"
)

// Aggregate is the full authoritative state of one session.
type Aggregate struct {
	Session    Session            `json:"session"`
	Characters []*actor.Character `json:"characters"`
	Tokens     []*actor.Token     `json:"tokens"`
	Map        *grid.Map          `json:"map,omitempty"`
	Turn       turn.State         `json:"turn"`
	// Version is owned by the store. Callers never bump it themselves.
	Version int64 `json:"-"`
}

// Clone returns a deep copy that can be mutated without touching a.
func (a *Aggregate) Clone() *Aggregate {
	out := &Aggregate{
		Session: a.Session,
		Map:     a.Map.Clone(),
		Turn:    a.Turn.Clone(),
		Version: a.Version,
	}
	out.Session.Quest = slices.Clone(a.Session.Quest)
	out.Characters = make([]*actor.Character, len(a.Characters))
	for i, c := range a.Characters {
		out.Characters[i] = c.Clone()
	}
	out.Tokens = make([]*actor.Token, len(a.Tokens))
	for i, t := range a.Tokens {
		out.Tokens[i] = t.Clone()
	}
	return out
}

// IsHost reports whether userID hosts the session.
func (a *Aggregate) IsHost(userID string) bool {
	return userID != "" && userID == a.Session.HostID
}

// Character looks up a character by id.
func (a *Aggregate) Character(id string) (*actor.Character, bool) {
	for _, c := range a.Characters {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// Token looks up a token by id.
func (a *Aggregate) Token(id string) (*actor.Token, bool) {
	for _, t := range a.Tokens {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// TokenFor returns the map token of a character or NPC entity. An NPC's
// entity id is its token id.
func (a *Aggregate) TokenFor(entityID string) (*actor.Token, bool) {
	if t, ok := a.Token(entityID); ok {
		return t, true
	}
	for _, t := range a.Tokens {
		if t.Kind == actor.TokenPlayer && t.CharacterID == entityID {
			return t, true
		}
	}
	return nil, false
}

// TokenAt returns the token standing on p.
func (a *Aggregate) TokenAt(p grid.Point) (*actor.Token, bool) {
	for _, t := range a.Tokens {
		if t.X == p.X && t.Y == p.Y {
			return t, true
		}
	}
	return nil, false
}

// Resolve returns the actor for id: a character, the character behind a
// player token, or an NPC token.
func (a *Aggregate) Resolve(id string) (actor.Actor, bool) {
	if c, ok := a.Character(id); ok {
		return c, true
	}
	t, ok := a.Token(id)
	if !ok {
		return nil, false
	}
	if t.Kind == actor.TokenPlayer && t.CharacterID != "" {
		if c, ok := a.Character(t.CharacterID); ok {
			return c, true
		}
	}
	return t, true
}

// ResolveTarget is Resolve with a not-found error.
func (a *Aggregate) ResolveTarget(id string) (actor.Actor, error) {
	if target, ok := a.Resolve(id); ok {
		return target, nil
	}
	return nil, apperrors.WithMetadata(apperrors.CodeTargetNotFound, "target not found",
		map[string]string{"TargetID": id})
}

// EntityType classifies id for the initiative order.
func (a *Aggregate) EntityType(id string) turn.EntityType {
	if target, ok := a.Resolve(id); ok && target.ActorKind() == actor.KindCharacter {
		return turn.EntityPlayer
	}
	return turn.EntityNPC
}

// Owns reports whether userID controls entityID. Characters belong to
// their owner; NPC tokens belong to the host.
func (a *Aggregate) Owns(userID, entityID string) bool {
	if userID == "" {
		return false
	}
	target, ok := a.Resolve(entityID)
	if !ok {
		return false
	}
	if c, isCharacter := target.(*actor.Character); isCharacter {
		return c.OwnerID == userID
	}
	return a.IsHost(userID)
}

// Combatants lists every character and NPC token for a fresh encounter,
// in roster order.
func (a *Aggregate) Combatants() []turn.Combatant {
	out := make([]turn.Combatant, 0, len(a.Characters)+len(a.Tokens))
	for _, c := range a.Characters {
		out = append(out, turn.Combatant{EntityID: c.ID, Type: turn.EntityPlayer, DexModifier: c.Modifier(actor.Dexterity)})
	}
	for _, t := range a.Tokens {
		if t.Kind != actor.TokenNPC {
			continue
		}
		out = append(out, turn.Combatant{EntityID: t.ID, Type: turn.EntityNPC, DexModifier: t.Modifier(actor.Dexterity)})
	}
	return out
}

// RemoveCharacter drops a character with its tokens and initiative slot.
func (a *Aggregate) RemoveCharacter(id string) bool {
	i := slices.IndexFunc(a.Characters, func(c *actor.Character) bool { return c.ID == id })
	if i < 0 {
		return false
	}
	a.Characters = slices.Delete(a.Characters, i, i+1)
	a.Tokens = slices.DeleteFunc(a.Tokens, func(t *actor.Token) bool {
		return t.Kind == actor.TokenPlayer && t.CharacterID == id
	})
	_ = turn.RemoveFromOrder(&a.Turn, id)
	return true
}

// RemoveToken drops a token and, for NPCs, its initiative slot.
func (a *Aggregate) RemoveToken(id string) bool {
	i := slices.IndexFunc(a.Tokens, func(t *actor.Token) bool { return t.ID == id })
	if i < 0 {
		return false
	}
	_ = turn.RemoveFromOrder(&a.Turn, id)
	a.Tokens = slices.Delete(a.Tokens, i, i+1)
	return true
}
