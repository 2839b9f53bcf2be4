package engine

import (
	"context"
	"encoding/json"
	"slices"
	"strconv"
	"strings"

	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/actor"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/dice"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/grid"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/session"
)

func characterNotFound(characterID string) error {
	return apperrors.WithMetadata(apperrors.CodeCharacterNotFound, "character not found",
		map[string]string{"CharacterID": characterID})
}

func tokenNotFound(tokenID string) error {
	return apperrors.WithMetadata(apperrors.CodeTokenNotFound, "token not found",
		map[string]string{"TokenID": tokenID})
}

func mapNotSet(sessionID string) error {
	return apperrors.WithMetadata(apperrors.CodeMapNotSet, "session has no map",
		map[string]string{"SessionID": sessionID})
}

func validateCharacter(c *actor.Character) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperrors.New(apperrors.CodeCharacterEmptyName, "character name is required")
	}
	if c.Level < 0 || c.Health < 0 || c.MaxHealth < 0 || c.ActionPoints < 0 || c.MaxActionPoints < 0 {
		return apperrors.WithMetadata(apperrors.CodeCharacterInvalidStats, "character stats must not be negative",
			map[string]string{"CharacterID": c.ID})
	}
	return nil
}

// AddCharacter joins a character to the session. Players always own what
// they add; a host may assign another owner. New characters start at full
// health and action points unless given explicit values.
func (e *Engine) AddCharacter(ctx context.Context, caller Caller, sessionID string, c actor.Character) (*actor.Character, error) {
	if c.ID == "" {
		generated, err := e.newID()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeUnknown, "generate character id", err)
		}
		c.ID = generated
	}
	var added *actor.Character
	_, err := e.mutate(ctx, "add_character", sessionID, func(agg *session.Aggregate, _ dice.Source) ([]record, error) {
		if err := requireOpen(agg); err != nil {
			return nil, err
		}
		next := c.Clone()
		if err := validateCharacter(next); err != nil {
			return nil, err
		}
		if _, exists := agg.Character(next.ID); exists {
			return nil, apperrors.WithMetadata(apperrors.CodeAlreadyExists, "character already exists",
				map[string]string{"CharacterID": next.ID})
		}
		if next.OwnerID == "" || !e.isHost(agg, caller) {
			next.OwnerID = caller.UserID
		}
		if next.OwnerID == "" {
			return nil, apperrors.New(apperrors.CodeInvalidInput, "character owner is required")
		}
		if next.Health == 0 {
			next.Health = next.MaxHealth
		}
		next.Normalize()
		if next.ActionPoints == 0 {
			next.ActionPoints = next.MaxActionPoints
		}
		agg.Characters = append(agg.Characters, next)
		added = next.Clone()
		return []record{{logType: session.LogRoster, actor: next, text: next.Name + " joined the session"}}, nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// UpdateCharacter merges a JSON patch into a character. Only the owner or
// the host may edit; only the host may reassign ownership. Pools are
// clamped after the edit.
func (e *Engine) UpdateCharacter(ctx context.Context, caller Caller, sessionID, characterID string, patch json.RawMessage) (*actor.Character, error) {
	var updated *actor.Character
	_, err := e.mutate(ctx, "update_character", sessionID, func(agg *session.Aggregate, _ dice.Source) ([]record, error) {
		if err := requireOpen(agg); err != nil {
			return nil, err
		}
		current, ok := agg.Character(characterID)
		if !ok {
			return nil, characterNotFound(characterID)
		}
		if err := e.requireControl(agg, caller, characterID); err != nil {
			return nil, err
		}
		owner := current.OwnerID
		if len(patch) > 0 {
			if err := json.Unmarshal(patch, current); err != nil {
				return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "decode character patch", err)
			}
		}
		current.ID = characterID
		if current.OwnerID == "" || !e.isHost(agg, caller) {
			current.OwnerID = owner
		}
		if err := validateCharacter(current); err != nil {
			return nil, err
		}
		current.Normalize()
		updated = current.Clone()
		return []record{{logType: session.LogRoster, actor: current, text: current.Name + " updated", data: patch}}, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCharacter removes a character with its tokens and initiative slot.
func (e *Engine) DeleteCharacter(ctx context.Context, caller Caller, sessionID, characterID string) error {
	_, err := e.mutate(ctx, "delete_character", sessionID, func(agg *session.Aggregate, _ dice.Source) ([]record, error) {
		current, ok := agg.Character(characterID)
		if !ok {
			return nil, characterNotFound(characterID)
		}
		if err := e.requireControl(agg, caller, characterID); err != nil {
			return nil, err
		}
		name := current.Name
		agg.RemoveCharacter(characterID)
		return []record{{logType: session.LogRoster, text: name + " left the session",
			data: map[string]string{"character_id": characterID}}}, nil
	})
	return err
}

// PlaceToken puts a token on the map, replacing any token with the same id.
// Player tokens must reference a character in the session.
func (e *Engine) PlaceToken(ctx context.Context, caller Caller, sessionID string, t actor.Token) (*actor.Token, error) {
	kind, ok := actor.ParseTokenKind(string(t.Kind))
	if !ok {
		return nil, apperrors.WithMetadata(apperrors.CodeTokenInvalidKind, "token kind must be player or npc",
			map[string]string{"Kind": string(t.Kind)})
	}
	t.Kind = kind
	if t.ID == "" {
		generated, err := e.newID()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeUnknown, "generate token id", err)
		}
		t.ID = generated
	}

	var placed *actor.Token
	_, err := e.mutate(ctx, "place_token", sessionID, func(agg *session.Aggregate, _ dice.Source) ([]record, error) {
		if err := requireOpen(agg); err != nil {
			return nil, err
		}
		if err := e.requireHost(agg, caller); err != nil {
			return nil, err
		}
		next := t.Clone()
		if next.Kind == actor.TokenPlayer {
			c, ok := agg.Character(next.CharacterID)
			if !ok {
				return nil, characterNotFound(next.CharacterID)
			}
			if other, ok := agg.TokenFor(c.ID); ok && other.ID != next.ID {
				return nil, apperrors.WithMetadata(apperrors.CodeAlreadyExists, "character already has a token",
					map[string]string{"CharacterID": c.ID, "TokenID": other.ID})
			}
			if next.Name == "" {
				next.Name = c.Name
			}
		} else {
			next.CharacterID = ""
		}
		at := grid.Point{X: next.X, Y: next.Y}
		if agg.Map != nil && !agg.Map.InBounds(at) {
			return nil, grid.OutOfBounds(at)
		}
		if other, ok := agg.TokenAt(at); ok && other.ID != next.ID {
			return nil, tileOccupied(at, other.ID)
		}
		if next.Health == 0 {
			next.Health = next.MaxHealth
		}
		next.Normalize()
		if next.Stats.ActionPoints == 0 {
			next.Stats.ActionPoints = next.Stats.MaxActionPoints
		}

		if i := slices.IndexFunc(agg.Tokens, func(x *actor.Token) bool { return x.ID == next.ID }); i >= 0 {
			agg.Tokens[i] = next
		} else {
			agg.Tokens = append(agg.Tokens, next)
		}
		placed = next.Clone()
		return []record{{logType: session.LogMap, actor: next,
			text: next.Name + " placed at " + formatPoint(at)}}, nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

// RemoveToken takes a token off the map and out of initiative.
func (e *Engine) RemoveToken(ctx context.Context, caller Caller, sessionID, tokenID string) error {
	_, err := e.mutate(ctx, "remove_token", sessionID, func(agg *session.Aggregate, _ dice.Source) ([]record, error) {
		if err := e.requireHost(agg, caller); err != nil {
			return nil, err
		}
		t, ok := agg.Token(tokenID)
		if !ok {
			return nil, tokenNotFound(tokenID)
		}
		name := t.Name
		agg.RemoveToken(tokenID)
		return []record{{logType: session.LogMap, text: name + " removed from the map",
			data: map[string]string{"token_id": tokenID}}}, nil
	})
	return err
}

// SetMap replaces the session map.
func (e *Engine) SetMap(ctx context.Context, caller Caller, sessionID string, m *grid.Map) (*grid.Map, error) {
	if m == nil {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "map is required")
	}
	next := m.Clone()
	if err := next.Validate(); err != nil {
		return nil, err
	}
	_, err := e.mutate(ctx, "set_map", sessionID, func(agg *session.Aggregate, _ dice.Source) ([]record, error) {
		if err := requireOpen(agg); err != nil {
			return nil, err
		}
		if err := e.requireHost(agg, caller); err != nil {
			return nil, err
		}
		agg.Map = next.Clone()
		agg.Session.MapID = next.ID
		return []record{{logType: session.LogMap, text: "map set to " + mapLabel(next),
			data: map[string]int{"width": next.Width, "height": next.Height}}}, nil
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

// PatchTile replaces one tile of the session map.
func (e *Engine) PatchTile(ctx context.Context, caller Caller, sessionID string, at grid.Point, tile grid.Tile) (grid.Tile, error) {
	var patched grid.Tile
	_, err := e.mutate(ctx, "patch_tile", sessionID, func(agg *session.Aggregate, _ dice.Source) ([]record, error) {
		if err := requireOpen(agg); err != nil {
			return nil, err
		}
		if err := e.requireHost(agg, caller); err != nil {
			return nil, err
		}
		if agg.Map == nil {
			return nil, mapNotSet(agg.Session.ID)
		}
		if err := agg.Map.SetTile(at, tile); err != nil {
			return nil, err
		}
		patched, _ = agg.Map.Tile(at)
		return []record{{logType: session.LogMap, text: "tile " + formatPoint(at) + " changed", data: patched}}, nil
	})
	return patched, err
}

func tileOccupied(at grid.Point, tokenID string) error {
	return apperrors.WithMetadata(apperrors.CodeTileOccupied, "tile is occupied",
		map[string]string{"X": strconv.Itoa(at.X), "Y": strconv.Itoa(at.Y), "TokenID": tokenID})
}

func formatPoint(p grid.Point) string {
	return "(" + strconv.Itoa(p.X) + "," + strconv.Itoa(p.Y) + ")"
}

func mapLabel(m *grid.Map) string {
	if m.Name != "" {
		return m.Name
	}
	return strconv.Itoa(m.Width) + "x" + strconv.Itoa(m.Height)
}
