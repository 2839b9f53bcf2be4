package engine

import (
	"context"
	"strconv"

	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/actor"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/dice"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/grid"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/session"
)

// MoveResult reports an accepted move.
type MoveResult struct {
	TokenID      string     `json:"token_id"`
	From         grid.Point `json:"from"`
	To           grid.Point `json:"to"`
	Path         grid.Path  `json:"path"`
	Speed        float64    `json:"speed"`
	MovementUsed float64    `json:"movement_used"`
	Remaining    float64    `json:"remaining"`
	Bypassed     bool       `json:"bypassed"`
}

// entityOf maps a token to the id it holds in the initiative order.
func entityOf(t *actor.Token) string {
	if t.Kind == actor.TokenPlayer && t.CharacterID != "" {
		return t.CharacterID
	}
	return t.ID
}

// MoveToken walks a token to dest along the cheapest path.
//
// During an encounter players may only move on their own live turn, and the
// path cost is charged against that turn's budget. With no encounter running
// a single move may not exceed the actor's speed. Hosts and override requests skip the budget check but still need
// a path, and the charge is clamped to speed.
func (e *Engine) MoveToken(ctx context.Context, caller Caller, sessionID, tokenID string, dest grid.Point, override bool) (MoveResult, error) {
	var out MoveResult
	_, err := e.mutate(ctx, "move_token", sessionID, func(agg *session.Aggregate, _ dice.Source) ([]record, error) {
		if err := requireOpen(agg); err != nil {
			return nil, err
		}
		t, ok := agg.Token(tokenID)
		if !ok {
			return nil, tokenNotFound(tokenID)
		}
		if agg.Map == nil {
			return nil, mapNotSet(agg.Session.ID)
		}
		entityID := entityOf(t)
		if err := e.requireControl(agg, caller, entityID); err != nil {
			return nil, err
		}
		if err := e.requireTurn(agg, caller, entityID); err != nil {
			return nil, err
		}
		if !agg.Map.InBounds(dest) {
			return nil, grid.OutOfBounds(dest)
		}
		if other, ok := agg.TokenAt(dest); ok && other.ID != t.ID {
			return nil, tileOccupied(dest, other.ID)
		}

		from := grid.Point{X: t.X, Y: t.Y}
		path, ok := grid.FindPath(agg.Map, from, dest)
		if !ok {
			return nil, apperrors.WithMetadata(apperrors.CodeNoPath, "no path to destination",
				map[string]string{"X": strconv.Itoa(dest.X), "Y": strconv.Itoa(dest.Y)})
		}

		bypass := override || e.isHost(agg, caller)
		result := MoveResult{TokenID: t.ID, From: from, To: dest, Path: path, Bypassed: bypass}
		if active := agg.Turn.Active; active != nil && active.EntityID == entityID {
			speed := active.Speed
			if speed <= 0 {
				speed = actorSpeed(agg, entityID)
			}
			if err := grid.CheckBudget(speed, active.MovementUsed, path.Cost, bypass); err != nil {
				return nil, err
			}
			active.MovementUsed = grid.ApplyMovement(speed, active.MovementUsed, path.Cost)
			result.Speed = speed
			result.MovementUsed = active.MovementUsed
		} else {
			speed := actorSpeed(agg, entityID)
			if err := grid.CheckBudget(speed, 0, path.Cost, bypass); err != nil {
				return nil, err
			}
			result.Speed = speed
			result.MovementUsed = min(path.Cost, speed)
		}
		result.Remaining = grid.Remaining(result.Speed, result.MovementUsed)

		t.X, t.Y = dest.X, dest.Y
		out = result
		var mover actor.Actor = t
		if a, ok := agg.Resolve(t.ID); ok {
			mover = a
		}
		return []record{{logType: session.LogMovement, actor: mover,
			text: mover.Label() + " moved " + formatPoint(from) + " -> " + formatPoint(dest) +
				" (cost " + strconv.FormatFloat(path.Cost, 'f', -1, 64) + ")",
			data: result}}, nil
	})
	return out, err
}
