package engine

import (
	"context"
	"strconv"
	"strings"

	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/actor"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/dice"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/session"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/turn"
)

// actorSpeed resolves the movement speed of entityID: its computed speed,
// or actor.DefaultSpeed when unknown.
func actorSpeed(agg *session.Aggregate, entityID string) float64 {
	if a, ok := agg.Resolve(entityID); ok {
		if speed := a.MovementSpeed(); speed > 0 {
			return speed
		}
	}
	return actor.DefaultSpeed
}

func speedFor(agg *session.Aggregate) turn.SpeedFunc {
	return func(entityID string, _ turn.EntityType) float64 {
		return actorSpeed(agg, entityID)
	}
}

// refreshActionPoints restores the pool of whoever just got the turn.
func refreshActionPoints(agg *session.Aggregate, t *turn.Turn) {
	if t == nil {
		return
	}
	if a, ok := agg.Resolve(t.EntityID); ok {
		_, maxAP := a.ActionPointPool()
		a.SetActionPoints(maxAP)
	}
}

func turnRecord(agg *session.Aggregate, t *turn.Turn, verb string) record {
	r := record{logType: session.LogTurn}
	if t == nil {
		r.text = "no active turn"
		return r
	}
	r.data = t
	name := t.EntityID
	if a, ok := agg.Resolve(t.EntityID); ok {
		r.actor = a
		name = a.Label()
	}
	r.text = name + " " + verb + " turn " + strconv.Itoa(t.TurnNumber)
	return r
}

// RollInitiative starts an encounter with every character and NPC token.
// Everyone is restored to full health and action points first.
func (e *Engine) RollInitiative(ctx context.Context, caller Caller, sessionID string) (turn.State, error) {
	var out turn.State
	_, err := e.mutate(ctx, "roll_initiative", sessionID, func(agg *session.Aggregate, src dice.Source) ([]record, error) {
		if err := requireOpen(agg); err != nil {
			return nil, err
		}
		if err := e.requireHost(agg, caller); err != nil {
			return nil, err
		}
		for _, c := range agg.Characters {
			actor.Restore(c)
		}
		for _, t := range agg.Tokens {
			if t.Kind == actor.TokenNPC {
				actor.Restore(t)
			}
		}
		if err := turn.RollInitiative(&agg.Turn, agg.Combatants(), src, speedFor(agg)); err != nil {
			return nil, err
		}
		out = agg.Turn.Clone()

		parts := make([]string, 0, len(agg.Turn.Order))
		for _, entry := range agg.Turn.Order {
			parts = append(parts, turn.Describe(entry))
		}
		return []record{
			{logType: session.LogInitiative, text: "initiative: " + strings.Join(parts, ", "), data: agg.Turn.Order},
			turnRecord(agg, agg.Turn.Active, "starts"),
		}, nil
	})
	return out, err
}

// StartTurn forces the active turn onto an entity.
func (e *Engine) StartTurn(ctx context.Context, caller Caller, sessionID string, entityType turn.EntityType, entityID string) (*turn.Turn, error) {
	var out *turn.Turn
	_, err := e.mutate(ctx, "start_turn", sessionID, func(agg *session.Aggregate, _ dice.Source) ([]record, error) {
		if err := requireOpen(agg); err != nil {
			return nil, err
		}
		if err := e.requireHost(agg, caller); err != nil {
			return nil, err
		}
		if _, err := agg.ResolveTarget(entityID); err != nil {
			return nil, err
		}
		if entityType == "" {
			entityType = agg.EntityType(entityID)
		}
		started := turn.StartTurn(&agg.Turn, entityType, entityID, actorSpeed(agg, entityID))
		refreshActionPoints(agg, started)
		snapshot := *started
		out = &snapshot
		return []record{turnRecord(agg, started, "starts")}, nil
	})
	return out, err
}

// EndTurn passes the turn to the next entity in the order. The host or the
// owner of the current turn may end it; players cannot end a paused turn.
func (e *Engine) EndTurn(ctx context.Context, caller Caller, sessionID string) (*turn.Turn, error) {
	var out *turn.Turn
	_, err := e.mutate(ctx, "end_turn", sessionID, func(agg *session.Aggregate, _ dice.Source) ([]record, error) {
		if err := requireOpen(agg); err != nil {
			return nil, err
		}
		if !e.isHost(agg, caller) {
			switch {
			case agg.Turn.Paused != nil:
				return nil, apperrors.New(apperrors.CodeTurnPaused, "turn is paused")
			case agg.Turn.Active == nil:
				return nil, e.requireHost(agg, caller)
			case !agg.Owns(caller.UserID, agg.Turn.Active.EntityID):
				return nil, apperrors.WithMetadata(apperrors.CodeNotYourTurn, "not your turn",
					map[string]string{"ActiveID": agg.Turn.Active.EntityID})
			}
		}
		var records []record
		if agg.Turn.Active != nil {
			records = append(records, turnRecord(agg, agg.Turn.Active, "ends"))
		}
		next := turn.EndTurn(&agg.Turn, speedFor(agg))
		refreshActionPoints(agg, next)
		if next != nil {
			snapshot := *next
			out = &snapshot
		}
		return append(records, turnRecord(agg, next, "starts")), nil
	})
	return out, err
}

// UpdateTurn merges bookkeeping into the active turn. Players may only
// touch their own turn.
func (e *Engine) UpdateTurn(ctx context.Context, caller Caller, sessionID string, patch turn.Patch) (*turn.Turn, error) {
	var out *turn.Turn
	_, err := e.mutate(ctx, "update_turn", sessionID, func(agg *session.Aggregate, _ dice.Source) ([]record, error) {
		if err := requireOpen(agg); err != nil {
			return nil, err
		}
		if active := agg.Turn.Active; active != nil && !e.isHost(agg, caller) && !agg.Owns(caller.UserID, active.EntityID) {
			return nil, apperrors.WithMetadata(apperrors.CodeNotYourTurn, "not your turn",
				map[string]string{"ActiveID": active.EntityID})
		}
		updated, err := turn.UpdateTurn(&agg.Turn, patch)
		if err != nil {
			return nil, err
		}
		snapshot := *updated
		out = &snapshot
		return []record{turnRecord(agg, updated, "updates")}, nil
	})
	return out, err
}

// InterruptTurn pauses the active turn so the host holds the moment.
func (e *Engine) InterruptTurn(ctx context.Context, caller Caller, sessionID string) (turn.State, error) {
	return e.hostTurnOp(ctx, caller, sessionID, "interrupt_turn", func(agg *session.Aggregate) (record, error) {
		if err := turn.Interrupt(&agg.Turn); err != nil {
			return record{}, err
		}
		return turnRecord(agg, agg.Turn.Paused, "pauses"), nil
	})
}

// ResumeTurn restores the paused turn.
func (e *Engine) ResumeTurn(ctx context.Context, caller Caller, sessionID string) (turn.State, error) {
	return e.hostTurnOp(ctx, caller, sessionID, "resume_turn", func(agg *session.Aggregate) (record, error) {
		if err := turn.Resume(&agg.Turn); err != nil {
			return record{}, err
		}
		return turnRecord(agg, agg.Turn.Active, "resumes"), nil
	})
}

// AddToInitiative rolls a late joiner into the running order.
func (e *Engine) AddToInitiative(ctx context.Context, caller Caller, sessionID, entityID string) (turn.Entry, error) {
	var out turn.Entry
	_, err := e.mutate(ctx, "add_to_initiative", sessionID, func(agg *session.Aggregate, src dice.Source) ([]record, error) {
		if err := requireOpen(agg); err != nil {
			return nil, err
		}
		if err := e.requireHost(agg, caller); err != nil {
			return nil, err
		}
		a, err := agg.ResolveTarget(entityID)
		if err != nil {
			return nil, err
		}
		entry, err := turn.AddToOrder(&agg.Turn, turn.Combatant{
			EntityID:    a.EntityID(),
			Type:        agg.EntityType(a.EntityID()),
			DexModifier: a.Modifier(actor.Dexterity),
		}, src)
		if err != nil {
			return nil, err
		}
		out = entry
		return []record{{logType: session.LogInitiative, actor: a,
			text: "joins initiative: " + turn.Describe(entry), data: entry}}, nil
	})
	return out, err
}

// RemoveFromInitiative drops an entity from the order.
func (e *Engine) RemoveFromInitiative(ctx context.Context, caller Caller, sessionID, entityID string) (turn.State, error) {
	return e.hostTurnOp(ctx, caller, sessionID, "remove_from_initiative", func(agg *session.Aggregate) (record, error) {
		if err := turn.RemoveFromOrder(&agg.Turn, entityID); err != nil {
			return record{}, err
		}
		return record{logType: session.LogInitiative, text: entityID + " leaves initiative",
			data: map[string]string{"entity_id": entityID}}, nil
	})
}

// ClearInitiative ends the encounter.
func (e *Engine) ClearInitiative(ctx context.Context, caller Caller, sessionID string) (turn.State, error) {
	return e.hostTurnOp(ctx, caller, sessionID, "clear_initiative", func(agg *session.Aggregate) (record, error) {
		turn.ClearOrder(&agg.Turn)
		return record{logType: session.LogInitiative, text: "encounter cleared"}, nil
	})
}

func (e *Engine) hostTurnOp(ctx context.Context, caller Caller, sessionID, op string, fn func(*session.Aggregate) (record, error)) (turn.State, error) {
	var out turn.State
	_, err := e.mutate(ctx, op, sessionID, func(agg *session.Aggregate, _ dice.Source) ([]record, error) {
		if err := requireOpen(agg); err != nil {
			return nil, err
		}
		if err := e.requireHost(agg, caller); err != nil {
			return nil, err
		}
		r, err := fn(agg)
		if err != nil {
			return nil, err
		}
		out = agg.Turn.Clone()
		return []record{r}, nil
	})
	return out, err
}
