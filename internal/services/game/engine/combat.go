package engine

import (
	"context"
	"strconv"

	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/actor"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/combat"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/dice"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/session"
)

// AttackInput names the two sides of a weapon attack.
type AttackInput struct {
	AttackerID string `json:"attacker_id"`
	TargetID   string `json:"target_id"`
}

// SpellInput names a caster, a target and a catalog spell.
type SpellInput struct {
	CasterID string `json:"caster_id"`
	TargetID string `json:"target_id"`
	Spell    string `json:"spell"`
}

// HealthInput is a direct damage or healing request.
type HealthInput struct {
	TargetID   string `json:"target_id"`
	Amount     int    `json:"amount"`
	DamageType string `json:"damage_type,omitempty"`
}

// CheckInput is an ability or perception check request.
type CheckInput struct {
	ActorID string `json:"actor_id"`
	Ability string `json:"ability,omitempty"`
	Skill   string `json:"skill,omitempty"`
	Mode    string `json:"mode,omitempty"`
	Passive bool   `json:"passive,omitempty"`
	DC      *int   `json:"dc,omitempty"`
}

// resolveActing finds an acting actor and checks the caller may act with it
// now.
func (e *Engine) resolveActing(agg *session.Aggregate, caller Caller, actorID string) (actor.Actor, error) {
	a, ok := agg.Resolve(actorID)
	if !ok {
		return nil, apperrors.WithMetadata(apperrors.CodeCharacterNotFound, "acting actor not found",
			map[string]string{"CharacterID": actorID})
	}
	if err := e.requireControl(agg, caller, a.EntityID()); err != nil {
		return nil, err
	}
	if err := e.requireTurn(agg, caller, a.EntityID()); err != nil {
		return nil, err
	}
	return a, nil
}

// options builds resolver options. NPCs driven by the host ignore the action
// point economy.
func (e *Engine) options(agg *session.Aggregate, caller Caller, a actor.Actor) combat.Options {
	return combat.Options{
		CriticalMode:       e.critical,
		BypassActionPoints: a.ActorKind() == actor.KindNPC && e.isHost(agg, caller),
	}
}

// BasicAttack resolves a weapon attack.
func (e *Engine) BasicAttack(ctx context.Context, caller Caller, sessionID string, in AttackInput) (combat.AttackResult, error) {
	var out combat.AttackResult
	_, err := e.mutate(ctx, "basic_attack", sessionID, func(agg *session.Aggregate, src dice.Source) ([]record, error) {
		if err := requireOpen(agg); err != nil {
			return nil, err
		}
		attacker, err := e.resolveActing(agg, caller, in.AttackerID)
		if err != nil {
			return nil, err
		}
		target, err := agg.ResolveTarget(in.TargetID)
		if err != nil {
			return nil, err
		}
		result, err := combat.BasicAttack(src, attacker, target, e.options(agg, caller, attacker))
		if err != nil {
			return nil, err
		}
		out = result
		return []record{{logType: session.LogAttack, actor: attacker,
			text: attackText(attacker, target, result.Weapon, result.Hit, result.Critical, result.DamageDealt),
			data: result}}, nil
	})
	return out, err
}

// CastSpell resolves a catalog spell.
func (e *Engine) CastSpell(ctx context.Context, caller Caller, sessionID string, in SpellInput) (combat.SpellResult, error) {
	spell, err := combat.LookupSpell(in.Spell)
	if err != nil {
		return combat.SpellResult{}, err
	}
	var out combat.SpellResult
	_, err = e.mutate(ctx, "cast_spell", sessionID, func(agg *session.Aggregate, src dice.Source) ([]record, error) {
		if err := requireOpen(agg); err != nil {
			return nil, err
		}
		caster, err := e.resolveActing(agg, caller, in.CasterID)
		if err != nil {
			return nil, err
		}
		target, err := agg.ResolveTarget(in.TargetID)
		if err != nil {
			return nil, err
		}
		result, err := combat.CastSpell(src, caster, target, spell, e.options(agg, caller, caster))
		if err != nil {
			return nil, err
		}
		out = result
		text := caster.Label() + " casts " + spell.Name + " on " + target.Label()
		switch {
		case result.Healed > 0:
			text += ", healing " + strconv.Itoa(result.Healed)
		case result.DamageDealt > 0:
			text += " for " + strconv.Itoa(result.DamageDealt) + " " + string(result.DamageType)
		case !result.Hit:
			text += " and misses"
		}
		return []record{{logType: session.LogSpell, actor: caster, text: text, data: result}}, nil
	})
	return out, err
}

// ApplyDamage deals direct damage. The host or the target's owner may do it.
func (e *Engine) ApplyDamage(ctx context.Context, caller Caller, sessionID string, in HealthInput) (combat.HealthChange, error) {
	return e.changeHealth(ctx, caller, sessionID, "apply_damage", in, func(target actor.Actor) (combat.HealthChange, record) {
		change := combat.ApplyDamage(target, in.Amount, actor.NormalizeDamageType(in.DamageType))
		return change, record{logType: session.LogDamage, actor: target,
			text: target.Label() + " takes " + strconv.Itoa(change.Applied) + " damage"}
	})
}

// ApplyHealing restores hit points up to the maximum.
func (e *Engine) ApplyHealing(ctx context.Context, caller Caller, sessionID string, in HealthInput) (combat.HealthChange, error) {
	return e.changeHealth(ctx, caller, sessionID, "apply_healing", in, func(target actor.Actor) (combat.HealthChange, record) {
		change := combat.ApplyHealing(target, in.Amount)
		return change, record{logType: session.LogHealing, actor: target,
			text: target.Label() + " heals " + strconv.Itoa(change.Applied)}
	})
}

func (e *Engine) changeHealth(ctx context.Context, caller Caller, sessionID, op string, in HealthInput, apply func(actor.Actor) (combat.HealthChange, record)) (combat.HealthChange, error) {
	if in.Amount < 0 {
		return combat.HealthChange{}, apperrors.New(apperrors.CodeInvalidInput, "amount must not be negative")
	}
	var out combat.HealthChange
	_, err := e.mutate(ctx, op, sessionID, func(agg *session.Aggregate, _ dice.Source) ([]record, error) {
		if err := requireOpen(agg); err != nil {
			return nil, err
		}
		target, err := agg.ResolveTarget(in.TargetID)
		if err != nil {
			return nil, err
		}
		if err := e.requireControl(agg, caller, target.EntityID()); err != nil {
			return nil, err
		}
		change, r := apply(target)
		r.data = change
		out = change
		return []record{r}, nil
	})
	return out, err
}

// PerceptionCheck rolls or computes perception. It changes no state apart
// from the action point an active roll costs on the actor's own turn.
func (e *Engine) PerceptionCheck(ctx context.Context, caller Caller, sessionID string, in CheckInput) (combat.CheckResult, error) {
	mode, err := parseMode(in.Mode)
	if err != nil {
		return combat.CheckResult{}, err
	}
	return e.check(ctx, caller, sessionID, "perception_check", in, func(src dice.Source, a actor.Actor) combat.CheckResult {
		return combat.Perception(src, a, in.Passive, mode, in.DC)
	})
}

// AbilityCheck rolls d20 + ability modifier (+ proficiency in skill).
func (e *Engine) AbilityCheck(ctx context.Context, caller Caller, sessionID string, in CheckInput) (combat.CheckResult, error) {
	ability, err := actor.ParseAbility(in.Ability)
	if err != nil {
		return combat.CheckResult{}, err
	}
	mode, err := parseMode(in.Mode)
	if err != nil {
		return combat.CheckResult{}, err
	}
	in.Passive = false
	return e.check(ctx, caller, sessionID, "ability_check", in, func(src dice.Source, a actor.Actor) combat.CheckResult {
		return combat.AbilityCheck(src, a, ability, in.Skill, mode, in.DC)
	})
}

// check rolls for an actor. Active rolls made on the actor's own live turn
// cost combat.CostOther action points and are saved; anything else only
// logs.
func (e *Engine) check(ctx context.Context, caller Caller, sessionID, op string, in CheckInput, roll func(dice.Source, actor.Actor) combat.CheckResult) (combat.CheckResult, error) {
	var out combat.CheckResult
	_, err := e.mutate(ctx, op, sessionID, func(agg *session.Aggregate, src dice.Source) ([]record, error) {
		if err := requireOpen(agg); err != nil {
			return nil, err
		}
		a, ok := agg.Resolve(in.ActorID)
		if !ok {
			return nil, apperrors.WithMetadata(apperrors.CodeCharacterNotFound, "acting actor not found",
				map[string]string{"CharacterID": in.ActorID})
		}
		if err := e.requireControl(agg, caller, a.EntityID()); err != nil {
			return nil, err
		}
		costly := !in.Passive && agg.Turn.ActiveEntity() == a.EntityID()
		bypass := e.options(agg, caller, a).BypassActionPoints
		if costly {
			if err := combat.RequireActionPoints(a, combat.CostOther, bypass); err != nil {
				return nil, err
			}
		}
		result := roll(src, a)
		out = result
		records := []record{{logType: session.LogCheck, actor: a, text: checkText(a, result), data: result}}
		if !costly {
			return records, errUnchanged
		}
		combat.SpendActionPoints(a, combat.CostOther, bypass)
		return records, nil
	})
	return out, err
}

func parseMode(value string) (dice.RollMode, error) {
	mode, err := dice.ParseRollMode(value)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeInvalidInput, "unknown roll mode", err)
	}
	return mode, nil
}

func attackText(attacker, target actor.Actor, weapon string, hit, critical bool, dealt int) string {
	text := attacker.Label() + " attacks " + target.Label()
	if weapon != "" {
		text += " with " + weapon
	}
	switch {
	case critical:
		return text + ": critical hit for " + strconv.Itoa(dealt)
	case hit:
		return text + ": hit for " + strconv.Itoa(dealt)
	default:
		return text + ": miss"
	}
}

func checkText(a actor.Actor, result combat.CheckResult) string {
	name := string(result.Ability)
	if result.Skill != "" {
		name = result.Skill
	}
	text := a.Label() + " " + name + " check " + strconv.Itoa(result.Total)
	if result.Passive {
		text = a.Label() + " passive " + name + " " + strconv.Itoa(result.Total)
	}
	if result.DC != nil {
		if result.Success {
			return text + " vs DC " + strconv.Itoa(*result.DC) + ": success"
		}
		return text + " vs DC " + strconv.Itoa(*result.DC) + ": failure"
	}
	return text
}
