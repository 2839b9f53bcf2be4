package combat

import "github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/actor"

// HealthChange reports a direct damage or healing application.
type HealthChange struct {
	TargetID        string           `json:"target_id"`
	Requested       int              `json:"requested"`
	Applied         int              `json:"applied"`
	DamageType      actor.DamageType `json:"damage_type,omitempty"`
	Resistance      actor.Resistance `json:"resistance,omitempty"`
	RemainingHealth int              `json:"remaining_health"`
	MaxHealth       int              `json:"max_health"`
}

// ApplyDamage subtracts amount from target. A typed amount passes through
// the target's resistance first. Health never drops below zero.
func ApplyDamage(target actor.Actor, amount int, damageType actor.DamageType) HealthChange {
	change := HealthChange{TargetID: target.EntityID(), Requested: amount, DamageType: damageType}
	raw := max(amount, 0)
	if damageType != "" {
		change.Resistance = target.ResistanceTo(damageType)
		raw = change.Resistance.Apply(raw)
	}
	before, maxHP := target.HitPoints()
	change.RemainingHealth = target.SetHitPoints(before - raw)
	change.Applied = before - change.RemainingHealth
	change.MaxHealth = maxHP
	return change
}

// ApplyHealing adds amount to target, capped at its maximum.
func ApplyHealing(target actor.Actor, amount int) HealthChange {
	change := HealthChange{TargetID: target.EntityID(), Requested: amount, DamageType: actor.Healing}
	change.Applied, change.RemainingHealth = restoreHealth(target, amount)
	_, change.MaxHealth = target.HitPoints()
	return change
}
