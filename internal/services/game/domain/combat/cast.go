package combat

import (
	"strconv"

	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/actor"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/dice"
)

// SpellResult reports a spell cast.
type SpellResult struct {
	Spell             string           `json:"spell"`
	AttackType        AttackType       `json:"attack_type"`
	CasterID          string           `json:"caster_id"`
	TargetID          string           `json:"target_id"`
	Roll              *dice.D20        `json:"roll,omitempty"`
	AttackTotal       int              `json:"attack_total,omitempty"`
	SaveDC            int              `json:"save_dc,omitempty"`
	SaveTotal         int              `json:"save_total,omitempty"`
	Saved             bool             `json:"saved,omitempty"`
	Hit               bool             `json:"hit"`
	Critical          bool             `json:"critical"`
	Fumble            bool             `json:"fumble"`
	RawDamage         int              `json:"raw_damage"`
	DamageDealt       int              `json:"damage_dealt"`
	Healed            int              `json:"healed"`
	DamageType        actor.DamageType `json:"damage_type,omitempty"`
	Resistance        actor.Resistance `json:"resistance,omitempty"`
	RemainingHealth   int              `json:"remaining_health"`
	ActionPointsSpent int              `json:"action_points_spent"`
	Breakdowns        []string         `json:"breakdowns"`
}

// CastSpell resolves spell from caster onto target.
//
// Only damaging spells are refused on an unconscious target. Save spells
// apply resistance to the rolled damage first and then halve
// (rounding down) on a successful save.
func CastSpell(src dice.Source, caster, target actor.Actor, spell Spell, opts Options) (SpellResult, error) {
	if actor.Unconscious(caster) {
		return SpellResult{}, requireConscious(caster, nil)
	}
	if actor.Unconscious(target) && spell.AttackType != SpellSupport && !TargetsUnconscious(spell.Name) {
		return SpellResult{}, targetUnconscious(target)
	}
	if err := requirePoints(caster, CostSpell, opts); err != nil {
		return SpellResult{}, err
	}

	var notation dice.Notation
	if spell.Damage != "" {
		n, err := dice.ParseNotation(spell.Damage)
		if err != nil {
			return SpellResult{}, err
		}
		notation = n
	}

	result := SpellResult{
		Spell:      spell.Name,
		AttackType: spell.AttackType,
		CasterID:   caster.EntityID(),
		TargetID:   target.EntityID(),
		DamageType: spell.DamageType,
	}
	modifier := 0
	if spell.AddModifier {
		modifier = caster.SpellcastingModifier()
	}

	switch spell.AttackType {
	case SpellAttack:
		h := rollToHit(src, caster.SpellAttackBonus(), target.ArmorClass())
		result.Roll = &h.roll
		result.AttackTotal = h.total
		result.Hit, result.Critical, result.Fumble = h.hit, h.critical, h.fumble
		result.Breakdowns = append(result.Breakdowns, h.line)
		if h.hit {
			damage := dice.RollDamage(src, notation, modifier, h.critical, opts.CriticalMode)
			applySpellDamage(&result, target, damage, false)
		}

	case SpellAutoHit:
		result.Hit = true
		damage := dice.RollDamage(src, notation, modifier, false, opts.CriticalMode)
		applySpellDamage(&result, target, damage, false)

	case SpellSave:
		dc := caster.SpellSaveDC()
		save := dice.RollCheck(src, dice.RollNormal, target.Modifier(spell.SaveAbility), &dc)
		result.Roll = &save.Roll
		result.SaveDC = dc
		result.SaveTotal = save.Total
		result.Saved = save.Success
		result.Hit = true
		result.Breakdowns = append(result.Breakdowns,
			string(spell.SaveAbility)+" save "+save.Breakdown+" vs DC "+strconv.Itoa(dc))
		damage := dice.RollDamage(src, notation, modifier, false, opts.CriticalMode)
		applySpellDamage(&result, target, damage, save.Success)

	case SpellSupport:
		result.Hit = true
		if spell.Heals() {
			heal := dice.RollDamage(src, notation, modifier, false, opts.CriticalMode)
			healed, remaining := restoreHealth(target, heal.Total)
			result.Healed = healed
			result.RemainingHealth = remaining
			result.Breakdowns = append(result.Breakdowns, "healing "+heal.Breakdown)
		} else {
			result.RemainingHealth, _ = target.HitPoints()
		}

	default:
		return SpellResult{}, apperrors.WithMetadata(apperrors.CodeSpellUnsupported, "unsupported spell type",
			map[string]string{"Spell": spell.Name})
	}

	if !result.Hit {
		result.RemainingHealth, _ = target.HitPoints()
	}
	result.ActionPointsSpent = spendPoints(caster, CostSpell, opts)
	return result, nil
}

func applySpellDamage(result *SpellResult, target actor.Actor, damage dice.DamageRoll, halve bool) {
	raw := max(damage.Total, 0)
	resistance := target.ResistanceTo(result.DamageType)
	dealt := resistance.Apply(raw)
	if halve {
		dealt /= 2
	}
	current, _ := target.HitPoints()
	result.RawDamage = raw
	result.Resistance = resistance
	result.DamageDealt = dealt
	result.RemainingHealth = target.SetHitPoints(current - dealt)
	result.Breakdowns = append(result.Breakdowns, "damage "+damage.Breakdown)
}

// restoreHealth restores up to amount, clamped at maximum. It returns the hit
// points actually restored and the new total.
func restoreHealth(target actor.Actor, amount int) (int, int) {
	current, _ := target.HitPoints()
	if amount <= 0 {
		return 0, current
	}
	after := target.SetHitPoints(current + amount)
	return after - current, after
}
