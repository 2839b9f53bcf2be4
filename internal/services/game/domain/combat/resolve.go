package combat

import (
	"strconv"

	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/actor"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/dice"
)

// Options tune a single resolution.
type Options struct {
	CriticalMode dice.CriticalMode
	// BypassActionPoints skips the action point check and debit. The engine
	// sets it for host-driven NPCs.
	BypassActionPoints bool
}

// AttackResult reports a weapon attack.
type AttackResult struct {
	AttackerID        string           `json:"attacker_id"`
	TargetID          string           `json:"target_id"`
	Weapon            string           `json:"weapon"`
	Roll              dice.D20         `json:"roll"`
	AttackTotal       int              `json:"attack_total"`
	ArmorClass        int              `json:"armor_class"`
	Hit               bool             `json:"hit"`
	Critical          bool             `json:"critical"`
	Fumble            bool             `json:"fumble"`
	RawDamage         int              `json:"raw_damage"`
	DamageDealt       int              `json:"damage_dealt"`
	DamageType        actor.DamageType `json:"damage_type,omitempty"`
	Resistance        actor.Resistance `json:"resistance,omitempty"`
	RemainingHealth   int              `json:"remaining_health"`
	ActionPointsSpent int              `json:"action_points_spent"`
	Breakdowns        []string         `json:"breakdowns"`
}

// hitRoll is the shared roll-vs-AC step for weapons and attack spells.
type hitRoll struct {
	roll     dice.D20
	total    int
	hit      bool
	critical bool
	fumble   bool
	line     string
}

func rollToHit(src dice.Source, bonus, armorClass int) hitRoll {
	check := dice.RollCheck(src, dice.RollNormal, bonus, &armorClass)
	h := hitRoll{
		roll:  check.Roll,
		total: check.Total,
		line:  "attack " + check.Breakdown + " vs AC " + strconv.Itoa(armorClass),
	}
	switch check.Roll.Natural {
	case 20:
		h.hit, h.critical = true, true
	case 1:
		h.fumble = true
	default:
		h.hit = check.Success
	}
	return h
}

// damageTo applies resistance then subtracts from target, returning the
// damage dealt and the health left.
func damageTo(target actor.Actor, raw int, damageType actor.DamageType) (int, actor.Resistance, int) {
	resistance := target.ResistanceTo(damageType)
	dealt := resistance.Apply(raw)
	current, _ := target.HitPoints()
	remaining := target.SetHitPoints(current - dealt)
	return dealt, resistance, remaining
}

// BasicAttack resolves attacker's weapon attack against target. A natural
// 20 always hits and crits; a natural 1 always misses.
func BasicAttack(src dice.Source, attacker, target actor.Actor, opts Options) (AttackResult, error) {
	if err := requireConscious(attacker, target); err != nil {
		return AttackResult{}, err
	}
	if err := requirePoints(attacker, CostAttack, opts); err != nil {
		return AttackResult{}, err
	}
	weapon := attacker.WeaponAttack()
	notation, err := dice.ParseNotation(weapon.Damage)
	if err != nil {
		return AttackResult{}, err
	}

	ac := target.ArmorClass()
	h := rollToHit(src, weapon.ToHit, ac)
	result := AttackResult{
		AttackerID:  attacker.EntityID(),
		TargetID:    target.EntityID(),
		Weapon:      weapon.Name,
		Roll:        h.roll,
		AttackTotal: h.total,
		ArmorClass:  ac,
		Hit:         h.hit,
		Critical:    h.critical,
		Fumble:      h.fumble,
		DamageType:  weapon.DamageType,
		Breakdowns:  []string{h.line},
	}
	if h.hit {
		damage := dice.RollDamage(src, notation, weapon.DamageModifier, h.critical, opts.CriticalMode)
		result.RawDamage = max(damage.Total, 0)
		result.DamageDealt, result.Resistance, result.RemainingHealth = damageTo(target, result.RawDamage, weapon.DamageType)
		result.Breakdowns = append(result.Breakdowns, "damage "+damage.Breakdown)
	} else {
		result.RemainingHealth, _ = target.HitPoints()
	}
	result.ActionPointsSpent = spendPoints(attacker, CostAttack, opts)
	return result, nil
}
