package combat

import (
	"slices"
	"strings"

	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/actor"
)

// AttackType is how a spell reaches its target.
type AttackType string

const (
	SpellAttack  AttackType = "attack"
	SpellAutoHit AttackType = "auto-hit"
	SpellSave    AttackType = "save"
	SpellSupport AttackType = "support"
)

// Spell is a catalog entry.
type Spell struct {
	Name        string           `json:"name"`
	Level       int              `json:"level"`
	AttackType  AttackType       `json:"attack_type"`
	Damage      string           `json:"damage,omitempty"`
	DamageType  actor.DamageType `json:"damage_type,omitempty"`
	SaveAbility actor.Ability    `json:"save_ability,omitempty"`
	// AddModifier adds the caster's spellcasting modifier to the roll.
	AddModifier bool `json:"add_modifier,omitempty"`
}

// Heals reports whether the spell restores hit points.
func (s Spell) Heals() bool {
	return s.AttackType == SpellSupport && s.DamageType == actor.Healing
}

var catalog = []Spell{
	{Name: "Fire Bolt", AttackType: SpellAttack, Damage: "1d10", DamageType: actor.Fire},
	{Name: "Ray of Frost", AttackType: SpellAttack, Damage: "1d8", DamageType: actor.Cold},
	{Name: "Eldritch Blast", AttackType: SpellAttack, Damage: "1d10", DamageType: actor.Force},
	{Name: "Guiding Bolt", Level: 1, AttackType: SpellAttack, Damage: "4d6", DamageType: actor.Radiant},
	{Name: "Inflict Wounds", Level: 1, AttackType: SpellAttack, Damage: "3d10", DamageType: actor.Necrotic},
	{Name: "Magic Missile", Level: 1, AttackType: SpellAutoHit, Damage: "3d4+3", DamageType: actor.Force},
	{Name: "Sacred Flame", AttackType: SpellSave, Damage: "1d8", DamageType: actor.Radiant, SaveAbility: actor.Dexterity},
	{Name: "Poison Spray", AttackType: SpellSave, Damage: "1d12", DamageType: actor.Poison, SaveAbility: actor.Constitution},
	{Name: "Burning Hands", Level: 1, AttackType: SpellSave, Damage: "3d6", DamageType: actor.Fire, SaveAbility: actor.Dexterity},
	{Name: "Thunderwave", Level: 1, AttackType: SpellSave, Damage: "2d8", DamageType: actor.Thunder, SaveAbility: actor.Constitution},
	{Name: "Fireball", Level: 3, AttackType: SpellSave, Damage: "8d6", DamageType: actor.Fire, SaveAbility: actor.Dexterity},
	{Name: "Cure Wounds", Level: 1, AttackType: SpellSupport, Damage: "1d8", DamageType: actor.Healing, AddModifier: true},
	{Name: "Healing Word", Level: 1, AttackType: SpellSupport, Damage: "1d4", DamageType: actor.Healing, AddModifier: true},
	{Name: "Revivify", Level: 3, AttackType: SpellSupport, Damage: "1d1", DamageType: actor.Healing},
	{Name: "Shield of Faith", Level: 1, AttackType: SpellSupport},
}

// revivingSpells may target an unconscious creature.
var revivingSpells = []string{"cure wounds", "healing word", "mass healing word", "revivify", "spare the dying"}

func spellKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// LookupSpell finds a catalog spell by name, ignoring case and spacing.
func LookupSpell(name string) (Spell, error) {
	key := spellKey(name)
	for _, s := range catalog {
		if spellKey(s.Name) == key {
			return s, nil
		}
	}
	return Spell{}, apperrors.WithMetadata(apperrors.CodeSpellUnknown, "unknown spell",
		map[string]string{"Spell": name})
}

// Spells returns a copy of the catalog.
func Spells() []Spell {
	return slices.Clone(catalog)
}

// TargetsUnconscious reports whether the spell may be cast on a creature at
// zero hit points.
func TargetsUnconscious(name string) bool {
	return slices.Contains(revivingSpells, spellKey(name))
}
