package actor

import (
	"maps"
	"slices"
	"strings"

	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/dice"
)

// Character is a player-owned actor.
type Character struct {
	ID              string            `json:"id"`
	OwnerID         string            `json:"owner_id"`
	Name            string            `json:"name"`
	Level           int               `json:"level"`
	Race            string            `json:"race,omitempty"`
	Class           string            `json:"class,omitempty"`
	Abilities       Abilities         `json:"abilities"`
	Proficiencies   []string          `json:"proficiencies,omitempty"`
	Health          int               `json:"health"`
	MaxHealth       int               `json:"max_health"`
	ActionPoints    int               `json:"action_points"`
	MaxActionPoints int               `json:"max_action_points"`
	BaseArmorClass  int               `json:"armor_class,omitempty"`
	Equipped        map[Slot]Item     `json:"equipped,omitempty"`
	Inventory       []Item            `json:"inventory,omitempty"`
	StatusEffects   []string          `json:"status_effects,omitempty"`
	Resistances     Profile           `json:"resistances,omitempty"`
	Extra           map[string]string `json:"extra,omitempty"`
}

var _ Actor = (*Character)(nil)

// DefaultMaxActionPoints is granted to characters created without a pool.
const DefaultMaxActionPoints = 3

// Normalize fills defaults and clamps pools. Call after decoding edits.
func (c *Character) Normalize() {
	if c.Level < 1 {
		c.Level = 1
	}
	if c.MaxHealth < 1 {
		c.MaxHealth = 1
	}
	if c.MaxActionPoints <= 0 {
		c.MaxActionPoints = DefaultMaxActionPoints
	}
	c.Health = clamp(c.Health, c.MaxHealth)
	c.ActionPoints = clamp(c.ActionPoints, c.MaxActionPoints)
}

// Clone returns a deep copy.
func (c *Character) Clone() *Character {
	if c == nil {
		return nil
	}
	out := *c
	out.Proficiencies = slices.Clone(c.Proficiencies)
	out.Inventory = slices.Clone(c.Inventory)
	out.StatusEffects = slices.Clone(c.StatusEffects)
	if c.Equipped != nil {
		out.Equipped = make(map[Slot]Item, len(c.Equipped))
		for k, v := range c.Equipped {
			v.Properties = slices.Clone(v.Properties)
			out.Equipped[k] = v
		}
	}
	if c.Resistances != nil {
		out.Resistances = maps.Clone(c.Resistances)
	}
	if c.Extra != nil {
		out.Extra = maps.Clone(c.Extra)
	}
	return &out
}

func (c *Character) EntityID() string { return c.ID }
func (c *Character) ActorKind() Kind { return KindCharacter }
func (c *Character) Label() string { return c.Name }

func (c *Character) HitPoints() (int, int) { return c.Health, c.MaxHealth }

func (c *Character) SetHitPoints(value int) int {
	c.Health = clamp(value, c.MaxHealth)
	return c.Health
}

func (c *Character) ActionPointPool() (int, int) { return c.ActionPoints, c.MaxActionPoints }

func (c *Character) SetActionPoints(value int) int {
	c.ActionPoints = clamp(value, c.MaxActionPoints)
	return c.ActionPoints
}

// ArmorClass uses the explicit value when set, otherwise armor (or 10)
// plus DEX modifier plus any shield.
func (c *Character) ArmorClass() int {
	if c.BaseArmorClass > 0 {
		return c.BaseArmorClass
	}
	ac := 10 + c.Abilities.Modifier(Dexterity)
	if armor, ok := c.Equipped[SlotArmor]; ok && armor.ArmorClass > 0 {
		ac = armor.ArmorClass + c.Abilities.Modifier(Dexterity)
	}
	if shield, ok := c.Equipped[SlotShield]; ok {
		ac += max(shield.ArmorClass, 2)
	}
	return ac
}

// ResistanceTo merges race-derived traits with the explicit profile.
func (c *Character) ResistanceTo(damageType DamageType) Resistance {
	profile := c.Resistances
	if traits, ok := lookupRace(c.Race); ok && traits.resistances != nil {
		profile = traits.resistances.Merge(profile)
	}
	return profile.For(damageType)
}

func (c *Character) Modifier(ability Ability) int { return c.Abilities.Modifier(ability) }
func (c *Character) Proficiency() int { return ProficiencyBonus(c.Level) }

func (c *Character) IsProficient(skill string) bool {
	skill = strings.ToLower(strings.TrimSpace(skill))
	for _, p := range c.Proficiencies {
		if strings.ToLower(strings.TrimSpace(p)) == skill {
			return true
		}
	}
	return false
}

// MovementSpeed is race-derived, DefaultSpeed for unknown races.
func (c *Character) MovementSpeed() float64 {
	if traits, ok := lookupRace(c.Race); ok && traits.speed > 0 {
		return traits.speed
	}
	return DefaultSpeed
}

// Weapon returns the equipped main-hand weapon, or Unarmed.
func (c *Character) Weapon() Item {
	if w, ok := c.Equipped[SlotMainHand]; ok && w.Damage != "" {
		return w
	}
	return Unarmed
}

// WeaponAttack uses STR for melee and DEX for ranged; finesse weapons take
// the better of the two.
func (c *Character) WeaponAttack() Attack {
	w := c.Weapon()
	ranged := w.Has(PropertyRanged)
	mod := c.Modifier(Strength)
	switch {
	case ranged:
		mod = c.Modifier(Dexterity)
	case w.Has(PropertyFinesse):
		mod = max(mod, c.Modifier(Dexterity))
	}
	damageType := w.DamageType
	if damageType == "" {
		damageType = Bludgeoning
	}
	if _, err := dice.ParseNotation(w.Damage); err != nil {
		w.Damage = Unarmed.Damage
	}
	return Attack{
		Name:           w.Name,
		ToHit:          c.Proficiency() + mod + w.AttackBonus,
		Damage:         w.Damage,
		DamageModifier: mod,
		DamageType:     damageType,
		Ranged:         ranged,
	}
}

// SpellcastingModifier uses the class ability, or the best mental score.
func (c *Character) SpellcastingModifier() int {
	if ability, ok := spellcastingAbility(c.Class); ok {
		return c.Modifier(ability)
	}
	return max(c.Modifier(Intelligence), c.Modifier(Wisdom), c.Modifier(Charisma))
}

func (c *Character) SpellAttackBonus() int { return c.Proficiency() + c.SpellcastingModifier() }
func (c *Character) SpellSaveDC() int { return 8 + c.Proficiency() + c.SpellcastingModifier() }
