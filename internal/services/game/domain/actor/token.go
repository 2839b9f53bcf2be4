package actor

import (
	"maps"
	"strings"

	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/dice"
)

// TokenKind distinguishes player tokens from host-owned NPC tokens.
type TokenKind string

const (
	TokenPlayer TokenKind = "player"
	TokenNPC    TokenKind = "npc"
)

// ParseTokenKind accepts "player" or "npc".
func ParseTokenKind(value string) (TokenKind, bool) {
	switch TokenKind(strings.ToLower(strings.TrimSpace(value))) {
	case TokenPlayer:
		return TokenPlayer, true
	case TokenNPC:
		return TokenNPC, true
	}
	return "", false
}

// Disposition is a token's stance toward the party.
type Disposition string

const (
	Hostile  Disposition = "hostile"
	Friendly Disposition = "friendly"
	Neutral  Disposition = "neutral"
)

// DefaultNPCActionPoints is the pool an NPC token gets when none is set.
const DefaultNPCActionPoints = 3

// TokenStats is the typed combat extension a token carries.
type TokenStats struct {
	ActionPoints     int        `json:"action_points"`
	MaxActionPoints  int        `json:"max_action_points"`
	ArmorClass       int        `json:"armor_class,omitempty"`
	Speed            float64    `json:"speed,omitempty"`
	Dexterity        int        `json:"dexterity,omitempty"`
	Abilities        Abilities  `json:"abilities,omitempty"`
	Level            int        `json:"level,omitempty"`
	AttackBonus      int        `json:"attack_bonus,omitempty"`
	Damage           string     `json:"damage,omitempty"`
	DamageType       DamageType `json:"damage_type,omitempty"`
	Ranged           bool       `json:"ranged,omitempty"`
	SpellAttackBonus int        `json:"spell_attack_bonus,omitempty"`
	SpellSaveDC      int        `json:"spell_save_dc,omitempty"`
	Proficiencies    []string   `json:"proficiencies,omitempty"`
	Resistances      Profile    `json:"resistances,omitempty"`
	Icon             string     `json:"icon,omitempty"`
}

// Token is a map piece. Player tokens point at a Character; NPC tokens
// carry their own stats.
type Token struct {
	ID          string            `json:"id"`
	Kind        TokenKind         `json:"kind"`
	CharacterID string            `json:"character_id,omitempty"`
	Name        string            `json:"name"`
	X           int               `json:"x"`
	Y           int               `json:"y"`
	Disposition Disposition       `json:"disposition,omitempty"`
	Health      int               `json:"health"`
	MaxHealth   int               `json:"max_health"`
	Stats       TokenStats        `json:"stats"`
	Extra       map[string]string `json:"extra,omitempty"`
}

var _ Actor = (*Token)(nil)

// Normalize fills defaults and clamps pools.
func (t *Token) Normalize() {
	if t.MaxHealth < 1 {
		t.MaxHealth = 1
	}
	if t.Stats.MaxActionPoints <= 0 {
		t.Stats.MaxActionPoints = DefaultNPCActionPoints
	}
	if t.Disposition == "" {
		if t.Kind == TokenPlayer {
			t.Disposition = Friendly
		} else {
			t.Disposition = Hostile
		}
	}
	t.Health = clamp(t.Health, t.MaxHealth)
	t.Stats.ActionPoints = clamp(t.Stats.ActionPoints, t.Stats.MaxActionPoints)
}

// Clone returns a deep copy.
func (t *Token) Clone() *Token {
	if t == nil {
		return nil
	}
	out := *t
	out.Stats.Proficiencies = append([]string(nil), t.Stats.Proficiencies...)
	if t.Stats.Resistances != nil {
		out.Stats.Resistances = maps.Clone(t.Stats.Resistances)
	}
	if t.Extra != nil {
		out.Extra = maps.Clone(t.Extra)
	}
	return &out
}

func (t *Token) EntityID() string { return t.ID }

func (t *Token) ActorKind() Kind {
	if t.Kind == TokenPlayer {
		return KindCharacter
	}
	return KindNPC
}

func (t *Token) Label() string { return t.Name }

func (t *Token) HitPoints() (int, int) { return t.Health, t.MaxHealth }

func (t *Token) SetHitPoints(value int) int {
	t.Health = clamp(value, t.MaxHealth)
	return t.Health
}

func (t *Token) ActionPointPool() (int, int) {
	return t.Stats.ActionPoints, t.Stats.MaxActionPoints
}

func (t *Token) SetActionPoints(value int) int {
	t.Stats.ActionPoints = clamp(value, t.Stats.MaxActionPoints)
	return t.Stats.ActionPoints
}

// ArmorClass defaults to 10 + DEX modifier.
func (t *Token) ArmorClass() int {
	if t.Stats.ArmorClass > 0 {
		return t.Stats.ArmorClass
	}
	return 10 + t.Modifier(Dexterity)
}

func (t *Token) ResistanceTo(damageType DamageType) Resistance {
	return t.Stats.Resistances.For(damageType)
}

// Modifier reads the ability block; the flat Dexterity stat wins for DEX
// when set.
func (t *Token) Modifier(ability Ability) int {
	if ability == Dexterity && t.Stats.Dexterity > 0 {
		return Modifier(t.Stats.Dexterity)
	}
	return t.Stats.Abilities.Modifier(ability)
}

func (t *Token) Proficiency() int { return ProficiencyBonus(t.Stats.Level) }

func (t *Token) IsProficient(skill string) bool {
	skill = strings.ToLower(strings.TrimSpace(skill))
	for _, p := range t.Stats.Proficiencies {
		if strings.ToLower(strings.TrimSpace(p)) == skill {
			return true
		}
	}
	return false
}

func (t *Token) MovementSpeed() float64 {
	if t.Stats.Speed > 0 {
		return t.Stats.Speed
	}
	return DefaultSpeed
}

// WeaponAttack uses the token's flat attack bonus when set, otherwise
// proficiency plus STR (DEX when ranged).
func (t *Token) WeaponAttack() Attack {
	mod := t.Modifier(Strength)
	if t.Stats.Ranged {
		mod = t.Modifier(Dexterity)
	}
	toHit := t.Proficiency() + mod
	if t.Stats.AttackBonus != 0 {
		toHit = t.Stats.AttackBonus
	}
	damage := t.Stats.Damage
	if _, err := dice.ParseNotation(damage); err != nil {
		damage = Unarmed.Damage
	}
	damageType := t.Stats.DamageType
	if damageType == "" {
		damageType = Bludgeoning
	}
	name := "Strike"
	if t.Stats.Ranged {
		name = "Shot"
	}
	return Attack{
		Name:           name,
		ToHit:          toHit,
		Damage:         damage,
		DamageModifier: mod,
		DamageType:     damageType,
		Ranged:         t.Stats.Ranged,
	}
}

func (t *Token) SpellcastingModifier() int {
	return max(t.Modifier(Intelligence), t.Modifier(Wisdom), t.Modifier(Charisma))
}

func (t *Token) SpellAttackBonus() int {
	if t.Stats.SpellAttackBonus != 0 {
		return t.Stats.SpellAttackBonus
	}
	return t.Proficiency() + t.SpellcastingModifier()
}

func (t *Token) SpellSaveDC() int {
	if t.Stats.SpellSaveDC > 0 {
		return t.Stats.SpellSaveDC
	}
	return 8 + t.Proficiency() + t.SpellcastingModifier()
}
