package actor

import (
	"strings"

	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
)

// Ability names one of the six ability scores.
type Ability string

const (
	Strength     Ability = "str"
	Dexterity    Ability = "dex"
	Constitution Ability = "con"
	Intelligence Ability = "int"
	Wisdom       Ability = "wis"
	Charisma     Ability = "cha"
)

// DefaultScore is used when a score is unset.
const DefaultScore = 10

// ParseAbility accepts short ("dex") or long ("dexterity") names.
func ParseAbility(value string) (Ability, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "str", "strength":
		return Strength, nil
	case "dex", "dexterity":
		return Dexterity, nil
	case "con", "constitution":
		return Constitution, nil
	case "int", "intelligence":
		return Intelligence, nil
	case "wis", "wisdom":
		return Wisdom, nil
	case "cha", "charisma":
		return Charisma, nil
	}
	return "", apperrors.WithMetadata(apperrors.CodeAbilityUnknown, "unknown ability "+value,
		map[string]string{"Ability": value})
}

// Abilities is the six-score block. Zero scores read as DefaultScore.
type Abilities struct {
	Strength     int `json:"str,omitempty"`
	Dexterity    int `json:"dex,omitempty"`
	Constitution int `json:"con,omitempty"`
	Intelligence int `json:"int,omitempty"`
	Wisdom       int `json:"wis,omitempty"`
	Charisma     int `json:"cha,omitempty"`
}

// Score returns the score for ability.
func (a Abilities) Score(ability Ability) int {
	var score int
	switch ability {
	case Strength:
		score = a.Strength
	case Dexterity:
		score = a.Dexterity
	case Constitution:
		score = a.Constitution
	case Intelligence:
		score = a.Intelligence
	case Wisdom:
		score = a.Wisdom
	case Charisma:
		score = a.Charisma
	}
	if score <= 0 {
		return DefaultScore
	}
	return score
}

// Modifier returns the modifier for ability.
func (a Abilities) Modifier(ability Ability) int {
	return Modifier(a.Score(ability))
}

// Modifier converts a score to its modifier, floor((score-10)/2).
func Modifier(score int) int {
	diff := score - 10
	if diff < 0 && diff%2 != 0 {
		return diff/2 - 1
	}
	return diff / 2
}

// ProficiencyBonus is +2 at level 1 rising by one every four levels.
func ProficiencyBonus(level int) int {
	if level < 1 {
		level = 1
	}
	return 2 + (level-1)/4
}
