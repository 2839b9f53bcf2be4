package dice

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
)

// ErrInvalidSides is returned when a die has fewer than one side.
var ErrInvalidSides = apperrors.New(apperrors.CodeDiceInvalidSides, "die sides must be positive")

// RollDie returns a uniform integer in [1, sides].
func RollDie(src Source, sides int) (int, error) {
	if sides < 1 {
		return 0, ErrInvalidSides
	}
	return roll(src, sides), nil
}

func roll(src Source, sides int) int {
	return src.Intn(sides) + 1
}

// CriticalMode selects how a critical hit scales damage dice.
type CriticalMode string

const (
	// CriticalDouble rolls twice the notation's dice.
	CriticalDouble CriticalMode = "double"
	// CriticalMax sets every die to its maximum face.
	CriticalMax CriticalMode = "max"
)

// ParseCriticalMode accepts "double" or "max"; empty means double.
func ParseCriticalMode(value string) (CriticalMode, error) {
	switch CriticalMode(strings.ToLower(strings.TrimSpace(value))) {
	case "", CriticalDouble:
		return CriticalDouble, nil
	case CriticalMax:
		return CriticalMax, nil
	default:
		return "", fmt.Errorf("unknown critical mode %q", value)
	}
}

// DamageRoll is the outcome of RollDamage.
type DamageRoll struct {
	Notation        Notation `json:"notation"`
	Dice            []int    `json:"dice"`
	Modifier        int      `json:"modifier"`
	AbilityModifier int      `json:"ability_modifier"`
	Critical        bool     `json:"critical"`
	Total           int      `json:"total"`
	Breakdown       string   `json:"breakdown"`
}

// RollDamage rolls notation, adding its modifier and abilityModifier.
// On a critical, CriticalDouble rolls twice the dice and CriticalMax fixes
// each die at its highest face.
func RollDamage(src Source, notation Notation, abilityModifier int, critical bool, mode CriticalMode) DamageRoll {
	count := notation.Count
	maxed := false
	if critical {
		if mode == CriticalMax {
			maxed = true
		} else {
			count *= 2
		}
	}

	faces := make([]int, count)
	sum := 0
	for i := range faces {
		if maxed {
			faces[i] = notation.Sides
		} else {
			faces[i] = roll(src, notation.Sides)
		}
		sum += faces[i]
	}

	result := DamageRoll{
		Notation:        notation,
		Dice:            faces,
		Modifier:        notation.Modifier,
		AbilityModifier: abilityModifier,
		Critical:        critical,
		Total:           sum + notation.Modifier + abilityModifier,
	}
	result.Breakdown = formatBreakdown(count, notation.Sides, faces, notation.Modifier+abilityModifier, result.Total)
	return result
}

// formatBreakdown renders e.g. "2d6 [3, 5] + 2 = 10".
func formatBreakdown(count, sides int, faces []int, modifier, total int) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(count))
	b.WriteString("d")
	b.WriteString(strconv.Itoa(sides))
	b.WriteString(" [")
	for i, face := range faces {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(face))
	}
	b.WriteString("]")
	b.WriteString(signed(modifier))
	b.WriteString(" = ")
	b.WriteString(strconv.Itoa(total))
	return b.String()
}

func signed(modifier int) string {
	switch {
	case modifier > 0:
		return " + " + strconv.Itoa(modifier)
	case modifier < 0:
		return " - " + strconv.Itoa(-modifier)
	default:
		return ""
	}
}

// RollMode selects advantage handling for d20 rolls.
type RollMode string

const (
	RollNormal       RollMode = "normal"
	RollAdvantage    RollMode = "advantage"
	RollDisadvantage RollMode = "disadvantage"
)

// D20 is a d20 roll with its kept face and the faces seen.
type D20 struct {
	Mode    RollMode `json:"mode"`
	Rolls   []int    `json:"rolls"`
	Natural int      `json:"natural"`
}

// RollD20 rolls a d20. Advantage keeps the higher of two, disadvantage the lower.
func RollD20(src Source, mode RollMode) D20 {
	first := roll(src, 20)
	if mode != RollAdvantage && mode != RollDisadvantage {
		return D20{Mode: RollNormal, Rolls: []int{first}, Natural: first}
	}
	second := roll(src, 20)
	kept := max(first, second)
	if mode == RollDisadvantage {
		kept = min(first, second)
	}
	return D20{Mode: mode, Rolls: []int{first, second}, Natural: kept}
}

// Check is a d20 test against an optional DC.
type Check struct {
	Roll      D20    `json:"roll"`
	Modifier  int    `json:"modifier"`
	Total     int    `json:"total"`
	DC        *int   `json:"dc,omitempty"`
	Success   bool   `json:"success"`
	Breakdown string `json:"breakdown"`
}

// RollCheck rolls d20 + modifier and compares the total to dc when set.
// Without a DC the check counts as a success.
func RollCheck(src Source, mode RollMode, modifier int, dc *int) Check {
	d20 := RollD20(src, mode)
	total := d20.Natural + modifier
	check := Check{
		Roll:     d20,
		Modifier: modifier,
		Total:    total,
		DC:       dc,
		Success:  dc == nil || total >= *dc,
	}
	check.Breakdown = formatBreakdown(1, 20, []int{d20.Natural}, modifier, total)
	return check
}

// ParseRollMode accepts "normal", "advantage" or "disadvantage"; empty
// means normal.
func ParseRollMode(value string) (RollMode, error) {
	switch RollMode(strings.ToLower(strings.TrimSpace(value))) {
	case "", RollNormal:
		return RollNormal, nil
	case RollAdvantage:
		return RollAdvantage, nil
	case RollDisadvantage:
		return RollDisadvantage, nil
	default:
		return "", fmt.Errorf("unknown roll mode %q", value)
	}
}
