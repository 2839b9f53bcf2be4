package combat

import (
	"strconv"

	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/actor"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/dice"
)

// SkillPerception is the proficiency name perception checks look for.
const SkillPerception = "perception"

// CheckResult reports an ability, skill or perception check.
type CheckResult struct {
	ActorID    string        `json:"actor_id"`
	Ability    actor.Ability `json:"ability"`
	Skill      string        `json:"skill,omitempty"`
	Passive    bool          `json:"passive"`
	Proficient bool          `json:"proficient"`
	Modifier   int           `json:"modifier"`
	Roll       *dice.D20     `json:"roll,omitempty"`
	Total      int           `json:"total"`
	DC         *int          `json:"dc,omitempty"`
	Success    bool          `json:"success"`
	Breakdown  string        `json:"breakdown"`
}

func checkModifier(a actor.Actor, ability actor.Ability, skill string) (int, bool) {
	mod := a.Modifier(ability)
	proficient := skill != "" && a.IsProficient(skill)
	if proficient {
		mod += a.Proficiency()
	}
	return mod, proficient
}

// AbilityCheck rolls d20 + ability modifier, adding proficiency when the
// actor is proficient in skill. Without a DC the check succeeds.
func AbilityCheck(src dice.Source, a actor.Actor, ability actor.Ability, skill string, mode dice.RollMode, dc *int) CheckResult {
	mod, proficient := checkModifier(a, ability, skill)
	check := dice.RollCheck(src, mode, mod, dc)
	return CheckResult{
		ActorID:    a.EntityID(),
		Ability:    ability,
		Skill:      skill,
		Proficient: proficient,
		Modifier:   mod,
		Roll:       &check.Roll,
		Total:      check.Total,
		DC:         dc,
		Success:    check.Success,
		Breakdown:  check.Breakdown,
	}
}

// Perception rolls an active check (d20 + WIS + proficiency) or computes
// the passive score (10 + the same modifier).
func Perception(src dice.Source, a actor.Actor, passive bool, mode dice.RollMode, dc *int) CheckResult {
	if !passive {
		return AbilityCheck(src, a, actor.Wisdom, SkillPerception, mode, dc)
	}
	mod, proficient := checkModifier(a, actor.Wisdom, SkillPerception)
	total := 10 + mod
	return CheckResult{
		ActorID:    a.EntityID(),
		Ability:    actor.Wisdom,
		Skill:      SkillPerception,
		Passive:    true,
		Proficient: proficient,
		Modifier:   mod,
		Total:      total,
		DC:         dc,
		Success:    dc == nil || total >= *dc,
		Breakdown:  "passive 10" + signedText(mod),
	}
}

func signedText(v int) string {
	switch {
	case v > 0:
		return " + " + strconv.Itoa(v)
	case v < 0:
		return " - " + strconv.Itoa(-v)
	}
	return ""
}
