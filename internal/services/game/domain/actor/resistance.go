package actor

import "strings"

// DamageType names a kind of damage.
type DamageType string

const (
	Slashing    DamageType = "slashing"
	Piercing    DamageType = "piercing"
	Bludgeoning DamageType = "bludgeoning"
	Fire        DamageType = "fire"
	Cold        DamageType = "cold"
	Lightning   DamageType = "lightning"
	Thunder     DamageType = "thunder"
	Acid        DamageType = "acid"
	Poison      DamageType = "poison"
	Necrotic    DamageType = "necrotic"
	Radiant     DamageType = "radiant"
	Psychic     DamageType = "psychic"
	Force       DamageType = "force"
	Healing     DamageType = "healing"
)

// NormalizeDamageType lowercases and trims a damage type name.
func NormalizeDamageType(value string) DamageType {
	return DamageType(strings.ToLower(strings.TrimSpace(value)))
}

// Resistance is a target's stance toward one damage type.
type Resistance string

const (
	Normal     Resistance = "normal"
	Immune     Resistance = "immune"
	Resistant  Resistance = "resistant"
	Vulnerable Resistance = "vulnerable"
)

// Multiplier returns the damage scale for r.
func (r Resistance) Multiplier() float64 {
	switch r {
	case Immune:
		return 0
	case Resistant:
		return 0.5
	case Vulnerable:
		return 2
	default:
		return 1
	}
}

// Apply scales raw damage by r and floors the result.
func (r Resistance) Apply(raw int) int {
	if raw <= 0 {
		return 0
	}
	switch r {
	case Immune:
		return 0
	case Resistant:
		return raw / 2
	case Vulnerable:
		return raw * 2
	default:
		return raw
	}
}

// rank orders resistances when profiles merge: immunity wins, then
// resistance, then vulnerability.
func (r Resistance) rank() int {
	switch r {
	case Immune:
		return 3
	case Resistant:
		return 2
	case Vulnerable:
		return 1
	default:
		return 0
	}
}

// Profile maps damage types to resistances; missing types are Normal.
type Profile map[DamageType]Resistance

// For returns the resistance to damageType.
func (p Profile) For(damageType DamageType) Resistance {
	if r, ok := p[damageType]; ok && r != "" {
		return r
	}
	return Normal
}

// Merge overlays other onto p, keeping the stronger stance per type.
func (p Profile) Merge(other Profile) Profile {
	out := make(Profile, len(p)+len(other))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range other {
		if cur, ok := out[k]; !ok || v.rank() > cur.rank() {
			out[k] = v
		}
	}
	return out
}
