package actor

// Kind distinguishes the actor variants.
type Kind string

const (
	KindCharacter Kind = "character"
	KindNPC       Kind = "npc"
)

// DefaultSpeed is the movement budget, in tiles, when nothing else applies.
const DefaultSpeed = 6.0

// Attack is an actor's ready weapon attack.
type Attack struct {
	Name           string
	ToHit          int
	Damage         string
	DamageModifier int
	DamageType     DamageType
	Ranged         bool
}

// Actor is the capability surface the combat and turn rules act on.
type Actor interface {
	EntityID() string
	ActorKind() Kind
	Label() string

	HitPoints() (current, maximum int)
	// SetHitPoints clamps value into [0, maximum] and returns what was stored.
	SetHitPoints(value int) int
	ActionPointPool() (current, maximum int)
	// SetActionPoints clamps value into [0, maximum] and returns what was stored.
	SetActionPoints(value int) int

	ArmorClass() int
	ResistanceTo(damageType DamageType) Resistance
	Modifier(ability Ability) int
	Proficiency() int
	IsProficient(skill string) bool
	MovementSpeed() float64

	WeaponAttack() Attack
	SpellAttackBonus() int
	SpellSaveDC() int
	SpellcastingModifier() int
}

// Unconscious reports whether a has no hit points left.
func Unconscious(a Actor) bool {
	current, _ := a.HitPoints()
	return current <= 0
}

// Restore refills hit points and action points to their maximums.
func Restore(a Actor) {
	_, maxHP := a.HitPoints()
	a.SetHitPoints(maxHP)
	_, maxAP := a.ActionPointPool()
	a.SetActionPoints(maxAP)
}

func clamp(value, maximum int) int {
	if maximum < 0 {
		maximum = 0
	}
	return max(0, min(value, maximum))
}
