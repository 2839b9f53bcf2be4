package actor

import "slices"

// Slot names an equipment slot.
type Slot string

const (
	SlotMainHand Slot = "main_hand"
	SlotOffHand  Slot = "off_hand"
	SlotArmor    Slot = "armor"
	SlotShield   Slot = "shield"
)

// Item properties that change how an attack resolves.
const (
	PropertyFinesse = "finesse"
	PropertyRanged  = "ranged"
	PropertyThrown  = "thrown"
)

// Item is a piece of gear. Weapons carry Damage; armor carries ArmorClass.
type Item struct {
	ID          string     `json:"id,omitempty"`
	Name        string     `json:"name"`
	Type        string     `json:"type,omitempty"`
	Damage      string     `json:"damage,omitempty"`
	DamageType  DamageType `json:"damage_type,omitempty"`
	Properties  []string   `json:"properties,omitempty"`
	AttackBonus int        `json:"attack_bonus,omitempty"`
	ArmorClass  int        `json:"armor_class,omitempty"`
	Quantity    int        `json:"quantity,omitempty"`
}

// Has reports whether the item carries property.
func (i Item) Has(property string) bool {
	return slices.Contains(i.Properties, property)
}

// Unarmed is used when no weapon is equipped.
var Unarmed = Item{Name: "Unarmed Strike", Type: "weapon", Damage: "1d4", DamageType: Bludgeoning}
