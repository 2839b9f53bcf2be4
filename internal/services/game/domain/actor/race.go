package actor

import "strings"

type raceTraits struct {
	speed       float64
	resistances Profile
}

var races = map[string]raceTraits{
	"dwarf":      {speed: 5, resistances: Profile{Poison: Resistant}},
	"halfling":   {speed: 5},
	"gnome":      {speed: 5},
	"tiefling":   {speed: DefaultSpeed, resistances: Profile{Fire: Resistant}},
	"human":      {speed: DefaultSpeed},
	"elf":        {speed: DefaultSpeed},
	"half-elf":   {speed: DefaultSpeed},
	"half-orc":   {speed: DefaultSpeed},
	"dragonborn": {speed: DefaultSpeed},
}

func lookupRace(race string) (raceTraits, bool) {
	traits, ok := races[strings.ToLower(strings.TrimSpace(race))]
	return traits, ok
}

// spellcastingAbility maps a class to the ability it casts with.
func spellcastingAbility(class string) (Ability, bool) {
	switch strings.ToLower(strings.TrimSpace(class)) {
	case "wizard", "artificer":
		return Intelligence, true
	case "cleric", "druid", "ranger", "monk":
		return Wisdom, true
	case "bard", "sorcerer", "warlock", "paladin":
		return Charisma, true
	}
	return "", false
}
