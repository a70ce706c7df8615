package energy

import (
	"fmt"
	"strings"
)

// Type represents a type of energy.
type Type string

const (
	Grass     Type = "GRASS"
	Fire      Type = "FIRE"
	Water     Type = "WATER"
	Lightning Type = "LIGHTNING"
	Psychic   Type = "PSYCHIC"
	Fighting  Type = "FIGHTING"
	Darkness  Type = "DARKNESS"
	Metal     Type = "METAL"
	Fairy     Type = "FAIRY"
	Dragon    Type = "DRAGON"
	// Colorless costs can be paid with energy of any type.
	Colorless Type = "COLORLESS"
)

// None marks an absent weakness/resistance slot.
const None Type = ""

var allTypes = []Type{
	Grass, Fire, Water, Lightning, Psychic, Fighting,
	Darkness, Metal, Fairy, Dragon, Colorless,
}

// Types returns all energy types in declaration order.
func Types() []Type {
	result := make([]Type, len(allTypes))
	copy(result, allTypes)
	return result
}

// String returns the string representation of the energy type.
func (t Type) String() string {
	return string(t)
}

// Valid reports whether t is a known energy type.
func (t Type) Valid() bool {
	for _, known := range allTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseType parses an energy type name (case-insensitive).
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return None, fmt.Errorf("unknown energy type: %q", s)
	}
	return t, nil
}
