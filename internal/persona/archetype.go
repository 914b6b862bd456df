package persona

import (
	"fmt"
	"strings"
)

// Archetype is the closed set of boardroom roles. Display metadata hangs off
// the type so front-ends never keep their own lookup tables.
type Archetype int

const (
	Visionary Archetype = iota + 1
	Strategist
	Product
	Operations
	Investor
)

type archetypeMeta struct {
	name   string
	label  string
	accent string // hex colour understood by lipgloss
	icon   string
}

var archetypes = map[Archetype]archetypeMeta{
	Visionary:  {name: "visionary", label: "Visionary", accent: "#60A5FA", icon: "◎"},
	Strategist: {name: "strategist", label: "Strategist", accent: "#C084FC", icon: "⚔"},
	Product:    {name: "product", label: "Product", accent: "#E5E7EB", icon: "▣"},
	Operations: {name: "operations", label: "Operations", accent: "#EAB308", icon: "▤"},
	Investor:   {name: "investor", label: "Investor", accent: "#22C55E", icon: "$"},
}

// Archetypes returns every archetype in declaration order.
func Archetypes() []Archetype {
	return []Archetype{Visionary, Strategist, Product, Operations, Investor}
}

func (a Archetype) meta() archetypeMeta {
	if m, ok := archetypes[a]; ok {
		return m
	}
	return archetypeMeta{name: "unknown", label: "Unknown", accent: "#9CA3AF", icon: "?"}
}

func (a Archetype) String() string { return a.meta().name }

// Label is the human-readable name.
func (a Archetype) Label() string { return a.meta().label }

// Accent is the persona colour as a hex string.
func (a Archetype) Accent() string { return a.meta().accent }

// Icon is a single terminal glyph.
func (a Archetype) Icon() string { return a.meta().icon }

// Valid reports whether a is one of the declared archetypes.
func (a Archetype) Valid() bool {
	_, ok := archetypes[a]
	return ok
}

// ParseArchetype resolves a name (case-insensitive) to an Archetype.
func ParseArchetype(s string) (Archetype, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, a := range Archetypes() {
		if a.String() == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown archetype %q", s)
}

// MarshalText encodes the archetype by name.
func (a Archetype) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid archetype %d", int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText decodes an archetype name.
func (a *Archetype) UnmarshalText(b []byte) error {
	v, err := ParseArchetype(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
