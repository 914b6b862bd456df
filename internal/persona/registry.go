// Package persona holds the fixed, ordered cast of boardroom personas.
package persona

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no persona has the requested id.
	ErrNotFound = errors.New("persona not found")
	// ErrDuplicateID is returned when a registry is built with a repeated id.
	ErrDuplicateID = errors.New("duplicate persona id")
)

// Definition is one persona. Values are immutable once registered.
type Definition struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	Instruction string    `json:"instruction"`
	Archetype   Archetype `json:"archetype"`
}

// Registry is an ordered, read-only list of personas. Order is execution order.
type Registry struct {
	defs  []Definition
	index map[string]int
}

// New builds a registry from defs in the order given. Ids must be non-empty and unique.
func New(defs ...Definition) (*Registry, error) {
	r := &Registry{
		defs:  make([]Definition, len(defs)),
		index: make(map[string]int, len(defs)),
	}
	copy(r.defs, defs)
	for i, d := range r.defs {
		if d.ID == "" {
			return nil, fmt.Errorf("persona at position %d has an empty id", i)
		}
		if _, dup := r.index[d.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, d.ID)
		}
		r.index[d.ID] = i
	}
	return r, nil
}

// MustNew is New for static tables; it panics on error.
func MustNew(defs ...Definition) *Registry {
	r, err := New(defs...)
	if err != nil {
		panic(err)
	}
	return r
}

var defaultRegistry = MustNew(boardroom...)

// Default returns the five-persona boardroom: son, thiel, jobs, bezos, buffett.
func Default() *Registry { return defaultRegistry }

// Count returns the number of personas.
func (r *Registry) Count() int { return len(r.defs) }

// At returns the persona at position i. It panics when i is out of range.
func (r *Registry) At(i int) Definition { return r.defs[i] }

// ByID looks a persona up by id.
func (r *Registry) ByID(id string) (Definition, error) {
	i, ok := r.index[id]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r.defs[i], nil
}

// All returns a copy of the personas in execution order.
func (r *Registry) All() []Definition {
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// IDs returns the persona ids in execution order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.defs))
	for i, d := range r.defs {
		ids[i] = d.ID
	}
	return ids
}
