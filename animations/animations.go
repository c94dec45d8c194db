// Package animations is the catalog of built-in animations, keyed by
// manifest id.
package animations

import (
	"errors"
	"fmt"
	"sort"

	"github.com/bracketbear/flateralus"
	"github.com/bracketbear/flateralus/animations/gridfield"
	"github.com/bracketbear/flateralus/animations/spiral"
)

// ErrUnknown is returned when no animation is registered under an id.
var ErrUnknown = errors.New("unknown animation")

// Factory creates a fresh, uninitialized animation.
type Factory func() flateralus.Animation

// Entry is one registered animation.
type Entry struct {
	Manifest *flateralus.Manifest
	New      Factory
}

// Registry maps manifest ids to factories. The zero value is empty and
// ready to use.
type Registry struct {
	entries map[string]Entry
}

// Register adds an animation under its manifest id. It panics on a nil
// manifest or factory and on duplicate ids.
func (r *Registry) Register(m *flateralus.Manifest, f Factory) {
	if m == nil || f == nil {
		panic("animations: Register with nil manifest or factory")
	}
	if _, dup := r.entries[m.ID()]; dup {
		panic("animations: Register called twice for " + m.ID())
	}
	if r.entries == nil {
		r.entries = make(map[string]Entry)
	}
	r.entries[m.ID()] = Entry{Manifest: m, New: f}
}

// Lookup returns the entry registered under id.
func (r *Registry) Lookup(id string) (Entry, bool) {
	e, ok := r.entries[id]
	return e, ok
}

// New creates the animation registered under id.
func (r *Registry) New(id string) (flateralus.Animation, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w %q (have %v)", ErrUnknown, id, r.IDs())
	}
	return e.New(), nil
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Default holds the built-in animations.
var Default = &Registry{}

func init() {
	Default.Register(spiral.Manifest(), func() flateralus.Animation { return spiral.New() })
	Default.Register(gridfield.Manifest(), func() flateralus.Animation { return gridfield.New() })
}

// New creates a built-in animation by id.
func New(id string) (flateralus.Animation, error) { return Default.New(id) }

// Lookup returns the built-in animation registered under id.
func Lookup(id string) (Entry, bool) { return Default.Lookup(id) }

// IDs returns the built-in animation ids.
func IDs() []string { return Default.IDs() }
