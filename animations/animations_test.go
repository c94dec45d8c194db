package animations

import (
	"errors"
	"testing"

	"github.com/bracketbear/flateralus"
	"github.com/google/go-cmp/cmp"
)

func TestBuiltins(t *testing.T) {
	if diff := cmp.Diff([]string{"gridfield", "spiral"}, IDs()); diff != "" {
		t.Errorf("IDs mismatch (-want +got):\n%s", diff)
	}
	for _, id := range IDs() {
		a, err := New(id)
		if err != nil {
			t.Fatalf("New(%q): %v", id, err)
		}
		if a.Manifest().ID() != id {
			t.Errorf("New(%q).Manifest().ID() = %q", id, a.Manifest().ID())
		}
		e, _ := Lookup(id)
		if e.Manifest != a.Manifest() {
			t.Errorf("%s: entry and animation manifests differ", id)
		}
	}
}

func TestNewReturnsFreshInstances(t *testing.T) {
	a, _ := New("spiral")
	b, _ := New("spiral")
	if a == b {
		t.Error("each New should create a new animation")
	}
}

func TestUnknown(t *testing.T) {
	if _, err := New("nope"); !errors.Is(err, ErrUnknown) {
		t.Errorf("err = %v, want ErrUnknown", err)
	}
	if _, ok := Lookup("nope"); ok {
		t.Error("Lookup should miss")
	}
}

func TestRegisterPanics(t *testing.T) {
	m := flateralus.MustManifest(flateralus.ManifestSpec{ID: "x"})
	f := func() flateralus.Animation { return flateralus.NewScene(m, nil) }

	tests := []struct {
		name string
		fn   func(r *Registry)
	}{
		{"nil manifest", func(r *Registry) { r.Register(nil, f) }},
		{"nil factory", func(r *Registry) { r.Register(m, nil) }},
		{"duplicate", func(r *Registry) { r.Register(m, f); r.Register(m, f) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn(&Registry{})
		})
	}
}

func TestZeroRegistry(t *testing.T) {
	var r Registry
	if len(r.IDs()) != 0 {
		t.Error("zero registry should be empty")
	}
	m := flateralus.MustManifest(flateralus.ManifestSpec{ID: "solo"})
	r.Register(m, func() flateralus.Animation { return flateralus.NewScene(m, nil) })
	a, err := r.New("solo")
	if err != nil || a.Manifest() != m {
		t.Errorf("New = %v, %v", a, err)
	}
}
