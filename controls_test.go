package flateralus

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestControlValuesDefaults(t *testing.T) {
	v := MustManifest(testManifestSpec()).Defaults()
	if v.Number("speed") != 10 {
		t.Errorf("speed = %v", v.Number("speed"))
	}
	if v.Int("speed") != 10 {
		t.Errorf("Int speed = %v", v.Int("speed"))
	}
	if !v.Bool("enabled") {
		t.Error("enabled should default to true")
	}
	if v.Color("tint") != (Color{1, 0, 0, 1}) {
		t.Errorf("tint = %v", v.Color("tint"))
	}
	if v.String("mode") != "b" || v.String("title") != "hello" || v.String("curve") != "inOutSine" {
		t.Errorf("strings = %q %q %q", v.String("mode"), v.String("title"), v.String("curve"))
	}
	if v.Easing("curve") == nil {
		t.Error("Easing should resolve a function")
	}
}

func TestControlValuesSetClamps(t *testing.T) {
	v := MustManifest(testManifestSpec()).Defaults()
	if err := v.Set("speed", 500); err != nil {
		t.Fatal(err)
	}
	if v.Number("speed") != 100 {
		t.Errorf("speed = %v, want clamped 100", v.Number("speed"))
	}
	if err := v.Set("speed", -3.5); err != nil {
		t.Fatal(err)
	}
	if v.Number("speed") != 0 {
		t.Errorf("speed = %v, want clamped 0", v.Number("speed"))
	}
}

func TestControlValuesSetErrors(t *testing.T) {
	v := MustManifest(testManifestSpec()).Defaults()
	if err := v.Set("nope", 1); !errors.Is(err, ErrUnknownControl) {
		t.Errorf("unknown control err = %v", err)
	}
	if err := v.Set("enabled", "yes"); !errors.Is(err, ErrControlType) {
		t.Errorf("wrong type err = %v", err)
	}
	if err := v.Set("mode", "c"); !errors.Is(err, ErrControlType) {
		t.Errorf("bad option err = %v", err)
	}
	if err := v.Set("tint", "#00ff00"); err != nil {
		t.Errorf("hex color should be accepted: %v", err)
	}
	var empty ControlValues
	if err := empty.Set("x", 1); !errors.Is(err, ErrUnknownControl) {
		t.Errorf("empty values err = %v", err)
	}
}

func TestControlValuesGetterPanics(t *testing.T) {
	v := MustManifest(testManifestSpec()).Defaults()
	tests := []struct {
		name string
		fn   func()
	}{
		{"unknown", func() { v.Number("nope") }},
		{"wrong type", func() { v.Bool("speed") }},
		{"empty", func() { ControlValues{}.Number("speed") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn()
		})
	}
}

func TestControlValuesApplyYAML(t *testing.T) {
	v := MustManifest(testManifestSpec()).Defaults()
	err := v.ApplyYAML([]byte("speed: 42\ntint: \"#0000ff\"\nenabled: false\n"))
	if err != nil {
		t.Fatalf("ApplyYAML: %v", err)
	}
	want := map[string]any{"speed": 42.0, "tint": "#0000ff", "enabled": false}
	if diff := cmp.Diff(want, v.Overrides()); diff != "" {
		t.Errorf("Overrides mismatch (-want +got):\n%s", diff)
	}
}

func TestControlValuesApplyYAMLCollectsErrors(t *testing.T) {
	v := MustManifest(testManifestSpec()).Defaults()
	err := v.ApplyYAML([]byte("speed: 20\nenabled: 3\nghost: 1\n"))
	if !errors.Is(err, ErrControlType) || !errors.Is(err, ErrUnknownControl) {
		t.Fatalf("err = %v, want both type and unknown errors", err)
	}
	if v.Number("speed") != 20 {
		t.Error("valid entries should still be applied")
	}
}

func TestControlValuesClone(t *testing.T) {
	v := MustManifest(testManifestSpec()).Defaults()
	c := v.Clone()
	if err := c.Set("speed", 1); err != nil {
		t.Fatal(err)
	}
	if v.Number("speed") != 10 {
		t.Error("Clone should not share storage")
	}
}

func TestControlValuesDecode(t *testing.T) {
	var cfg struct {
		Speed   float64 `yaml:"speed"`
		Enabled bool    `yaml:"enabled"`
		Tint    Color   `yaml:"tint"`
		Mode    string  `yaml:"mode"`
	}
	v := MustManifest(testManifestSpec()).Defaults()
	if err := v.Decode(&cfg); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if cfg.Speed != 10 || !cfg.Enabled || cfg.Mode != "b" {
		t.Errorf("decoded = %+v", cfg)
	}
	if cfg.Tint != (Color{1, 0, 0, 1}) {
		t.Errorf("Tint = %v", cfg.Tint)
	}
}
