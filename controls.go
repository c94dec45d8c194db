package flateralus

import (
	"errors"
	"fmt"
	"math"

	"github.com/tanema/gween/ease"
	"gopkg.in/yaml.v3"
)

// ControlValues is the current value of every control in a manifest.
// Getters panic when the name is not part of the manifest or the type
// does not match; those are programming errors, like a bad field name.
// Copies share storage; use Clone for an independent set. The zero value
// has no manifest and holds nothing.
type ControlValues struct {
	manifest *Manifest
	values   map[string]any
}

// Manifest returns the manifest the values conform to.
func (v ControlValues) Manifest() *Manifest { return v.manifest }

// Get returns the normalized value of name.
func (v ControlValues) Get(name string) (any, bool) {
	val, ok := v.values[name]
	return val, ok
}

func (v ControlValues) mustGet(name string, want ControlType) any {
	if v.manifest == nil {
		panic(fmt.Sprintf("flateralus: control %q read from empty ControlValues", name))
	}
	c, ok := v.manifest.Control(name)
	if !ok {
		panic(fmt.Sprintf("flateralus: manifest %q has no control %q", v.manifest.ID(), name))
	}
	if c.Type != want && !(want == ControlString && (c.Type == ControlSelect || c.Type == ControlEasing)) {
		panic(fmt.Sprintf("flateralus: control %q is %s, not %s", name, c.Type, want))
	}
	return v.values[name]
}

// Number returns a number control's value.
func (v ControlValues) Number(name string) float64 {
	return v.mustGet(name, ControlNumber).(float64)
}

// Int returns a number control's value rounded to the nearest integer.
func (v ControlValues) Int(name string) int {
	return int(math.Round(v.Number(name)))
}

// Bool returns a boolean control's value.
func (v ControlValues) Bool(name string) bool {
	return v.mustGet(name, ControlBoolean).(bool)
}

// Color returns a color control's value.
func (v ControlValues) Color(name string) Color {
	return v.mustGet(name, ControlColor).(Color)
}

// String returns the value of a string, select or easing control.
func (v ControlValues) String(name string) string {
	return v.mustGet(name, ControlString).(string)
}

// Easing returns the easing function selected by an easing control.
func (v ControlValues) Easing(name string) ease.TweenFunc {
	fn, _ := Easing(v.mustGet(name, ControlEasing).(string))
	return fn
}

// Set validates and stores a value. Numbers are clamped to the control's
// bounds; colors may be given as Color or hex strings.
func (v *ControlValues) Set(name string, value any) error {
	if v.manifest == nil {
		return &ConfigError{Control: name, Err: ErrUnknownControl}
	}
	c, ok := v.manifest.Control(name)
	if !ok {
		return &ConfigError{Manifest: v.manifest.ID(), Control: name, Err: ErrUnknownControl}
	}
	norm, err := coerceValue(c, value)
	if err != nil {
		return &ConfigError{Manifest: v.manifest.ID(), Control: name, Err: err}
	}
	if f, ok := norm.(float64); ok && c.Bounds != nil {
		norm = clamp(f, c.Bounds.Min, c.Bounds.Max)
	}
	if v.values == nil {
		v.values = make(map[string]any)
	}
	v.values[name] = norm
	return nil
}

// ApplyYAML overlays a YAML mapping of control name to value. Every entry
// is attempted; the returned error joins all failures.
func (v *ControlValues) ApplyYAML(data []byte) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse control values: %w", err)
	}
	return v.ApplyMap(raw)
}

// ApplyMap overlays values from a decoded mapping.
func (v *ControlValues) ApplyMap(raw map[string]any) error {
	var errs []error
	for _, c := range v.manifestControls() {
		if val, ok := raw[c.Name]; ok {
			if err := v.Set(c.Name, val); err != nil {
				errs = append(errs, err)
			}
		}
	}
	for name := range raw {
		if v.manifest == nil {
			errs = append(errs, &ConfigError{Control: name, Err: ErrUnknownControl})
			continue
		}
		if _, ok := v.manifest.Control(name); !ok {
			errs = append(errs, &ConfigError{Manifest: v.manifest.ID(), Control: name, Err: ErrUnknownControl})
		}
	}
	return errors.Join(errs...)
}

func (v ControlValues) manifestControls() []Control {
	if v.manifest == nil {
		return nil
	}
	return v.manifest.controls
}

// Clone returns an independent copy.
func (v ControlValues) Clone() ControlValues {
	out := ControlValues{manifest: v.manifest, values: make(map[string]any, len(v.values))}
	for k, val := range v.values {
		out.values[k] = val
	}
	return out
}

// Map returns the values keyed by control name, colors rendered as hex.
func (v ControlValues) Map() map[string]any {
	out := make(map[string]any, len(v.values))
	for k, val := range v.values {
		if c, ok := val.(Color); ok {
			out[k] = c.Hex()
			continue
		}
		out[k] = val
	}
	return out
}

// Overrides returns only the values that differ from the manifest defaults.
func (v ControlValues) Overrides() map[string]any {
	out := make(map[string]any)
	for _, c := range v.manifestControls() {
		val := v.values[c.Name]
		if val == c.Default {
			continue
		}
		if col, ok := val.(Color); ok {
			out[c.Name] = col.Hex()
			continue
		}
		out[c.Name] = val
	}
	return out
}

// Decode fills out, a pointer to a struct with yaml tags, from the values.
// This is how an animation obtains a typed view of its controls.
func (v ControlValues) Decode(out any) error {
	data, err := yaml.Marshal(v.Map())
	if err != nil {
		return fmt.Errorf("decode control values: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode control values: %w", err)
	}
	return nil
}

// MarshalYAML encodes a Color as a hex string.
func (c Color) MarshalYAML() (any, error) {
	return c.Hex(), nil
}

// UnmarshalYAML decodes a Color from a hex string.
func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
