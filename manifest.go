package flateralus

import (
	"bytes"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// ControlType identifies the kind of value a control holds.
type ControlType string

const (
	ControlNumber  ControlType = "number"
	ControlBoolean ControlType = "boolean"
	ControlColor   ControlType = "color"
	ControlSelect  ControlType = "select"
	ControlString  ControlType = "string"
	ControlEasing  ControlType = "easing"
)

func (t ControlType) valid() bool {
	switch t {
	case ControlNumber, ControlBoolean, ControlColor, ControlSelect, ControlString, ControlEasing:
		return true
	}
	return false
}

// ControlSpec is the raw, decodable description of one control.
type ControlSpec struct {
	Name    string      `yaml:"name"`
	Type    ControlType `yaml:"type"`
	Label   string      `yaml:"label,omitempty"`
	Default any         `yaml:"default"`
	Debug   bool        `yaml:"debug,omitempty"`
	Min     *float64    `yaml:"min,omitempty"`
	Max     *float64    `yaml:"max,omitempty"`
	Step    float64     `yaml:"step,omitempty"`
	Options []string    `yaml:"options,omitempty"`
}

// ManifestSpec is the raw, decodable form of a manifest. Pass it to
// NewManifest to obtain a validated, read-only Manifest.
type ManifestSpec struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Controls    []ControlSpec `yaml:"controls"`
}

// Bounds limits a numeric control. Missing limits are infinite.
type Bounds struct {
	Min, Max float64
	Step     float64
}

// Control is a validated control descriptor. Values returned by a Manifest
// are copies; modifying them does not affect the manifest.
type Control struct {
	Name  string
	Type  ControlType
	Label string
	// Default is normalized: float64 for numbers, bool, Color, or string
	// (select, string and easing controls).
	Default any
	Debug   bool
	Bounds  *Bounds
	Options []string
}

func (c Control) clone() Control {
	if c.Bounds != nil {
		b := *c.Bounds
		c.Bounds = &b
	}
	if c.Options != nil {
		c.Options = append([]string(nil), c.Options...)
	}
	return c
}

// Manifest is the read-only description of an animation's tunable
// parameters. It has no exported fields and every accessor returns copies,
// so a built manifest cannot be modified.
type Manifest struct {
	id          string
	name        string
	description string
	controls    []Control
	index       map[string]int
}

// NewManifest validates spec and builds a Manifest. The id must be set,
// control names must be non-empty and unique, types must be known, and each
// default must match its type and lie within its bounds.
func NewManifest(spec ManifestSpec) (*Manifest, error) {
	if spec.ID == "" {
		return nil, &ConfigError{Err: fmt.Errorf("%w: missing id", ErrInvalidManifest)}
	}
	m := &Manifest{
		id:          spec.ID,
		name:        spec.Name,
		description: spec.Description,
		controls:    make([]Control, 0, len(spec.Controls)),
		index:       make(map[string]int, len(spec.Controls)),
	}
	if m.name == "" {
		m.name = spec.ID
	}
	for _, cs := range spec.Controls {
		c, err := buildControl(cs)
		if err != nil {
			return nil, &ConfigError{Manifest: spec.ID, Control: cs.Name, Err: err}
		}
		if _, dup := m.index[c.Name]; dup {
			return nil, &ConfigError{Manifest: spec.ID, Control: c.Name, Err: ErrDuplicateControl}
		}
		m.index[c.Name] = len(m.controls)
		m.controls = append(m.controls, c)
	}
	return m, nil
}

// MustManifest is like NewManifest but panics on error. Intended for
// manifests declared as package-level variables.
func MustManifest(spec ManifestSpec) *Manifest {
	m, err := NewManifest(spec)
	if err != nil {
		panic("flateralus: " + err.Error())
	}
	return m
}

// LoadManifest decodes a YAML (or JSON) manifest and validates it.
// Unknown fields are rejected.
func LoadManifest(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var spec ManifestSpec
	if err := dec.Decode(&spec); err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("%w: %v", ErrInvalidManifest, err)}
	}
	return NewManifest(spec)
}

func buildControl(cs ControlSpec) (Control, error) {
	if cs.Name == "" {
		return Control{}, fmt.Errorf("%w: control without name", ErrInvalidManifest)
	}
	if !cs.Type.valid() {
		return Control{}, fmt.Errorf("%w: unknown type %q", ErrInvalidManifest, cs.Type)
	}
	c := Control{
		Name:  cs.Name,
		Type:  cs.Type,
		Label: cs.Label,
		Debug: cs.Debug,
	}
	if c.Label == "" {
		c.Label = cs.Name
	}

	if cs.Min != nil || cs.Max != nil || cs.Step != 0 {
		if cs.Type != ControlNumber {
			return Control{}, fmt.Errorf("%w: bounds on %s control", ErrInvalidManifest, cs.Type)
		}
		if cs.Step < 0 || math.IsNaN(cs.Step) {
			return Control{}, fmt.Errorf("%w: negative step %v", ErrInvalidManifest, cs.Step)
		}
		b := Bounds{Min: math.Inf(-1), Max: math.Inf(1), Step: cs.Step}
		if cs.Min != nil {
			b.Min = *cs.Min
		}
		if cs.Max != nil {
			b.Max = *cs.Max
		}
		if b.Min > b.Max {
			return Control{}, fmt.Errorf("%w: min %v greater than max %v", ErrInvalidManifest, b.Min, b.Max)
		}
		c.Bounds = &b
	}

	if cs.Type == ControlSelect {
		if len(cs.Options) == 0 {
			return Control{}, fmt.Errorf("%w: select control without options", ErrInvalidManifest)
		}
		c.Options = append([]string(nil), cs.Options...)
	}

	def := cs.Default
	if def == nil {
		def = zeroDefault(c)
	}
	v, err := coerceValue(c, def)
	if err != nil {
		return Control{}, fmt.Errorf("default: %w", err)
	}
	if c.Type == ControlNumber && c.Bounds != nil {
		f := v.(float64)
		if f < c.Bounds.Min || f > c.Bounds.Max {
			return Control{}, fmt.Errorf("%w: default %v outside [%v, %v]", ErrInvalidManifest, f, c.Bounds.Min, c.Bounds.Max)
		}
	}
	c.Default = v
	return c, nil
}

// zeroDefault is used when a control omits its default.
func zeroDefault(c Control) any {
	switch c.Type {
	case ControlNumber:
		if c.Bounds != nil && !math.IsInf(c.Bounds.Min, -1) {
			return c.Bounds.Min
		}
		return 0.0
	case ControlBoolean:
		return false
	case ControlColor:
		return ColorWhite
	case ControlSelect:
		return c.Options[0]
	case ControlEasing:
		return "linear"
	default:
		return ""
	}
}

// coerceValue converts v to the normalized Go type for c, without clamping.
func coerceValue(c Control, v any) (any, error) {
	switch c.Type {
	case ControlNumber:
		f, ok := toFloat(v)
		if !ok || math.IsNaN(f) {
			return nil, fmt.Errorf("%w: want number, got %T", ErrControlType, v)
		}
		return f, nil
	case ControlBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: want boolean, got %T", ErrControlType, v)
		}
		return b, nil
	case ControlColor:
		switch cv := v.(type) {
		case Color:
			return cv, nil
		case string:
			col, err := ParseColor(cv)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrControlType, err)
			}
			return col, nil
		}
		return nil, fmt.Errorf("%w: want color, got %T", ErrControlType, v)
	case ControlSelect:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: want string, got %T", ErrControlType, v)
		}
		for _, o := range c.Options {
			if o == s {
				return s, nil
			}
		}
		return nil, fmt.Errorf("%w: %q is not one of %v", ErrControlType, s, c.Options)
	case ControlEasing:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: want easing name, got %T", ErrControlType, v)
		}
		if _, ok := Easing(s); !ok {
			return nil, fmt.Errorf("%w: unknown easing %q", ErrControlType, s)
		}
		return s, nil
	default:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: want string, got %T", ErrControlType, v)
		}
		return s, nil
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// ID returns the manifest identifier.
func (m *Manifest) ID() string { return m.id }

// Name returns the human-readable name.
func (m *Manifest) Name() string { return m.name }

// Description returns the manifest description.
func (m *Manifest) Description() string { return m.description }

// Len returns the number of controls.
func (m *Manifest) Len() int { return len(m.controls) }

// Controls returns copies of all controls in declaration order.
func (m *Manifest) Controls() []Control {
	out := make([]Control, len(m.controls))
	for i, c := range m.controls {
		out[i] = c.clone()
	}
	return out
}

// DebugControls returns copies of the controls flagged for the debug panel.
func (m *Manifest) DebugControls() []Control {
	var out []Control
	for _, c := range m.controls {
		if c.Debug {
			out = append(out, c.clone())
		}
	}
	return out
}

// Control returns a copy of the named control.
func (m *Manifest) Control(name string) (Control, bool) {
	i, ok := m.index[name]
	if !ok {
		return Control{}, false
	}
	return m.controls[i].clone(), true
}

// Defaults returns a fresh ControlValues holding every control's default.
func (m *Manifest) Defaults() ControlValues {
	vals := make(map[string]any, len(m.controls))
	for _, c := range m.controls {
		vals[c.Name] = c.Default
	}
	return ControlValues{manifest: m, values: vals}
}

// Spec converts the manifest back into its raw form, with colors as hex.
func (m *Manifest) Spec() ManifestSpec {
	spec := ManifestSpec{
		ID:          m.id,
		Name:        m.name,
		Description: m.description,
		Controls:    make([]ControlSpec, 0, len(m.controls)),
	}
	for _, c := range m.controls {
		cs := ControlSpec{
			Name:    c.Name,
			Type:    c.Type,
			Label:   c.Label,
			Default: c.Default,
			Debug:   c.Debug,
			Options: append([]string(nil), c.Options...),
		}
		if col, ok := c.Default.(Color); ok {
			cs.Default = col.Hex()
		}
		if c.Bounds != nil {
			if !math.IsInf(c.Bounds.Min, -1) {
				lo := c.Bounds.Min
				cs.Min = &lo
			}
			if !math.IsInf(c.Bounds.Max, 1) {
				hi := c.Bounds.Max
				cs.Max = &hi
			}
			cs.Step = c.Bounds.Step
		}
		spec.Controls = append(spec.Controls, cs)
	}
	return spec
}

// MarshalYAML renders the manifest in the same shape LoadManifest accepts.
func (m *Manifest) MarshalYAML() (any, error) {
	return m.Spec(), nil
}
