package flateralus

import (
	"errors"
	"fmt"
)

// Sentinel errors. Match with errors.Is.
var (
	ErrInvalidManifest  = errors.New("invalid manifest")
	ErrDuplicateControl = errors.New("duplicate control name")
	ErrUnknownControl   = errors.New("unknown control")
	ErrControlType      = errors.New("control value has wrong type")
	ErrDestroyed        = errors.New("application destroyed")
	ErrNoSteps          = errors.New("script has no steps")
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindConfig indicates a manifest or configuration error.
	KindConfig
	// KindRender indicates a rendering-context failure.
	KindRender
	// KindFrame indicates a failure inside the per-frame update or draw.
	KindFrame
	// KindCleanup indicates a failure during teardown.
	KindCleanup
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindRender:
		return "render"
	case KindFrame:
		return "frame"
	case KindCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// Error is a categorized error returned by Application operations.
type Error struct {
	// Op is the operation that failed (e.g. "application.New").
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ConfigError reports a manifest or control validation failure.
type ConfigError struct {
	Manifest string
	Control  string
	Err      error
}

func (e *ConfigError) Error() string {
	switch {
	case e.Control != "" && e.Manifest != "":
		return fmt.Sprintf("manifest %q control %q: %v", e.Manifest, e.Control, e.Err)
	case e.Control != "":
		return fmt.Sprintf("control %q: %v", e.Control, e.Err)
	case e.Manifest != "":
		return fmt.Sprintf("manifest %q: %v", e.Manifest, e.Err)
	}
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// PanicError is a recovered panic from a behavior, shape or animation hook.
type PanicError struct {
	Op     string
	Sprite string
	Value  any
}

func (e *PanicError) Error() string {
	if e.Sprite != "" {
		return fmt.Sprintf("panic in %s (sprite %q): %v", e.Op, e.Sprite, e.Value)
	}
	return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
}
