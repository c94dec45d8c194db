package flateralus

import "go.uber.org/zap"

// Stage is what an Animation sees of the Application it is attached to.
type Stage interface {
	// Size returns the current canvas size in logical pixels.
	Size() Vec2
	Logger() *zap.Logger
	// Pointer returns a snapshot of the active pointer.
	Pointer() PointerState
}

// Animation is the scene logic attached to an Application. The Application
// calls Init once, then Update and Draw every running frame, Reset on resize
// when configured, and Destroy when the animation is replaced or the
// Application is destroyed.
type Animation interface {
	Manifest() *Manifest
	Init(stage Stage) error
	Update(ctx *BehaviorContext)
	Draw(c Canvas)
	Reset() error
	Destroy()
}

// Tunable is implemented by animations that accept new control values while
// running.
type Tunable interface {
	Controls() ControlValues
	SetControls(v ControlValues) error
}

// faultCounter is implemented by animations that isolate per-sprite panics.
type faultCounter interface {
	Faults() int
}

// spriteCounter is implemented by animations that own a sprite tree.
type spriteCounter interface {
	Root() *Sprite
}
