package flateralus

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// SetupFunc builds a scene's sprite tree and behaviors. It runs on Init,
// on every Reset, and whenever the controls change.
type SetupFunc func(sc *Scene) error

// Scene is the reusable Animation base. It owns a root sprite, the control
// values for its manifest and a setup function. Update and Draw isolate each
// sprite: a panicking behavior or shape is logged and that sprite is skipped
// for the frame.
type Scene struct {
	manifest *Manifest
	controls ControlValues
	setup    SetupFunc

	root   *Sprite
	stage  Stage
	logger *zap.Logger
	tweens []*TweenGroup

	faults    int
	destroyed bool
}

// NewScene creates a scene for manifest m. The controls start at the
// manifest defaults.
func NewScene(m *Manifest, setup SetupFunc) *Scene {
	if m == nil {
		panic("flateralus: NewScene with nil manifest")
	}
	return &Scene{
		manifest: m,
		controls: m.Defaults(),
		setup:    setup,
		root:     NewContainer(m.ID()),
		logger:   zap.NewNop(),
	}
}

// Manifest implements Animation.
func (sc *Scene) Manifest() *Manifest { return sc.manifest }

// Root returns the scene's root container.
func (sc *Scene) Root() *Sprite { return sc.root }

// Stage returns the stage the scene was initialized with, or nil.
func (sc *Scene) Stage() Stage { return sc.stage }

// Logger returns the scene logger, named after the manifest id.
func (sc *Scene) Logger() *zap.Logger { return sc.logger }

// Size returns the stage size, or the zero vector before Init.
func (sc *Scene) Size() Vec2 {
	if sc.stage == nil {
		return Vec2{}
	}
	return sc.stage.Size()
}

// Controls returns an independent copy of the current control values.
func (sc *Scene) Controls() ControlValues { return sc.controls.Clone() }

// SetControls replaces the control values and, once initialized, rebuilds the
// tree. The values must belong to this scene's manifest.
func (sc *Scene) SetControls(v ControlValues) error {
	if v.Manifest() != sc.manifest {
		return &ConfigError{Manifest: sc.manifest.ID(), Err: errors.New("control values belong to a different manifest")}
	}
	sc.controls = v.Clone()
	if sc.stage == nil || sc.destroyed {
		return nil
	}
	return sc.Reset()
}

// Faults returns the number of recovered per-sprite panics so far.
func (sc *Scene) Faults() int { return sc.faults }

// AddTween registers a tween that Update advances with the frame delta.
// Finished tweens are dropped.
func (sc *Scene) AddTween(g *TweenGroup) {
	sc.tweens = append(sc.tweens, g)
}

// Init implements Animation.
func (sc *Scene) Init(stage Stage) error {
	if sc.destroyed {
		return ErrDestroyed
	}
	sc.stage = stage
	if l := stage.Logger(); l != nil {
		sc.logger = l.With(zap.String("animation", sc.manifest.ID()))
	}
	return sc.build("init")
}

// Reset implements Animation. It drops the sprite tree, behaviors and
// tweens, then runs setup again with the current controls.
func (sc *Scene) Reset() error {
	if sc.destroyed {
		return ErrDestroyed
	}
	return sc.build("reset")
}

func (sc *Scene) build(op string) (err error) {
	sc.root.RemoveAllChildren()
	sc.root.Behaviors().Clear()
	sc.tweens = nil
	if sc.setup == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Op: op, Value: r}
		}
		if err != nil {
			err = fmt.Errorf("%s %s: %w", sc.manifest.ID(), op, err)
		}
	}()
	return sc.setup(sc)
}

// Update implements Animation. Tweens advance first, then every sprite's
// pipeline runs in tree order.
func (sc *Scene) Update(ctx *BehaviorContext) {
	if sc.destroyed {
		return
	}
	if len(sc.tweens) > 0 {
		dt := float32(ctx.DeltaTime / 1000)
		live := sc.tweens[:0]
		for _, g := range sc.tweens {
			g.Update(dt)
			if !g.Done {
				live = append(live, g)
			}
		}
		clear(sc.tweens[len(live):])
		sc.tweens = live
	}
	sc.root.Walk(func(s *Sprite) bool {
		sc.guard("update", s, func() { s.Update(ctx) })
		return true
	})
}

// Draw implements Animation.
func (sc *Scene) Draw(c Canvas) {
	if sc.destroyed {
		return
	}
	sc.drawSprite(c, sc.root)
}

func (sc *Scene) drawSprite(c Canvas, s *Sprite) {
	if !s.Visible {
		return
	}
	c.Save()
	defer c.Restore()
	s.applyTransform(c)
	if s.Shape != nil {
		sc.guard("draw", s, func() { s.Shape.Draw(c, s) })
	}
	for _, child := range s.children {
		sc.drawSprite(c, child)
	}
}

// guard runs fn and converts a panic into a logged fault.
func (sc *Scene) guard(op string, s *Sprite, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			sc.faults++
			sc.logger.Error("sprite fault", zap.Error(&PanicError{Op: op, Sprite: s.Name, Value: r}))
		}
	}()
	fn()
}

// Destroy implements Animation. Safe to call more than once.
func (sc *Scene) Destroy() {
	if sc.destroyed {
		return
	}
	sc.destroyed = true
	sc.root.RemoveAllChildren()
	sc.root.Behaviors().Clear()
	sc.tweens = nil
	sc.logger.Debug("animation destroyed")
}
