package flateralus

import (
	"math"

	"github.com/tanema/gween/ease"
)

// BehaviorContext is the per-frame data handed to behaviors. The Application
// builds a fresh one every frame. Times are in milliseconds.
type BehaviorContext struct {
	Pointer   PointerState
	Timestamp float64
	DeltaTime float64
}

// Behavior mutates a sprite once per frame. Implementations hold only
// configuration captured at construction, so one value may be shared by any
// number of sprites.
type Behavior interface {
	Perform(s *Sprite, ctx *BehaviorContext)
}

// BehaviorFunc adapts a plain function to Behavior.
type BehaviorFunc func(s *Sprite, ctx *BehaviorContext)

// Perform implements Behavior.
func (f BehaviorFunc) Perform(s *Sprite, ctx *BehaviorContext) { f(s, ctx) }

// Condition gates a pipeline step for one frame.
type Condition func(s *Sprite, ctx *BehaviorContext) bool

// Step is one entry of a Pipeline: a behavior plus its reaction condition.
type Step struct {
	behavior  Behavior
	condition Condition
}

// SetReactionCondition installs a gate. A nil condition always performs.
// It returns the step for chaining.
func (st *Step) SetReactionCondition(c Condition) *Step {
	st.condition = c
	return st
}

// Behavior returns the step's behavior.
func (st *Step) Behavior() Behavior { return st.behavior }

func (st *Step) perform(s *Sprite, ctx *BehaviorContext) {
	if st.condition != nil && !st.condition(s, ctx) {
		return
	}
	st.behavior.Perform(s, ctx)
}

// Pipeline is an ordered list of behavior steps owned by one sprite.
// The zero value is an empty pipeline.
type Pipeline struct {
	steps []*Step
}

// Add appends b and returns its step.
func (p *Pipeline) Add(b Behavior) *Step {
	if b == nil {
		panic("flateralus: cannot add nil behavior")
	}
	st := &Step{behavior: b}
	p.steps = append(p.steps, st)
	return st
}

// Len returns the number of steps.
func (p *Pipeline) Len() int { return len(p.steps) }

// Clear removes every step.
func (p *Pipeline) Clear() { p.steps = nil }

// Perform runs every step in order. A step whose condition is false is
// skipped for this frame; later steps still run.
func (p *Pipeline) Perform(s *Sprite, ctx *BehaviorContext) {
	for _, st := range p.steps {
		st.perform(s, ctx)
	}
}

type chain []Behavior

func (c chain) Perform(s *Sprite, ctx *BehaviorContext) {
	for _, b := range c {
		b.Perform(s, ctx)
	}
}

// Chain composes behaviors into one that runs each of them in order.
func Chain(behaviors ...Behavior) Behavior {
	return chain(append([]Behavior(nil), behaviors...))
}

// Gate wraps b so it only runs when cond holds.
func Gate(b Behavior, cond Condition) Behavior {
	return BehaviorFunc(func(s *Sprite, ctx *BehaviorContext) {
		if cond(s, ctx) {
			b.Perform(s, ctx)
		}
	})
}

// --- Conditions ---

// PointerActive holds while the pointer is over the canvas.
func PointerActive(_ *Sprite, ctx *BehaviorContext) bool {
	return ctx.Pointer.Active
}

// PointerWithin holds while the active pointer is within radius of the
// sprite, measured in canvas space.
func PointerWithin(radius float64) Condition {
	return func(s *Sprite, ctx *BehaviorContext) bool {
		if !ctx.Pointer.Active {
			return false
		}
		return s.LocalToGlobal(Vec2{}).Dist(ctx.Pointer.Position) < radius
	}
}

// Not inverts c.
func Not(c Condition) Condition {
	return func(s *Sprite, ctx *BehaviorContext) bool { return !c(s, ctx) }
}

// --- Built-in behaviors ---

// RotationBehavior spins a sprite. RotationSpeed is scaled so that a speed
// of 1 adds 0.36 degrees per millisecond.
type RotationBehavior struct {
	RotationSpeed float64
}

// Perform implements Behavior.
func (r RotationBehavior) Perform(s *Sprite, ctx *BehaviorContext) {
	s.Rotate(r.RotationSpeed / 1000 * ctx.DeltaTime * 360)
}

// RepulsionBehavior pushes a sprite away from the pointer. Within
// MouseRadius the displacement is RepulsionStrength*(1-d/MouseRadius),
// falling linearly to zero at the radius.
type RepulsionBehavior struct {
	MouseRadius       float64
	RepulsionStrength float64
}

// Perform implements Behavior.
func (r RepulsionBehavior) Perform(s *Sprite, ctx *BehaviorContext) {
	if !ctx.Pointer.Active || r.MouseRadius <= 0 {
		return
	}
	pointer := s.GlobalToParent(ctx.Pointer.Position)
	away := s.position.Sub(pointer)
	d := away.Len()
	if d >= r.MouseRadius {
		return
	}
	dir := away.Normalize()
	if d == 0 {
		// Sitting on the pointer: push back the way the sprite came.
		dir = s.position.Sub(s.originalPosition).Normalize()
		if dir == (Vec2{}) {
			dir = Vec2{1, 0}
		}
	}
	push := dir.Scale(r.RepulsionStrength * (1 - d/r.MouseRadius))
	s.position = s.position.Add(push)
}

// ParticleDriftBehavior pulls a sprite back toward its original position,
// closing DriftSpeed (0..1) of the remaining gap each frame.
type ParticleDriftBehavior struct {
	DriftSpeed float64
}

// Perform implements Behavior.
func (p ParticleDriftBehavior) Perform(s *Sprite, _ *BehaviorContext) {
	s.position = s.position.Add(s.originalPosition.Sub(s.position).Scale(p.DriftSpeed))
}

// PulseBehavior oscillates a sprite's scale between From and To with the
// given period in milliseconds. The phase comes from the frame timestamp, so
// the behavior keeps no state. Easing defaults to ease.InOutSine.
type PulseBehavior struct {
	From, To float64
	Period   float64
	Easing   ease.TweenFunc
}

// Perform implements Behavior.
func (p PulseBehavior) Perform(s *Sprite, ctx *BehaviorContext) {
	if p.Period <= 0 {
		return
	}
	fn := p.Easing
	if fn == nil {
		fn = ease.InOutSine
	}
	// Triangle wave over one period: up for the first half, down after.
	phase := math.Mod(ctx.Timestamp, p.Period) / p.Period * 2
	if phase > 1 {
		phase = 2 - phase
	}
	s.SetScale(float64(fn(float32(phase), float32(p.From), float32(p.To-p.From), 1)))
}
