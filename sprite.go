package flateralus

import (
	"fmt"

	"go.uber.org/zap"
)

// Shape draws a sprite's own content in the sprite's local space, after the
// sprite's transform and alpha have been applied to the canvas.
type Shape interface {
	Draw(c Canvas, s *Sprite)
}

// Sprite is a node in the scene tree. A sprite with a nil Shape is a plain
// container. A sprite exclusively owns its children and its behavior
// pipeline; sprites are not safe for concurrent use.
type Sprite struct {
	Name string

	// Appearance
	FillColor Color
	Alpha     float64
	Visible   bool
	Shape     Shape

	// Metadata
	UserData any

	// Transform (local, relative to parent)
	position         Vec2
	originalPosition Vec2
	scale            float64
	rotation         float64 // degrees

	// Hierarchy
	parent   *Sprite
	children []*Sprite

	behaviors Pipeline
	setup     func(s *Sprite)
}

// NewSprite creates a sprite that renders shape.
func NewSprite(name string, shape Shape) *Sprite {
	return &Sprite{
		Name:      name,
		Shape:     shape,
		FillColor: ColorWhite,
		Alpha:     1,
		Visible:   true,
		scale:     1,
	}
}

// NewContainer creates a sprite with no visual representation.
func NewContainer(name string) *Sprite {
	return NewSprite(name, nil)
}

// --- Transform ---

// Position returns the local position.
func (s *Sprite) Position() Vec2 { return s.position }

// SetPosition moves the sprite without touching its original position.
func (s *Sprite) SetPosition(x, y float64) {
	s.position = Vec2{x, y}
}

// OriginalPosition returns the home position behaviors drift back to.
func (s *Sprite) OriginalPosition() Vec2 { return s.originalPosition }

// SetOriginalPosition sets the home position.
func (s *Sprite) SetOriginalPosition(x, y float64) {
	s.originalPosition = Vec2{x, y}
}

// PlaceAt sets both the position and the original position. Generators use
// it to lay out sprites.
func (s *Sprite) PlaceAt(x, y float64) {
	s.position = Vec2{x, y}
	s.originalPosition = s.position
}

// Scale returns the uniform scale factor.
func (s *Sprite) Scale() float64 { return s.scale }

// SetScale sets the uniform scale factor.
func (s *Sprite) SetScale(sc float64) {
	s.scale = sc
}

// Rotation returns the accumulated rotation in degrees.
func (s *Sprite) Rotation() float64 { return s.rotation }

// Rotate adds deltaDegrees to the current rotation.
func (s *Sprite) Rotate(deltaDegrees float64) {
	s.rotation += deltaDegrees
}

// SetRotation sets the rotation in degrees.
func (s *Sprite) SetRotation(degrees float64) {
	s.rotation = degrees
}

// LocalToGlobal converts a point in this sprite's local space to canvas space.
func (s *Sprite) LocalToGlobal(p Vec2) Vec2 {
	return worldTransform(s).Apply(p)
}

// GlobalToParent converts a canvas-space point into the space this sprite's
// position is expressed in.
func (s *Sprite) GlobalToParent(p Vec2) Vec2 {
	if s.parent == nil {
		return p
	}
	return worldTransform(s.parent).Invert().Apply(p)
}

// --- Tree ---

// Parent returns the parent sprite, or nil for a root.
func (s *Sprite) Parent() *Sprite { return s.parent }

// Children returns the child list. The returned slice MUST NOT be mutated by
// the caller; use SetChildren to change it.
func (s *Sprite) Children() []*Sprite { return s.children }

// NumChildren returns the number of children.
func (s *Sprite) NumChildren() int { return len(s.children) }

// SetChildren replaces the whole child list. Current children are detached,
// and each new child is removed from its previous parent first.
// Panics if an entry is nil, appears twice, or is an ancestor of s (cycle).
func (s *Sprite) SetChildren(children []*Sprite) {
	seen := make(map[*Sprite]struct{}, len(children))
	for _, c := range children {
		if c == nil {
			panic("flateralus: cannot add nil child")
		}
		if _, dup := seen[c]; dup {
			panic(fmt.Sprintf("flateralus: sprite %q listed twice in SetChildren", c.Name))
		}
		seen[c] = struct{}{}
		if isAncestor(c, s) {
			panic("flateralus: adding child would create a cycle")
		}
	}

	for _, old := range s.children {
		old.parent = nil
	}
	next := make([]*Sprite, len(children))
	copy(next, children)
	for _, c := range next {
		if c.parent != nil && c.parent != s {
			c.parent.removeChildByPtr(c)
		}
		c.parent = s
	}
	s.children = next

}

// RemoveAllChildren detaches every child.
func (s *Sprite) RemoveAllChildren() {
	for _, c := range s.children {
		c.parent = nil
	}
	s.children = nil
}

// RemoveFromParent detaches s from its parent. No-op for a root.
func (s *Sprite) RemoveFromParent() {
	if s.parent == nil {
		return
	}
	s.parent.removeChildByPtr(s)
	s.parent = nil
}

// Walk calls fn for s and every descendant in pre-order. Returning false from
// fn skips that sprite's children.
func (s *Sprite) Walk(fn func(*Sprite) bool) {
	if !fn(s) {
		return
	}
	for _, c := range s.children {
		c.Walk(fn)
	}
}

// Count returns the number of sprites in the subtree rooted at s.
func (s *Sprite) Count() int {
	n := 0
	s.Walk(func(*Sprite) bool { n++; return true })
	return n
}

// --- Behaviors ---

// AddBehavior appends b to the sprite's pipeline and returns its step so a
// reaction condition can be attached.
func (s *Sprite) AddBehavior(b Behavior) *Step {
	return s.behaviors.Add(b)
}

// Behaviors returns the sprite's behavior pipeline.
func (s *Sprite) Behaviors() *Pipeline { return &s.behaviors }

// Update runs the sprite's pipeline against ctx. Children are not visited;
// callers that want the whole tree use Walk.
func (s *Sprite) Update(ctx *BehaviorContext) {
	s.behaviors.Perform(s, ctx)
}

// --- Setup / reset ---

// SetSetup installs the function that builds the sprite's children and
// behaviors, and runs it once.
func (s *Sprite) SetSetup(fn func(s *Sprite)) {
	s.setup = fn
	if fn != nil {
		fn(s)
	}
}

// Reset drops every child and behavior, then re-runs the setup function.
func (s *Sprite) Reset() {
	s.RemoveAllChildren()
	s.behaviors.Clear()
	if s.setup != nil {
		s.setup(s)
	}
}

// --- Drawing ---

// Draw renders the sprite and its children. The canvas state is saved and
// restored around the sprite, so children inherit the sprite's transform.
func (s *Sprite) Draw(c Canvas) {
	if !s.Visible {
		return
	}
	c.Save()
	s.applyTransform(c)
	if s.Shape != nil {
		s.Shape.Draw(c, s)
	}
	for _, child := range s.children {
		child.Draw(c)
	}
	c.Restore()
}

func (s *Sprite) applyTransform(c Canvas) {
	c.Translate(s.position.X, s.position.Y)
	if s.rotation != 0 {
		c.Rotate(degToRad(s.rotation))
	}
	if s.scale != 1 {
		c.Scale(s.scale, s.scale)
	}
	if s.Alpha != 1 {
		c.MultiplyAlpha(s.Alpha)
	}
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of (or the same as) node.
func isAncestor(candidate, node *Sprite) bool {
	for p := node; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from s.children without clearing child.parent.
func (s *Sprite) removeChildByPtr(child *Sprite) {
	for i, c := range s.children {
		if c == child {
			copy(s.children[i:], s.children[i+1:])
			s.children[len(s.children)-1] = nil
			s.children = s.children[:len(s.children)-1]
			return
		}
	}
}

const (
	debugMaxTreeDepth  = 32
	debugMaxChildCount = 1000
)

// checkTreeShape logs a warning for each sprite under root with more than
// debugMaxChildCount children, and for each sprite that is the first on its
// branch deeper than debugMaxTreeDepth. Depth counts root as 1.
func checkTreeShape(root *Sprite, logger *zap.Logger) {
	var visit func(s *Sprite, depth int)
	visit = func(s *Sprite, depth int) {
		if depth == debugMaxTreeDepth+1 {
			logger.Warn("tree depth exceeds threshold",
				zap.String("sprite", s.Name), zap.Int("depth", depth), zap.Int("threshold", debugMaxTreeDepth))
		}
		if len(s.children) > debugMaxChildCount {
			logger.Warn("sprite has many children",
				zap.String("sprite", s.Name), zap.Int("children", len(s.children)), zap.Int("threshold", debugMaxChildCount))
		}
		for _, c := range s.children {
			visit(c, depth+1)
		}
	}
	visit(root, 1)
}
