package flateralus

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float64 fields on a Sprite simultaneously.
// Create one via the convenience constructors (TweenPosition, TweenScale,
// TweenAlpha, TweenRotation) and either call Update(dt) each frame or hand it
// to Scene.AddTween. If the target sprite is detached from the tree it was in
// when the tween started, the group stops immediately.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float64
	target *Sprite
	root   *Sprite
	Done   bool
}

func newTweenGroup(s *Sprite, count int) *TweenGroup {
	root := s
	for root.parent != nil {
		root = root.parent
	}
	return &TweenGroup{count: count, target: s, root: root}
}

// Update advances all tweens by dt seconds and writes values to the target
// fields.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target != g.root && !isAncestor(g.root, g.target) {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
}

// TweenPosition animates the sprite's position to (toX, toY) over duration
// seconds. The original position is left alone.
func TweenPosition(s *Sprite, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(s, 2)
	g.tweens[0] = gween.New(float32(s.position.X), float32(toX), duration, fn)
	g.tweens[1] = gween.New(float32(s.position.Y), float32(toY), duration, fn)
	g.fields[0] = &s.position.X
	g.fields[1] = &s.position.Y
	return g
}

// TweenScale animates the sprite's uniform scale.
func TweenScale(s *Sprite, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(s, 1)
	g.tweens[0] = gween.New(float32(s.scale), float32(to), duration, fn)
	g.fields[0] = &s.scale
	return g
}

// TweenAlpha animates the sprite's alpha.
func TweenAlpha(s *Sprite, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(s, 1)
	g.tweens[0] = gween.New(float32(s.Alpha), float32(to), duration, fn)
	g.fields[0] = &s.Alpha
	return g
}

// TweenRotation animates the sprite's rotation, in degrees.
func TweenRotation(s *Sprite, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(s, 1)
	g.tweens[0] = gween.New(float32(s.rotation), float32(to), duration, fn)
	g.fields[0] = &s.rotation
	return g
}

// TweenColor animates all four components of the sprite's fill color.
func TweenColor(s *Sprite, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(s, 4)
	g.tweens[0] = gween.New(float32(s.FillColor.R), float32(to.R), duration, fn)
	g.tweens[1] = gween.New(float32(s.FillColor.G), float32(to.G), duration, fn)
	g.tweens[2] = gween.New(float32(s.FillColor.B), float32(to.B), duration, fn)
	g.tweens[3] = gween.New(float32(s.FillColor.A), float32(to.A), duration, fn)
	g.fields[0] = &s.FillColor.R
	g.fields[1] = &s.FillColor.G
	g.fields[2] = &s.FillColor.B
	g.fields[3] = &s.FillColor.A
	return g
}
