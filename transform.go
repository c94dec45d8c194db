package flateralus

import "math"

// Affine is a 2D affine matrix stored as [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Affine [6]float64

// IdentityAffine is the identity matrix.
var IdentityAffine = Affine{1, 0, 0, 1, 0, 0}

// Mul returns m * o, i.e. o is applied first.
func (m Affine) Mul(o Affine) Affine {
	return Affine{
		m[0]*o[0] + m[2]*o[1],
		m[1]*o[0] + m[3]*o[1],
		m[0]*o[2] + m[2]*o[3],
		m[1]*o[2] + m[3]*o[3],
		m[0]*o[4] + m[2]*o[5] + m[4],
		m[1]*o[4] + m[3]*o[5] + m[5],
	}
}

// Invert returns the inverse of m.
// Returns the identity matrix if m is singular (determinant ≈ 0).
func (m Affine) Invert() Affine {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return IdentityAffine
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Affine{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// Apply transforms the point p.
func (m Affine) Apply(p Vec2) Vec2 {
	return Vec2{m[0]*p.X + m[2]*p.Y + m[4], m[1]*p.X + m[3]*p.Y + m[5]}
}

// ScaleFactor returns the average axis scale of m, used to size strokes and
// curve tessellation.
func (m Affine) ScaleFactor() float64 {
	sx := math.Hypot(m[0], m[1])
	sy := math.Hypot(m[2], m[3])
	return (sx + sy) / 2
}

// TranslateAffine returns a translation matrix.
func TranslateAffine(x, y float64) Affine {
	return Affine{1, 0, 0, 1, x, y}
}

// RotateAffine returns a rotation matrix for an angle in radians.
func RotateAffine(rad float64) Affine {
	sin, cos := math.Sincos(rad)
	return Affine{cos, sin, -sin, cos, 0, 0}
}

// ScaleAffine returns a scale matrix.
func ScaleAffine(sx, sy float64) Affine {
	return Affine{sx, 0, 0, sy, 0, 0}
}

// localTransform computes a sprite's matrix relative to its parent.
//
// Composition order: Scale -> Rotate -> Translate(position)
func localTransform(s *Sprite) Affine {
	sin, cos := math.Sincos(degToRad(s.rotation))
	sc := s.scale
	return Affine{
		cos * sc, sin * sc,
		-sin * sc, cos * sc,
		s.position.X, s.position.Y,
	}
}

// worldTransform composes local transforms from the root down to s.
func worldTransform(s *Sprite) Affine {
	if s == nil {
		return IdentityAffine
	}
	return worldTransform(s.parent).Mul(localTransform(s))
}

// MatrixStack is the save/restore transform stack shared by the rendering
// backends. The zero value is not usable; create one with NewMatrixStack.
type MatrixStack struct {
	current Affine
	alpha   float64
	saved   []stackFrame
}

type stackFrame struct {
	m     Affine
	alpha float64
}

// NewMatrixStack creates a stack whose base transform is base.
func NewMatrixStack(base Affine) *MatrixStack {
	return &MatrixStack{current: base, alpha: 1}
}

// Save pushes the current transform and alpha.
func (s *MatrixStack) Save() {
	s.saved = append(s.saved, stackFrame{s.current, s.alpha})
}

// Restore pops the most recently saved state. Unbalanced calls are ignored.
func (s *MatrixStack) Restore() {
	if len(s.saved) == 0 {
		return
	}
	f := s.saved[len(s.saved)-1]
	s.saved = s.saved[:len(s.saved)-1]
	s.current = f.m
	s.alpha = f.alpha
}

// Reset clears saved states and sets a new base transform.
func (s *MatrixStack) Reset(base Affine) {
	s.saved = s.saved[:0]
	s.current = base
	s.alpha = 1
}

// Depth returns the number of saved states.
func (s *MatrixStack) Depth() int { return len(s.saved) }

// Translate post-multiplies a translation.
func (s *MatrixStack) Translate(x, y float64) {
	s.current = s.current.Mul(TranslateAffine(x, y))
}

// Rotate post-multiplies a rotation in radians.
func (s *MatrixStack) Rotate(rad float64) {
	s.current = s.current.Mul(RotateAffine(rad))
}

// Scale post-multiplies a scale.
func (s *MatrixStack) Scale(sx, sy float64) {
	s.current = s.current.Mul(ScaleAffine(sx, sy))
}

// MultiplyAlpha scales the current alpha.
func (s *MatrixStack) MultiplyAlpha(a float64) {
	s.alpha *= a
}

// Current returns the current transform.
func (s *MatrixStack) Current() Affine { return s.current }

// Alpha returns the current accumulated alpha.
func (s *MatrixStack) Alpha() float64 { return s.alpha }
