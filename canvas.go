package flateralus

import "math"

// Canvas is the drawing surface handed to sprites and animations. It keeps a
// save/restore stack of transforms and alpha, like a 2D canvas context.
// Rotation is in radians. Fill calls use the current transform and multiply
// the color's alpha by the current alpha.
//
// Both backends implement Canvas on top of MatrixStack.
type Canvas interface {
	Save()
	Restore()
	Translate(x, y float64)
	Rotate(rad float64)
	Scale(sx, sy float64)
	MultiplyAlpha(a float64)

	FillRect(x, y, w, h float64, c Color)
	FillCircle(cx, cy, r float64, c Color)
	FillPolygon(pts []Vec2, c Color)
}

// circleSegments returns how many segments approximate a circle of radius r
// once scaled by sx to device pixels.
func circleSegments(r, sx float64) int {
	n := int(r * sx)
	if n < 12 {
		return 12
	}
	if n > 96 {
		return 96
	}
	return n
}

// CirclePoints approximates a circle with a closed polygon, for backends that
// only fill polygons. scale is the device scale factor of the current
// transform, used to pick the segment count.
func CirclePoints(cx, cy, r, scale float64) []Vec2 {
	n := circleSegments(r, scale)
	pts := make([]Vec2, n)
	for i := range pts {
		sin, cos := math.Sincos(float64(i) / float64(n) * 2 * math.Pi)
		pts[i] = Vec2{cx + r*cos, cy + r*sin}
	}
	return pts
}
