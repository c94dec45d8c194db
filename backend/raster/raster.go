// Package raster is a software rendering backend. It draws into an
// *image.RGBA with golang.org/x/image/vector, so it runs anywhere, needs no
// window or GPU, and is what the CLI render command and tests use.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/bracketbear/flateralus"
	"golang.org/x/image/vector"
)

// Backend creates software renderers. The zero value is ready to use.
type Backend struct{}

// NewRenderer implements flateralus.Backend.
func (Backend) NewRenderer(cfg flateralus.Config) (flateralus.Renderer, error) {
	return New(cfg.Width, cfg.Height, cfg.Resolution), nil
}

// Renderer draws into an in-memory RGBA image. The pixel grid is the logical
// size multiplied by the resolution. Edges are always anti-aliased.
type Renderer struct {
	*flateralus.MatrixStack

	width, height int
	resolution    float64
	img           *image.RGBA
	z             *vector.Rasterizer
}

// New creates a renderer with a width x height logical canvas.
func New(width, height int, resolution float64) *Renderer {
	if resolution <= 0 {
		resolution = 1
	}
	r := &Renderer{
		MatrixStack: flateralus.NewMatrixStack(flateralus.ScaleAffine(resolution, resolution)),
		resolution:  resolution,
	}
	r.Resize(width, height)
	return r
}

func (r *Renderer) base() flateralus.Affine {
	return flateralus.ScaleAffine(r.resolution, r.resolution)
}

// Begin implements flateralus.Renderer.
func (r *Renderer) Begin(clear flateralus.Color) {
	r.Reset(r.base())
	cr, cg, cb, ca := clear.RGBA8()
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(color.RGBA{cr, cg, cb, ca}), image.Point{}, draw.Src)
}

// End implements flateralus.Renderer.
func (r *Renderer) End() error { return nil }

// Resize implements flateralus.Renderer. The image is reallocated and
// cleared.
func (r *Renderer) Resize(width, height int) {
	r.width, r.height = max(width, 1), max(height, 1)
	pw := int(math.Ceil(float64(r.width) * r.resolution))
	ph := int(math.Ceil(float64(r.height) * r.resolution))
	r.img = image.NewRGBA(image.Rect(0, 0, pw, ph))
	if r.z == nil {
		r.z = vector.NewRasterizer(pw, ph)
	} else {
		r.z.Reset(pw, ph)
	}
}

// Size implements flateralus.Renderer.
func (r *Renderer) Size() flateralus.Vec2 {
	return flateralus.Vec2{X: float64(r.width), Y: float64(r.height)}
}

// Close implements flateralus.Renderer.
func (r *Renderer) Close() error {
	r.img = nil
	r.z = nil
	return nil
}

// Image returns the backing image. It is reused across frames.
func (r *Renderer) Image() *image.RGBA { return r.img }

// FillRect implements flateralus.Canvas.
func (r *Renderer) FillRect(x, y, w, h float64, c flateralus.Color) {
	r.fill([]flateralus.Vec2{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}, c)
}

// FillCircle implements flateralus.Canvas.
func (r *Renderer) FillCircle(cx, cy, radius float64, c flateralus.Color) {
	r.fill(flateralus.CirclePoints(cx, cy, radius, r.Current().ScaleFactor()), c)
}

// FillPolygon implements flateralus.Canvas.
func (r *Renderer) FillPolygon(pts []flateralus.Vec2, c flateralus.Color) {
	if len(pts) < 3 {
		return
	}
	r.fill(pts, c)
}

func (r *Renderer) fill(pts []flateralus.Vec2, c flateralus.Color) {
	if r.img == nil {
		return
	}
	c = c.WithAlpha(c.A * r.Alpha())
	if c.A <= 0 {
		return
	}
	m := r.Current()
	b := r.img.Bounds()
	r.z.Reset(b.Dx(), b.Dy())
	for i, p := range pts {
		q := m.Apply(p)
		if i == 0 {
			r.z.MoveTo(float32(q.X), float32(q.Y))
			continue
		}
		r.z.LineTo(float32(q.X), float32(q.Y))
	}
	r.z.ClosePath()
	cr, cg, cb, ca := c.RGBA8()
	r.z.DrawOp = draw.Over
	r.z.Draw(r.img, b, image.NewUniform(color.RGBA{cr, cg, cb, ca}), image.Point{})
}
