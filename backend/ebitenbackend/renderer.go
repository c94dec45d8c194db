// Package ebitenbackend renders flateralus applications with Ebitengine and
// hosts them in a window.
//
// Shapes are drawn as triangle fans textured with a shared 1x1 white image,
// so every fill is a single DrawTriangles call tinted through vertex colors.
//
//	app, _ := flateralus.NewApplication(ebitenbackend.Backend{}, cfg)
//	app.SetAnimation(spiral.New())
//	ebitenbackend.Run(app, ebitenbackend.RunConfig{Title: "spiral", ShowFPS: true})
package ebitenbackend

import (
	"image/color"

	"github.com/bracketbear/flateralus"
	"github.com/hajimehoshi/ebiten/v2"
)

var whitePixelImage *ebiten.Image

// whitePixel returns a lazily-initialized 1x1 white image shared by all fills.
func whitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// Backend creates ebiten renderers. The zero value is ready to use.
type Backend struct{}

// NewRenderer implements flateralus.Backend.
func (Backend) NewRenderer(cfg flateralus.Config) (flateralus.Renderer, error) {
	return New(cfg.Width, cfg.Height, cfg.Resolution, cfg.Antialias), nil
}

// Renderer draws into the ebiten image handed to it by the Host for the
// current frame. Fills outside a frame are dropped.
type Renderer struct {
	*flateralus.MatrixStack

	width, height int
	resolution    float64
	antialias     bool

	target *ebiten.Image
	verts  []ebiten.Vertex
	inds   []uint16
}

// New creates a renderer for a width x height logical canvas.
func New(width, height int, resolution float64, antialias bool) *Renderer {
	if resolution <= 0 {
		resolution = 1
	}
	return &Renderer{
		MatrixStack: flateralus.NewMatrixStack(flateralus.ScaleAffine(resolution, resolution)),
		width:       max(width, 1),
		height:      max(height, 1),
		resolution:  resolution,
		antialias:   antialias,
	}
}

// SetTarget sets the image the next frame draws into.
func (r *Renderer) SetTarget(img *ebiten.Image) { r.target = img }

// Resolution returns the device pixel ratio.
func (r *Renderer) Resolution() float64 { return r.resolution }

// Begin implements flateralus.Renderer.
func (r *Renderer) Begin(clear flateralus.Color) {
	r.Reset(flateralus.ScaleAffine(r.resolution, r.resolution))
	if r.target == nil {
		return
	}
	cr, cg, cb, ca := clear.RGBA8()
	r.target.Fill(color.RGBA{R: cr, G: cg, B: cb, A: ca})
}

// End implements flateralus.Renderer. The target is released; ebiten owns it.
func (r *Renderer) End() error {
	r.target = nil
	return nil
}

// Resize implements flateralus.Renderer. The window surface is resized by
// ebiten through Host.Layout, so only the logical size is recorded.
func (r *Renderer) Resize(width, height int) {
	r.width, r.height = max(width, 1), max(height, 1)
}

// Size implements flateralus.Renderer.
func (r *Renderer) Size() flateralus.Vec2 {
	return flateralus.Vec2{X: float64(r.width), Y: float64(r.height)}
}

// Close implements flateralus.Renderer.
func (r *Renderer) Close() error {
	r.target = nil
	r.verts = nil
	r.inds = nil
	return nil
}

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
	r.fill(pts, c)
}

func (r *Renderer) fill(pts []flateralus.Vec2, c flateralus.Color) {
	if r.target == nil || len(pts) < 3 {
		return
	}
	c = c.WithAlpha(c.A * r.Alpha())
	if c.A <= 0 {
		return
	}
	r.verts = appendFanVertices(r.verts[:0], pts, r.Current(), c)
	r.inds = appendFanIndices(r.inds[:0], len(pts))

	var op ebiten.DrawTrianglesOptions
	op.AntiAlias = r.antialias
	r.target.DrawTriangles(r.verts, r.inds, whitePixel(), &op)
}

// appendFanVertices transforms pts by m and appends one vertex per point,
// sampling the center of the white pixel and tinted with straight-alpha c.
func appendFanVertices(dst []ebiten.Vertex, pts []flateralus.Vec2, m flateralus.Affine, c flateralus.Color) []ebiten.Vertex {
	for _, p := range pts {
		q := m.Apply(p)
		dst = append(dst, ebiten.Vertex{
			DstX:   float32(q.X),
			DstY:   float32(q.Y),
			SrcX:   0.5,
			SrcY:   0.5,
			ColorR: float32(c.R),
			ColorG: float32(c.G),
			ColorB: float32(c.B),
			ColorA: float32(c.A),
		})
	}
	return dst
}

// appendFanIndices appends the indices of a triangle fan over n vertices:
// (0, i, i+1) for i in [1, n-2].
func appendFanIndices(dst []uint16, n int) []uint16 {
	for i := 1; i < n-1; i++ {
		dst = append(dst, 0, uint16(i), uint16(i+1))
	}
	return dst
}
