package flateralus

import (
	"errors"
	"math"
	"testing"
	"time"
)

// fillOp is one fill call seen by recordCanvas, in canvas space.
type fillOp struct {
	kind   string
	origin Vec2
	alpha  float64
	color  Color
}

// recordCanvas is a Canvas that records fills with the transform applied.
type recordCanvas struct {
	*MatrixStack
	ops []fillOp
}

func newRecordCanvas() *recordCanvas {
	return &recordCanvas{MatrixStack: NewMatrixStack(IdentityAffine)}
}

func (c *recordCanvas) record(kind string, local Vec2, col Color) {
	c.ops = append(c.ops, fillOp{kind: kind, origin: c.Current().Apply(local), alpha: c.Alpha(), color: col})
}

func (c *recordCanvas) FillRect(x, y, w, h float64, col Color) {
	c.record("rect", Vec2{x + w/2, y + h/2}, col)
}

func (c *recordCanvas) FillCircle(cx, cy, r float64, col Color) {
	c.record("circle", Vec2{cx, cy}, col)
}

func (c *recordCanvas) FillPolygon(pts []Vec2, col Color) {
	c.record("polygon", PathBounds(pts).Center(), col)
}

// fakeRenderer is an in-memory Renderer for lifecycle tests.
type fakeRenderer struct {
	*recordCanvas
	size     Vec2
	begins   int
	ends     int
	closes   int
	clear    Color
	endErr   error
	closeErr error
}

func (r *fakeRenderer) Begin(clear Color) {
	r.begins++
	r.clear = clear
	r.ops = r.ops[:0]
	r.Reset(IdentityAffine)
}

func (r *fakeRenderer) End() error {
	r.ends++
	return r.endErr
}

func (r *fakeRenderer) Resize(w, h int) { r.size = Vec2{float64(w), float64(h)} }
func (r *fakeRenderer) Size() Vec2      { return r.size }

func (r *fakeRenderer) Close() error {
	r.closes++
	return r.closeErr
}

// fakeBackend hands out one fakeRenderer, or fails with err.
type fakeBackend struct {
	renderer *fakeRenderer
	err      error
}

func (b *fakeBackend) NewRenderer(cfg Config) (Renderer, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.renderer = &fakeRenderer{
		recordCanvas: newRecordCanvas(),
		size:         Vec2{float64(cfg.Width), float64(cfg.Height)},
	}
	return b.renderer, nil
}

var errBackend = errors.New("no gpu")

func newTestApp(t testing.TB, cfg Config) (*Application, *fakeRenderer) {
	t.Helper()
	b := &fakeBackend{}
	app, err := NewApplication(b, cfg)
	if err != nil {
		t.Fatalf("NewApplication: %v", err)
	}
	t.Cleanup(app.Destroy)
	return app, b.renderer
}

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func approxVec(a, b Vec2, tol float64) bool {
	return approxEqual(a.X, b.X, tol) && approxEqual(a.Y, b.Y, tol)
}

func timeMS(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
