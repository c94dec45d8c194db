package ebitenbackend

import (
	"testing"

	"github.com/bracketbear/flateralus"
	"github.com/bracketbear/flateralus/backend/raster"
	"github.com/google/go-cmp/cmp"
	"github.com/hajimehoshi/ebiten/v2"
)

func TestAppendFanIndices(t *testing.T) {
	tests := []struct {
		n    int
		want []uint16
	}{
		{2, nil},
		{3, []uint16{0, 1, 2}},
		{4, []uint16{0, 1, 2, 0, 2, 3}},
		{5, []uint16{0, 1, 2, 0, 2, 3, 0, 3, 4}},
	}
	for _, tt := range tests {
		got := appendFanIndices(nil, tt.n)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("appendFanIndices(%d) mismatch (-want +got):\n%s", tt.n, diff)
		}
	}
}

func TestAppendFanVertices(t *testing.T) {
	pts := []flateralus.Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}}
	m := flateralus.TranslateAffine(5, 7).Mul(flateralus.ScaleAffine(2, 2))
	c := flateralus.Color{R: 1, G: 0.5, B: 0, A: 0.25}

	v := appendFanVertices(nil, pts, m, c)
	if len(v) != 3 {
		t.Fatalf("len = %d, want 3", len(v))
	}
	if v[1].DstX != 25 || v[1].DstY != 7 {
		t.Errorf("v[1] dst = (%v, %v), want (25, 7)", v[1].DstX, v[1].DstY)
	}
	if v[2].DstX != 5 || v[2].DstY != 27 {
		t.Errorf("v[2] dst = (%v, %v), want (5, 27)", v[2].DstX, v[2].DstY)
	}
	for i, vv := range v {
		if vv.SrcX != 0.5 || vv.SrcY != 0.5 {
			t.Errorf("v[%d] should sample the pixel center", i)
		}
		if vv.ColorR != 1 || vv.ColorG != 0.5 || vv.ColorA != 0.25 {
			t.Errorf("v[%d] color = %v %v %v %v", i, vv.ColorR, vv.ColorG, vv.ColorB, vv.ColorA)
		}
	}
}

func TestRendererWithoutTarget(t *testing.T) {
	r := New(100, 50, 2, true)
	r.Begin(flateralus.ColorBlack)
	r.FillRect(0, 0, 10, 10, flateralus.ColorWhite)
	if len(r.verts) != 0 {
		t.Error("fills without a target should be dropped")
	}
	if err := r.End(); err != nil {
		t.Fatal(err)
	}
	if r.Size() != (flateralus.Vec2{X: 100, Y: 50}) {
		t.Errorf("Size = %v", r.Size())
	}
	r.Resize(0, 20)
	if r.Size() != (flateralus.Vec2{X: 1, Y: 20}) {
		t.Errorf("Size after resize = %v", r.Size())
	}
}

func TestLayoutSize(t *testing.T) {
	tests := []struct {
		logical flateralus.Vec2
		res     float64
		w, h    int
	}{
		{flateralus.Vec2{X: 640, Y: 480}, 1, 640, 480},
		{flateralus.Vec2{X: 640, Y: 480}, 2, 1280, 960},
		{flateralus.Vec2{X: 101, Y: 51}, 1.5, 152, 77},
		{flateralus.Vec2{X: 10, Y: 10}, 0, 10, 10},
	}
	for _, tt := range tests {
		w, h := layoutSize(tt.logical, tt.res)
		if w != tt.w || h != tt.h {
			t.Errorf("layoutSize(%v, %v) = %dx%d, want %dx%d", tt.logical, tt.res, w, h, tt.w, tt.h)
		}
	}
}

func newHostApp(t *testing.T) (*Host, *flateralus.Application) {
	t.Helper()
	cfg := flateralus.DefaultConfig()
	cfg.Width, cfg.Height = 200, 100
	app, err := flateralus.NewApplication(raster.Backend{}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(app.Destroy)
	return NewHost(app, false), app
}

func TestHostMouse(t *testing.T) {
	h, app := newHostApp(t)

	h.applyInput(nil, flateralus.Vec2{X: 30, Y: 40}, true)
	if st := app.Pointer(); !st.Active || st.Position != (flateralus.Vec2{X: 30, Y: 40}) {
		t.Errorf("pointer = %+v, want active at (30, 40)", st)
	}

	h.applyInput(nil, flateralus.Vec2{X: 300, Y: 40}, false)
	if st := app.Pointer(); st.Active || st.Position != flateralus.OffscreenPosition {
		t.Errorf("pointer = %+v, want reset after leaving", st)
	}
}

func TestHostTouchTakesOver(t *testing.T) {
	h, app := newHostApp(t)
	cursor := flateralus.Vec2{X: 5, Y: 5}
	h.applyInput(nil, cursor, true)

	h.applyInput([]flateralus.Vec2{{X: 50, Y: 60}}, cursor, true)
	if app.PointerSource() != flateralus.Pointer(h.touch) {
		t.Fatal("touch should become the pointer source")
	}
	st := app.Pointer()
	if !st.Active || st.Position != (flateralus.Vec2{X: 50, Y: 60}) || st.Diameter != DefaultTouchDiameter {
		t.Errorf("pointer = %+v", st)
	}
	if h.mouse.State().Active {
		t.Error("switching source should reset the mouse")
	}

	h.applyInput([]flateralus.Vec2{{X: 55, Y: 65}}, cursor, true)
	if app.Pointer().Position != (flateralus.Vec2{X: 55, Y: 65}) {
		t.Errorf("touch move = %v", app.Pointer().Position)
	}

	// Touch released; a stationary cursor does not steal the pointer back.
	h.applyInput(nil, cursor, true)
	if app.PointerSource() != flateralus.Pointer(h.touch) || app.Pointer().Active {
		t.Errorf("after release: source %T, state %+v", app.PointerSource(), app.Pointer())
	}

	h.applyInput(nil, flateralus.Vec2{X: 7, Y: 8}, true)
	if app.PointerSource() != flateralus.Pointer(h.mouse) {
		t.Fatal("moving the cursor should hand the pointer back to the mouse")
	}
	if app.Pointer().Position != (flateralus.Vec2{X: 7, Y: 8}) {
		t.Errorf("mouse position = %v", app.Pointer().Position)
	}
}

func TestHostToCanvas(t *testing.T) {
	cfg := flateralus.DefaultConfig()
	cfg.Resolution = 2
	app, err := flateralus.NewApplication(raster.Backend{}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer app.Destroy()
	h := NewHost(app, false)
	if got := h.toCanvas(100, 50); got != (flateralus.Vec2{X: 50, Y: 25}) {
		t.Errorf("toCanvas = %v, want (50, 25)", got)
	}
	if !h.inside(flateralus.Vec2{X: 799, Y: 0}) || h.inside(flateralus.Vec2{X: 800, Y: 0}) {
		t.Error("inside should be half-open on the canvas size")
	}
}

func TestRunRejectsOtherRenderers(t *testing.T) {
	app, err := flateralus.NewApplication(raster.Backend{}, flateralus.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := Run(app, RunConfig{}); err == nil {
		t.Error("expected error for a raster renderer")
	}
	if app.State() == flateralus.StateDestroyed {
		t.Error("a rejected Run should not destroy the application")
	}
	app.Destroy()
}

func TestConfigureKeepsLastFrame(t *testing.T) {
	defer ebiten.SetScreenClearedEveryFrame(true)
	defer ebiten.SetTPS(ebiten.DefaultTPS)

	configure(flateralus.Vec2{X: 320, Y: 240}, RunConfig{Title: "test", TPS: 30})
	if ebiten.IsScreenClearedEveryFrame() {
		t.Error("screen should keep the last frame while paused")
	}
	if got := ebiten.TPS(); got != 30 {
		t.Errorf("TPS = %d, want 30", got)
	}
}
