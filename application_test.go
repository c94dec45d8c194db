package flateralus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// stubAnimation records lifecycle calls.
type stubAnimation struct {
	manifest  *Manifest
	initErr   error
	inits     int
	updates   []float64
	draws     int
	resets    int
	destroys  int
	panicOn   string
	lastStage Stage
}

func newStub() *stubAnimation {
	return &stubAnimation{manifest: MustManifest(ManifestSpec{ID: "stub"})}
}

func (s *stubAnimation) Manifest() *Manifest { return s.manifest }

func (s *stubAnimation) Init(stage Stage) error {
	s.inits++
	s.lastStage = stage
	return s.initErr
}

func (s *stubAnimation) Update(ctx *BehaviorContext) {
	s.updates = append(s.updates, ctx.DeltaTime)
	if s.panicOn == "update" {
		panic("update failed")
	}
}

func (s *stubAnimation) Draw(Canvas) {
	s.draws++
	if s.panicOn == "draw" {
		panic("draw failed")
	}
}

func (s *stubAnimation) Reset() error { s.resets++; return nil }

func (s *stubAnimation) Destroy() {
	s.destroys++
	if s.panicOn == "destroy" {
		panic("destroy failed")
	}
}

func TestNewApplicationDefaults(t *testing.T) {
	app, r := newTestApp(t, Config{})
	if app.State() != StateRunning {
		t.Errorf("State = %v, want running", app.State())
	}
	cfg := app.Config()
	if cfg.Width != 800 || cfg.Height != 600 || cfg.Resolution != 1 {
		t.Errorf("config = %+v, want 800x600 @1", cfg)
	}
	if r.Size() != (Vec2{800, 600}) {
		t.Errorf("renderer size = %v", r.Size())
	}
	if app.Logger() == nil {
		t.Error("Logger should default to a no-op logger")
	}
}

func TestNewApplicationRendererFailure(t *testing.T) {
	app, err := NewApplication(&fakeBackend{err: errBackend}, Config{})
	if app != nil {
		t.Error("no Application should be returned on renderer failure")
	}
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Kind != KindRender {
		t.Fatalf("err = %v, want KindRender", err)
	}
	if !errors.Is(err, errBackend) {
		t.Error("backend error should be wrapped")
	}
}

func TestNewApplicationBackendPanic(t *testing.T) {
	b := BackendFunc(func(Config) (Renderer, error) { panic("driver crashed") })
	app, err := NewApplication(b, Config{})
	if app != nil || err == nil {
		t.Fatalf("got (%v, %v), want (nil, error)", app, err)
	}
	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Errorf("err = %v, want wrapped PanicError", err)
	}
}

func TestApplicationLifecycle(t *testing.T) {
	app, _ := newTestApp(t, Config{})
	anim := newStub()
	if err := app.SetAnimation(anim); err != nil {
		t.Fatal(err)
	}

	app.SetVisible(false)
	if app.State() != StatePaused {
		t.Errorf("State = %v, want paused", app.State())
	}
	app.SetVisible(false)
	app.SetVisible(true)
	if app.State() != StateRunning {
		t.Errorf("State = %v, want running", app.State())
	}

	app.Destroy()
	app.Destroy()
	if app.State() != StateDestroyed {
		t.Errorf("State = %v, want destroyed", app.State())
	}
	if anim.destroys != 1 {
		t.Errorf("animation destroyed %d times, want 1", anim.destroys)
	}

	app.SetVisible(true)
	if app.State() != StateDestroyed {
		t.Error("destroyed is terminal")
	}
	if err := app.Frame(0); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Frame after Destroy = %v, want ErrDestroyed", err)
	}
	if err := app.SetAnimation(newStub()); !errors.Is(err, ErrDestroyed) {
		t.Errorf("SetAnimation after Destroy = %v, want ErrDestroyed", err)
	}
}

func TestDestroyContainsCleanupFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	b := &fakeBackend{}
	app, err := NewApplication(b, Config{Logger: zap.New(core)})
	if err != nil {
		t.Fatal(err)
	}
	b.renderer.closeErr = errors.New("context lost")
	anim := newStub()
	anim.panicOn = "destroy"
	if err := app.SetAnimation(anim); err != nil {
		t.Fatal(err)
	}

	app.Destroy()

	if b.renderer.closes != 1 {
		t.Errorf("renderer closed %d times, want 1", b.renderer.closes)
	}
	if logs.Len() != 2 {
		t.Errorf("warnings = %d, want 2 (animation + renderer)", logs.Len())
	}
}

func TestSetAnimationReplacesPrevious(t *testing.T) {
	app, _ := newTestApp(t, Config{})
	first, second := newStub(), newStub()
	if err := app.SetAnimation(first); err != nil {
		t.Fatal(err)
	}
	if err := app.SetAnimation(second); err != nil {
		t.Fatal(err)
	}
	if first.destroys != 1 {
		t.Errorf("first destroyed %d times, want 1", first.destroys)
	}
	if app.Animation() != second {
		t.Error("second should be attached")
	}
	if second.lastStage != Stage(app) {
		t.Error("Init should receive the application as stage")
	}
}

func TestSetAnimationInitFailure(t *testing.T) {
	app, r := newTestApp(t, Config{})
	anim := newStub()
	anim.initErr = errors.New("bad config")

	err := app.SetAnimation(anim)
	if !errors.Is(err, anim.initErr) {
		t.Fatalf("err = %v, want init error", err)
	}
	if app.Animation() != nil {
		t.Error("no animation should be attached")
	}
	if anim.destroys != 1 {
		t.Errorf("failed animation destroyed %d times, want 1", anim.destroys)
	}
	if err := app.Frame(0); err != nil {
		t.Fatal(err)
	}
	if r.begins != 1 || len(r.ops) != 0 {
		t.Error("frame should clear and draw nothing")
	}
}

func TestFrameDeltaTime(t *testing.T) {
	app, _ := newTestApp(t, Config{})
	anim := newStub()
	if err := app.SetAnimation(anim); err != nil {
		t.Fatal(err)
	}

	for _, ms := range []float64{100, 116, 150} {
		if err := app.Frame(timeMS(ms)); err != nil {
			t.Fatal(err)
		}
	}
	app.SetVisible(false)
	if err := app.Frame(timeMS(500)); err != nil {
		t.Fatal(err)
	}
	app.SetVisible(true)
	for _, ms := range []float64{900, 910} {
		if err := app.Frame(timeMS(ms)); err != nil {
			t.Fatal(err)
		}
	}

	want := []float64{0, 16, 34, 0, 10}
	if len(anim.updates) != len(want) {
		t.Fatalf("updates = %v, want %v", anim.updates, want)
	}
	for i := range want {
		if !approxEqual(anim.updates[i], want[i], 1e-9) {
			t.Errorf("update %d dt = %v, want %v", i, anim.updates[i], want[i])
		}
	}
	if app.Frames() != 5 {
		t.Errorf("Frames = %d, want 5 (paused frame skipped)", app.Frames())
	}
}

func TestFrameContainsAnimationPanics(t *testing.T) {
	for _, hook := range []string{"update", "draw"} {
		t.Run(hook, func(t *testing.T) {
			app, r := newTestApp(t, Config{})
			anim := newStub()
			anim.panicOn = hook
			if err := app.SetAnimation(anim); err != nil {
				t.Fatal(err)
			}
			if err := app.Frame(0); err != nil {
				t.Fatalf("Frame = %v, panics should be contained", err)
			}
			if r.ends != 1 {
				t.Error("frame should still be finished")
			}
		})
	}
}

func TestFrameRenderError(t *testing.T) {
	app, r := newTestApp(t, Config{})
	r.endErr = errors.New("present failed")
	err := app.Frame(0)
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Kind != KindRender {
		t.Errorf("err = %v, want KindRender", err)
	}
}

func TestFrameClearColor(t *testing.T) {
	app, r := newTestApp(t, Config{Background: MustParseColor("#336699"), BackgroundAlpha: 0.5})
	if err := app.Frame(0); err != nil {
		t.Fatal(err)
	}
	if r.clear.A != 0.5 || r.clear.Hex()[:7] != "#336699" {
		t.Errorf("clear = %v, want #336699 at alpha 0.5", r.clear)
	}
}

func TestPauseResetsPointer(t *testing.T) {
	app, _ := newTestApp(t, Config{})
	m := NewMousePointer()
	app.SetPointer(m)
	m.Move(10, 10)
	if !app.Pointer().Active {
		t.Fatal("pointer should be active")
	}
	app.SetVisible(false)
	if st := app.Pointer(); st.Active || st.Position != OffscreenPosition {
		t.Errorf("pointer after pause = %+v, want reset", st)
	}
}

func TestSetPointerResetsPrevious(t *testing.T) {
	app, _ := newTestApp(t, Config{})
	m := NewMousePointer()
	app.SetPointer(m)
	m.Move(5, 5)
	touch := NewTouchPointer(10)
	app.SetPointer(touch)
	if m.State().Active {
		t.Error("previous pointer should be reset")
	}
	if app.PointerSource() != touch {
		t.Error("touch pointer should be active")
	}
}

func TestResize(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		wantSize   Vec2
		wantResets int
	}{
		{"auto resize", Config{AutoResize: true}, Vec2{320, 240}, 0},
		{"reset on resize", Config{AutoResize: true, ResetOnResize: true}, Vec2{320, 240}, 1},
		{"auto resize off", Config{ResetOnResize: true}, Vec2{800, 600}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, r := newTestApp(t, tt.cfg)
			anim := newStub()
			if err := app.SetAnimation(anim); err != nil {
				t.Fatal(err)
			}
			app.HandleContainerResize(320, 240)
			app.HandleContainerResize(320, 240)
			if r.Size() != tt.wantSize {
				t.Errorf("size = %v, want %v", r.Size(), tt.wantSize)
			}
			if anim.resets != tt.wantResets {
				t.Errorf("resets = %d, want %d", anim.resets, tt.wantResets)
			}
		})
	}
}

// wideScene builds a root with more children than the debug threshold.
func wideScene() *Scene {
	return NewScene(MustManifest(ManifestSpec{ID: "wide"}), func(sc *Scene) error {
		kids := make([]*Sprite, debugMaxChildCount+1)
		for i := range kids {
			kids[i] = NewContainer("k")
		}
		sc.Root().SetChildren(kids)
		return nil
	})
}

func TestDebugTreeChecksPerApplication(t *testing.T) {
	coreA, logsA := observer.New(zap.WarnLevel)
	appA, _ := newTestApp(t, Config{Debug: true, Logger: zap.New(coreA)})
	coreB, logsB := observer.New(zap.WarnLevel)
	appB, _ := newTestApp(t, Config{Logger: zap.New(coreB)})

	if err := appB.SetAnimation(wideScene()); err != nil {
		t.Fatal(err)
	}
	if logsA.Len() != 0 || logsB.Len() != 0 {
		t.Errorf("non-debug tree logged warnings: A=%d B=%d", logsA.Len(), logsB.Len())
	}

	// Destroying another debug application leaves A's checks on.
	other, _ := newTestApp(t, Config{Debug: true})
	other.Destroy()

	if err := appA.SetAnimation(wideScene()); err != nil {
		t.Fatal(err)
	}
	if n := logsA.FilterMessage("sprite has many children").Len(); n != 1 {
		t.Errorf("A got %d child-count warnings, want 1", n)
	}
	if logsB.Len() != 0 {
		t.Errorf("B received %d warnings from A's tree", logsB.Len())
	}

	// Rebuilding through new controls checks the tree again.
	if err := appA.SetControls(appA.Animation().(Tunable).Controls()); err != nil {
		t.Fatal(err)
	}
	if n := logsA.FilterMessage("sprite has many children").Len(); n != 2 {
		t.Errorf("A got %d child-count warnings after rebuild, want 2", n)
	}
}

func TestDebugApplicationsConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app, err := NewApplication(&fakeBackend{}, Config{Debug: true})
			if err != nil {
				t.Error(err)
				return
			}
			defer app.Destroy()
			if err := app.SetAnimation(wideScene()); err != nil {
				t.Error(err)
			}
			app.Frame(0)
		}()
	}
	wg.Wait()
}

func TestRunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	app, _ := newTestApp(t, Config{})
	anim := newStub()
	if err := app.SetAnimation(anim); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := app.Run(ctx, 200)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run = %v, want deadline exceeded", err)
	}
	if app.Frames() == 0 {
		t.Error("Run should have rendered frames")
	}
}

func TestRunReturnsAfterDestroy(t *testing.T) {
	defer goleak.VerifyNone(t)

	app, _ := newTestApp(t, Config{})
	anim := newStub()
	if err := app.SetAnimation(hookAnimation{stub: anim, onUpdate: func() {
		if len(anim.updates) == 3 {
			app.Destroy()
		}
	}}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Run(ctx, 500); err != nil {
		t.Errorf("Run = %v, want nil after Destroy", err)
	}
	if app.State() != StateDestroyed {
		t.Errorf("State = %v", app.State())
	}
}

// hookAnimation wraps a stub with an update hook.
type hookAnimation struct {
	stub     *stubAnimation
	onUpdate func()
}

func (h hookAnimation) Manifest() *Manifest { return h.stub.Manifest() }
func (h hookAnimation) Init(s Stage) error  { return h.stub.Init(s) }
func (h hookAnimation) Draw(c Canvas)       { h.stub.Draw(c) }
func (h hookAnimation) Reset() error        { return h.stub.Reset() }
func (h hookAnimation) Destroy()            { h.stub.Destroy() }

func (h hookAnimation) Update(c *BehaviorContext) {
	h.stub.Update(c)
	h.onUpdate()
}

func TestPostRunsOnNextFrame(t *testing.T) {
	app, _ := newTestApp(t, Config{})
	anim := newStub()
	if err := app.SetAnimation(anim); err != nil {
		t.Fatal(err)
	}

	var order []string
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.Post(func(*Application) { order = append(order, "a") })
		app.Post(func(*Application) { panic("boom") })
		app.Post(func(*Application) { order = append(order, "b") })
	}()
	wg.Wait()

	if len(order) != 0 {
		t.Fatal("posted functions must wait for a frame")
	}
	app.SetVisible(false)
	if err := app.Frame(timeMS(16)); err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("order = %v, want [a b] even while paused", order)
	}
	if len(anim.updates) != 0 {
		t.Error("paused frame should not update")
	}
}

func TestPostDestroy(t *testing.T) {
	app, _ := newTestApp(t, Config{})
	ran := false
	app.Post(func(a *Application) { a.Destroy() })
	app.Post(func(*Application) { ran = true })
	if err := app.Frame(0); err != nil {
		t.Errorf("Frame = %v, want nil when a posted function destroys", err)
	}
	if ran {
		t.Error("functions after Destroy should not run")
	}
	if app.State() != StateDestroyed {
		t.Errorf("State = %v", app.State())
	}
}
