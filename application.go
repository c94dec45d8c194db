package flateralus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is the Application lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateRunning
	StatePaused
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Config configures an Application. Zero Width, Height and Resolution take
// their defaults; start from DefaultConfig to get the other defaults too.
type Config struct {
	Width, Height int
	// Background is cleared every frame with its alpha multiplied by
	// BackgroundAlpha. A BackgroundAlpha of 0 gives a transparent canvas.
	Background      Color
	BackgroundAlpha float64
	Antialias       bool
	// Resolution is the device pixel ratio applied by the renderer.
	Resolution float64
	// AutoResize lets HandleContainerResize resize the canvas.
	AutoResize bool
	// ResetOnResize resets the animation after every resize so layouts that
	// depend on the canvas size are rebuilt.
	ResetOnResize bool
	// Logger receives lifecycle and fault logs. Nil means no logging.
	Logger *zap.Logger
	// Debug enables per-frame stats and scene-graph shape warnings.
	Debug bool
}

// DefaultConfig returns the defaults: 800x600, opaque black background,
// resolution 1, antialiasing and auto-resize on.
func DefaultConfig() Config {
	return Config{
		Width:           800,
		Height:          600,
		Background:      ColorBlack,
		BackgroundAlpha: 1,
		Antialias:       true,
		Resolution:      1,
		AutoResize:      true,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.Resolution <= 0 {
		c.Resolution = d.Resolution
	}
	c.BackgroundAlpha = clamp01(c.BackgroundAlpha)
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// Renderer is a rendering context: a Canvas plus frame and surface
// management. An Application owns exactly one.
type Renderer interface {
	Canvas
	// Begin starts a frame, clearing the surface to clear.
	Begin(clear Color)
	// End finishes the frame.
	End() error
	Resize(width, height int)
	// Size returns the logical canvas size.
	Size() Vec2
	Close() error
}

// Backend creates renderers.
type Backend interface {
	NewRenderer(cfg Config) (Renderer, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(cfg Config) (Renderer, error)

// NewRenderer implements Backend.
func (f BackendFunc) NewRenderer(cfg Config) (Renderer, error) { return f(cfg) }

// Application hosts one animation on one renderer and drives its frames.
// It is single-threaded: every method except Post must be called from the
// goroutine that drives frames.
type Application struct {
	cfg       Config
	logger    *zap.Logger
	renderer  Renderer
	state     State
	animation Animation
	pointer   Pointer

	postMu sync.Mutex
	posted []func(*Application)

	lastFrame time.Duration
	haveLast  bool
	frames    uint64
	stats     frameStats
}

// NewApplication creates the rendering context and returns a running
// Application. If the backend fails, no Application is returned and the
// error has kind KindRender.
func NewApplication(backend Backend, cfg Config) (app *Application, err error) {
	cfg = cfg.withDefaults()
	a := &Application{
		cfg:     cfg,
		logger:  cfg.Logger,
		state:   StateUninitialized,
		pointer: NewMousePointer(),
	}
	a.state = StateInitializing

	defer func() {
		if r := recover(); r != nil {
			app, err = nil, &Error{Op: "application.New", Kind: KindRender, Err: &PanicError{Op: "new renderer", Value: r}}
		}
	}()
	if backend == nil {
		return nil, &Error{Op: "application.New", Kind: KindRender, Err: errors.New("nil backend")}
	}
	r, err := backend.NewRenderer(cfg)
	if err != nil {
		return nil, &Error{Op: "application.New", Kind: KindRender, Err: err}
	}
	if r == nil {
		return nil, &Error{Op: "application.New", Kind: KindRender, Err: errors.New("backend returned nil renderer")}
	}
	a.renderer = r
	a.state = StateRunning
	a.logger.Debug("application running",
		zap.Int("width", cfg.Width), zap.Int("height", cfg.Height), zap.Float64("resolution", cfg.Resolution))
	return a, nil
}

// State returns the current lifecycle state.
func (a *Application) State() State { return a.state }

// Config returns the effective configuration.
func (a *Application) Config() Config { return a.cfg }

// Logger implements Stage.
func (a *Application) Logger() *zap.Logger { return a.logger }

// Size implements Stage.
func (a *Application) Size() Vec2 {
	if a.renderer == nil {
		return Vec2{}
	}
	return a.renderer.Size()
}

// Pointer implements Stage.
func (a *Application) Pointer() PointerState { return a.pointer.State() }

// PointerSource returns the active pointer.
func (a *Application) PointerSource() Pointer { return a.pointer }

// SetPointer switches the active input modality. The previous pointer is
// reset so it cannot leave stale input behind.
func (a *Application) SetPointer(p Pointer) {
	if p == nil || p == a.pointer {
		return
	}
	a.pointer.Reset()
	a.pointer = p
}

// Renderer returns the rendering context, or nil once destroyed.
func (a *Application) Renderer() Renderer { return a.renderer }

// Animation returns the attached animation, or nil.
func (a *Application) Animation() Animation { return a.animation }

// Frames returns the number of frames rendered.
func (a *Application) Frames() uint64 { return a.frames }

// SetAnimation attaches anim, destroying the previous animation first. If
// anim fails to initialize it is destroyed, nothing is attached, and the
// error is returned. Passing nil just detaches.
func (a *Application) SetAnimation(anim Animation) error {
	if a.state == StateDestroyed {
		return &Error{Op: "application.SetAnimation", Kind: KindConfig, Err: ErrDestroyed}
	}
	if a.animation != nil {
		a.destroyAnimation()
	}
	if anim == nil {
		return nil
	}
	id := ""
	if m := anim.Manifest(); m != nil {
		id = m.ID()
	}
	if err := a.call("init", func() error { return anim.Init(a) }); err != nil {
		a.logger.Error("animation init failed", zap.String("animation", id), zap.Error(err))
		a.call("destroy", func() error { anim.Destroy(); return nil })
		return &Error{Op: "application.SetAnimation", Kind: KindConfig, Err: err}
	}
	a.animation = anim
	a.haveLast = false
	a.logger.Info("animation attached", zap.String("animation", id))
	a.checkTree()
	return nil
}

// SetControls hands new control values to the attached animation, if it is
// Tunable.
func (a *Application) SetControls(v ControlValues) error {
	t, ok := a.animation.(Tunable)
	if !ok {
		return &Error{Op: "application.SetControls", Kind: KindConfig, Err: errors.New("animation does not accept controls")}
	}
	if err := a.call("set controls", func() error { return t.SetControls(v) }); err != nil {
		return &Error{Op: "application.SetControls", Kind: KindConfig, Err: err}
	}
	a.checkTree()
	return nil
}

func (a *Application) destroyAnimation() {
	anim := a.animation
	a.animation = nil
	if err := a.call("destroy", func() error { anim.Destroy(); return nil }); err != nil {
		a.logger.Warn("animation destroy failed", zap.Error(err))
	}
}

// call runs fn, converting a panic into a *PanicError.
func (a *Application) call(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Op: op, Value: r}
		}
	}()
	return fn()
}

// Frame renders one frame at time now, measured from any fixed origin.
// Frames are only produced while running; paused frames are skipped. The
// first frame, and the first frame after a resume, has a zero delta.
func (a *Application) Frame(now time.Duration) error {
	if a.state != StateDestroyed {
		a.runPosted()
		if a.state == StateDestroyed {
			return nil
		}
	}
	switch a.state {
	case StateDestroyed:
		return &Error{Op: "application.Frame", Kind: KindFrame, Err: ErrDestroyed}
	case StateRunning:
	default:
		return nil
	}

	var dt float64
	if a.haveLast && now > a.lastFrame {
		dt = float64(now-a.lastFrame) / float64(time.Millisecond)
	}
	a.lastFrame = now
	a.haveLast = true

	ctx := &BehaviorContext{
		Pointer:   a.pointer.State(),
		Timestamp: float64(now) / float64(time.Millisecond),
		DeltaTime: dt,
	}

	var t0 time.Time
	if a.cfg.Debug {
		t0 = time.Now()
	}
	if a.animation != nil {
		if err := a.call("update", func() error { a.animation.Update(ctx); return nil }); err != nil {
			a.logger.Error("animation update failed", zap.Error(err))
		}
	}
	if a.state == StateDestroyed {
		// The animation destroyed the application from inside Update.
		return nil
	}
	if a.cfg.Debug {
		a.stats.update += time.Since(t0)
		t0 = time.Now()
	}

	a.renderer.Begin(a.cfg.Background.WithAlpha(a.cfg.Background.A * a.cfg.BackgroundAlpha))
	if a.animation != nil {
		if err := a.call("draw", func() error { a.animation.Draw(a.renderer); return nil }); err != nil {
			a.logger.Error("animation draw failed", zap.Error(err))
		}
	}
	if a.state == StateDestroyed {
		return nil
	}
	endErr := a.renderer.End()
	a.frames++

	if a.cfg.Debug {
		a.stats.draw += time.Since(t0)
		a.debugLog()
	}
	if endErr != nil {
		err := &Error{Op: "application.Frame", Kind: KindRender, Err: endErr}
		a.logger.Error("frame failed", zap.Error(err))
		return err
	}
	return nil
}

// Post queues fn to run on the frame goroutine at the start of the next
// Frame, paused or not. It is safe to call from any goroutine. Functions
// posted after Destroy never run.
func (a *Application) Post(fn func(*Application)) {
	if fn == nil {
		return
	}
	a.postMu.Lock()
	a.posted = append(a.posted, fn)
	a.postMu.Unlock()
}

// runPosted drains the post queue in order. A panicking function is logged
// and the rest still run.
func (a *Application) runPosted() {
	a.postMu.Lock()
	queue := a.posted
	a.posted = nil
	a.postMu.Unlock()
	for _, fn := range queue {
		if a.state == StateDestroyed {
			return
		}
		if err := a.call("post", func() error { fn(a); return nil }); err != nil {
			a.logger.Error("posted function failed", zap.Error(err))
		}
	}
}

// SetVisible reports viewport visibility. Losing visibility pauses the
// application and resets the pointer; regaining it resumes. The sprite tree
// is left as it was.
func (a *Application) SetVisible(visible bool) {
	switch {
	case a.state == StateRunning && !visible:
		a.state = StatePaused
		a.pointer.Reset()
		a.haveLast = false
		a.logger.Debug("application paused")
	case a.state == StatePaused && visible:
		a.state = StateRunning
		a.logger.Debug("application resumed")
	}
}

// HandleContainerResize is the host's resize notification. It is ignored
// unless Config.AutoResize is set.
func (a *Application) HandleContainerResize(width, height int) {
	if !a.cfg.AutoResize {
		return
	}
	a.Resize(width, height)
}

// Resize resizes the canvas and, with Config.ResetOnResize, resets the
// animation. Non-positive sizes and resizes to the current size are ignored.
func (a *Application) Resize(width, height int) {
	if a.state == StateDestroyed || width <= 0 || height <= 0 {
		return
	}
	if sz := a.renderer.Size(); int(sz.X) == width && int(sz.Y) == height {
		return
	}
	a.renderer.Resize(width, height)
	a.cfg.Width, a.cfg.Height = width, height
	a.logger.Debug("canvas resized", zap.Int("width", width), zap.Int("height", height))
	if a.cfg.ResetOnResize && a.animation != nil {
		if err := a.call("reset", a.animation.Reset); err != nil {
			a.logger.Error("animation reset failed", zap.Error(err))
			return
		}
		a.checkTree()
	}
}

// Destroy tears down the animation and the rendering context. It is
// terminal and idempotent, and cleanup failures are logged, not returned.
func (a *Application) Destroy() {
	if a.state == StateDestroyed {
		return
	}
	a.state = StateDestroyed
	if a.animation != nil {
		a.destroyAnimation()
	}
	if a.renderer != nil {
		if err := a.call("close renderer", a.renderer.Close); err != nil {
			a.logger.Warn("renderer cleanup failed", zap.Error(&Error{Op: "application.Destroy", Kind: KindCleanup, Err: err}))
		}
		a.renderer = nil
	}
	a.pointer.Reset()
	a.logger.Debug("application destroyed", zap.Uint64("frames", a.frames))
}

// Run drives frames from a ticker at fps frames per second until ctx is
// done or the application is destroyed. It blocks; frames run on the
// calling goroutine.
func (a *Application) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		fps = 60
	}
	if a.state == StateDestroyed {
		return &Error{Op: "application.Run", Kind: KindFrame, Err: ErrDestroyed}
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if a.state == StateDestroyed {
				return nil
			}
			if err := a.Frame(time.Since(start)); err != nil && a.state == StateDestroyed {
				return nil
			}
		}
	}
}
