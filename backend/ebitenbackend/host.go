package ebitenbackend

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/bracketbear/flateralus"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"go.uber.org/zap"
)

// DefaultTouchDiameter is the contact size reported for touches, in canvas
// pixels. Ebiten does not expose the real contact area.
const DefaultTouchDiameter = 40.0

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title     string
	ShowFPS   bool
	Resizable bool
	// TPS is the update rate. Zero keeps ebiten's default of 60.
	TPS int
}

// Host adapts an Application to ebiten.Game. It feeds mouse and touch input
// into the application's pointer, pauses it while the window is unfocused,
// and forwards window size changes.
type Host struct {
	app     *flateralus.Application
	mouse   *flateralus.MousePointer
	touch   *flateralus.TouchPointer
	showFPS bool
	start   time.Time

	touchIDs   []ebiten.TouchID
	touchID    ebiten.TouchID
	lastCursor flateralus.Vec2
	haveCursor bool
}

// NewHost creates a host for app. The application's pointer is replaced by
// the host's mouse pointer.
func NewHost(app *flateralus.Application, showFPS bool) *Host {
	h := &Host{
		app:     app,
		mouse:   flateralus.NewMousePointer(),
		touch:   flateralus.NewTouchPointer(DefaultTouchDiameter),
		showFPS: showFPS,
		start:   time.Now(),
	}
	app.SetPointer(h.mouse)
	return h
}

// Update implements ebiten.Game.
func (h *Host) Update() error {
	if h.app.State() == flateralus.StateDestroyed {
		return ebiten.Termination
	}
	h.app.SetVisible(ebiten.IsFocused())

	h.touchIDs = ebiten.AppendTouchIDs(h.touchIDs[:0])
	var touches []flateralus.Vec2
	active := false
	for _, id := range h.touchIDs {
		if id == h.touchID && h.touch.State().Active {
			active = true
		}
	}
	if !active && len(h.touchIDs) > 0 {
		h.touchID = h.touchIDs[0]
	}
	if len(h.touchIDs) > 0 {
		x, y := ebiten.TouchPosition(h.touchID)
		touches = append(touches, h.toCanvas(x, y))
	}

	cx, cy := ebiten.CursorPosition()
	cursor := h.toCanvas(cx, cy)
	h.applyInput(touches, cursor, h.inside(cursor))
	return nil
}

// toCanvas converts layout pixels to logical canvas pixels.
func (h *Host) toCanvas(x, y int) flateralus.Vec2 {
	res := h.app.Config().Resolution
	if res <= 0 {
		res = 1
	}
	return flateralus.Vec2{X: float64(x) / res, Y: float64(y) / res}
}

func (h *Host) inside(p flateralus.Vec2) bool {
	sz := h.app.Size()
	return p.X >= 0 && p.Y >= 0 && p.X < sz.X && p.Y < sz.Y
}

// applyInput routes one tick of input to the pointers. A touch in progress
// takes over the application pointer; the mouse regains it once the cursor
// moves again after the touch ends.
func (h *Host) applyInput(touches []flateralus.Vec2, cursor flateralus.Vec2, cursorInside bool) {
	if len(touches) > 0 {
		if h.app.PointerSource() != flateralus.Pointer(h.touch) {
			h.app.SetPointer(h.touch)
		}
		if h.touch.State().Active {
			h.touch.Move(touches[0].X, touches[0].Y)
		} else {
			h.touch.Begin(touches[0].X, touches[0].Y)
		}
		h.lastCursor, h.haveCursor = cursor, true
		return
	}
	if h.touch.State().Active {
		h.touch.End()
	}

	moved := !h.haveCursor || cursor != h.lastCursor
	h.lastCursor, h.haveCursor = cursor, true
	if h.app.PointerSource() != flateralus.Pointer(h.mouse) {
		if !moved {
			return
		}
		h.app.SetPointer(h.mouse)
	}
	if cursorInside {
		h.mouse.Move(cursor.X, cursor.Y)
	} else {
		h.mouse.Leave()
	}
}

// Draw implements ebiten.Game. Each ebiten draw produces one application
// frame.
func (h *Host) Draw(screen *ebiten.Image) {
	r, ok := h.app.Renderer().(*Renderer)
	if !ok {
		return
	}
	r.SetTarget(screen)
	if err := h.app.Frame(time.Since(h.start)); err != nil {
		h.app.Logger().Debug("frame error", zap.Error(err))
	}
	if h.showFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
}

// Layout implements ebiten.Game. The outside size is the logical canvas
// size; the returned screen size is scaled by the resolution.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	h.app.HandleContainerResize(outsideWidth, outsideHeight)
	return layoutSize(h.app.Size(), h.app.Config().Resolution)
}

func layoutSize(logical flateralus.Vec2, res float64) (int, int) {
	if res <= 0 {
		res = 1
	}
	return int(math.Ceil(logical.X * res)), int(math.Ceil(logical.Y * res))
}

// Run opens a window and runs app until the window is closed or the
// application is destroyed. The application is destroyed on return.
func Run(app *flateralus.Application, cfg RunConfig) error {
	if _, ok := app.Renderer().(*Renderer); !ok {
		return fmt.Errorf("ebitenbackend: application renderer is %T, want *ebitenbackend.Renderer", app.Renderer())
	}
	defer app.Destroy()

	h := NewHost(app, cfg.ShowFPS)
	configure(app.Size(), cfg)
	if err := ebiten.RunGame(h); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

// configure applies cfg to the window before the game starts. The screen is
// not cleared between frames: a paused application draws nothing, and the
// window keeps showing its last frame. Running frames clear through
// Renderer.Begin.
func configure(size flateralus.Vec2, cfg RunConfig) {
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(int(size.X), int(size.Y))
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetScreenClearedEveryFrame(false)
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
}
