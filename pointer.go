package flateralus

// OffscreenPosition is where an inactive pointer sits, far enough outside any
// canvas that distance-based behaviors ignore it.
var OffscreenPosition = Vec2{-1000, -1000}

// PointerState is a snapshot of the normalized pointer, in canvas pixels.
type PointerState struct {
	Position Vec2
	Active   bool
	Diameter float64
}

// Pointer is one input modality feeding the normalized pointer.
type Pointer interface {
	State() PointerState
	// Reset moves the pointer to OffscreenPosition and deactivates it.
	Reset()
}

// pointerBase holds the fields every modality writes.
type pointerBase struct {
	state PointerState
}

func newPointerBase(diameter float64) pointerBase {
	return pointerBase{state: PointerState{Position: OffscreenPosition, Diameter: diameter}}
}

func (p *pointerBase) State() PointerState { return p.state }

func (p *pointerBase) Reset() {
	p.state.Position = OffscreenPosition
	p.state.Active = false
}

func (p *pointerBase) set(x, y float64) {
	p.state.Position = Vec2{x, y}
	p.state.Active = true
}

// MousePointer tracks a hovering mouse.
type MousePointer struct {
	pointerBase
}

// NewMousePointer creates an inactive mouse pointer.
func NewMousePointer() *MousePointer {
	return &MousePointer{pointerBase: newPointerBase(1)}
}

// Move records the cursor position and activates the pointer.
func (m *MousePointer) Move(x, y float64) { m.set(x, y) }

// Leave is called when the cursor exits the canvas.
func (m *MousePointer) Leave() { m.Reset() }

// TouchPointer tracks a single touch. Diameter is the contact size reported
// by hosts that know it.
type TouchPointer struct {
	pointerBase
}

// NewTouchPointer creates an inactive touch pointer with the given contact
// diameter.
func NewTouchPointer(diameter float64) *TouchPointer {
	return &TouchPointer{pointerBase: newPointerBase(diameter)}
}

// Begin starts a touch at (x, y).
func (t *TouchPointer) Begin(x, y float64) { t.set(x, y) }

// Move updates an ongoing touch. Ignored when no touch is in progress.
func (t *TouchPointer) Move(x, y float64) {
	if !t.state.Active {
		return
	}
	t.set(x, y)
}

// End finishes the touch.
func (t *TouchPointer) End() { t.Reset() }
