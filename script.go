package flateralus

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// ScriptStep is one action in a script. Coordinates are canvas pixels.
type ScriptStep struct {
	Action string  `yaml:"action"`
	Label  string  `yaml:"label,omitempty"`
	X      float64 `yaml:"x,omitempty"`
	Y      float64 `yaml:"y,omitempty"`
	FromX  float64 `yaml:"fromX,omitempty"`
	FromY  float64 `yaml:"fromY,omitempty"`
	ToX    float64 `yaml:"toX,omitempty"`
	ToY    float64 `yaml:"toY,omitempty"`
	Width  int     `yaml:"width,omitempty"`
	Height int     `yaml:"height,omitempty"`
	Frames int     `yaml:"frames,omitempty"`
}

type script struct {
	Steps []ScriptStep `yaml:"steps"`
}

var scriptActions = map[string]bool{
	"move": true, "leave": true, "touch": true, "release": true, "drag": true,
	"hide": true, "show": true, "resize": true, "wait": true, "snapshot": true,
}

// ScriptRunner sequences synthetic input, visibility changes, resizes and
// snapshots across frames, for headless rendering and tests.
type ScriptRunner struct {
	// OnSnapshot is called after the frame in which a snapshot step ran.
	OnSnapshot func(label string) error

	steps     []ScriptStep
	cursor    int
	waitCount int
	done      bool

	mouse    *MousePointer
	touch    *TouchPointer
	queue    []func(app *Application)
	snapshot []string
}

// LoadScript parses a YAML script (JSON is accepted too). A script with no
// steps returns ErrNoSteps.
func LoadScript(data []byte) (*ScriptRunner, error) {
	var sc script
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("parse script: %w", ErrNoSteps)
	}
	for i, st := range sc.Steps {
		if !scriptActions[st.Action] {
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
		if st.Action == "resize" && (st.Width <= 0 || st.Height <= 0) {
			return nil, fmt.Errorf("parse script: step %d: resize needs positive width and height", i)
		}
	}
	return &ScriptRunner{
		steps: sc.Steps,
		mouse: NewMousePointer(),
		touch: NewTouchPointer(20),
	}, nil
}

// Steps returns a copy of the parsed steps.
func (r *ScriptRunner) Steps() []ScriptStep {
	return append([]ScriptStep(nil), r.steps...)
}

// Done reports whether every step has been executed.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// Step advances the script by one frame. Call it before each Frame.
func (r *ScriptRunner) Step(app *Application) {
	if r.done {
		return
	}
	if len(r.queue) > 0 {
		fn := r.queue[0]
		r.queue = r.queue[1:]
		fn(app)
		r.checkDone()
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		r.checkDone()
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "move":
		app.SetPointer(r.mouse)
		r.mouse.Move(st.X, st.Y)
	case "leave":
		r.mouse.Leave()
	case "touch":
		app.SetPointer(r.touch)
		r.touch.Begin(st.X, st.Y)
	case "release":
		r.touch.End()
	case "drag":
		r.queueDrag(app, st)
	case "hide":
		app.SetVisible(false)
	case "show":
		app.SetVisible(true)
	case "resize":
		app.Resize(st.Width, st.Height)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "snapshot":
		r.snapshot = append(r.snapshot, st.Label)
	}
	r.checkDone()
}

func (r *ScriptRunner) checkDone() {
	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(r.queue) == 0 {
		r.done = true
	}
}

// queueDrag starts a touch at the from point and queues linearly
// interpolated moves ending with a release at the to point. The whole
// sequence spans max(frames, 2) frames.
func (r *ScriptRunner) queueDrag(app *Application, st ScriptStep) {
	frames := max(st.Frames, 2)
	app.SetPointer(r.touch)
	r.touch.Begin(st.FromX, st.FromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		x := st.FromX + (st.ToX-st.FromX)*t
		y := st.FromY + (st.ToY-st.FromY)*t
		r.queue = append(r.queue, func(*Application) { r.touch.Move(x, y) })
	}
	r.queue = append(r.queue, func(*Application) {
		r.touch.Move(st.ToX, st.ToY)
		r.touch.End()
	})
}

// FlushSnapshots hands pending snapshot labels to OnSnapshot. Call it after
// each Frame.
func (r *ScriptRunner) FlushSnapshots() error {
	labels := r.snapshot
	r.snapshot = nil
	if r.OnSnapshot == nil {
		return nil
	}
	for _, l := range labels {
		if err := r.OnSnapshot(l); err != nil {
			return fmt.Errorf("snapshot %q: %w", l, err)
		}
	}
	return nil
}

// Play drives app through the whole script, one Step and Frame at a time,
// advancing the clock by frameTime per frame. It stops after maxFrames
// frames even if the script is not done; maxFrames <= 0 means no limit.
// It returns the number of frames rendered.
func (r *ScriptRunner) Play(app *Application, frameTime time.Duration, maxFrames int) (int, error) {
	n := 0
	var now time.Duration
	for !r.done {
		if maxFrames > 0 && n >= maxFrames {
			break
		}
		r.Step(app)
		if err := app.Frame(now); err != nil {
			return n, err
		}
		n++
		now += frameTime
		if err := r.FlushSnapshots(); err != nil {
			return n, err
		}
	}
	return n, nil
}
