package flateralus

import (
	"errors"
	"testing"

	"github.com/tanema/gween/ease"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type panicShape struct{}

func (panicShape) Draw(Canvas, *Sprite) { panic("bad shape") }

func testScene(setup SetupFunc) *Scene {
	return NewScene(MustManifest(testManifestSpec()), setup)
}

func TestSceneInitRunsSetup(t *testing.T) {
	app, _ := newTestApp(t, Config{})
	sc := testScene(func(sc *Scene) error {
		sc.Root().SetChildren([]*Sprite{NewContainer("a")})
		return nil
	})
	if err := app.SetAnimation(sc); err != nil {
		t.Fatal(err)
	}
	if sc.Root().NumChildren() != 1 {
		t.Errorf("children = %d, want 1", sc.Root().NumChildren())
	}
	if sc.Size() != (Vec2{800, 600}) {
		t.Errorf("Size = %v, want stage size", sc.Size())
	}
}

func TestSceneResetRebuilds(t *testing.T) {
	calls := 0
	sc := testScene(func(sc *Scene) error {
		calls++
		sc.Root().SetChildren([]*Sprite{NewContainer("a")})
		sc.Root().AddBehavior(RotationBehavior{})
		return nil
	})
	app, _ := newTestApp(t, Config{})
	if err := app.SetAnimation(sc); err != nil {
		t.Fatal(err)
	}
	first := sc.Root().Children()[0]
	if err := sc.Reset(); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("setup calls = %d, want 2", calls)
	}
	if sc.Root().Children()[0] == first || first.Parent() != nil {
		t.Error("Reset should replace the tree")
	}
	if sc.Root().Behaviors().Len() != 1 {
		t.Errorf("root behaviors = %d, want 1", sc.Root().Behaviors().Len())
	}
}

func TestSceneSetupErrorAndPanic(t *testing.T) {
	boom := errors.New("boom")
	sc := testScene(func(*Scene) error { return boom })
	app, _ := newTestApp(t, Config{})
	if err := app.SetAnimation(sc); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}

	sc = testScene(func(*Scene) error { panic("setup exploded") })
	err := app.SetAnimation(sc)
	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Errorf("err = %v, want PanicError", err)
	}
	if app.Animation() != nil {
		t.Error("failed init should leave no animation attached")
	}
}

func TestSceneIsolatesSpriteFaults(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	var good *Sprite
	sc := testScene(func(sc *Scene) error {
		bad := NewSprite("bad", panicShape{})
		bad.AddBehavior(BehaviorFunc(func(*Sprite, *BehaviorContext) { panic("bad behavior") }))
		good = NewSprite("good", RectShape{Width: 2, Height: 2})
		good.AddBehavior(RotationBehavior{RotationSpeed: 1})
		sc.Root().SetChildren([]*Sprite{bad, good})
		return nil
	})
	app, r := newTestApp(t, Config{Logger: zap.New(core)})
	if err := app.SetAnimation(sc); err != nil {
		t.Fatal(err)
	}

	if err := app.Frame(0); err != nil {
		t.Fatal(err)
	}
	if err := app.Frame(1e9); err != nil {
		t.Fatal(err)
	}

	if good.Rotation() != 360 {
		t.Errorf("good sprite rotation = %v, want 360", good.Rotation())
	}
	if len(r.ops) != 1 || r.ops[0].kind != "rect" {
		t.Errorf("ops = %+v, want the good sprite drawn", r.ops)
	}
	if r.Depth() != 0 {
		t.Errorf("canvas stack depth = %d after faulty draw", r.Depth())
	}
	if sc.Faults() != 4 {
		t.Errorf("Faults = %d, want 4 (2 frames x update+draw)", sc.Faults())
	}
	if got := logs.FilterMessage("sprite fault").Len(); got != 4 {
		t.Errorf("fault logs = %d, want 4", got)
	}
}

func TestSceneTweensAdvance(t *testing.T) {
	var target *Sprite
	sc := testScene(func(sc *Scene) error {
		target = NewContainer("t")
		sc.Root().SetChildren([]*Sprite{target})
		target.Alpha = 0
		sc.AddTween(TweenAlpha(target, 1, 1, ease.Linear))
		return nil
	})
	app, _ := newTestApp(t, Config{})
	if err := app.SetAnimation(sc); err != nil {
		t.Fatal(err)
	}
	for i := 0; i <= 4; i++ {
		if err := app.Frame(timeMS(float64(i) * 250)); err != nil {
			t.Fatal(err)
		}
	}
	if !approxEqual(target.Alpha, 1, 1e-3) {
		t.Errorf("Alpha = %v, want 1", target.Alpha)
	}
	if len(sc.tweens) != 0 {
		t.Errorf("finished tweens should be dropped, %d left", len(sc.tweens))
	}
}

func TestSceneSetControls(t *testing.T) {
	var seen float64
	sc := testScene(func(sc *Scene) error {
		seen = sc.Controls().Number("speed")
		return nil
	})
	if err := sc.SetControls(sc.Controls()); err != nil {
		t.Fatalf("SetControls before init: %v", err)
	}

	app, _ := newTestApp(t, Config{})
	if err := app.SetAnimation(sc); err != nil {
		t.Fatal(err)
	}
	v := sc.Controls()
	if err := v.Set("speed", 42); err != nil {
		t.Fatal(err)
	}
	if err := app.SetControls(v); err != nil {
		t.Fatal(err)
	}
	if seen != 42 {
		t.Errorf("setup saw speed %v, want 42", seen)
	}

	other := MustManifest(ManifestSpec{ID: "other"}).Defaults()
	if err := sc.SetControls(other); err == nil {
		t.Error("foreign control values should be rejected")
	}
}

func TestSceneDestroyIdempotent(t *testing.T) {
	sc := testScene(func(sc *Scene) error {
		sc.Root().SetChildren([]*Sprite{NewContainer("a")})
		return nil
	})
	sc.Destroy()
	sc.Destroy()
	if sc.Root().NumChildren() != 0 {
		t.Error("Destroy should drop the tree")
	}
	if err := sc.Reset(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Reset after Destroy = %v, want ErrDestroyed", err)
	}
}
