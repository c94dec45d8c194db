// Package flateralus is a small framework for interactive 2D background
// animations: sprite trees driven by per-sprite behavior pipelines, laid out
// by generators and tuned through a declared set of controls.
//
// The core is renderer agnostic. Drawing goes through the [Canvas]
// interface, and a [Backend] supplies the [Renderer]. Two backends ship with
// the module: backend/ebitenbackend draws into an [Ebitengine] window, and
// backend/raster draws into an in-memory image for headless runs, tests and
// snapshots.
//
// # Quick start
//
// Declare the controls in a [Manifest], build the sprite tree in a
// [SetupFunc] and hand the resulting [Scene] to an [Application]:
//
//	m := flateralus.MustManifest(flateralus.ManifestSpec{
//		ID: "dots",
//		Controls: []flateralus.ControlSpec{
//			{Name: "count", Type: flateralus.ControlNumber, Default: 50.0},
//		},
//	})
//
//	scene := flateralus.NewScene(m, func(sc *flateralus.Scene) error {
//		n := int(sc.Controls().Number("count"))
//		gen, err := flateralus.NewGridGenerator(flateralus.GridConfig{
//			Width: 12 * float64(n), Height: 12, SpriteWidth: 10, SpriteHeight: 10, Gap: 2,
//		}, sc.Size)
//		if err != nil {
//			return err
//		}
//		flateralus.Populate(sc.Root(), gen, func(i int) *flateralus.Sprite {
//			return flateralus.NewSprite("dot", flateralus.CircleShape{Radius: 4})
//		})
//		return nil
//	})
//
//	app, err := flateralus.NewApplication(raster.Backend{}, flateralus.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer app.Destroy()
//	if err := app.SetAnimation(scene); err != nil {
//		return err
//	}
//	return app.Run(ctx, 60)
//
// To open a window instead, create the application with
// ebitenbackend.Backend and call ebitenbackend.Run.
//
// # Sprites and behaviors
//
// A [Sprite] has a position, rotation, scale and alpha, an optional [Shape]
// and children that inherit its transform. Each sprite owns a [Pipeline] of
// [Behavior] steps that run once per frame in insertion order. A step can be
// gated with a [Condition] such as [PointerActive] or [PointerWithin].
//
// The built-in behaviors cover the common cases: [RotationBehavior],
// [RepulsionBehavior], [ParticleDriftBehavior] and [PulseBehavior]. Anything
// else is a [BehaviorFunc].
//
// # Controls
//
// Control values are validated against their manifest. Numbers are clamped
// to their declared range, and unknown names fail with [ErrUnknownControl].
// [ControlValues.Decode] fills a tagged struct so setup code can work with
// typed parameters. Changing the controls of a running scene rebuilds its
// tree.
//
// # Threading
//
// An Application is used from a single goroutine. [Application.Post] is the
// one exception: functions posted from other goroutines run at the start of
// the next frame.
//
// Tweens use [gween] easing functions; easing names in manifests resolve
// through [Easing].
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package flateralus
