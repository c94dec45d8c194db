// Package spiral is a Fibonacci spiral animation. Sprites sit on a
// golden-angle spiral centered on the canvas; the spiral turns slowly,
// sprites are pushed away by the pointer and drift back to their place.
package spiral

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/bracketbear/flateralus"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"
)

//go:embed manifest.yaml
var manifestYAML []byte

var manifest = sync.OnceValue(func() *flateralus.Manifest {
	m, err := flateralus.LoadManifest(manifestYAML)
	if err != nil {
		panic(fmt.Sprintf("spiral: embedded manifest: %v", err))
	}
	return m
})

// Manifest returns the spiral control manifest.
func Manifest() *flateralus.Manifest { return manifest() }

// Params is the typed view of the spiral controls.
type Params struct {
	TotalSprites      float64          `yaml:"totalSprites"`
	FillContainer     bool             `yaml:"fillContainer"`
	InitialRadius     float64          `yaml:"initialRadius"`
	ScaleDownFactor   float64          `yaml:"scaleDownFactor"`
	SpriteSize        float64          `yaml:"spriteSize"`
	Shape             string           `yaml:"shape"`
	Path              string           `yaml:"path"`
	Color             flateralus.Color `yaml:"color"`
	RotationSpeed     float64          `yaml:"rotationSpeed"`
	MouseRadius       float64          `yaml:"mouseRadius"`
	RepulsionStrength float64          `yaml:"repulsionStrength"`
	DriftSpeed        float64          `yaml:"driftSpeed"`
	Pulse             bool             `yaml:"pulse"`
	PulseEasing       string           `yaml:"pulseEasing"`
	PulsePeriod       float64          `yaml:"pulsePeriod"`
	IntroDuration     float64          `yaml:"introDuration"`
	ShowCenter        bool             `yaml:"showCenter"`
}

// Container is the name of the sprite holding the spiral.
const Container = "spiral"

// New creates a spiral animation with default controls.
func New() *flateralus.Scene {
	return flateralus.NewScene(Manifest(), setup)
}

func setup(sc *flateralus.Scene) error {
	var p Params
	if err := sc.Controls().Decode(&p); err != nil {
		return err
	}
	shape, err := spriteShape(p)
	if err != nil {
		return err
	}
	gen, err := flateralus.NewFibonacciSpiralGenerator(flateralus.SpiralConfig{
		TotalSprites:    int(p.TotalSprites),
		InitialRadius:   p.InitialRadius,
		ScaleDownFactor: p.ScaleDownFactor,
		FillContainer:   p.FillContainer,
	}, sc.Size)
	if err != nil {
		return err
	}

	spiral := flateralus.NewContainer(Container)
	center := sc.Size().Scale(0.5)
	spiral.PlaceAt(center.X, center.Y)
	spiral.AddBehavior(followCenter(sc))
	spiral.AddBehavior(flateralus.RotationBehavior{RotationSpeed: p.RotationSpeed})
	if p.Pulse {
		fn, _ := flateralus.Easing(p.PulseEasing)
		spiral.AddBehavior(flateralus.PulseBehavior{From: 0.95, To: 1.05, Period: p.PulsePeriod, Easing: fn})
	}
	// Fade in on every build. Alpha is used because pulse owns the scale.
	if p.IntroDuration > 0 {
		spiral.Alpha = 0
		sc.AddTween(flateralus.TweenAlpha(spiral, 1, float32(p.IntroDuration/1000), ease.OutCubic))
	}

	// Behavior values are shared by every dot.
	repel := flateralus.RepulsionBehavior{MouseRadius: p.MouseRadius, RepulsionStrength: p.RepulsionStrength}
	drift := flateralus.ParticleDriftBehavior{DriftSpeed: p.DriftSpeed}
	dots := flateralus.Populate(spiral, gen, func(i int) *flateralus.Sprite {
		s := flateralus.NewSprite(fmt.Sprintf("dot-%d", i), shape)
		s.FillColor = p.Color
		s.AddBehavior(repel).SetReactionCondition(flateralus.PointerActive)
		s.AddBehavior(drift)
		return s
	})

	children := []*flateralus.Sprite{spiral}
	if p.ShowCenter {
		marker := flateralus.NewSprite("center", flateralus.CircleShape{Radius: 3})
		marker.FillColor = flateralus.ColorWhite
		marker.PlaceAt(center.X, center.Y)
		marker.AddBehavior(followCenter(sc))
		children = append(children, marker)
	}
	sc.Root().SetChildren(children)
	sc.Logger().Debug("spiral built", zap.Int("sprites", len(dots)), zap.Float64("radius", gen.Radius()))
	return nil
}

// followCenter keeps a sprite on the canvas center as the canvas resizes.
func followCenter(sc *flateralus.Scene) flateralus.Behavior {
	return flateralus.BehaviorFunc(func(s *flateralus.Sprite, _ *flateralus.BehaviorContext) {
		c := sc.Size().Scale(0.5)
		if c != s.Position() {
			s.PlaceAt(c.X, c.Y)
		}
	})
}

func spriteShape(p Params) (flateralus.Shape, error) {
	switch p.Shape {
	case "square":
		return flateralus.RectShape{Width: p.SpriteSize, Height: p.SpriteSize}, nil
	case "path":
		return flateralus.NewPathShape(p.Path, p.SpriteSize)
	default:
		return flateralus.CircleShape{Radius: p.SpriteSize / 2}, nil
	}
}
