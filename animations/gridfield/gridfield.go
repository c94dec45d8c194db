// Package gridfield is a luminance grid animation: a regular grid of sprites
// whose sizes follow the brightness of a source image stretched over the
// canvas. The pointer pushes cells aside and spins the ones under it.
package gridfield

import (
	_ "embed"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"sync"

	"github.com/bracketbear/flateralus"
	"go.uber.org/zap"
)

//go:embed manifest.yaml
var manifestYAML []byte

var manifest = sync.OnceValue(func() *flateralus.Manifest {
	m, err := flateralus.LoadManifest(manifestYAML)
	if err != nil {
		panic(fmt.Sprintf("gridfield: embedded manifest: %v", err))
	}
	return m
})

// Manifest returns the gridfield control manifest.
func Manifest() *flateralus.Manifest { return manifest() }

// Params is the typed view of the gridfield controls.
type Params struct {
	SpriteSize        float64          `yaml:"spriteSize"`
	Gap               float64          `yaml:"gap"`
	FillContainer     bool             `yaml:"fillContainer"`
	Width             float64          `yaml:"width"`
	Height            float64          `yaml:"height"`
	Shape             string           `yaml:"shape"`
	Color             flateralus.Color `yaml:"color"`
	Image             string           `yaml:"image"`
	Invert            bool             `yaml:"invert"`
	MinScale          float64          `yaml:"minScale"`
	MaxScale          float64          `yaml:"maxScale"`
	MouseRadius       float64          `yaml:"mouseRadius"`
	RepulsionStrength float64          `yaml:"repulsionStrength"`
	DriftSpeed        float64          `yaml:"driftSpeed"`
	HoverSpin         float64          `yaml:"hoverSpin"`
	SampleCenter      bool             `yaml:"sampleCenter"`
}

// Container is the name of the sprite holding the grid.
const Container = "grid"

// New creates a gridfield animation. Without an image control the source is
// a radial gradient.
func New() *flateralus.Scene {
	return NewWithImage(nil)
}

// NewWithImage creates a gridfield animation sampling src. A non-empty image
// control still takes precedence.
func NewWithImage(src image.Image) *flateralus.Scene {
	return flateralus.NewScene(Manifest(), func(sc *flateralus.Scene) error {
		return setup(sc, src)
	})
}

func setup(sc *flateralus.Scene, src image.Image) error {
	var p Params
	if err := sc.Controls().Decode(&p); err != nil {
		return err
	}
	if p.Image != "" {
		img, err := loadImage(p.Image)
		if err != nil {
			return err
		}
		src = img
	}
	if src == nil {
		src = RadialGradient(256)
	}

	gen, err := flateralus.NewGridGenerator(flateralus.GridConfig{
		Width:         p.Width,
		Height:        p.Height,
		SpriteWidth:   p.SpriteSize,
		SpriteHeight:  p.SpriteSize,
		Gap:           p.Gap,
		FillContainer: p.FillContainer,
	}, sc.Size)
	if err != nil {
		return err
	}

	area := sc.Size()
	if !p.FillContainer {
		area = flateralus.Vec2{X: p.Width, Y: p.Height}
	}
	sampler := flateralus.NewLuminanceSampler(src, int(math.Ceil(area.X)), int(math.Ceil(area.Y)))

	var shape flateralus.Shape = flateralus.RectShape{Width: p.SpriteSize, Height: p.SpriteSize}
	if p.Shape == "circle" {
		shape = flateralus.CircleShape{Radius: p.SpriteSize / 2}
	}

	grid := flateralus.NewContainer(Container)
	// Shapes are centered on their position; shift so cells start at 0,0.
	grid.PlaceAt(p.SpriteSize/2, p.SpriteSize/2)

	repel := flateralus.RepulsionBehavior{MouseRadius: p.MouseRadius, RepulsionStrength: p.RepulsionStrength}
	drift := flateralus.ParticleDriftBehavior{DriftSpeed: p.DriftSpeed}
	spin := flateralus.RotationBehavior{RotationSpeed: p.HoverSpin}
	settle := settleRotation(0.15)
	near := flateralus.PointerWithin(p.MouseRadius)

	cells := flateralus.Populate(grid, gen, func(i int) *flateralus.Sprite {
		s := flateralus.NewSprite(fmt.Sprintf("cell-%d", i), shape)
		s.FillColor = p.Color
		s.AddBehavior(repel)
		s.AddBehavior(drift)
		s.AddBehavior(spin).SetReactionCondition(near)
		s.AddBehavior(settle).SetReactionCondition(flateralus.Not(near))
		return s
	})
	for _, s := range cells {
		pos := s.OriginalPosition()
		var lum float64
		if p.SampleCenter {
			lum = sampler.At(pos.X+p.SpriteSize/2, pos.Y+p.SpriteSize/2)
		} else {
			lum = sampler.Average(pos.X, pos.Y, p.SpriteSize, p.SpriteSize)
		}
		s.SetScale(CellScale(lum, p.MinScale, p.MaxScale, p.Invert))
	}

	sc.Root().SetChildren([]*flateralus.Sprite{grid})
	cols, rows := gen.Dimensions()
	sc.Logger().Debug("grid built", zap.Int("cols", cols), zap.Int("rows", rows))
	return nil
}

// CellScale maps a luminance in [0, 1] to a sprite scale between lo and hi.
func CellScale(lum, lo, hi float64, invert bool) float64 {
	lum = math.Max(0, math.Min(1, lum))
	if invert {
		lum = 1 - lum
	}
	return lo + (hi-lo)*lum
}

// settleRotation eases a sprite's rotation back toward the nearest upright
// angle by factor each frame.
func settleRotation(factor float64) flateralus.Behavior {
	return flateralus.BehaviorFunc(func(s *flateralus.Sprite, _ *flateralus.BehaviorContext) {
		r := math.Mod(s.Rotation(), 90)
		if r == 0 {
			return
		}
		if r > 45 {
			r -= 90
		} else if r < -45 {
			r += 90
		}
		if math.Abs(r) < 0.01 {
			s.Rotate(-r)
			return
		}
		s.Rotate(-r * factor)
	})
}

// RadialGradient returns a size x size grayscale image, bright in the center
// and dark at the corners.
func RadialGradient(size int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, size, size))
	c := float64(size) / 2
	maxD := math.Hypot(c, c)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)+0.5-c, float64(y)+0.5-c) / maxD
			img.SetGray(x, y, color.Gray{Y: uint8(math.Round(255 * (1 - d)))})
		}
	}
	return img
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gridfield: %w", err)
	}
	defer f.Close()
	img, err := flateralus.LoadImage(f)
	if err != nil {
		return nil, fmt.Errorf("gridfield: %s: %w", path, err)
	}
	return img, nil
}
