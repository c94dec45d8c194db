package flateralus

import (
	"errors"
	"fmt"
	"math"
)

// Phi is the golden ratio.
var Phi = (1 + math.Sqrt(5)) / 2

// SpriteFactory builds the sprite for one generated slot. The index is the
// emission order.
type SpriteFactory func(index int) *Sprite

// SizeFunc reports the live canvas size. Generators with FillContainer call
// it at generation time, never caching the result.
type SizeFunc func() Vec2

// Generator lays out a set of sprites. Positions are applied with PlaceAt so
// each sprite's original position is its generated slot.
type Generator interface {
	Generate(factory SpriteFactory) []*Sprite
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(factory SpriteFactory) []*Sprite

// Generate implements Generator.
func (f GeneratorFunc) Generate(factory SpriteFactory) []*Sprite { return f(factory) }

// Populate generates sprites and installs them as parent's children,
// replacing any existing ones. It returns the generated sprites.
func Populate(parent *Sprite, g Generator, factory SpriteFactory) []*Sprite {
	sprites := g.Generate(factory)
	parent.SetChildren(sprites)
	return sprites
}

// --- Grid ---

// GridConfig configures a GridGenerator. Width and Height are ignored when
// FillContainer is set.
type GridConfig struct {
	Width, Height             float64
	SpriteWidth, SpriteHeight float64
	Gap                       float64
	FillContainer             bool
}

// GridGenerator places sprites on a regular grid, one per cell, emitting
// column by column.
type GridGenerator struct {
	cfg  GridConfig
	size SizeFunc
}

// NewGridGenerator validates cfg. size is required when cfg.FillContainer
// is set.
func NewGridGenerator(cfg GridConfig, size SizeFunc) (*GridGenerator, error) {
	if cfg.SpriteWidth <= 0 || cfg.SpriteHeight <= 0 {
		return nil, fmt.Errorf("grid generator: sprite size must be positive, got %vx%v", cfg.SpriteWidth, cfg.SpriteHeight)
	}
	if cfg.Gap < 0 {
		return nil, fmt.Errorf("grid generator: negative gap %v", cfg.Gap)
	}
	if cfg.FillContainer && size == nil {
		return nil, errors.New("grid generator: FillContainer needs a size function")
	}
	return &GridGenerator{cfg: cfg, size: size}, nil
}

// Dimensions returns the number of columns and rows for the current size.
func (g *GridGenerator) Dimensions() (cols, rows int) {
	w, h := g.cfg.Width, g.cfg.Height
	if g.cfg.FillContainer {
		sz := g.size()
		w, h = sz.X, sz.Y
	}
	cols = int(math.Floor((w + g.cfg.Gap) / (g.cfg.SpriteWidth + g.cfg.Gap)))
	rows = int(math.Floor((h + g.cfg.Gap) / (g.cfg.SpriteHeight + g.cfg.Gap)))
	return max(cols, 0), max(rows, 0)
}

// Generate implements Generator.
func (g *GridGenerator) Generate(factory SpriteFactory) []*Sprite {
	cols, rows := g.Dimensions()
	out := make([]*Sprite, 0, cols*rows)
	stepX := g.cfg.SpriteWidth + g.cfg.Gap
	stepY := g.cfg.SpriteHeight + g.cfg.Gap
	for col := 0; col < cols; col++ {
		for row := 0; row < rows; row++ {
			s := factory(len(out))
			s.PlaceAt(float64(col)*stepX, float64(row)*stepY)
			out = append(out, s)
		}
	}
	return out
}

// --- Fibonacci spiral ---

// SpiralConfig configures a FibonacciSpiralGenerator.
type SpiralConfig struct {
	TotalSprites    int
	InitialRadius   float64
	ScaleDownFactor float64
	// FillContainer derives InitialRadius from the live canvas size so the
	// outermost sprite lands on the inscribed circle.
	FillContainer bool
}

// FibonacciSpiralGenerator places sprite i at angle i*2*pi*Phi and radius
// InitialRadius*sqrt(i), scaled by ScaleDownFactor^i. Outer sprites are both
// farther out and smaller. Positions are relative to the parent origin.
type FibonacciSpiralGenerator struct {
	cfg  SpiralConfig
	size SizeFunc
}

// NewFibonacciSpiralGenerator validates cfg. size is required when
// cfg.FillContainer is set.
func NewFibonacciSpiralGenerator(cfg SpiralConfig, size SizeFunc) (*FibonacciSpiralGenerator, error) {
	if cfg.TotalSprites < 0 {
		return nil, fmt.Errorf("spiral generator: negative sprite count %d", cfg.TotalSprites)
	}
	if cfg.ScaleDownFactor <= 0 {
		return nil, fmt.Errorf("spiral generator: scale factor must be positive, got %v", cfg.ScaleDownFactor)
	}
	if cfg.FillContainer && size == nil {
		return nil, errors.New("spiral generator: FillContainer needs a size function")
	}
	return &FibonacciSpiralGenerator{cfg: cfg, size: size}, nil
}

// Radius returns the initial radius in effect for the next Generate call.
func (g *FibonacciSpiralGenerator) Radius() float64 {
	if !g.cfg.FillContainer || g.cfg.TotalSprites < 2 {
		return g.cfg.InitialRadius
	}
	sz := g.size()
	return (math.Min(sz.X, sz.Y) / 2) / math.Sqrt(float64(g.cfg.TotalSprites-1))
}

// Generate implements Generator.
func (g *FibonacciSpiralGenerator) Generate(factory SpriteFactory) []*Sprite {
	r0 := g.Radius()
	out := make([]*Sprite, g.cfg.TotalSprites)
	for i := range out {
		angle := float64(i) * 2 * math.Pi * Phi
		r := r0 * math.Sqrt(float64(i))
		sin, cos := math.Sincos(angle)
		s := factory(i)
		s.PlaceAt(r*cos, r*sin)
		s.SetScale(math.Pow(g.cfg.ScaleDownFactor, float64(i)))
		out[i] = s
	}
	return out
}
