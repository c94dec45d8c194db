package flateralus

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Vec2 is a 2D vector used for positions, offsets and sizes throughout the API.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v multiplied by s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the Euclidean distance between v and o.
func (v Vec2) Dist(o Vec2) float64 { return math.Hypot(v.X-o.X, v.Y-o.Y) }

// Normalize returns the unit vector pointing in the direction of v.
// The zero vector normalizes to itself.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs in the rendering backends.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default sprite fill.
var ColorWhite = Color{1, 1, 1, 1}

// ColorBlack is the default background.
var ColorBlack = Color{0, 0, 0, 1}

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa" into a Color.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return Color{}, fmt.Errorf("parse color %q: missing '#'", s)
	}
	alpha := 1.0
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
		alpha = float64(a) / 255
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return Color{R: c.R, G: c.G, B: c.B, A: alpha}, nil
}

// MustParseColor is like ParseColor but panics on malformed input.
// Intended for package-level color constants.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic("flateralus: " + err.Error())
	}
	return c
}

// Hex formats the color as "#rrggbb", or "#rrggbbaa" when not fully opaque.
func (c Color) Hex() string {
	h := colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped().Hex()
	if c.A >= 1 {
		return h
	}
	return fmt.Sprintf("%s%02x", h, uint8(math.Round(clamp01(c.A)*255)))
}

// WithAlpha returns a copy of c with its alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// RGBA8 returns the premultiplied 8-bit components of c.
func (c Color) RGBA8() (r, g, b, a uint8) {
	al := clamp01(c.A)
	return uint8(math.Round(clamp01(c.R) * al * 255)),
		uint8(math.Round(clamp01(c.G) * al * 255)),
		uint8(math.Round(clamp01(c.B) * al * 255)),
		uint8(math.Round(al * 255))
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Vec2 {
	return Vec2{r.X + r.Width/2, r.Y + r.Height/2}
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func degToRad(d float64) float64 {
	return d * math.Pi / 180
}
