package flateralus

import (
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder for LoadImage
	_ "image/jpeg" // register JPEG decoder for LoadImage
	_ "image/png"  // register PNG decoder for LoadImage
	"io"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	_ "golang.org/x/image/bmp" // register BMP decoder for LoadImage
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder for LoadImage
)

// Luminance returns the Rec. 709 relative luminance of c in [0, 1], computed
// on linearized sRGB components and weighted by alpha.
func Luminance(c Color) float64 {
	r, g, b := colorful.Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}.LinearRgb()
	return (0.2126*r + 0.7152*g + 0.0722*b) * clamp01(c.A)
}

// LoadImage decodes a PNG, JPEG, GIF, BMP or WebP image.
func LoadImage(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// LuminanceSampler answers luminance queries against an image resampled to
// a target area, so sprites laid out in canvas space can look up the
// brightness of the source under them.
type LuminanceSampler struct {
	img    *image.RGBA
	width  int
	height int
}

// NewLuminanceSampler rescales src to width x height with bilinear
// filtering. Non-positive sizes produce a sampler that always returns 0.
func NewLuminanceSampler(src image.Image, width, height int) *LuminanceSampler {
	ls := &LuminanceSampler{width: max(width, 0), height: max(height, 0)}
	if src == nil || ls.width == 0 || ls.height == 0 {
		return ls
	}
	ls.img = image.NewRGBA(image.Rect(0, 0, ls.width, ls.height))
	draw.ApproxBiLinear.Scale(ls.img, ls.img.Bounds(), src, src.Bounds(), draw.Src, nil)
	return ls
}

// Size returns the sampling area.
func (ls *LuminanceSampler) Size() (int, int) {
	return ls.width, ls.height
}

// At returns the luminance at (x, y) in target-area coordinates.
// Coordinates outside the area return 0.
func (ls *LuminanceSampler) At(x, y float64) float64 {
	if ls.img == nil {
		return 0
	}
	px := int(math.Floor(x))
	py := int(math.Floor(y))
	if px < 0 || py < 0 || px >= ls.width || py >= ls.height {
		return 0
	}
	c := ls.img.RGBAAt(px, py)
	if c.A == 0 {
		return 0
	}
	a := float64(c.A)
	return Luminance(Color{
		R: float64(c.R) / a,
		G: float64(c.G) / a,
		B: float64(c.B) / a,
		A: a / 255,
	})
}

// Average returns the mean luminance of the w x h cell whose top-left corner
// is (x, y). Useful for grid cells larger than one pixel.
func (ls *LuminanceSampler) Average(x, y, w, h float64) float64 {
	if ls.img == nil || w <= 0 || h <= 0 {
		return 0
	}
	x0, y0 := int(math.Floor(x)), int(math.Floor(y))
	x1, y1 := int(math.Ceil(x+w)), int(math.Ceil(y+h))
	var sum float64
	var n int
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			sum += ls.At(float64(px), float64(py))
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
