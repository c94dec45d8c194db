package raster

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Snapshot converts the current frame from premultiplied RGBA to a
// straight-alpha NRGBA copy.
func (r *Renderer) Snapshot() *image.NRGBA {
	src := r.img
	out := image.NewNRGBA(src.Bounds())
	for i := 0; i < len(src.Pix); i += 4 {
		cr, cg, cb, ca := src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3]
		if ca > 0 && ca < 255 {
			cr = uint8(min(int(cr)*255/int(ca), 255))
			cg = uint8(min(int(cg)*255/int(ca), 255))
			cb = uint8(min(int(cb)*255/int(ca), 255))
		}
		out.Pix[i] = cr
		out.Pix[i+1] = cg
		out.Pix[i+2] = cb
		out.Pix[i+3] = ca
	}
	return out
}

// WritePNG encodes the current frame as PNG.
func (r *Renderer) WritePNG(w io.Writer) error {
	if r.img == nil {
		return fmt.Errorf("write png: renderer closed")
	}
	return png.Encode(w, r.Snapshot())
}

// SaveSnapshot writes the current frame to dir as <timestamp>_<label>.png
// and returns the file path. dir is created if needed.
func (r *Renderer) SaveSnapshot(dir, label string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("snapshot: mkdir %s: %w", dir, err)
	}
	stamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", stamp, SanitizeLabel(label)))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := r.WritePNG(f); err != nil {
		f.Close()
		return "", fmt.Errorf("encode %s: %w", path, err)
	}
	return path, f.Close()
}

// SanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func SanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, c := range label {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z',
			c >= '0' && c <= '9', c == '-', c == '.':
			b.WriteRune(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
