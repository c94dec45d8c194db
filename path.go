package flateralus

import (
	"fmt"
	"strconv"
	"unicode"
)

// curveSegments is the number of line segments used to flatten one Bézier
// curve command.
const curveSegments = 12

// ParsePath extracts the outline of an SVG path "d" attribute as a point list.
// Supported commands: M L H V Z and their relative forms, plus C and Q
// (absolute or relative), which are flattened into line segments. Only the
// first subpath's closing is honoured; subsequent moveto commands continue
// the same outline, which is what the shape sprites need for filled glyphs.
func ParsePath(d string) ([]Vec2, error) {
	p := pathParser{src: d}
	var pts []Vec2
	var cur, start Vec2
	var cmd byte

	for {
		p.skipSeparators()
		if p.done() {
			break
		}
		if c := p.peek(); isPathCommand(c) {
			cmd = c
			p.pos++
		} else if cmd == 0 {
			return nil, fmt.Errorf("parse path: expected command at offset %d", p.pos)
		}

		rel := unicode.IsLower(rune(cmd))
		base := Vec2{}
		if rel {
			base = cur
		}

		switch unicode.ToUpper(rune(cmd)) {
		case 'M':
			v, err := p.point()
			if err != nil {
				return nil, err
			}
			cur = base.Add(v)
			start = cur
			pts = append(pts, cur)
			// Subsequent pairs after a moveto are implicit linetos.
			if rel {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
		case 'L':
			v, err := p.point()
			if err != nil {
				return nil, err
			}
			cur = base.Add(v)
			pts = append(pts, cur)
		case 'H':
			x, err := p.number()
			if err != nil {
				return nil, err
			}
			if rel {
				cur.X += x
			} else {
				cur.X = x
			}
			pts = append(pts, cur)
		case 'V':
			y, err := p.number()
			if err != nil {
				return nil, err
			}
			if rel {
				cur.Y += y
			} else {
				cur.Y = y
			}
			pts = append(pts, cur)
		case 'Q':
			c1, err := p.point()
			if err != nil {
				return nil, err
			}
			end, err := p.point()
			if err != nil {
				return nil, err
			}
			c1, end = base.Add(c1), base.Add(end)
			pts = append(pts, flattenQuad(cur, c1, end)...)
			cur = end
		case 'C':
			c1, err := p.point()
			if err != nil {
				return nil, err
			}
			c2, err := p.point()
			if err != nil {
				return nil, err
			}
			end, err := p.point()
			if err != nil {
				return nil, err
			}
			c1, c2, end = base.Add(c1), base.Add(c2), base.Add(end)
			pts = append(pts, flattenCubic(cur, c1, c2, end)...)
			cur = end
		case 'Z':
			cur = start
			cmd = 0
		default:
			return nil, fmt.Errorf("parse path: unsupported command %q", cmd)
		}
	}
	return pts, nil
}

// PathBounds returns the axis-aligned bounding box of pts.
// An empty slice yields the zero Rect.
func PathBounds(pts []Vec2) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

func flattenQuad(p0, p1, p2 Vec2) []Vec2 {
	out := make([]Vec2, 0, curveSegments)
	for i := 1; i <= curveSegments; i++ {
		t := float64(i) / curveSegments
		u := 1 - t
		out = append(out, Vec2{
			X: u*u*p0.X + 2*u*t*p1.X + t*t*p2.X,
			Y: u*u*p0.Y + 2*u*t*p1.Y + t*t*p2.Y,
		})
	}
	return out
}

func flattenCubic(p0, p1, p2, p3 Vec2) []Vec2 {
	out := make([]Vec2, 0, curveSegments)
	for i := 1; i <= curveSegments; i++ {
		t := float64(i) / curveSegments
		u := 1 - t
		out = append(out, Vec2{
			X: u*u*u*p0.X + 3*u*u*t*p1.X + 3*u*t*t*p2.X + t*t*t*p3.X,
			Y: u*u*u*p0.Y + 3*u*u*t*p1.Y + 3*u*t*t*p2.Y + t*t*t*p3.Y,
		})
	}
	return out
}

func isPathCommand(c byte) bool {
	switch c {
	case 'M', 'm', 'L', 'l', 'H', 'h', 'V', 'v', 'Z', 'z', 'C', 'c', 'Q', 'q':
		return true
	}
	return false
}

type pathParser struct {
	src string
	pos int
}

func (p *pathParser) done() bool { return p.pos >= len(p.src) }

func (p *pathParser) peek() byte { return p.src[p.pos] }

func (p *pathParser) skipSeparators() {
	for !p.done() {
		c := p.peek()
		if c != ',' && !unicode.IsSpace(rune(c)) {
			return
		}
		p.pos++
	}
}

func (p *pathParser) point() (Vec2, error) {
	x, err := p.number()
	if err != nil {
		return Vec2{}, err
	}
	y, err := p.number()
	if err != nil {
		return Vec2{}, err
	}
	return Vec2{x, y}, nil
}

// number scans one float, accepting sign, decimal point and exponent.
func (p *pathParser) number() (float64, error) {
	p.skipSeparators()
	start := p.pos
	if !p.done() && (p.peek() == '-' || p.peek() == '+') {
		p.pos++
	}
	sawDot, sawExp := false, false
scan:
	for !p.done() {
		c := p.peek()
		switch {
		case c >= '0' && c <= '9':
		case c == '.' && !sawDot && !sawExp:
			sawDot = true
		case (c == 'e' || c == 'E') && !sawExp && p.pos > start:
			sawExp = true
			if p.pos+1 < len(p.src) && (p.src[p.pos+1] == '-' || p.src[p.pos+1] == '+') {
				p.pos++
			}
		default:
			break scan
		}
		p.pos++
	}
	if start == p.pos {
		return 0, fmt.Errorf("parse path: expected number at offset %d", start)
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("parse path: %w", err)
	}
	return v, nil
}
