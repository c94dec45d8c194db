package flateralus

// RectShape fills a Width x Height rectangle centered on the sprite origin.
type RectShape struct {
	Width, Height float64
}

// Draw implements Shape.
func (r RectShape) Draw(c Canvas, s *Sprite) {
	c.FillRect(-r.Width/2, -r.Height/2, r.Width, r.Height, s.FillColor)
}

// CircleShape fills a circle centered on the sprite origin.
type CircleShape struct {
	Radius float64
}

// Draw implements Shape.
func (ci CircleShape) Draw(c Canvas, s *Sprite) {
	c.FillCircle(0, 0, ci.Radius, s.FillColor)
}

// PolygonShape fills a closed polygon given in local coordinates.
type PolygonShape struct {
	Points []Vec2
}

// Draw implements Shape.
func (p PolygonShape) Draw(c Canvas, s *Sprite) {
	if len(p.Points) < 3 {
		return
	}
	c.FillPolygon(p.Points, s.FillColor)
}

// NewPathShape builds a polygon from SVG path data. The outline is
// translated so its bounding box is centered on the origin, then scaled so
// the larger side equals size. A size of 0 keeps the path's own units.
func NewPathShape(d string, size float64) (PolygonShape, error) {
	pts, err := ParsePath(d)
	if err != nil {
		return PolygonShape{}, err
	}
	b := PathBounds(pts)
	center := b.Center()
	k := 1.0
	if side := max(b.Width, b.Height); size > 0 && side > 0 {
		k = size / side
	}
	for i, p := range pts {
		pts[i] = p.Sub(center).Scale(k)
	}
	return PolygonShape{Points: pts}, nil
}
