package geom

import "math"

// Circumcenter returns the center of the circle through a, b and c. For an
// exactly collinear triple there is no circumcircle; the caller is expected to
// have screened those out with Orient, but we return the segment midpoint of
// the two extreme points rather than Inf/NaN so that downstream geometry stays
// finite.
func Circumcenter(a, b, c Point) Point {
	bx := b.X - a.X
	by := b.Y - a.Y
	cx := c.X - a.X
	cy := c.Y - a.Y

	d := 2 * (bx*cy - by*cx)
	if d == 0 {
		return Midpoint(a, c)
	}
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	ux := (cy*b2 - by*c2) / d
	uy := (bx*c2 - cx*b2) / d
	return Point{a.X + ux, a.Y + uy}
}

// Circumradius of the triangle abc. Infinite for collinear triples.
func Circumradius(a, b, c Point) float64 {
	la := b.Dist(c)
	lb := c.Dist(a)
	lc := a.Dist(b)
	area2 := abs((b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X))
	if area2 == 0 {
		return math.Inf(1)
	}
	return la * lb * lc / (2 * area2)
}

// Quality is the circumradius-to-shortest-edge ratio of the triangle abc. It
// is the shape metric the refine and coarsen passes gate on: an equilateral
// triangle scores 1/sqrt(3), and the ratio grows without bound as the
// triangle degenerates. Lower is better.
func Quality(a, b, c Point) float64 {
	shortest := math.Min(b.Dist(c), math.Min(c.Dist(a), a.Dist(b)))
	if shortest == 0 {
		return math.Inf(1)
	}
	return Circumradius(a, b, c) / shortest
}
