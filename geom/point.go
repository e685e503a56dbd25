package geom

import "math"

type Point struct {
	X float64
	Y float64
}

func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

func (p Point) Scale(s float64) Point {
	return Point{p.X * s, p.Y * s}
}

func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Midpoint of the segment pq.
func Midpoint(p, q Point) Point {
	return Point{0.5 * (p.X + q.X), 0.5 * (p.Y + q.Y)}
}
