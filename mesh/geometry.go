package mesh

import (
	"github.com/osuushi/adaptmesh/batch"
	"github.com/osuushi/adaptmesh/geom"
)

// DeriveGeometry recomputes the per-triangle edge lengths, outward edge
// normals and the quality metric from the current coordinates. It must run
// after any coordinate or topology change, before anything consults the
// derived arrays. One wide pass over the triangles.
func (c *Connectivity) DeriveGeometry() {
	n := c.NTriangle()
	if cap(c.EdgeLength) < n {
		c.EdgeLength = make([][3]float64, n)
		c.EdgeNormal = make([][3]geom.Point, n)
		c.Quality = make([]float64, n)
	} else {
		c.EdgeLength = c.EdgeLength[:n]
		c.EdgeNormal = c.EdgeNormal[:n]
		c.Quality = c.Quality[:n]
	}

	batch.ForEach(n, func(t int) {
		a, b, p := c.TriangleCoords(t)
		corners := [3]geom.Point{a, b, p}
		for i := 0; i < 3; i++ {
			from := corners[i]
			to := corners[(i+1)%3]
			d := to.Sub(from)
			length := from.Dist(to)
			c.EdgeLength[t][i] = length
			if length > 0 {
				// For CCW winding (dy, -dx) points out of the triangle.
				c.EdgeNormal[t][i] = geom.Point{X: d.Y / length, Y: -d.X / length}
			} else {
				c.EdgeNormal[t][i] = geom.Point{}
			}
		}
		c.Quality[t] = geom.Quality(a, b, p)
	})
}

// ShortestEdge returns the length of triangle t's shortest edge. Only valid
// after DeriveGeometry.
func (c *Connectivity) ShortestEdge(t int) float64 {
	l := c.EdgeLength[t]
	min := l[0]
	if l[1] < min {
		min = l[1]
	}
	if l[2] < min {
		min = l[2]
	}
	return min
}

// LongestEdgeSlot returns the slot of triangle t's longest edge. Only valid
// after DeriveGeometry.
func (c *Connectivity) LongestEdgeSlot(t int) int {
	l := c.EdgeLength[t]
	slot := 0
	if l[1] > l[slot] {
		slot = 1
	}
	if l[2] > l[slot] {
		slot = 2
	}
	return slot
}
