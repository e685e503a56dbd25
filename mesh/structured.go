package mesh

import "github.com/osuushi/adaptmesh/geom"

// NewStructured builds an nx by ny structured grid over the domain, with each
// cell split by its rising diagonal into two CCW triangles. Periodic axes
// wrap: the far row/column of vertices is not duplicated, and the triangles
// along the seam reference the near side through periodic aliases.
//
// This is the standard cold-start mesh for a solver run; the adaptation
// passes take it from there.
func NewStructured(nx, ny int, d Domain) *Connectivity {
	if nx < 1 || ny < 1 {
		Throwf("structured mesh needs at least one cell per axis, got %dx%d", nx, ny)
	}
	c := &Connectivity{Domain: d}

	nvx := nx + 1
	if d.PeriodicX {
		nvx = nx
	}
	nvy := ny + 1
	if d.PeriodicY {
		nvy = ny
	}
	dx := d.Width() / float64(nx)
	dy := d.Height() / float64(ny)

	c.Coords = make([]geom.Point, 0, nvx*nvy)
	for j := 0; j < nvy; j++ {
		for i := 0; i < nvx; i++ {
			c.Coords = append(c.Coords, geom.Point{
				X: d.Min.X + float64(i)*dx,
				Y: d.Min.Y + float64(j)*dy,
			})
		}
	}

	// vertexAt resolves grid position (i, j), wrapping onto an alias when a
	// periodic axis runs off the far end.
	vertexAt := func(i, j int) int {
		tx, ty := 0, 0
		if d.PeriodicX && i == nx {
			i, tx = 0, 1
		}
		if d.PeriodicY && j == ny {
			j, ty = 0, 1
		}
		return c.MakeAlias(j*nvx+i, tx, ty)
	}

	// Edge numbering: all horizontal edges first, then vertical, then the
	// cell diagonals.
	nex := nx + 1 // columns of vertical edges
	if d.PeriodicX {
		nex = nx
	}
	ney := ny + 1 // rows of horizontal edges
	if d.PeriodicY {
		ney = ny
	}
	nHoriz := nx * ney
	nVert := nex * ny
	horiz := func(i, j int) int {
		if d.PeriodicY && j == ny {
			j = 0
		}
		return j*nx + i
	}
	vert := func(i, j int) int {
		if d.PeriodicX && i == nx {
			i = 0
		}
		return nHoriz + j*nex + i
	}
	diag := func(i, j int) int {
		return nHoriz + nVert + j*nx + i
	}

	c.AddEdges(nHoriz + nVert + nx*ny)
	c.AddTriangles(2 * nx * ny)

	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			v00 := vertexAt(i, j)
			v10 := vertexAt(i+1, j)
			v01 := vertexAt(i, j+1)
			v11 := vertexAt(i+1, j+1)

			t0 := 2 * (j*nx + i)
			t1 := t0 + 1
			c.TriVert[t0] = [3]int{v00, v10, v11}
			c.TriEdge[t0] = [3]int{horiz(i, j), vert(i+1, j), diag(i, j)}
			c.TriVert[t1] = [3]int{v00, v11, v01}
			c.TriEdge[t1] = [3]int{diag(i, j), horiz(i, j+1), vert(i, j)}

			for _, e := range c.TriEdge[t0] {
				c.AddEdgeIncidence(e, t0)
			}
			for _, e := range c.TriEdge[t1] {
				c.AddEdgeIncidence(e, t1)
			}
		}
	}

	c.DeriveGeometry()
	return c
}

// UnitSquare is the domain [0,1]x[0,1], optionally periodic on both axes.
func UnitSquare(periodic bool) Domain {
	return Domain{
		Min:       geom.Point{X: 0, Y: 0},
		Max:       geom.Point{X: 1, Y: 1},
		PeriodicX: periodic,
		PeriodicY: periodic,
	}
}
