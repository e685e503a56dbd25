package mesh

import "github.com/osuushi/adaptmesh/geom"

// Periodic vertex aliasing. On a periodic axis a triangle straddling the seam
// refers to a vertex "one domain over". Rather than duplicating the vertex,
// the reference is stored as an alias: base + n*(3*ty + tx), with tx, ty in
// {-1, 0, 1} giving the translation in domain widths and n the active vertex
// count. Everything that subscripts a vertex array must Reduce first;
// everything that needs coordinates uses VertexCoord, which applies the
// translation.

// Reduce maps a possibly-aliased vertex reference into [0, NVertex). Like a
// circular buffer index, it only gives positive values.
func (c *Connectivity) Reduce(v int) int {
	n := c.NVertex()
	return (v%n + n) % n
}

// AliasOffsets decodes the translation units of an aliased reference.
func (c *Connectivity) AliasOffsets(v int) (tx, ty int) {
	n := c.NVertex()
	k := (v - c.Reduce(v)) / n // in [-4, 4]
	tx = (k+4)%3 - 1
	ty = (k+4)/3 - 1
	return tx, ty
}

// MakeAlias builds the reference for base translated by (tx, ty) domain
// units.
func (c *Connectivity) MakeAlias(base, tx, ty int) int {
	return base + c.NVertex()*(3*ty+tx)
}

// VertexCoord returns the coordinate of a vertex reference, translated across
// the periodic seam if the reference is an alias.
func (c *Connectivity) VertexCoord(v int) geom.Point {
	p := c.Coords[c.Reduce(v)]
	tx, ty := c.AliasOffsets(v)
	if tx != 0 {
		p.X += float64(tx) * c.Domain.Width()
	}
	if ty != 0 {
		p.Y += float64(ty) * c.Domain.Height()
	}
	return p
}

// TriangleCoords returns the three corner coordinates of triangle t in its
// own periodic frame.
func (c *Connectivity) TriangleCoords(t int) (a, b, p geom.Point) {
	tv := c.TriVert[t]
	return c.VertexCoord(tv[0]), c.VertexCoord(tv[1]), c.VertexCoord(tv[2])
}

// EdgeSlot returns the position of edge e within triangle t's edge list, or
// -1 if t does not currently contain e.
func (c *Connectivity) EdgeSlot(t, e int) int {
	for i, te := range c.TriEdge[t] {
		if te == e {
			return i
		}
	}
	return -1
}

// NeighborAcross returns the triangle sharing the edge at slot i of triangle
// t, or NoTriangle for a boundary edge.
func (c *Connectivity) NeighborAcross(t, i int) int {
	e := c.TriEdge[t][i]
	et := c.EdgeTri[e]
	if et[0] == t {
		return et[1]
	}
	if et[1] == t {
		return et[0]
	}
	Throwf("edge %d does not list its triangle %d (edge-triangle table stale)", e, t)
	return NoTriangle
}

// ReplaceEdgeTriangle rewrites the slot of old in EdgeTri[e] to new. It is
// one half of an adjacency update; the caller owes a matching TriEdge write
// (or a repair pass) before the next public operation.
func (c *Connectivity) ReplaceEdgeTriangle(e, old, new int) {
	if c.EdgeTri[e][0] == old {
		c.EdgeTri[e][0] = new
		return
	}
	if c.EdgeTri[e][1] == old {
		c.EdgeTri[e][1] = new
		return
	}
	Throwf("triangle %d not found on edge %d", old, e)
}

// AddEdgeIncidence records triangle t on edge e's first free slot.
func (c *Connectivity) AddEdgeIncidence(e, t int) {
	if c.EdgeTri[e][0] == NoTriangle {
		c.EdgeTri[e][0] = t
		return
	}
	if c.EdgeTri[e][1] == NoTriangle {
		c.EdgeTri[e][1] = t
		return
	}
	Throwf("edge %d already has two incident triangles", e)
}

// AddTriangles appends n zeroed triangles and returns the index of the first.
// The caller must fill TriVert and TriEdge for the new block before the next
// public operation.
func (c *Connectivity) AddTriangles(n int) int {
	start := len(c.TriVert)
	c.TriVert = append(c.TriVert, make([][3]int, n)...)
	c.TriEdge = append(c.TriEdge, make([][3]int, n)...)
	return start
}

// AddEdges appends n edges with both triangle slots empty and returns the
// index of the first.
func (c *Connectivity) AddEdges(n int) int {
	start := len(c.EdgeTri)
	for i := 0; i < n; i++ {
		c.EdgeTri = append(c.EdgeTri, [2]int{NoTriangle, NoTriangle})
	}
	return start
}

// AddVertices appends the given coordinates and returns the index of the
// first new vertex. Aliased references encode the vertex count, so every
// existing alias is rewritten against the new count.
func (c *Connectivity) AddVertices(points ...geom.Point) int {
	oldN := c.NVertex()
	start := oldN
	c.Coords = append(c.Coords, points...)
	c.reencodeAliases(oldN)
	return start
}

// reencodeAliases rewrites every aliased triangle-vertex reference from the
// encoding under oldN to the current vertex count.
func (c *Connectivity) reencodeAliases(oldN int) {
	newN := c.NVertex()
	if oldN == newN {
		return
	}
	for t := range c.TriVert {
		for i, v := range c.TriVert[t] {
			if v >= 0 && v < oldN {
				continue
			}
			base := (v%oldN + oldN) % oldN
			k := (v - base) / oldN
			c.TriVert[t][i] = base + newN*k
		}
	}
}
