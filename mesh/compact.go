package mesh

import "github.com/osuushi/adaptmesh/batch"

// RemoveTriangles deletes every triangle whose keep entry is false. It
// computes the old-to-new remap with one exclusive scan, compacts the
// per-triangle arrays, and rewrites the edge-triangle table in a single pass
// through the remap. Edges left with no incident triangle are dropped in the
// same way, with the triangle-edge table rewritten through the edge remap.
//
// Returns the triangle and edge remaps (batch.Deleted marks removed entries)
// so callers can fix up their own per-triangle/per-edge arrays.
func (c *Connectivity) RemoveTriangles(keep []bool) (triRemap, edgeRemap []int) {
	if len(keep) != c.NTriangle() {
		Throwf("keep mask has %d entries for %d triangles", len(keep), c.NTriangle())
	}
	triRemap, nTri := batch.ExclusiveScan(keep)

	c.TriVert = batch.Compact(c.TriVert, triRemap, nTri)
	c.TriEdge = batch.Compact(c.TriEdge, triRemap, nTri)
	if c.Quality != nil {
		c.Quality = batch.Compact(c.Quality, triRemap, nTri)
	}
	if c.EdgeLength != nil {
		c.EdgeLength = batch.Compact(c.EdgeLength, triRemap, nTri)
	}
	if c.EdgeNormal != nil {
		c.EdgeNormal = batch.Compact(c.EdgeNormal, triRemap, nTri)
	}

	for e := range c.EdgeTri {
		for s, t := range c.EdgeTri[e] {
			if t == NoTriangle {
				continue
			}
			if nt := triRemap[t]; nt == batch.Deleted {
				c.EdgeTri[e][s] = NoTriangle
			} else {
				c.EdgeTri[e][s] = nt
			}
		}
		// An edge kept alive by one triangle should hold it in slot 0 so
		// boundary checks stay cheap.
		if c.EdgeTri[e][0] == NoTriangle {
			c.EdgeTri[e][0], c.EdgeTri[e][1] = c.EdgeTri[e][1], c.EdgeTri[e][0]
		}
	}

	edgeRemap = c.removeOrphanEdges()
	return triRemap, edgeRemap
}

// removeOrphanEdges drops edges with no incident triangle and rewrites
// TriEdge through the resulting remap.
func (c *Connectivity) removeOrphanEdges() []int {
	keep := make([]bool, c.NEdge())
	for e := range c.EdgeTri {
		keep[e] = c.EdgeTri[e][0] != NoTriangle || c.EdgeTri[e][1] != NoTriangle
	}
	edgeRemap, nEdge := batch.ExclusiveScan(keep)
	if nEdge == len(keep) {
		return edgeRemap
	}
	c.EdgeTri = batch.Compact(c.EdgeTri, edgeRemap, nEdge)
	for t := range c.TriEdge {
		for i, e := range c.TriEdge[t] {
			ne := edgeRemap[e]
			if ne == batch.Deleted {
				Throwf("triangle %d still references removed edge %d", t, e)
			}
			c.TriEdge[t][i] = ne
		}
	}
	return edgeRemap
}

// RemoveVertices deletes every vertex whose keep entry is false and renumbers
// all triangle references through the remap, preserving periodic alias
// offsets. A removed vertex must no longer be referenced by any surviving
// triangle. Returns the vertex remap.
func (c *Connectivity) RemoveVertices(keep []bool) []int {
	if len(keep) != c.NVertex() {
		Throwf("keep mask has %d entries for %d vertices", len(keep), c.NVertex())
	}
	oldN := c.NVertex()
	remap, newN := batch.ExclusiveScan(keep)
	if newN == oldN {
		return remap
	}

	for t := range c.TriVert {
		for i, v := range c.TriVert[t] {
			base := (v%oldN + oldN) % oldN
			k := (v - base) / oldN
			nb := remap[base]
			if nb == batch.Deleted {
				Throwf("triangle %d references removed vertex %d", t, base)
			}
			c.TriVert[t][i] = nb + newN*k
		}
	}
	c.Coords = batch.Compact(c.Coords, remap, newN)
	return remap
}
