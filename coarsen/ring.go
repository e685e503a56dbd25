package coarsen

import (
	"github.com/osuushi/adaptmesh/geom"
	"github.com/osuushi/adaptmesh/mesh"
)

const maxRing = 32

// vertexTriangles builds the vertex-to-incident-triangle lists. References
// are resolved to their base vertex, so a triangle straddling the periodic
// seam registers at the vertices it actually uses.
func vertexTriangles(c *mesh.Connectivity) [][]int {
	vt := make([][]int, c.NVertex())
	for t := 0; t < c.NTriangle(); t++ {
		for _, v := range c.TriVert[t] {
			b := c.Reduce(v)
			vt[b] = append(vt[b], t)
		}
	}
	return vt
}

// ring is the ordered fan around an interior vertex. tris[k] holds the
// vertex at slot vSlot[k]; walking across the edge at that slot reaches
// tris[k+1], so the fan winds consistently and closes on itself. A vertex
// whose fan hits a boundary edge never gets a ring and is never removed.
type ring struct {
	tris  []int
	vSlot []int
}

func (r *ring) size() int { return len(r.tris) }

// walkRing orders the fan of vertex v starting from triangle t0. ok is
// false for boundary vertices and for fans too large to be worth collapsing.
func walkRing(c *mesh.Connectivity, v, t0 int) (ring, bool) {
	var r ring
	t := t0
	s := vertexSlot(c, t0, v)
	for {
		r.tris = append(r.tris, t)
		r.vSlot = append(r.vSlot, s)
		if len(r.tris) > maxRing {
			return ring{}, false
		}
		x := c.NeighborAcross(t, s)
		if x == mesh.NoTriangle {
			return ring{}, false
		}
		if x == t0 {
			return r, true
		}
		// The shared edge runs v -> next in t, next -> v in x, which pins
		// v's slot in x without a vertex lookup.
		e := c.TriEdge[t][s]
		j := c.EdgeSlot(x, e)
		if j < 0 {
			mesh.Throwf("edge %d missing from its incident triangle %d", e, x)
		}
		t, s = x, (j+1)%3
	}
}

func vertexSlot(c *mesh.Connectivity, t, v int) int {
	for i, tv := range c.TriVert[t] {
		if c.Reduce(tv) == v {
			return i
		}
	}
	mesh.Throwf("vertex %d missing from its incident triangle %d", v, t)
	return -1
}

// collapsePlan fixes the target of a removal: the ring position j whose
// vertex the fan collapses onto. The fan triangles at ring positions j and
// j+1 flank the spoke to the target and vanish; every other fan triangle is
// retargeted in place.
type collapsePlan struct {
	v    int
	ring ring
	j    int

	// Translation of the target relative to v, so the target reference can
	// be rebuilt in any fan triangle's periodic frame.
	wBase        int
	relTx, relTy int
}

// planCollapse tries each ring vertex as the collapse target, nearest
// first, and keeps the first one for which every surviving triangle stays
// counterclockwise and under the edge length cap. ok is false when no
// target works; the vertex stays put this cycle.
func planCollapse(c *mesh.Connectivity, v int, r ring, maxEdge float64) (collapsePlan, bool) {
	m := r.size()
	order := make([]int, m)
	dist := make([]float64, m)
	vc := c.Coords[v]
	for j := 0; j < m; j++ {
		order[j] = j
		dist[j] = vc.Dist(ringCoord(c, r, j))
	}
	for a := 0; a < m; a++ {
		for b := a + 1; b < m; b++ {
			if dist[order[b]] < dist[order[a]] {
				order[a], order[b] = order[b], order[a]
			}
		}
	}

	for _, j := range order {
		plan, ok := tryTarget(c, v, r, j, maxEdge)
		if ok {
			return plan, true
		}
	}
	return collapsePlan{}, false
}

// ringCoord is the coordinate of ring vertex j in the frame of the vertex
// being removed.
func ringCoord(c *mesh.Connectivity, r ring, j int) geom.Point {
	t := r.tris[j]
	s := r.vSlot[j]
	p := c.VertexCoord(c.TriVert[t][(s+1)%3])
	// Shift out of the triangle's frame into v's frame.
	vtx, vty := c.AliasOffsets(c.TriVert[t][s])
	p.X -= float64(vtx) * c.Domain.Width()
	p.Y -= float64(vty) * c.Domain.Height()
	return p
}

func tryTarget(c *mesh.Connectivity, v int, r ring, j int, maxEdge float64) (collapsePlan, bool) {
	m := r.size()
	tj := r.tris[j]
	sj := r.vSlot[j]
	wRef := c.TriVert[tj][(sj+1)%3]
	vTx, vTy := c.AliasOffsets(c.TriVert[tj][sj])
	wTx, wTy := c.AliasOffsets(wRef)
	plan := collapsePlan{
		v:     v,
		ring:  r,
		j:     j,
		wBase: c.Reduce(wRef),
		relTx: wTx - vTx,
		relTy: wTy - vTy,
	}

	next := (j + 1) % m
	for k := 0; k < m; k++ {
		if k == j || k == next {
			continue
		}
		t := r.tris[k]
		s := r.vSlot[k]
		w, ok := targetRef(c, plan, t, s)
		if !ok {
			return collapsePlan{}, false
		}
		a := c.VertexCoord(w)
		b := c.VertexCoord(c.TriVert[t][(s+1)%3])
		q := c.VertexCoord(c.TriVert[t][(s+2)%3])
		if geom.Orient(a, b, q) != geom.Left {
			return collapsePlan{}, false
		}
		if maxEdge > 0 {
			if a.Dist(b) > maxEdge || b.Dist(q) > maxEdge || q.Dist(a) > maxEdge {
				return collapsePlan{}, false
			}
		}
	}
	return plan, true
}

// targetRef rebuilds the collapse target's reference in the frame of fan
// triangle t, where the removed vertex sits at slot s.
func targetRef(c *mesh.Connectivity, plan collapsePlan, t, s int) (int, bool) {
	tx, ty := c.AliasOffsets(c.TriVert[t][s])
	tx += plan.relTx
	ty += plan.relTy
	if tx < -1 || tx > 1 || ty < -1 || ty > 1 {
		return 0, false
	}
	return c.MakeAlias(plan.wBase, tx, ty), true
}
