package coarsen

import (
	"github.com/osuushi/adaptmesh/mesh"
)

// collapse retargets the fan of plan.v onto the chosen ring vertex. With the
// removed vertex at slot s, fan triangle k reads (v, ring_k, ring_k-1), so
// the spoke to the target is shared by the fan triangles at ring positions j
// and j+1; both degenerate. Each dead triangle hands its outer ring edge to
// the surviving triangle on the far side of its other spoke, and that spoke
// is unhooked and left for the orphan sweep. The removed vertex itself is
// only marked in keepV; renumbering happens once per cycle.
func collapse(c *mesh.Connectivity, plan collapsePlan, keepT, keepV []bool) {
	r := plan.ring
	m := r.size()
	j := plan.j
	next := (j + 1) % m

	for k := 0; k < m; k++ {
		if k == j || k == next {
			continue
		}
		t := r.tris[k]
		s := r.vSlot[k]
		w, ok := targetRef(c, plan, t, s)
		if !ok {
			mesh.Throwf("vertex %d is translated beyond the neighboring period", plan.wBase)
		}
		c.TriVert[t][s] = w
	}

	// tris[j] = (v, w, ring_j-1): the outer edge at slot s+1 absorbs the
	// spoke at slot s+2, joining up with the survivor at ring position j-1.
	deadA := r.tris[j]
	sA := r.vSlot[j]
	mergeEdges(c, deadA, c.TriEdge[deadA][(sA+1)%3], c.TriEdge[deadA][(sA+2)%3])

	// tris[j+1] = (v, ring_j+1, w): the outer edge at slot s+1 absorbs the
	// spoke at slot s, joining up with the survivor at ring position j+2.
	deadB := r.tris[next]
	sB := r.vSlot[next]
	mergeEdges(c, deadB, c.TriEdge[deadB][(sB+1)%3], c.TriEdge[deadB][sB])

	keepT[deadA] = false
	keepT[deadB] = false
	keepV[plan.v] = false
}

// mergeEdges folds a dead triangle's surviving spoke into its outer ring
// edge: the triangle across the spoke takes the dead triangle's seat on the
// outer edge, and the spoke is detached so only dead references remain on it.
func mergeEdges(c *mesh.Connectivity, dead, outer, spoke int) {
	survivor := otherTriangle(c, spoke, dead)
	if survivor == mesh.NoTriangle {
		mesh.Throwf("spoke edge %d of a collapsed fan has no surviving triangle", spoke)
	}
	c.ReplaceEdgeTriangle(outer, dead, survivor)
	slot := c.EdgeSlot(survivor, spoke)
	if slot < 0 {
		mesh.Throwf("triangle %d lost its spoke edge %d during a collapse", survivor, spoke)
	}
	c.TriEdge[survivor][slot] = outer
	c.ReplaceEdgeTriangle(spoke, survivor, mesh.NoTriangle)
}

func otherTriangle(c *mesh.Connectivity, e, t int) int {
	et := c.EdgeTri[e]
	if et[0] == t {
		return et[1]
	}
	if et[1] == t {
		return et[0]
	}
	mesh.Throwf("triangle %d not found on edge %d", t, e)
	return mesh.NoTriangle
}
