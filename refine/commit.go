package refine

import (
	"github.com/osuushi/adaptmesh/batch"
	"github.com/osuushi/adaptmesh/mesh"
)

// commitOne grafts the fan of a prepared candidate into the connectivity:
// each rim edge keeps its identity and becomes the base of a new triangle
// (rim vertex, next rim vertex, v), with spoke edges shared between adjacent
// fan triangles. Cavity triangles are only marked dead in keep; interior
// cavity edges lose both incidences at compaction and are swept out as
// orphans. A rim edge with fan == false is a split domain boundary edge: no
// triangle is built over it, so the two spokes flanking it come out
// single-sided and form the new boundary, while the edge itself is orphaned.
//
// keep is indexed by triangle and must already cover the current triangle
// count; commitOne appends a true entry per fan triangle it creates.
func commitOne(c *mesh.Connectivity, cand *candidate, v int, keep []bool) []bool {
	spokes := make(map[vref]int, len(cand.boundary))
	spoke := func(r vref) int {
		key := vref{base: r.base, tx: r.tx, ty: r.ty}
		if e, found := spokes[key]; found {
			return e
		}
		e := c.AddEdges(1)
		spokes[key] = e
		return e
	}

	for _, r := range cand.boundary {
		if !r.fan {
			continue
		}
		t := c.AddTriangles(1)
		c.TriVert[t] = [3]int{r.u.encode(c), r.w.encode(c), v}
		eW := spoke(r.w)
		eU := spoke(r.u)
		c.TriEdge[t] = [3]int{r.e, eW, eU}
		c.ReplaceEdgeTriangle(r.e, r.inside, t)
		c.AddEdgeIncidence(eW, t)
		c.AddEdgeIncidence(eU, t)
		keep = append(keep, true)
	}
	for _, ct := range cand.cavity {
		keep[ct.t] = false
	}
	return keep
}

// extendKeep returns an all-true keep mask over the current triangle count.
func extendKeep(c *mesh.Connectivity) []bool {
	keep := make([]bool, c.NTriangle())
	batch.Fill(keep, true)
	return keep
}
