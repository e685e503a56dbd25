package mesh

// Check verifies the central topological invariant: the triangle-edge and
// edge-triangle tables agree in both directions, and every triangle's
// vertices are distinct. It throws a TopologyError on the first violation.
//
// The flip, insertion and removal passes call this in their debug paths and
// after their mandatory repair steps; a failure here means the repair logic
// has a defect, so there is nothing sensible to recover.
func (c *Connectivity) Check() {
	for e := range c.EdgeTri {
		for _, t := range c.EdgeTri[e] {
			if t == NoTriangle {
				continue
			}
			if t < 0 || t >= c.NTriangle() {
				Throwf("edge %d references triangle %d out of range", e, t)
			}
			if c.EdgeSlot(t, e) < 0 {
				Throwf("edge %d lists triangle %d, but the triangle's edge list is %v",
					e, t, c.TriEdge[t])
			}
		}
	}
	for t := range c.TriEdge {
		for i, e := range c.TriEdge[t] {
			if e < 0 || e >= c.NEdge() {
				Throwf("triangle %d slot %d references edge %d out of range", t, i, e)
			}
			if c.EdgeTri[e][0] != t && c.EdgeTri[e][1] != t {
				Throwf("triangle %d holds edge %d, but the edge lists %v",
					t, e, c.EdgeTri[e])
			}
		}
		tv := c.TriVert[t]
		if tv[0] == tv[1] || tv[1] == tv[2] || tv[2] == tv[0] {
			Throwf("triangle %d has repeated vertices %v", t, tv)
		}
	}
}
