package delaunay

import (
	"github.com/osuushi/adaptmesh/batch"
	"github.com/osuushi/adaptmesh/mesh"
)

// Substitute chains are short (one hop per flip touching the triangle in a
// sweep), so a long walk means the pointers form a cycle and the flip
// bookkeeping is broken.
const maxChainWalk = 64

// EdgeRepair rewrites the edge-triangle entries made stale by the flips since
// the last repair. scope lists the candidate edges; pass nil to sweep every
// edge. For each stale reference the walk follows the substitute pointers
// until it reaches the triangle whose edge list really contains the edge,
// then rewrites the entry and returns the edge to Untested. Must complete
// before the next check pass; until it has, the edge tables are in their
// permitted transient window.
func (l *Legalizer) EdgeRepair(scope []int) {
	c := l.conn
	repairOne := func(e int) {
		for s, t := range c.EdgeTri[e] {
			if t == mesh.NoTriangle || c.EdgeSlot(t, e) >= 0 {
				continue
			}
			walked := 0
			for c.EdgeSlot(t, e) < 0 {
				t = l.substitute[t]
				if t == noSub {
					mesh.Throwf("edge %d lost its triangle: substitute chain dead-ends", e)
				}
				if walked++; walked > maxChainWalk {
					mesh.Throwf("substitute chain for edge %d does not terminate", e)
				}
			}
			c.EdgeTri[e][s] = t
		}
		if l.state[e] == NeedsRepair {
			l.state[e] = Untested
		}
	}

	if scope == nil {
		batch.ForEach(c.NEdge(), repairOne)
		return
	}
	batch.ForEach(len(scope), func(i int) {
		repairOne(scope[i])
	})
}
