package delaunay

import "github.com/osuushi/adaptmesh/mesh"

// FlipEdge rewrites the two triangles around edge e, currently (a,b,c) and
// (b,a,d), so that they share the diagonal (c,d) instead of (a,b). Edge e
// itself becomes the new diagonal and keeps its two triangles, but two of the
// quad's perimeter edges change sides:
//
//	   c                  c
//	  / \                /|\
//	 /t1 \              / | \
//	a-----b    =>      a t1|t2b
//	 \t2 /              \ | /
//	  \ /                \|/
//	   d                  d
//
// eAD moves from t2 to the rewritten t1 and eBC moves from t1 to the
// rewritten t2. Their edge-triangle entries are left stale, the edges are
// marked NeedsRepair, and substitute pointers are recorded so EdgeRepair (and
// any other in-flight reference to the old triangles) can chase down the
// current owner. The flip is complete only after EdgeRepair has run.
//
// FlipEdge touches the states of all five surrounding edges, so concurrent
// flips must not share perimeter edges; the fixpoint loop flips the topology
// in parallel but does this marking sequentially.
func (l *Legalizer) FlipEdge(e int) {
	q := l.flipTopology(e)
	l.markFlipped(q)
}

// flipTopology performs the triangle rewrite for one flip and records the
// substitute pointers. It only writes to the two triangles around e, so it is
// safe to run concurrently for edges whose triangle pairs are disjoint.
func (l *Legalizer) flipTopology(e int) quad {
	q, ok := l.quadAround(e)
	if !ok {
		mesh.Throwf("flip requested for boundary edge %d", e)
	}
	c := l.conn

	c.TriVert[q.t1] = l.canonical([3]int{q.a, q.d, q.c})
	c.TriEdge[q.t1] = [3]int{q.eAD, e, q.eCA}
	c.TriVert[q.t2] = l.canonical([3]int{q.d, q.b, q.c})
	c.TriEdge[q.t2] = [3]int{q.eDB, q.eBC, e}

	// Each old triangle's lost edge now lives on the other one.
	l.substitute[q.t1] = q.t2
	l.substitute[q.t2] = q.t1
	return q
}

// markFlipped moves the flipped quad's edges into the repair phase. The two
// moved perimeter edges and the diagonal hold stale or re-derived adjacency;
// the other two perimeter edges keep correct tables but border a rewritten
// triangle, so their previous verdicts are void.
func (l *Legalizer) markFlipped(q quad) {
	for _, e := range [3]int{l.conn.TriEdge[q.t1][1], q.eAD, q.eBC} {
		l.state[e] = NeedsRepair
	}
	l.state[q.eCA] = Untested
	l.state[q.eDB] = Untested
}

// canonical rebases a vertex triple so its periodic alias offsets are
// minimal: at least one vertex per axis is unaliased. Flip arithmetic adds
// alias deltas together; without rebasing, chains of flips along the seam
// could walk the offsets out of the representable -1..1 range.
func (l *Legalizer) canonical(tv [3]int) [3]int {
	c := l.conn
	n := c.NVertex()
	minTx, minTy := 2, 2
	var txs, tys [3]int
	for i, v := range tv {
		base := c.Reduce(v)
		k := (v - base) / n
		if k < -4 || k > 4 {
			mesh.Throwf("vertex reference %d is translated beyond the neighboring period", v)
		}
		txs[i] = (k+4)%3 - 1
		tys[i] = (k+4)/3 - 1
		if txs[i] < minTx {
			minTx = txs[i]
		}
		if tys[i] < minTy {
			minTy = tys[i]
		}
	}
	var out [3]int
	for i, v := range tv {
		tx := txs[i] - minTx
		ty := tys[i] - minTy
		if tx > 1 || ty > 1 {
			mesh.Throwf("triangle %v spans more than one period; mesh too coarse for its domain", tv)
		}
		out[i] = c.MakeAlias(c.Reduce(v), tx, ty)
	}
	return out
}
