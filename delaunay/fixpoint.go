package delaunay

import (
	"math"

	"github.com/pkg/errors"

	"github.com/osuushi/adaptmesh/batch"
)

// Fixpoint runs whole-mesh sweeps until no edge is Flippable or the sweep cap
// is exceeded. Each sweep repairs outstanding adjacency, re-tests edges whose
// verdict is unknown, picks a conflict-free subset of the violating edges,
// and flips that subset in one wide pass.
//
// On success the derived geometry is up to date. On ErrNonConvergence the
// mesh is still fully repaired and consistent, just not yet Delaunay.
func (l *Legalizer) Fixpoint(maxSweeps int) error {
	c := l.conn
	for sweep := 0; sweep < maxSweeps; sweep++ {
		l.EdgeRepair(nil)

		batch.ForEach(c.NEdge(), func(e int) {
			if l.state[e] == Untested {
				l.CheckEdge(e)
			}
		})

		flippable, n := batch.Select(c.NEdge(), func(e int) bool {
			return l.state[e] == Flippable
		})
		if n == 0 {
			c.DeriveGeometry()
			return nil
		}

		winners := l.independentFlipSet(flippable)
		quads := make([]quad, len(winners))
		batch.ForEach(len(winners), func(i int) {
			quads[i] = l.flipTopology(winners[i])
		})
		// State marking overlaps between adjacent quads, so it stays out of
		// the wide pass.
		for _, q := range quads {
			l.markFlipped(q)
		}
		// A loser's quad may have been reshaped by a neighboring winner;
		// forget its verdict rather than flipping on stale geometry.
		for _, e := range flippable {
			if l.state[e] == Flippable {
				l.state[e] = Untested
			}
		}
	}
	l.EdgeRepair(nil)
	c.DeriveGeometry()
	return errors.Wrapf(ErrNonConvergence, "after %d sweeps", maxSweeps)
}

// independentFlipSet picks a maximal subset of the flippable edges whose
// triangle pairs are pairwise disjoint. Every candidate claims both its
// triangles in a single-writer-wins ownership array (lowest edge index
// wins); a candidate owning both proceeds. The result is deterministic
// regardless of execution order.
func (l *Legalizer) independentFlipSet(flippable []int) []int {
	c := l.conn
	owner := make([]int32, c.NTriangle())
	batch.Fill(owner, int32(math.MaxInt32))

	batch.ForEach(len(flippable), func(i int) {
		e := flippable[i]
		batch.AtomicMin(&owner[c.EdgeTri[e][0]], int32(e))
		batch.AtomicMin(&owner[c.EdgeTri[e][1]], int32(e))
	})

	winners, _ := batch.Select(len(flippable), func(i int) bool {
		e := flippable[i]
		return owner[c.EdgeTri[e][0]] == int32(e) && owner[c.EdgeTri[e][1]] == int32(e)
	})
	out := make([]int, len(winners))
	for i, w := range winners {
		out[i] = flippable[w]
	}
	return out
}
