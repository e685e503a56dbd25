// Package coarsen shrinks the mesh by edge collapse. A vertex is a removal
// candidate when every triangle of its fan is flagged for coarsening; it is
// collapsed onto the nearest ring vertex that keeps the surviving fan
// counterclockwise and under the edge length cap. Candidates lock their fan
// triangles through an ownership array, lowest vertex index first, so a
// cycle commits a maximal set of non-interfering removals regardless of the
// batch backend. Boundary vertices are never removed: the domain outline is
// part of the problem statement, not of the discretization.
package coarsen

import (
	"math"

	"github.com/pkg/errors"

	"github.com/osuushi/adaptmesh/batch"
	"github.com/osuushi/adaptmesh/delaunay"
	"github.com/osuushi/adaptmesh/mesh"
)

// ErrNonConvergence reports that removal cycles stopped at the cycle cap
// while vertices with fully flagged fans remained.
var ErrNonConvergence = errors.New("coarsening left flagged vertices")

// RemoveFunc is called for each removed vertex before any renumbering, with
// the ring vertex its fan collapsed onto. State carried by the removed
// vertex should be folded into the target here if it is to be conserved.
type RemoveFunc func(v, target int)

// CompactFunc is called after each cycle's vertex renumbering with the
// old-to-new remap (batch.Deleted marks removed vertices), so callers can
// compact their own per-vertex arrays.
type CompactFunc func(vertRemap []int)

type Config struct {
	// MaxEdge rejects collapses that would create an edge longer than it;
	// zero disables the cap.
	MaxEdge float64

	// MaxCycles bounds the number of removal cycles per Run.
	MaxCycles int

	// MaxFlipSweeps is handed to the Delaunay fixpoint after each cycle.
	MaxFlipSweeps int

	OnRemove  RemoveFunc
	OnCompact CompactFunc
}

type Coarsener struct {
	conn *mesh.Connectivity
	cfg  Config
}

func New(c *mesh.Connectivity, cfg Config) *Coarsener {
	return &Coarsener{conn: c, cfg: cfg}
}

// Run removes vertices whose whole fan is flagged, cycling until no flagged
// vertex can still be collapsed or the cycle cap is reached. Coarsening is
// best effort: a candidate with no viable target is simply left in place,
// but hitting the cycle cap while candidates are still being committed
// reports ErrNonConvergence. want is consumed as intent, not aliased.
// Returns the number of vertices removed; the connectivity is untouched
// when nothing is removable.
func (r *Coarsener) Run(want []bool) (removed int, err error) {
	c := r.conn
	if len(want) != c.NTriangle() {
		mesh.Throwf("coarsen flags have %d entries for %d triangles", len(want), c.NTriangle())
	}
	flags := make([]bool, len(want))
	copy(flags, want)

	for cycle := 0; cycle < r.cfg.MaxCycles; cycle++ {
		committed := r.cycle(&flags)
		if committed == 0 {
			return removed, nil
		}
		removed += committed

		legal := delaunay.NewLegalizer(c)
		if err := legal.Fixpoint(r.cfg.MaxFlipSweeps); err != nil {
			return removed, err
		}
	}
	if pending(c, flags) {
		return removed, errors.Wrapf(ErrNonConvergence,
			"flagged vertices remain after %d cycles", r.cfg.MaxCycles)
	}
	return removed, nil
}

// pending reports whether any vertex still has a nonempty, fully flagged
// fan, meaning the cycle cap stopped Run with candidates left over.
func pending(c *mesh.Connectivity, flags []bool) bool {
	vt := vertexTriangles(c)
	for v := range vt {
		if len(vt[v]) == 0 {
			continue
		}
		all := true
		for _, t := range vt[v] {
			if !flags[t] {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

func (r *Coarsener) cycle(flags *[]bool) int {
	c := r.conn
	vt := vertexTriangles(c)

	// A vertex is a candidate when it has a fan at all and every triangle
	// of it is flagged.
	cands, _ := batch.Select(c.NVertex(), func(v int) bool {
		if len(vt[v]) == 0 {
			return false
		}
		for _, t := range vt[v] {
			if !(*flags)[t] {
				return false
			}
		}
		return true
	})

	plans := make([]collapsePlan, len(cands))
	ok := make([]bool, len(cands))
	batch.ForEach(len(cands), func(i int) {
		v := cands[i]
		ring, interior := walkRing(c, v, vt[v][0])
		if !interior {
			return
		}
		plan, viable := planCollapse(c, v, ring, r.cfg.MaxEdge)
		if !viable {
			return
		}
		plans[i] = plan
		ok[i] = true
	})

	// Lowest vertex index wins every fan triangle it claims; a candidate
	// commits only if it won its whole fan, which also keeps its ring
	// vertices in place for the cycle.
	owner := make([]int32, c.NTriangle())
	batch.Fill(owner, int32(math.MaxInt32))
	batch.ForEach(len(cands), func(i int) {
		if !ok[i] {
			return
		}
		for _, t := range plans[i].ring.tris {
			batch.AtomicMin(&owner[t], int32(plans[i].v))
		}
	})

	keepT := make([]bool, c.NTriangle())
	batch.Fill(keepT, true)
	keepV := make([]bool, c.NVertex())
	batch.Fill(keepV, true)

	committed := 0
	for i := range cands {
		if !ok[i] {
			continue
		}
		plan := plans[i]
		won := true
		for _, t := range plan.ring.tris {
			if owner[t] != int32(plan.v) {
				won = false
				break
			}
		}
		if !won {
			continue
		}
		collapse(c, plan, keepT, keepV)
		if r.cfg.OnRemove != nil {
			r.cfg.OnRemove(plan.v, plan.wBase)
		}
		committed++
	}
	if committed == 0 {
		return 0
	}

	c.Quality = nil
	c.EdgeLength = nil
	c.EdgeNormal = nil

	triRemap, _ := c.RemoveTriangles(keepT)
	*flags = batch.Compact(*flags, triRemap, c.NTriangle())
	vertRemap := c.RemoveVertices(keepV)
	if r.cfg.OnCompact != nil {
		r.cfg.OnCompact(vertRemap)
	}
	return committed
}
