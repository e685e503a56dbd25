// Package refine grows the mesh by vertex insertion. Each pass collects the
// triangles flagged for refinement, proposes one insertion point per flagged
// triangle, carves the point's cavity, and lets a greedy independent set of
// non-overlapping cavities commit together. Candidates whose cavity collides
// with an earlier one in the Morton order simply wait for the next pass, so
// the result does not depend on how the pass was scheduled across goroutines.
package refine

import (
	"math"

	"github.com/pkg/errors"

	"github.com/osuushi/adaptmesh/batch"
	"github.com/osuushi/adaptmesh/delaunay"
	"github.com/osuushi/adaptmesh/geom"
	"github.com/osuushi/adaptmesh/mesh"
	"github.com/osuushi/adaptmesh/morton"
)

// ErrNonConvergence reports that refinement passes stopped while flagged
// triangles remained, either because the pass cap was reached or because a
// pass could not commit a single insertion.
var ErrNonConvergence = errors.New("refinement left unresolved candidates")

// InsertFunc is called once per inserted vertex, after the vertex exists in
// the connectivity. enclosing holds the three vertices of the triangle the
// point landed in and weights its barycentric coordinates there, which is
// everything a linear interpolation of vertex-borne state needs.
type InsertFunc func(v int, enclosing [3]int, weights [3]float64)

type Config struct {
	// QualityBound rejects insertions that would create a fan triangle with
	// a circumradius-to-shortest-edge ratio above the bound; the candidate
	// is retried on a later pass once its surroundings have changed.
	QualityBound float64

	// MinEdge makes a triangle permanently ineligible once its shortest
	// edge is at or below it, bounding how far any region can be refined.
	MinEdge float64

	// MaxPasses caps the number of insertion passes per Run.
	MaxPasses int

	// MaxFlipSweeps is handed to the Delaunay fixpoint after each pass.
	MaxFlipSweeps int

	OnInsert InsertFunc
}

type Refiner struct {
	conn *mesh.Connectivity
	cfg  Config
}

func New(c *mesh.Connectivity, cfg Config) *Refiner {
	return &Refiner{conn: c, cfg: cfg}
}

// Run inserts vertices into the flagged triangles until no eligible flags
// remain or the pass cap is hit. want is consumed as intent, not aliased: Run
// keeps its own copy and carries it across the compactions it performs. The
// connectivity is untouched when no triangle is both flagged and eligible.
func (r *Refiner) Run(want []bool) (inserted int, err error) {
	c := r.conn
	if len(want) != c.NTriangle() {
		mesh.Throwf("refine flags have %d entries for %d triangles", len(want), c.NTriangle())
	}
	flags := make([]bool, len(want))
	copy(flags, want)

	for pass := 0; ; pass++ {
		cands := r.gather(flags)
		if len(cands) == 0 {
			return inserted, nil
		}
		if pass >= r.cfg.MaxPasses {
			return inserted, errors.Wrapf(ErrNonConvergence,
				"%d candidates after %d passes", len(cands), pass)
		}

		committed := r.pass(cands, &flags)
		if committed == 0 {
			return inserted, errors.Wrapf(ErrNonConvergence,
				"pass %d could not place any of %d candidates", pass, len(cands))
		}
		inserted += committed

		legal := delaunay.NewLegalizer(c)
		if err := legal.Fixpoint(r.cfg.MaxFlipSweeps); err != nil {
			return inserted, err
		}
	}
}

// gather turns the current flags into a Morton-ordered candidate list. A
// flagged triangle whose shortest edge has reached MinEdge has its flag
// cleared for good.
func (r *Refiner) gather(flags []bool) []*candidate {
	c := r.conn
	ids, _ := batch.Select(c.NTriangle(), func(t int) bool { return flags[t] })

	cands := make([]*candidate, 0, len(ids))
	for _, t := range ids {
		if r.cfg.MinEdge > 0 && c.ShortestEdge(t) <= r.cfg.MinEdge {
			flags[t] = false
			continue
		}
		cands = append(cands, &candidate{seed: t})
	}
	if len(cands) == 0 {
		return nil
	}

	// Proposed points first, so the Morton order reflects where the
	// insertions will land rather than where the flags are.
	points := make([]geom.Point, len(cands))
	batch.ForEach(len(cands), func(i int) {
		points[i] = r.proposePoint(cands[i].seed)
	})
	order := make([]int, len(cands))
	for i := range order {
		order[i] = i
	}
	morton.Order(order, func(i int) uint32 {
		p := points[i]
		return morton.Key(p.X, p.Y, c.Domain.Min.X, c.Domain.Min.Y, c.Domain.Max.X, c.Domain.Max.Y)
	})

	ordered := make([]*candidate, len(cands))
	for rank, i := range order {
		ordered[rank] = cands[i]
		ordered[rank].rank = int32(rank)
		ordered[rank].point = points[i]
	}
	return ordered
}

// proposePoint picks the insertion point for a flagged triangle: the
// circumcenter, falling back to the longest edge's midpoint when the
// circumcenter is unreachable (off a bounded domain axis, or behind a domain
// boundary edge). The point is expressed in the seed triangle's frame.
func (r *Refiner) proposePoint(t int) geom.Point {
	c := r.conn
	a, b, q := c.TriangleCoords(t)
	cc := geom.Circumcenter(a, b, q)
	if _, _, _, ok := wrapPoint(c.Domain, cc); ok {
		return cc
	}
	return r.midpointFallback(t)
}

func (r *Refiner) midpointFallback(t int) geom.Point {
	c := r.conn
	i := c.LongestEdgeSlot(t)
	u := c.VertexCoord(c.TriVert[t][i])
	w := c.VertexCoord(c.TriVert[t][(i+1)%3])
	return geom.Midpoint(u, w)
}

// pass prepares all candidates against the frozen mesh, resolves cavity
// conflicts by Morton rank, and commits the winners. Returns the number of
// vertices inserted; flags is compacted in place alongside the triangles.
func (r *Refiner) pass(cands []*candidate, flags *[]bool) int {
	c := r.conn

	batch.ForEach(len(cands), func(i int) {
		cand := cands[i]
		prepare(c, nil, cand, cand.point)
		if !cand.ok && cand.point != r.midpointFallback(cand.seed) {
			// A circumcenter the walk could not reach; retry the pass
			// with the midpoint before giving up on the candidate.
			cand.point = r.midpointFallback(cand.seed)
			prepare(c, nil, cand, cand.point)
		}
	})

	// Lowest Morton rank wins every triangle of its cavity; a candidate
	// commits only if it won all of them.
	owner := make([]int32, c.NTriangle())
	batch.Fill(owner, int32(math.MaxInt32))
	batch.ForEach(len(cands), func(i int) {
		cand := cands[i]
		if !cand.ok {
			return
		}
		for _, ct := range cand.cavity {
			batch.AtomicMin(&owner[ct.t], cand.rank)
		}
	})

	var winners []*candidate
	for _, cand := range cands {
		if !cand.ok {
			continue
		}
		won := true
		for _, ct := range cand.cavity {
			if owner[ct.t] != cand.rank {
				won = false
				break
			}
		}
		if won && r.fanQualityOK(cand) {
			winners = append(winners, cand)
		}
	}
	if len(winners) == 0 {
		return 0
	}

	points := make([]geom.Point, len(winners))
	for i, cand := range winners {
		points[i] = cand.point
	}
	firstV := c.AddVertices(points...)

	keep := extendKeep(c)
	for i, cand := range winners {
		keep = commitOne(c, cand, firstV+i, keep)
	}
	if r.cfg.OnInsert != nil {
		for i, cand := range winners {
			r.cfg.OnInsert(firstV+i, cand.enclosing, cand.weights)
		}
	}

	// The derived arrays are stale and short of the fan triangles; the
	// fixpoint recomputes them after compaction.
	c.Quality = nil
	c.EdgeLength = nil
	c.EdgeNormal = nil

	grown := append(*flags, make([]bool, c.NTriangle()-len(*flags))...)
	triRemap, _ := c.RemoveTriangles(keep)
	*flags = batch.Compact(grown, triRemap, c.NTriangle())
	return len(winners)
}

// fanQualityOK checks the prospective fan triangles against the quality
// bound. A violating candidate is deferred rather than dropped: its flag
// stays set and the cavity is re-carved against the next pass's mesh.
func (r *Refiner) fanQualityOK(cand *candidate) bool {
	if r.cfg.QualityBound <= 0 {
		return true
	}
	c := r.conn
	for _, rim := range cand.boundary {
		if !rim.fan {
			continue
		}
		if geom.Quality(rim.u.coord(c), rim.w.coord(c), cand.point) > r.cfg.QualityBound {
			return false
		}
	}
	return true
}
