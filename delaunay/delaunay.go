// Package delaunay restores the empty-circumcircle property after the mesh
// topology changes. It works in whole-mesh sweeps: test every edge, flip a
// conflict-free subset of the violating ones, repair the adjacency entries the
// flips made stale, and repeat until no edge wants to flip. Each flip strictly
// reduces the number of non-Delaunay edges, so the sweep loop reaches a fixed
// point for non-degenerate input; a caller-supplied sweep cap turns an
// algorithmic surprise into a reported error instead of a hang.
package delaunay

import (
	"github.com/pkg/errors"

	"github.com/osuushi/adaptmesh/batch"
	"github.com/osuushi/adaptmesh/geom"
	"github.com/osuushi/adaptmesh/mesh"
)

// ErrNonConvergence is returned when a sweep cap is exceeded. The mesh is
// left at the last fully repaired state, so the caller may either continue
// with a partially legalized mesh or abort the step.
var ErrNonConvergence = errors.New("delaunay flip sweeps did not reach a fixed point")

// EdgeState is the per-edge position in the test/flip/repair cycle:
//
//	Untested -> {Flippable | Stable}
//	Flippable -> (flip) -> NeedsRepair -> (repair) -> Untested -> ...
//
// A sweep is done when every edge is Stable.
type EdgeState uint8

const (
	Untested EdgeState = iota
	Stable
	Flippable
	NeedsRepair
)

func (s EdgeState) String() string {
	switch s {
	case Stable:
		return "Stable"
	case Flippable:
		return "Flippable"
	case NeedsRepair:
		return "NeedsRepair"
	}
	return "Untested"
}

// noSub marks a triangle with no substitute recorded.
const noSub = -1

// Legalizer runs flip maintenance against one connectivity. It holds the
// per-edge state machine and the per-triangle substitute pointers used by
// edge repair. Create a fresh one after any pass that changed the triangle
// or edge counts.
type Legalizer struct {
	conn  *mesh.Connectivity
	state []EdgeState
	// substitute[t] points to the triangle that took over part of t's
	// boundary in the most recent flip. Edge repair follows these like a
	// union-find parent array until it lands on a triangle that really
	// contains the edge.
	substitute []int
}

func NewLegalizer(c *mesh.Connectivity) *Legalizer {
	l := &Legalizer{
		conn:       c,
		state:      make([]EdgeState, c.NEdge()),
		substitute: make([]int, c.NTriangle()),
	}
	batch.Fill(l.substitute, noSub)
	return l
}

// State returns edge e's current position in the flip state machine.
func (l *Legalizer) State(e int) EdgeState { return l.state[e] }

// MarkUntested queues edge e for re-testing in the next sweep.
func (l *Legalizer) MarkUntested(e int) { l.state[e] = Untested }

// CheckEdge tests edge e against the in-circle criterion and moves it from
// Untested to Flippable or Stable. A boundary edge is always Stable. An
// exactly concyclic quad is Stable too: flipping it gains nothing and
// flip-flopping on it would break termination.
func (l *Legalizer) CheckEdge(e int) EdgeState {
	q, ok := l.quadAround(e)
	if !ok {
		l.state[e] = Stable
		return Stable
	}
	c := l.conn
	side := geom.InCircle(
		c.VertexCoord(q.a), c.VertexCoord(q.b), c.VertexCoord(q.c),
		c.VertexCoord(q.d))
	if side == geom.Inside {
		l.state[e] = Flippable
	} else {
		l.state[e] = Stable
	}
	return l.state[e]
}

// quad describes the two triangles around an interior edge e, all vertex
// references expressed in t1's periodic frame:
//
//	t1 = (a, b, c) with e joining a and b
//	t2 = (b, a, d) on the far side
type quad struct {
	t1, t2     int
	i1, i2     int // slot of e within each triangle
	a, b, c, d int
	// edges of the quad perimeter
	eBC, eCA, eAD, eDB int
}

func (l *Legalizer) quadAround(e int) (quad, bool) {
	c := l.conn
	t1, t2 := c.EdgeTri[e][0], c.EdgeTri[e][1]
	if t1 == mesh.NoTriangle || t2 == mesh.NoTriangle {
		return quad{}, false
	}
	i1 := c.EdgeSlot(t1, e)
	i2 := c.EdgeSlot(t2, e)
	if i1 < 0 || i2 < 0 {
		mesh.Throwf("edge %d borders triangles %d/%d but is missing from an edge list", e, t1, t2)
	}

	q := quad{t1: t1, t2: t2, i1: i1, i2: i2}
	q.a = c.TriVert[t1][i1]
	q.b = c.TriVert[t1][(i1+1)%3]
	q.c = c.TriVert[t1][(i1+2)%3]

	// Both triangles wind CCW, so t2 traverses e from b to a. Its copies of
	// the endpoints may sit in a different periodic frame; the alias delta on
	// the shared endpoint shifts d into t1's frame.
	b2 := c.TriVert[t2][i2]
	a2 := c.TriVert[t2][(i2+1)%3]
	if c.Reduce(b2) != c.Reduce(q.b) || c.Reduce(a2) != c.Reduce(q.a) {
		mesh.Throwf("triangles %d and %d disagree about the endpoints of edge %d", t1, t2, e)
	}
	shift := q.a - a2
	q.d = c.TriVert[t2][(i2+2)%3] + shift

	q.eBC = c.TriEdge[t1][(i1+1)%3]
	q.eCA = c.TriEdge[t1][(i1+2)%3]
	q.eAD = c.TriEdge[t2][(i2+1)%3]
	q.eDB = c.TriEdge[t2][(i2+2)%3]
	return q, true
}
