// Adaptive unstructured triangular meshes for Go.
//
// This package maintains a Delaunay triangulation of a rectangular domain,
// optionally periodic in either axis, and adapts it under caller control:
// triangles flagged for refinement receive new vertices through cavity
// insertion, and vertices whose surrounding triangles are all flagged for
// coarsening are removed by edge collapse. Vertex-borne state follows the
// mesh through both operations via attachable hooks.
package adaptmesh

import (
	"github.com/pkg/errors"

	"github.com/osuushi/adaptmesh/coarsen"
	"github.com/osuushi/adaptmesh/delaunay"
	"github.com/osuushi/adaptmesh/geom"
	"github.com/osuushi/adaptmesh/mesh"
	"github.com/osuushi/adaptmesh/refine"
)

type Point = geom.Point
type Domain = mesh.Domain
type Connectivity = mesh.Connectivity

// UnitSquare is the [0,1]x[0,1] domain, periodic in both axes when periodic
// is true.
func UnitSquare(periodic bool) Domain { return mesh.UnitSquare(periodic) }

type Options struct {
	// QualityBound defers insertions that would create a triangle with a
	// circumradius-to-shortest-edge ratio above the bound. Zero disables
	// the screen. An equilateral triangle scores 1/sqrt(3).
	QualityBound float64

	// MinEdge stops refinement of any triangle whose shortest edge has
	// reached it; MaxEdge stops coarsening from creating longer edges.
	// Zero disables either cap.
	MinEdge float64
	MaxEdge float64

	// MinError and MaxError are the thresholds used by AdaptByError: a
	// triangle is refined above MaxError and coarsened below MinError.
	MinError float64
	MaxError float64

	// RefineEvery and CoarsenEvery skip all but every n-th by-error
	// request, letting coarsening run on a slower cadence than
	// refinement. Zero and one both mean every request.
	RefineEvery  int
	CoarsenEvery int

	MaxRefinePasses  int
	MaxCoarsenCycles int
	MaxFlipSweeps    int
}

func DefaultOptions() Options {
	return Options{
		QualityBound:     2.0,
		MaxRefinePasses:  64,
		MaxCoarsenCycles: 64,
		MaxFlipSweeps:    256,
	}
}

// State follows vertex-borne data through mesh adaptation. Insert fires once
// per new vertex with its enclosing triangle's vertices and barycentric
// weights; Remove fires before renumbering with the vertex a removal
// collapsed onto; Renumber delivers the old-to-new vertex remap of a
// coarsening cycle (batch.Deleted marks removed vertices).
type State interface {
	Insert(v int, enclosing [3]int, weights [3]float64)
	Remove(v, target int)
	Renumber(remap []int)
}

type Mesh struct {
	conn   *mesh.Connectivity
	opts   Options
	states []State

	refineCalls  int
	coarsenCalls int
}

// NewStructured builds a structured triangular grid of nx by ny cells over
// the domain, two triangles per cell.
func NewStructured(nx, ny int, d Domain, opts Options) (m *Mesh, err error) {
	defer func() {
		if recoveredErr := mesh.HandleAdaptPanicRecover(recover()); recoveredErr != nil {
			m = nil
			err = recoveredErr
		}
	}()
	return &Mesh{conn: mesh.NewStructured(nx, ny, d), opts: opts}, nil
}

// New builds a Delaunay triangulation of the given points over a bounded
// domain. The four domain corners are always part of the mesh; points
// coinciding with an existing vertex are dropped.
func New(points []Point, d Domain, opts Options) (m *Mesh, err error) {
	defer func() {
		if recoveredErr := mesh.HandleAdaptPanicRecover(recover()); recoveredErr != nil {
			m = nil
			err = recoveredErr
		}
	}()
	if d.PeriodicX || d.PeriodicY {
		return nil, errors.New("point set construction requires a bounded domain")
	}
	m = &Mesh{conn: mesh.NewStructured(1, 1, d), opts: opts}
	if _, err := refine.New(m.conn, m.refineConfig()).InsertPoints(points); err != nil {
		return nil, err
	}
	return m, nil
}

// Conn exposes the underlying connectivity tables. Callers may read freely;
// mutating them voids every invariant this package maintains.
func (m *Mesh) Conn() *Connectivity { return m.conn }

// AttachState registers a state hook. Hooks fire in attachment order.
func (m *Mesh) AttachState(s State) {
	m.states = append(m.states, s)
}

// RequestRefine inserts a vertex into each flagged triangle, honoring the
// quality bound and the minimum edge length, and restores the Delaunay
// property. want has one entry per triangle and is read, not kept. Returns
// the number of vertices inserted. With nothing flagged the connectivity is
// left untouched.
func (m *Mesh) RequestRefine(want []bool) (inserted int, err error) {
	defer func() {
		if recoveredErr := mesh.HandleAdaptPanicRecover(recover()); recoveredErr != nil {
			inserted = 0
			err = recoveredErr
		}
	}()
	return refine.New(m.conn, m.refineConfig()).Run(want)
}

// RequestCoarsen removes each vertex whose incident triangles are all
// flagged, collapsing it onto a ring neighbor, and restores the Delaunay
// property. Boundary vertices are never removed. Returns the number of
// vertices removed.
func (m *Mesh) RequestCoarsen(want []bool) (removed int, err error) {
	defer func() {
		if recoveredErr := mesh.HandleAdaptPanicRecover(recover()); recoveredErr != nil {
			removed = 0
			err = recoveredErr
		}
	}()
	return coarsen.New(m.conn, m.coarsenConfig()).Run(want)
}

// AdaptByError derives refine and coarsen intent from a per-triangle error
// estimate: triangles above MaxError are refined, triangles below MinError
// are coarsened. The skip cadences in Options apply here. Returns the net
// change in vertex count.
func (m *Mesh) AdaptByError(estimate []float64) (delta int, err error) {
	if len(estimate) != m.conn.NTriangle() {
		return 0, errors.Errorf("error estimate has %d entries for %d triangles",
			len(estimate), m.conn.NTriangle())
	}

	m.refineCalls++
	if !skip(m.refineCalls, m.opts.RefineEvery) {
		want := make([]bool, len(estimate))
		for t, e := range estimate {
			want[t] = e > m.opts.MaxError
		}
		inserted, err := m.RequestRefine(want)
		if err != nil {
			return inserted, err
		}
		delta += inserted
		// Refinement changes the triangle numbering; the estimate no
		// longer lines up, so coarsening waits for the next request.
		if inserted > 0 {
			return delta, nil
		}
	}

	m.coarsenCalls++
	if !skip(m.coarsenCalls, m.opts.CoarsenEvery) {
		want := make([]bool, len(estimate))
		for t, e := range estimate {
			want[t] = e < m.opts.MinError
		}
		removed, err := m.RequestCoarsen(want)
		if err != nil {
			return delta - removed, err
		}
		delta -= removed
	}
	return delta, nil
}

// Legalize re-establishes the Delaunay property, for callers that have moved
// vertex coordinates in place.
func (m *Mesh) Legalize() (err error) {
	defer func() {
		if recoveredErr := mesh.HandleAdaptPanicRecover(recover()); recoveredErr != nil {
			err = recoveredErr
		}
	}()
	return delaunay.NewLegalizer(m.conn).Fixpoint(m.opts.MaxFlipSweeps)
}

// Check validates the connectivity tables, returning the first
// inconsistency found.
func (m *Mesh) Check() (err error) {
	defer func() {
		err = mesh.HandleAdaptPanicRecover(recover())
	}()
	m.conn.Check()
	return nil
}

func skip(call, every int) bool {
	return every > 1 && call%every != 0
}

func (m *Mesh) refineConfig() refine.Config {
	return refine.Config{
		QualityBound:  m.opts.QualityBound,
		MinEdge:       m.opts.MinEdge,
		MaxPasses:     m.opts.MaxRefinePasses,
		MaxFlipSweeps: m.opts.MaxFlipSweeps,
		OnInsert: func(v int, enclosing [3]int, weights [3]float64) {
			for _, s := range m.states {
				s.Insert(v, enclosing, weights)
			}
		},
	}
}

func (m *Mesh) coarsenConfig() coarsen.Config {
	return coarsen.Config{
		MaxEdge:       m.opts.MaxEdge,
		MaxCycles:     m.opts.MaxCoarsenCycles,
		MaxFlipSweeps: m.opts.MaxFlipSweeps,
		OnRemove: func(v, target int) {
			for _, s := range m.states {
				s.Remove(v, target)
			}
		},
		OnCompact: func(remap []int) {
			for _, s := range m.states {
				s.Renumber(remap)
			}
		},
	}
}
