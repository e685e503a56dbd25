package coarsen

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osuushi/adaptmesh/batch"
	"github.com/osuushi/adaptmesh/geom"
	"github.com/osuushi/adaptmesh/mesh"
	"github.com/osuushi/adaptmesh/refine"
)

func init() {
	batch.SetBackend(batch.Sequential)
}

func testConfig() Config {
	return Config{
		MaxCycles:     32,
		MaxFlipSweeps: 64,
	}
}

func assertAllCCW(t *testing.T, c *mesh.Connectivity) {
	t.Helper()
	for tri := 0; tri < c.NTriangle(); tri++ {
		a, b, p := c.TriangleCoords(tri)
		assert.Equal(t, geom.Left, geom.Orient(a, b, p), "triangle %d winding", tri)
	}
}

func fanFlags(c *mesh.Connectivity, v int) []bool {
	flags := make([]bool, c.NTriangle())
	for _, t := range vertexTriangles(c)[v] {
		flags[t] = true
	}
	return flags
}

func TestRunNoFlags(t *testing.T) {
	c := mesh.NewStructured(4, 4, mesh.UnitSquare(false))
	coords := append([]geom.Point(nil), c.Coords...)
	tv := append([][3]int(nil), c.TriVert...)

	r := New(c, testConfig())
	removed, err := r.Run(make([]bool, c.NTriangle()))
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Equal(t, coords, c.Coords)
	assert.Equal(t, tv, c.TriVert)
}

func TestRingWalk(t *testing.T) {
	c := mesh.NewStructured(4, 4, mesh.UnitSquare(false))

	t.Run("interior vertex has a closed fan", func(t *testing.T) {
		// Vertex (2,2) of the 5x5 grid sits at (0.5, 0.5).
		v := 2*5 + 2
		require.Equal(t, geom.Point{X: 0.5, Y: 0.5}, c.Coords[v])
		vt := vertexTriangles(c)
		require.Len(t, vt[v], 6)
		r, ok := walkRing(c, v, vt[v][0])
		require.True(t, ok)
		assert.Equal(t, 6, r.size())
		assert.ElementsMatch(t, vt[v], r.tris)
	})

	t.Run("boundary vertex has none", func(t *testing.T) {
		v := 2 // (0.5, 0) on the bottom edge
		require.Equal(t, geom.Point{X: 0.5, Y: 0}, c.Coords[v])
		vt := vertexTriangles(c)
		_, ok := walkRing(c, v, vt[v][0])
		assert.False(t, ok)
	})
}

func TestRemoveInteriorVertex(t *testing.T) {
	c := mesh.NewStructured(4, 4, mesh.UnitSquare(false))
	v := 2*5 + 2

	r := New(c, testConfig())
	removed, err := r.Run(fanFlags(c, v))
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	assert.Equal(t, 24, c.NVertex())
	assert.Equal(t, 30, c.NTriangle())
	assert.NotContains(t, c.Coords, geom.Point{X: 0.5, Y: 0.5})
	require.NotPanics(t, func() { c.Check() })
	assert.Equal(t, 1, c.NVertex()-c.NEdge()+c.NTriangle())
	assertAllCCW(t, c)
}

func TestBoundaryVertexNeverRemoved(t *testing.T) {
	c := mesh.NewStructured(4, 4, mesh.UnitSquare(false))
	v0 := c.NVertex()

	// Flag everything: only interior vertices may go.
	flags := make([]bool, c.NTriangle())
	batch.Fill(flags, true)
	r := New(c, testConfig())
	removed, err := r.Run(flags)
	require.NoError(t, err)
	// The 16 outline vertices of the 5x5 grid survive any amount of
	// coarsening.
	assert.Equal(t, v0-removed, c.NVertex())
	assert.GreaterOrEqual(t, c.NVertex(), 16)
	for _, p := range []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0.5, Y: 0}, {X: 0, Y: 0.5}} {
		assert.Contains(t, c.Coords, p)
	}
	require.NotPanics(t, func() { c.Check() })
	assertAllCCW(t, c)
}

func TestInsertThenCoarsenRestoresResolution(t *testing.T) {
	c := mesh.NewStructured(2, 2, mesh.UnitSquare(false))
	coords := append([]geom.Point(nil), c.Coords...)
	v0, t0, e0 := c.NVertex(), c.NTriangle(), c.NEdge()

	want := make([]bool, c.NTriangle())
	want[0] = true
	inserted, err := refine.New(c, refine.Config{MaxPasses: 8, MaxFlipSweeps: 64}).Run(want)
	require.NoError(t, err)
	require.Equal(t, 1, inserted)
	newV := c.NVertex() - 1

	removed, err := New(c, testConfig()).Run(fanFlags(c, newV))
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	assert.Equal(t, v0, c.NVertex())
	assert.Equal(t, t0, c.NTriangle())
	assert.Equal(t, e0, c.NEdge())
	sorted := func(ps []geom.Point) []geom.Point {
		out := append([]geom.Point(nil), ps...)
		sort.Slice(out, func(i, j int) bool {
			if out[i].X != out[j].X {
				return out[i].X < out[j].X
			}
			return out[i].Y < out[j].Y
		})
		return out
	}
	assert.Equal(t, sorted(coords), sorted(c.Coords))
	require.NotPanics(t, func() { c.Check() })
	assertAllCCW(t, c)
}

func TestConservationUnderCoarsening(t *testing.T) {
	c := mesh.NewStructured(4, 4, mesh.UnitSquare(false))
	state := make([]float64, c.NVertex())
	total := 0.0
	for v := range state {
		state[v] = float64(v%7) + 0.25
		total += state[v]
	}

	cfg := testConfig()
	cfg.OnRemove = func(v, target int) {
		state[target] += state[v]
		state[v] = 0
	}
	cfg.OnCompact = func(remap []int) {
		state = batch.Compact(state, remap, c.NVertex())
	}

	flags := make([]bool, c.NTriangle())
	batch.Fill(flags, true)
	removed, err := New(c, cfg).Run(flags)
	require.NoError(t, err)
	require.Greater(t, removed, 0)

	require.Len(t, state, c.NVertex())
	got := 0.0
	for _, s := range state {
		got += s
	}
	assert.InDelta(t, total, got, 1e-9)
}

func TestRunNonConvergence(t *testing.T) {
	t.Run("cycle cap cuts removal short", func(t *testing.T) {
		// 49 interior candidates can never be pairwise independent, so one
		// cycle leaves fully flagged fans behind.
		c := mesh.NewStructured(8, 8, mesh.UnitSquare(false))
		cfg := testConfig()
		cfg.MaxCycles = 1
		flags := make([]bool, c.NTriangle())
		batch.Fill(flags, true)
		removed, err := New(c, cfg).Run(flags)
		assert.ErrorIs(t, err, ErrNonConvergence)
		assert.Greater(t, removed, 0)
		require.NotPanics(t, func() { c.Check() })
		assertAllCCW(t, c)
	})

	t.Run("zero cap leaves the mesh untouched", func(t *testing.T) {
		c := mesh.NewStructured(4, 4, mesh.UnitSquare(false))
		coords := append([]geom.Point(nil), c.Coords...)
		cfg := testConfig()
		cfg.MaxCycles = 0
		flags := make([]bool, c.NTriangle())
		batch.Fill(flags, true)
		removed, err := New(c, cfg).Run(flags)
		assert.ErrorIs(t, err, ErrNonConvergence)
		assert.Zero(t, removed)
		assert.Equal(t, coords, c.Coords)
	})
}

func TestRunPeriodic(t *testing.T) {
	c := mesh.NewStructured(8, 8, mesh.UnitSquare(true))
	v0, t0 := c.NVertex(), c.NTriangle()

	cfg := testConfig()
	cfg.MaxEdge = 0.5
	flags := make([]bool, c.NTriangle())
	batch.Fill(flags, true)
	removed, err := New(c, cfg).Run(flags)
	require.NoError(t, err)
	assert.Greater(t, removed, 0)

	assert.Equal(t, v0-removed, c.NVertex())
	assert.Equal(t, t0-2*removed, c.NTriangle())
	// Still a torus.
	assert.Zero(t, c.NVertex()-c.NEdge()+c.NTriangle())
	require.NotPanics(t, func() { c.Check() })
	assertAllCCW(t, c)
}
