package adaptmesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osuushi/adaptmesh/batch"
	"github.com/osuushi/adaptmesh/geom"
)

func init() {
	batch.SetBackend(batch.Sequential)
}

func TestStructuredPeriodicGrid(t *testing.T) {
	m, err := NewStructured(16, 16, UnitSquare(true), DefaultOptions())
	require.NoError(t, err)
	conn := m.Conn()
	assert.Equal(t, 256, conn.NVertex())
	assert.Equal(t, 512, conn.NTriangle())
	assert.Equal(t, 768, conn.NEdge())
	require.NoError(t, m.Check())
}

func TestNoOpRefineLeavesMeshIdentical(t *testing.T) {
	m, err := NewStructured(16, 16, UnitSquare(true), DefaultOptions())
	require.NoError(t, err)
	conn := m.Conn()
	coords := append([]Point(nil), conn.Coords...)
	tv := append([][3]int(nil), conn.TriVert...)
	te := append([][3]int(nil), conn.TriEdge...)
	et := append([][2]int(nil), conn.EdgeTri...)

	inserted, err := m.RequestRefine(make([]bool, conn.NTriangle()))
	require.NoError(t, err)
	assert.Zero(t, inserted)
	assert.Equal(t, 512, conn.NTriangle())
	assert.Equal(t, coords, conn.Coords)
	assert.Equal(t, tv, conn.TriVert)
	assert.Equal(t, te, conn.TriEdge)
	assert.Equal(t, et, conn.EdgeTri)
}

func TestNewFromFixtures(t *testing.T) {
	domain := Domain{Min: Point{X: 0, Y: 0}, Max: Point{X: 100, Y: 100}}
	for _, name := range []string{"diamond", "scatter"} {
		t.Run(name, func(t *testing.T) {
			points := LoadFixture(name)
			m, err := New(points, domain, DefaultOptions())
			require.NoError(t, err)
			conn := m.Conn()
			// The four domain corners join the point set.
			assert.Equal(t, len(points)+4, conn.NVertex())
			assert.Equal(t, 1, conn.NVertex()-conn.NEdge()+conn.NTriangle())
			require.NoError(t, m.Check())
			for tri := 0; tri < conn.NTriangle(); tri++ {
				a, b, p := conn.TriangleCoords(tri)
				assert.Equal(t, geom.Left, geom.Orient(a, b, p), "triangle %d winding", tri)
			}
		})
	}
}

func TestNewRejectsPeriodicDomain(t *testing.T) {
	_, err := New([]Point{{X: 0.5, Y: 0.5}}, UnitSquare(true), DefaultOptions())
	assert.Error(t, err)
}

func TestStateFollowsAdaptation(t *testing.T) {
	m, err := NewStructured(4, 4, UnitSquare(false), DefaultOptions())
	require.NoError(t, err)
	conn := m.Conn()

	initial := make([]float64, conn.NVertex())
	total := 0.0
	for v := range initial {
		initial[v] = 1 + float64(v)/10
		total += initial[v]
	}
	state := NewScalarState(initial)
	m.AttachState(state)

	want := make([]bool, conn.NTriangle())
	want[5] = true
	inserted, err := m.RequestRefine(want)
	require.NoError(t, err)
	require.Equal(t, 1, inserted)
	require.Len(t, state.Values, conn.NVertex())
	totalAfterInsert := 0.0
	for _, s := range state.Values {
		totalAfterInsert += s
	}

	// Remove the vertex that was just inserted; the scalar total from
	// before the removal survives the redistribution.
	newV := conn.NVertex() - 1
	wantC := make([]bool, conn.NTriangle())
	for tri := 0; tri < conn.NTriangle(); tri++ {
		for _, v := range conn.TriVert[tri] {
			if conn.Reduce(v) == newV {
				wantC[tri] = true
				break
			}
		}
	}
	removed, err := m.RequestCoarsen(wantC)
	require.NoError(t, err)
	require.Equal(t, 1, removed)
	require.Len(t, state.Values, conn.NVertex())

	got := 0.0
	for _, s := range state.Values {
		got += s
	}
	assert.InDelta(t, totalAfterInsert, got, 1e-9)
	assert.Len(t, state.Values, len(initial))
}

func TestAdaptByError(t *testing.T) {
	t.Run("refines above MaxError", func(t *testing.T) {
		opts := DefaultOptions()
		opts.MaxError = 1.0
		opts.MinError = 0.0
		m, err := NewStructured(4, 4, UnitSquare(false), opts)
		require.NoError(t, err)
		conn := m.Conn()
		v0 := conn.NVertex()

		estimate := make([]float64, conn.NTriangle())
		estimate[3] = 2.5
		delta, err := m.AdaptByError(estimate)
		require.NoError(t, err)
		assert.Greater(t, delta, 0)
		assert.Equal(t, v0+delta, conn.NVertex())
	})

	t.Run("coarsens below MinError", func(t *testing.T) {
		opts := DefaultOptions()
		opts.MaxError = 10.0
		opts.MinError = 0.5
		m, err := NewStructured(4, 4, UnitSquare(false), opts)
		require.NoError(t, err)
		conn := m.Conn()
		v0 := conn.NVertex()

		estimate := make([]float64, conn.NTriangle())
		batch.Fill(estimate, 0.1)
		delta, err := m.AdaptByError(estimate)
		require.NoError(t, err)
		assert.Less(t, delta, 0)
		assert.Equal(t, v0+delta, conn.NVertex())
		require.NoError(t, m.Check())
	})

	t.Run("respects the refine cadence", func(t *testing.T) {
		opts := DefaultOptions()
		opts.MaxError = 1.0
		opts.RefineEvery = 2
		opts.CoarsenEvery = 1000 // effectively off for this test
		m, err := NewStructured(4, 4, UnitSquare(false), opts)
		require.NoError(t, err)
		conn := m.Conn()

		estimate := make([]float64, conn.NTriangle())
		estimate[0] = 5.0
		delta, err := m.AdaptByError(estimate)
		require.NoError(t, err)
		assert.Zero(t, delta, "first request is skipped")

		estimate = make([]float64, conn.NTriangle())
		estimate[0] = 5.0
		delta, err = m.AdaptByError(estimate)
		require.NoError(t, err)
		assert.Greater(t, delta, 0, "second request fires")
	})

	t.Run("rejects a mis-sized estimate", func(t *testing.T) {
		m, err := NewStructured(2, 2, UnitSquare(false), DefaultOptions())
		require.NoError(t, err)
		_, err = m.AdaptByError(make([]float64, 3))
		assert.Error(t, err)
	})
}

func TestCheckReportsCorruption(t *testing.T) {
	m, err := NewStructured(2, 2, UnitSquare(false), DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, m.Check())

	// Break the mutual containment between a triangle and its edge.
	m.Conn().TriEdge[0][0] = m.Conn().TriEdge[1][1]
	assert.Error(t, m.Check())
}

func TestLegalizeAfterVertexMove(t *testing.T) {
	m, err := NewStructured(4, 4, UnitSquare(false), DefaultOptions())
	require.NoError(t, err)
	conn := m.Conn()

	// Nudge an interior vertex enough to invalidate nearby circumcircles.
	v := 2*5 + 2
	require.Equal(t, Point{X: 0.5, Y: 0.5}, conn.Coords[v])
	conn.Coords[v] = Point{X: 0.58, Y: 0.41}
	require.NoError(t, m.Legalize())
	require.NoError(t, m.Check())

	for tri := 0; tri < conn.NTriangle(); tri++ {
		a, b, p := conn.TriangleCoords(tri)
		for w := 0; w < conn.NVertex(); w++ {
			tv := conn.TriVert[tri]
			if w == conn.Reduce(tv[0]) || w == conn.Reduce(tv[1]) || w == conn.Reduce(tv[2]) {
				continue
			}
			assert.NotEqual(t, geom.Inside, geom.InCircle(a, b, p, conn.Coords[w]),
				"vertex %d invades the circumcircle of triangle %d", w, tri)
		}
	}
}
