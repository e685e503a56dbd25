package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osuushi/adaptmesh/batch"
)

func TestRemoveTrianglesKeepAll(t *testing.T) {
	c := NewStructured(3, 3, UnitSquare(false))
	before := c.NTriangle()
	keep := make([]bool, before)
	batch.Fill(keep, true)
	triRemap, edgeRemap := c.RemoveTriangles(keep)
	assert.Equal(t, before, c.NTriangle())
	for i, r := range triRemap {
		assert.Equal(t, i, r)
	}
	for i, r := range edgeRemap {
		assert.Equal(t, i, r)
	}
	c.Check()
}

func TestRemoveTrianglesCorner(t *testing.T) {
	c := NewStructured(3, 3, UnitSquare(false))
	nTri := c.NTriangle()
	nEdge := c.NEdge()

	// Drop the two triangles of the corner cell. The diagonal between them
	// and the cell's two domain-boundary edges lose their last triangle and
	// must disappear; the two edges shared with neighbor cells survive as
	// new boundary.
	keep := make([]bool, nTri)
	batch.Fill(keep, true)
	keep[0] = false
	keep[1] = false
	cellEdges := map[int]bool{}
	for _, e := range c.TriEdge[0] {
		cellEdges[e] = true
	}
	for _, e := range c.TriEdge[1] {
		cellEdges[e] = true
	}
	require.Len(t, cellEdges, 5)

	triRemap, edgeRemap := c.RemoveTriangles(keep)
	assert.Equal(t, nTri-2, c.NTriangle())
	assert.Equal(t, nEdge-3, c.NEdge())
	assert.Equal(t, batch.Deleted, triRemap[0])
	assert.Equal(t, batch.Deleted, triRemap[1])
	orphans := 0
	for _, r := range edgeRemap {
		if r == batch.Deleted {
			orphans++
		}
	}
	assert.Equal(t, 3, orphans)
	c.Check()
}

func TestRemoveVerticesRenumbers(t *testing.T) {
	c := NewStructured(3, 3, UnitSquare(false))

	// Remove the last vertex (the far corner) along with its incident
	// triangles, then verify the renumbering left a consistent mesh.
	corner := c.NVertex() - 1
	keepTri := make([]bool, c.NTriangle())
	for tri := range keepTri {
		keepTri[tri] = true
		for _, v := range c.TriVert[tri] {
			if c.Reduce(v) == corner {
				keepTri[tri] = false
			}
		}
	}
	c.RemoveTriangles(keepTri)

	keepVert := make([]bool, c.NVertex())
	batch.Fill(keepVert, true)
	keepVert[corner] = false
	remap := c.RemoveVertices(keepVert)
	assert.Equal(t, batch.Deleted, remap[corner])
	assert.Equal(t, 15, c.NVertex())
	c.Check()
	c.DeriveGeometry()
}

func TestRemoveReferencedVertexThrows(t *testing.T) {
	c := NewStructured(2, 2, UnitSquare(false))
	keep := make([]bool, c.NVertex())
	batch.Fill(keep, true)
	keep[0] = false // still referenced by triangles
	assert.Panics(t, func() { c.RemoveVertices(keep) })
}

func TestCheckCatchesStaleTables(t *testing.T) {
	c := NewStructured(2, 2, UnitSquare(false))
	c.Check()
	// Corrupt one direction of the edge tables.
	c.TriEdge[0][0], c.TriEdge[0][1] = c.TriEdge[0][1], c.TriEdge[0][0]
	// Swapping slots keeps the sets equal, so that is still fine.
	c.Check()
	old := c.EdgeTri[0][0]
	c.EdgeTri[0][0] = 5
	assert.Panics(t, func() { c.Check() })
	c.EdgeTri[0][0] = old
}
