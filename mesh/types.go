package mesh

import "github.com/osuushi/adaptmesh/geom"

// NoTriangle is the sentinel for an empty incident-triangle slot in the
// edge-triangle table. An edge with one NoTriangle slot lies on the domain
// boundary.
const NoTriangle = -1

// Domain is the bounding box of the mesh with optional periodic wrapping.
// Periodic axes glue the opposing sides together; vertex indices then alias
// across the seam (see Reduce).
type Domain struct {
	Min, Max  geom.Point
	PeriodicX bool
	PeriodicY bool
}

func (d Domain) Width() float64  { return d.Max.X - d.Min.X }
func (d Domain) Height() float64 { return d.Max.Y - d.Min.Y }

// Connectivity owns every topology array of the mesh. The layout is flat and
// index based throughout:
//
//   - Coords[v] is the coordinate of vertex v.
//   - TriVert[t] is the CCW-ordered vertex triple of triangle t. Entries may
//     be periodic aliases (out of [0, NVertex) range); reduce them before
//     using them as a subscript.
//   - TriEdge[t][i] is the edge between TriVert[t][i] and TriVert[t][(i+1)%3].
//   - EdgeTri[e] holds the (at most two) triangles incident to edge e, in no
//     particular order, with NoTriangle filling empty slots.
//
// TriEdge and EdgeTri must mirror each other: e appears in TriEdge[t] exactly
// when t appears in EdgeTri[e]. The flip, insertion and removal passes may
// break that agreement transiently, but every public operation restores it
// before returning; Check enforces it.
//
// EdgeLength, EdgeNormal and Quality are derived from the coordinates by
// DeriveGeometry and are only meaningful after it has run against the current
// topology.
type Connectivity struct {
	Coords  []geom.Point
	TriVert [][3]int
	TriEdge [][3]int
	EdgeTri [][2]int

	Domain Domain

	EdgeLength [][3]float64
	EdgeNormal  [][3]geom.Point
	Quality     []float64
}

func (c *Connectivity) NVertex() int   { return len(c.Coords) }
func (c *Connectivity) NTriangle() int { return len(c.TriVert) }
func (c *Connectivity) NEdge() int     { return len(c.EdgeTri) }
