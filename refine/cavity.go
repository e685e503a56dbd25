package refine

import (
	"github.com/osuushi/adaptmesh/geom"
	"github.com/osuushi/adaptmesh/mesh"
)

// A cavity is computed against the mesh as it stood at the start of a pass,
// entirely read-only, so candidates can be prepared in parallel. All vertex
// references collected here are stored frame-independently as (base, tx, ty)
// triples: the vertex count changes when the winners' points are added, which
// re-encodes every alias in the connectivity tables, and a raw reference
// captured before that would silently decode to garbage after.

const (
	maxWalk   = 1 << 12
	maxCavity = 64
)

// vref is a frame-independent vertex reference.
type vref struct {
	base, tx, ty int
}

func makeVref(c *mesh.Connectivity, v, dtx, dty int) vref {
	tx, ty := c.AliasOffsets(v)
	return vref{base: c.Reduce(v), tx: tx + dtx, ty: ty + dty}
}

func (r vref) encode(c *mesh.Connectivity) int {
	if r.tx < -1 || r.tx > 1 || r.ty < -1 || r.ty > 1 {
		mesh.Throwf("vertex %d is translated beyond the neighboring period (tx=%d ty=%d)",
			r.base, r.tx, r.ty)
	}
	return c.MakeAlias(r.base, r.tx, r.ty)
}

func (r vref) coord(c *mesh.Connectivity) geom.Point {
	p := c.Coords[r.base]
	p.X += float64(r.tx) * c.Domain.Width()
	p.Y += float64(r.ty) * c.Domain.Height()
	return p
}

// cavityTri pairs a triangle with the translation taking its periodic frame
// into the insertion point's frame.
type cavityTri struct {
	t        int
	dtx, dty int
}

// rim is one directed edge of the cavity boundary, running counterclockwise
// around the insertion point. inside is the cavity triangle it came from;
// fan is false when the point lies on the edge itself, which only happens
// when a midpoint insertion splits a domain boundary edge.
type rim struct {
	u, w   vref
	e      int
	inside int
	fan    bool
}

type candidate struct {
	seed  int
	rank  int32
	point geom.Point

	cavity    []cavityTri
	boundary  []rim
	enclosing [3]int
	weights   [3]float64

	ok bool
}

// frameCoord returns the coordinate of v translated by (dtx, dty) domain
// units on top of whatever alias translation v already carries.
func frameCoord(c *mesh.Connectivity, v, dtx, dty int) geom.Point {
	p := c.VertexCoord(v)
	p.X += float64(dtx) * c.Domain.Width()
	p.Y += float64(dty) * c.Domain.Height()
	return p
}

// crossShift computes the frame translation of the neighbor x reached from
// triangle t (carrying shift dtx, dty) across the edge at slot i. The shared
// edge is traversed in opposite directions by the two triangles, so t's slot
// end vertex is x's slot start vertex.
func crossShift(c *mesh.Connectivity, t, i, dtx, dty, x int) (int, int) {
	e := c.TriEdge[t][i]
	j := c.EdgeSlot(x, e)
	if j < 0 {
		mesh.Throwf("edge %d missing from its incident triangle %d", e, x)
	}
	vt := c.TriVert[t][(i+1)%3]
	vx := c.TriVert[x][j]
	if c.Reduce(vt) != c.Reduce(vx) {
		mesh.Throwf("triangles %d and %d disagree on the endpoints of edge %d", t, x, e)
	}
	txT, tyT := c.AliasOffsets(vt)
	txX, tyX := c.AliasOffsets(vx)
	return dtx + txT - txX, dty + tyT - tyX
}

// locate walks from the seed triangle toward p, crossing each edge that has
// p strictly on its outward side. It returns the containing triangle and the
// frame shift accumulated along the way. ok is false when the walk leaves the
// mesh through a boundary edge or fails to settle.
func locate(c *mesh.Connectivity, alive []bool, seed int, p geom.Point) (t, dtx, dty int, ok bool) {
	t = seed
	for step := 0; step < maxWalk; step++ {
		crossed := false
		for i := 0; i < 3; i++ {
			u := frameCoord(c, c.TriVert[t][i], dtx, dty)
			w := frameCoord(c, c.TriVert[t][(i+1)%3], dtx, dty)
			if geom.Orient(u, w, p) != geom.Right {
				continue
			}
			x := c.NeighborAcross(t, i)
			if x == mesh.NoTriangle || (alive != nil && !alive[x]) {
				return 0, 0, 0, false
			}
			dtx, dty = crossShift(c, t, i, dtx, dty, x)
			t = x
			crossed = true
			break
		}
		if !crossed {
			return t, dtx, dty, true
		}
	}
	return 0, 0, 0, false
}

// carve grows the cavity of p outward from the containing triangle: a
// neighbor joins whenever p falls strictly inside its circumcircle. The rim
// is emitted counterclockwise per triangle; a rim edge with p on its far side
// means the cavity is not star shaped around p and the candidate is dropped.
func carve(c *mesh.Connectivity, alive []bool, tc, dtx, dty int, p geom.Point) (cav []cavityTri, bound []rim, ok bool) {
	seen := map[int]cavityTri{tc: {t: tc, dtx: dtx, dty: dty}}
	queue := []cavityTri{{t: tc, dtx: dtx, dty: dty}}
	cav = append(cav, queue[0])

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for i := 0; i < 3; i++ {
			x := c.NeighborAcross(cur.t, i)
			if x != mesh.NoTriangle && (alive == nil || alive[x]) {
				if _, done := seen[x]; done {
					continue
				}
				xtx, xty := crossShift(c, cur.t, i, cur.dtx, cur.dty, x)
				a := frameCoord(c, c.TriVert[x][0], xtx, xty)
				b := frameCoord(c, c.TriVert[x][1], xtx, xty)
				q := frameCoord(c, c.TriVert[x][2], xtx, xty)
				if geom.InCircle(a, b, q, p) == geom.Inside {
					ct := cavityTri{t: x, dtx: xtx, dty: xty}
					seen[x] = ct
					cav = append(cav, ct)
					if len(cav) > maxCavity {
						return nil, nil, false
					}
					queue = append(queue, ct)
				}
			}
		}
	}

	for _, ct := range cav {
		for i := 0; i < 3; i++ {
			x := c.NeighborAcross(ct.t, i)
			if x != mesh.NoTriangle {
				if _, inCav := seen[x]; inCav {
					continue
				}
			}
			u := makeVref(c, c.TriVert[ct.t][i], ct.dtx, ct.dty)
			w := makeVref(c, c.TriVert[ct.t][(i+1)%3], ct.dtx, ct.dty)
			side := geom.Orient(u.coord(c), w.coord(c), p)
			if side == geom.Right {
				return nil, nil, false
			}
			if side == geom.Collinear && x != mesh.NoTriangle {
				// p on an interior chord would have pulled x into the
				// cavity; landing here means p is outside the segment.
				return nil, nil, false
			}
			bound = append(bound, rim{
				u: u, w: w,
				e:      c.TriEdge[ct.t][i],
				inside: ct.t,
				fan:    side != geom.Collinear,
			})
		}
	}
	return cav, bound, true
}

// barycentric returns the weights of p with respect to triangle (a, b, q).
func barycentric(a, b, q, p geom.Point) [3]float64 {
	d := (b.Y-q.Y)*(a.X-q.X) + (q.X-b.X)*(a.Y-q.Y)
	if d == 0 {
		return [3]float64{1, 0, 0}
	}
	wa := ((b.Y-q.Y)*(p.X-q.X) + (q.X-b.X)*(p.Y-q.Y)) / d
	wb := ((q.Y-a.Y)*(p.X-q.X) + (a.X-q.X)*(p.Y-q.Y)) / d
	return [3]float64{wa, wb, 1 - wa - wb}
}

// prepare fills in the cavity, rim, and interpolation data of a candidate
// whose insertion point is already set in the seed triangle's frame. The
// point is then wrapped into the domain box, shifting every collected
// reference to match. alive masks triangles already consumed by an earlier
// commit in the same batch; nil means all triangles are live.
func prepare(c *mesh.Connectivity, alive []bool, cand *candidate, p geom.Point) {
	cand.ok = false

	tc, dtx, dty, ok := locate(c, alive, cand.seed, p)
	if !ok {
		return
	}

	// Inserting on top of an existing vertex would fan out zero-area
	// triangles; drop the candidate instead.
	for i := 0; i < 3; i++ {
		if frameCoord(c, c.TriVert[tc][i], dtx, dty) == p {
			return
		}
	}

	cav, bound, ok := carve(c, alive, tc, dtx, dty, p)
	if !ok {
		return
	}

	a := frameCoord(c, c.TriVert[tc][0], dtx, dty)
	b := frameCoord(c, c.TriVert[tc][1], dtx, dty)
	q := frameCoord(c, c.TriVert[tc][2], dtx, dty)
	cand.weights = barycentric(a, b, q, p)
	for i := 0; i < 3; i++ {
		cand.enclosing[i] = c.Reduce(c.TriVert[tc][i])
	}

	wrapped, dwx, dwy, inDomain := wrapPoint(c.Domain, p)
	if !inDomain {
		return
	}
	if dwx != 0 || dwy != 0 {
		for i := range bound {
			bound[i].u.tx += dwx
			bound[i].u.ty += dwy
			bound[i].w.tx += dwx
			bound[i].w.ty += dwy
		}
	}

	cand.point = wrapped
	cand.cavity = cav
	cand.boundary = bound
	cand.ok = true
}

// wrapPoint translates p by whole domain widths until it lies inside the
// box. Translation is only available on periodic axes; a point off the box
// on a bounded axis reports !ok.
func wrapPoint(d mesh.Domain, p geom.Point) (q geom.Point, dwx, dwy int, ok bool) {
	q = p
	for q.X < d.Min.X {
		if !d.PeriodicX {
			return q, 0, 0, false
		}
		q.X += d.Width()
		dwx++
	}
	for q.X >= d.Max.X {
		if !d.PeriodicX {
			// Sitting exactly on the closed upper boundary is fine.
			if q.X == d.Max.X {
				break
			}
			return q, 0, 0, false
		}
		q.X -= d.Width()
		dwx--
	}
	for q.Y < d.Min.Y {
		if !d.PeriodicY {
			return q, 0, 0, false
		}
		q.Y += d.Height()
		dwy++
	}
	for q.Y >= d.Max.Y {
		if !d.PeriodicY {
			if q.Y == d.Max.Y {
				break
			}
			return q, 0, 0, false
		}
		q.Y -= d.Height()
		dwy--
	}
	return q, dwx, dwy, true
}
