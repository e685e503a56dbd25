package refine

import (
	"github.com/pkg/errors"

	"github.com/osuushi/adaptmesh/delaunay"
	"github.com/osuushi/adaptmesh/geom"
	"github.com/osuushi/adaptmesh/morton"
)

// InsertPoints builds the point cloud into the mesh one cavity at a time, in
// Morton order so consecutive insertions land near each other and the point
// location walk stays short. Triangles consumed by a cavity are only masked
// out; the single compaction happens after the last insertion, followed by a
// flip fixpoint. Points that coincide with an existing vertex are dropped.
// Returns the number of vertices actually inserted.
func (r *Refiner) InsertPoints(points []geom.Point) (int, error) {
	c := r.conn
	if len(points) == 0 {
		return 0, nil
	}

	order := make([]int, len(points))
	for i := range order {
		order[i] = i
	}
	morton.Order(order, func(i int) uint32 {
		p := points[i]
		return morton.Key(p.X, p.Y, c.Domain.Min.X, c.Domain.Min.Y, c.Domain.Max.X, c.Domain.Max.Y)
	})

	alive := extendKeep(c)
	inserted := 0
	seed := 0
	for _, i := range order {
		p := points[i]
		if _, _, _, ok := wrapPoint(c.Domain, p); !ok {
			return inserted, errors.Errorf("point (%g, %g) lies outside the domain", p.X, p.Y)
		}
		cand := &candidate{seed: seed}
		prepare(c, alive, cand, p)
		if !cand.ok {
			// Duplicate of an existing vertex, or a location walk that
			// slipped off the boundary for a point sitting exactly on it.
			continue
		}
		v := c.AddVertices(cand.point)
		first := c.NTriangle()
		alive = commitOne(c, cand, v, alive)
		if r.cfg.OnInsert != nil {
			r.cfg.OnInsert(v, cand.enclosing, cand.weights)
		}
		if first < c.NTriangle() {
			seed = first
		}
		inserted++
	}

	c.Quality = nil
	c.EdgeLength = nil
	c.EdgeNormal = nil
	c.RemoveTriangles(alive)

	legal := delaunay.NewLegalizer(c)
	if err := legal.Fixpoint(r.cfg.MaxFlipSweeps); err != nil {
		return inserted, err
	}
	return inserted, nil
}
