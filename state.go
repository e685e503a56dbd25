package adaptmesh

import (
	"github.com/osuushi/adaptmesh/batch"
)

// VertexState carries one payload record per vertex and keeps the slice
// aligned with the mesh as vertices come and go. The record type is fixed
// for the life of the run; a flow solver typically attaches one state per
// conserved quantity, or a single [4]float64 record for density, momentum
// and energy together. Lerp fills in the record of an inserted vertex from
// its enclosing triangle; Merge folds a removed vertex's record into its
// collapse target, which is where a conservation property, if any, is
// enforced.
type VertexState[T any] struct {
	Values []T
	Lerp   func(enclosing [3]T, weights [3]float64) T
	Merge  func(removed, target T) T
}

func NewVertexState[T any](
	initial []T,
	lerp func(enclosing [3]T, weights [3]float64) T,
	merge func(removed, target T) T,
) *VertexState[T] {
	return &VertexState[T]{Values: initial, Lerp: lerp, Merge: merge}
}

func (s *VertexState[T]) Insert(v int, enclosing [3]int, weights [3]float64) {
	rec := s.Lerp([3]T{
		s.Values[enclosing[0]],
		s.Values[enclosing[1]],
		s.Values[enclosing[2]],
	}, weights)
	// Inserted vertices are always appended, so v should land at the end.
	if v != len(s.Values) {
		s.Values = append(s.Values, make([]T, v+1-len(s.Values))...)
		s.Values[v] = rec
		return
	}
	s.Values = append(s.Values, rec)
}

func (s *VertexState[T]) Remove(v, target int) {
	var zero T
	s.Values[target] = s.Merge(s.Values[v], s.Values[target])
	s.Values[v] = zero
}

func (s *VertexState[T]) Renumber(remap []int) {
	count := 0
	for _, nv := range remap {
		if nv != batch.Deleted {
			count++
		}
	}
	s.Values = batch.Compact(s.Values, remap, count)
}

// NewScalarState is the common case: one float64 per vertex, linearly
// interpolated on insertion and summed into the target on removal, so the
// total over all vertices is preserved through coarsening.
func NewScalarState(initial []float64) *VertexState[float64] {
	return NewVertexState(initial,
		func(enc [3]float64, w [3]float64) float64 {
			return w[0]*enc[0] + w[1]*enc[1] + w[2]*enc[2]
		},
		func(removed, target float64) float64 {
			return removed + target
		},
	)
}
