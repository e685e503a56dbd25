package batch

// Deletion in the mesh arrays is stream compaction: build an old-to-new index
// remap with one exclusive scan over the keep mask, then rewrite every
// dependent array in a single pass through that remap. Nothing is ever
// deleted iteratively.

// Deleted is the remap entry for an element that did not survive compaction.
const Deleted = -1

// ExclusiveScan returns the old-to-new remap for the keep mask and the number
// of survivors. remap[i] is the compacted index of element i if keep[i], and
// Deleted otherwise.
func ExclusiveScan(keep []bool) (remap []int, count int) {
	remap = make([]int, len(keep))
	for i, k := range keep {
		if k {
			remap[i] = count
			count++
		} else {
			remap[i] = Deleted
		}
	}
	return remap, count
}

// Compact moves the kept elements of xs to the front, per the remap from
// ExclusiveScan, and returns the shortened slice (sharing xs's storage).
func Compact[T any](xs []T, remap []int, count int) []T {
	for old, idx := range remap {
		if idx != Deleted {
			xs[idx] = xs[old]
		}
	}
	return xs[:count]
}
