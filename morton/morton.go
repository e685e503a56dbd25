// Package morton maps 2D coordinates to keys along a Z-order space-filling
// curve. The adaptation passes sort their candidates by this key: nearby
// candidates end up far apart in processing order, which keeps the greedy
// conflict resolution from starving whole regions, and winners that do commit
// together touch nearby memory.
package morton

import "sort"

const maxCoord = 1<<16 - 1

// expand spreads the low 16 bits of v so there is a zero bit between each
// pair of adjacent bits.
func expand(v uint32) uint32 {
	v &= 0xFFFF
	v = (v | (v << 8)) & 0x00FF00FF
	v = (v | (v << 4)) & 0x0F0F0F0F
	v = (v | (v << 2)) & 0x33333333
	v = (v | (v << 1)) & 0x55555555
	return v
}

// Encode interleaves the low 16 bits of x and y into a single key.
func Encode(x, y uint32) uint32 {
	return expand(x) | (expand(y) << 1)
}

// Key quantizes a coordinate within the bounding box [minX,maxX]x[minY,maxY]
// onto a 16-bit grid and returns its Morton key. Coordinates outside the box
// are clamped.
func Key(x, y, minX, minY, maxX, maxY float64) uint32 {
	return Encode(quantize(x, minX, maxX), quantize(y, minY, maxY))
}

func quantize(v, lo, hi float64) uint32 {
	if hi <= lo {
		return 0
	}
	t := (v - lo) / (hi - lo)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return uint32(t * maxCoord)
}

// Order sorts the index slice ids so that the associated keys are ascending.
// Ties break on the index itself, keeping the order deterministic for
// coincident points.
func Order(ids []int, key func(int) uint32) {
	sort.Slice(ids, func(i, j int) bool {
		ki, kj := key(ids[i]), key(ids[j])
		if ki != kj {
			return ki < kj
		}
		return ids[i] < ids[j]
	})
}
