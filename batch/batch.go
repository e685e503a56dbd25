// Package batch provides the bulk-array primitives the adaptation passes are
// written against: apply-a-function-over-an-index-range, fill, select, and
// exclusive-scan stream compaction.
//
// Every pass in this module is a "wide" pass: the same function applied
// independently to each element, reading mesh state as of the start of the
// pass. ForEach can therefore run the elements in any order, and it has two
// interchangeable backends: a plain sequential loop, and a fan-out across
// worker goroutines. Algorithms written on top must not depend on intra-pass
// ordering; the only sanctioned cross-element communication inside a pass is
// the AtomicMin ownership claim, whose result (the minimum) is order
// independent.
package batch

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Backend selects how ForEach runs a pass.
type Backend int

const (
	Sequential Backend = iota
	Parallel
)

var active atomic.Int32

// SetBackend switches the execution backend for subsequent passes. The
// default is Parallel. Passes already in flight are unaffected.
func SetBackend(b Backend) {
	active.Store(int32(b))
}

func init() {
	SetBackend(Parallel)
}

// ForEach calls f(i) for every i in [0, n) and returns when all calls have
// completed. Under the parallel backend the calls are spread over
// GOMAXPROCS goroutines in contiguous chunks.
func ForEach(n int, f func(i int)) {
	if n <= 0 {
		return
	}
	if Backend(active.Load()) == Sequential {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				f(i)
			}
		}(lo, hi)
	}
	wg.Wait()
}

// AtomicMin lowers *slot to v if v is smaller. It is safe from concurrent
// pass elements; whatever the interleaving, the slot ends the pass holding
// the minimum claimed value. This is the single-writer-wins mechanism used
// for triangle ownership.
func AtomicMin(slot *int32, v int32) {
	for {
		cur := atomic.LoadInt32(slot)
		if cur <= v {
			return
		}
		if atomic.CompareAndSwapInt32(slot, cur, v) {
			return
		}
	}
}

// Fill sets every element of xs to v.
func Fill[T any](xs []T, v T) {
	for i := range xs {
		xs[i] = v
	}
}

// Select returns the indices in [0, n) for which pred is true, in ascending
// order, along with their count.
func Select(n int, pred func(i int) bool) ([]int, int) {
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if pred(i) {
			out = append(out, i)
		}
	}
	return out, len(out)
}
