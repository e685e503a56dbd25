package mesh

import "github.com/pkg/errors"

// Threading errors up through every pass and repair step would bury the
// geometry in plumbing. Instead, internal-invariant violations panic with a
// typed error, and the public API recovers and converts to an error. A
// TopologyError always indicates an algorithmic defect, never a recoverable
// runtime state, so aborting the whole operation is the right response.

type TopologyError error

// Throwf panics with a TopologyError.
func Throwf(format string, args ...interface{}) {
	panic(TopologyError(errors.Errorf(format, args...)))
}

// HandleAdaptPanicRecover converts a recovered TopologyError into a plain
// error, and re-panics anything else. Use it in a deferred recover at the API
// boundary.
func HandleAdaptPanicRecover(r interface{}) error {
	if r != nil {
		if topoErr, ok := r.(TopologyError); ok {
			return topoErr
		}
		panic(r)
	}
	return nil
}
