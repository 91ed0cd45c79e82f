package bisect

import (
	"go.skia.org/perfbisect/bisection/go/diff"
)

// NoChangeError is returned when the bisection runs out of time without
// finding where the change is. Diff holds the evidence gathered so far: the
// two endpoints when they never differed, or the endpoints and the midpoint
// when the midpoint could not be told apart from either of them.
type NoChangeError struct {
	Message string
	Diff    *diff.Diff
}

func (e *NoChangeError) Error() string {
	return e.Message
}
