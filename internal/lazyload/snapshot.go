package lazyload

import "github.com/five82/shelver/internal/library"

// Status is the loader's position in its state machine.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusFailed
	StatusExhausted
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusFailed:
		return "failed"
	case StatusExhausted:
		return "exhausted"
	default:
		return "idle"
	}
}

// Snapshot is an immutable view of a loader's state at one instant.
type Snapshot[T any, O comparable] struct {
	Items     []T
	Count     int
	SortOrder O
	Ascending bool
	Scope     *library.Library

	Working  bool
	Failed   bool
	Finished bool
	Err      error // last fetch error, cleared on success or reset

	Generation uint64
}

// Status derives the state machine position from the flags.
func (s Snapshot[T, O]) Status() Status {
	switch {
	case s.Finished:
		return StatusExhausted
	case s.Working:
		return StatusLoading
	case s.Failed:
		return StatusFailed
	default:
		return StatusIdle
	}
}

// Remaining reports how many items the server claims exist beyond those loaded.
func (s Snapshot[T, O]) Remaining() int {
	if n := s.Count - len(s.Items); n > 0 {
		return n
	}
	return 0
}

// NearEnd reports whether row index is within threshold rows of the last
// loaded item, which is when a scrolling view should ask for more.
func (s Snapshot[T, O]) NearEnd(index, threshold int) bool {
	if len(s.Items) == 0 {
		return false
	}
	return index >= len(s.Items)-1-threshold
}
