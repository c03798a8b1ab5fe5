package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/shelver/internal/abs"
)

// offlineAfter is the number of consecutive failed checks after which the
// server is shown as offline.
const offlineAfter = 2

// Snapshot is the server connectivity as last observed.
type Snapshot struct {
	Status    abs.StatusResponse
	Known     bool          // a check has succeeded at least once
	CheckedAt time.Time     // last check, successful or not
	LastSeen  time.Time     // last successful check
	RTT       time.Duration // round trip of the last successful check
	Err       error         // error of the last check, nil after a success
	Failures  int           // consecutive failed checks
}

// Offline reports whether enough checks in a row have failed.
func (s Snapshot) Offline() bool {
	return s.Failures >= offlineAfter
}

// OfflineFor is how long the server has not answered, zero while online.
func (s Snapshot) OfflineFor(now time.Time) time.Duration {
	if !s.Offline() || s.LastSeen.IsZero() {
		return 0
	}
	return now.Sub(s.LastSeen)
}

// Store holds the connectivity snapshot shared by the poller and the UI.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
}

// Online records a successful check.
func (s *Store) Online(status abs.StatusResponse, rtt time.Duration) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = Snapshot{
		Status:    status,
		Known:     true,
		CheckedAt: now,
		LastSeen:  now,
		RTT:       rtt,
	}
}

// Failed records a failed check. The last known status is kept.
func (s *Store) Failed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.CheckedAt = time.Now()
	s.snap.Err = err
	s.snap.Failures++
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.snap
	if snap.Err != nil {
		snap.Err = fmt.Errorf("%w", snap.Err)
	}
	return snap
}
