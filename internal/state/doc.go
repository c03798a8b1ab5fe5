// Package state provides thread-safe server connectivity state for shelver.
//
// # Overview
//
// The background poller pings the Audiobookshelf /status endpoint and records
// each result here; the UI reads snapshots on its own tick to draw the
// connection badge. Collection data does not live here: each collection
// loader owns and publishes its own state.
//
// # Architecture
//
//	Producer (Poller):             Consumer (UI):
//	┌────────────────┐            ┌─────────────────┐
//	│ FetchStatus()  │            │                 │
//	│      ↓         │            │                 │
//	│ Online/Failed  │───────────→│ store.Snapshot()│
//	│      ↓         │  (mutex)   │      ↓          │
//	│  wait/backoff  │            │  render badge   │
//	└────────────────┘            └─────────────────┘
//
// # Update Semantics
//
//	store.Online(status, rtt)  // replace status, reset failure count
//	store.Failed(err)          // keep status and LastSeen, count failure
//
// Two or more consecutive failures mark the server offline (Offline); the
// header then shows how long ago the server last answered. The poller also
// uses the failure count to back off.
//
// # Concurrency Model
//
// Online and Failed take the write lock; Snapshot takes the read lock and returns a copy
// with the error re-wrapped, so callers never share mutable state with the
// store.
package state
