// Package app provides the orchestration layer for shelver.
//
// # Overview
//
// This package wires together configuration, the Audiobookshelf client, the
// collection loaders, the connectivity poller and the UI. It is the
// composition root for both the TUI and the headless CLI commands.
//
// # Components
//
//   - app.go: Run, Connect and config overrides
//   - shelf.go: per-library loaders, concurrent preload, headless Collect
//   - poller.go: background /status polling with capped backoff
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> LoadConfig()       config.toml + flag overrides
//	       ├─────> logging.File()     TUI logs go to a file
//	       ├─────> prefs.Load()       theme and sort choices
//	       ├─────> Connect()          client, version gate, library
//	       ├─────> StartPoller()      /status into state.Store
//	       ├─────> NewShelf()         loaders scoped to the library
//	       ├─────> Shelf.Preload()    first pages, concurrently
//	       └─────> ui.Run()           TUI (blocks)
//
// # Polling Behavior
//
// The poller waits the base interval (default 5 seconds) between polls and
// doubles the wait for every consecutive failure, up to 30 seconds. A poll
// cancelled by shutdown is not counted as a failure.
//
// # Error Handling
//
// Connect fails fast: an unreachable server, a rejected token, a server
// older than 2.0.0 or an unknown library all abort startup with a wrapped
// error. Preload failures do not; the affected tab opens in its failed
// state and the user retries with r.
package app
