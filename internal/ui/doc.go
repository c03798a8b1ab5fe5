// Package ui provides the terminal browser for shelver.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model holds one pane per collection of the
// selected library (Audiobooks and Series for book libraries, Podcasts for
// podcast libraries) plus an optional drill-in pane listing the books of one
// series. Each pane wraps a lazyload.Loader and keeps only the last snapshot
// it was handed.
//
// # Package Structure
//
//   - app.go: Model, Update, key handling and the Run entry point
//   - pane.go: the pane interface and the generic collectionPane
//   - rows.go: per-collection columns, rows and sort cycling
//   - view.go: header, tabs, table and footer rendering
//   - help.go: keyboard shortcut overlay
//   - theme.go: color themes and derived styles
//   - keys.go: key bindings
//   - band.go: background painting for header and footer rows
//
// # Loader Notifications
//
// Loaders publish snapshots from whichever goroutine finished a fetch, and
// sometimes synchronously from inside Update (SetCriteria, Refresh). Calling
// Program.Send from Update would block, so subscriptions push into a relay
// queue that a pump goroutine forwards to the program in order. Each snapshot
// carries the loader generation; a pane drops snapshots older than the one it
// shows.
//
// # Paging
//
// After every cursor move or applied snapshot the active pane checks whether a
// visible row is within four rows of the loaded end. If so, and the collection
// is neither loading, failed nor finished, LoadMore is issued. A failed pane
// stays failed until the user presses r.
//
// # Key Bindings
//
//   - 1/2/3, tab, shift+tab: switch collection
//   - j/k, g/G, pgup/pgdown, ctrl+u/ctrl+d: move
//   - enter: open the selected series
//   - esc: leave the series or close help
//   - s: next sort order, o: toggle ascending/descending
//   - r: refresh from the first page
//   - T: cycle theme, h or ?: help, e or ctrl+c: quit
//
// Sort, direction and theme changes are written back to prefs.toml.
package ui
