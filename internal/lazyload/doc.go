// Package lazyload incrementally loads server-paged collections for
// scrolling views.
//
// # Overview
//
// A Loader presents a collection that looks fully materialized to the UI
// while fetching it one page of PageSize items at a time through a
// PageFetcher. The UI calls LoadMore whenever the cursor approaches the end
// of the loaded items, Refresh to start over, and InitialLoad when a screen
// first appears.
//
// # State Machine
//
//	Idle ──LoadMore──> Loading ──full page──> Idle
//	                      │
//	                      ├──short page──> Exhausted
//	                      │
//	                      └──error──> Failed ──LoadMore/Refresh──> Loading
//
//	any  ──Refresh──> Loading
//
// A page shorter than PageSize, including an empty one, is the last page: it
// is applied and the collection marked Exhausted in one step, so the loaded
// count is a multiple of PageSize whenever the loader is not exhausted. A
// collection whose size is an exact multiple needs one extra, empty fetch.
// Later LoadMore calls do nothing. Exhausted only clears on Refresh or a
// change of sort order, direction or scope.
//
// # Concurrency
//
// Each fetch runs on its own goroutine. The "not loading, not exhausted"
// guard is evaluated by the trigger under the loader's mutex, together with
// setting the loading flag, so only one fetch can be in flight. Extra
// triggers return without effect.
//
// Every reset (Refresh, SetCriteria, SetScope) bumps a generation counter.
// Fetches remember the generation they were dispatched under and their
// results are discarded if it no longer matches, so a slow fetch started
// before a refresh can never overwrite the newer view.
//
// # Observing State
//
// Snapshot returns a consistent copy of items, count and flags. Subscribe
// delivers such a snapshot after every mutation; items, count and status are
// always updated together in a single notification.
//
// # Errors
//
// Fetch errors never escape the loader. They set Failed and are kept in
// Snapshot.Err for display; loaded items remain untouched. Nothing retries
// automatically.
package lazyload
