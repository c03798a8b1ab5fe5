package lazyload

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/five82/shelver/internal/library"
)

// PageSize is the number of items requested per fetch for every collection.
const PageSize = 100

// ErrPageOverflow is recorded when a fetcher returns more than PageSize items.
var ErrPageOverflow = errors.New("page exceeds page size")

// PageFetcher performs the remote call for one page of a collection.
// A page shorter than PageSize marks the end of the collection.
type PageFetcher[T any, O comparable] func(ctx context.Context, page int, order O, ascending bool, scope *library.Library) ([]T, int, error)

// Loader incrementally materializes a server-paged collection. At most one
// fetch is in flight at a time and results from superseded fetches are
// dropped.
type Loader[T any, O comparable] struct {
	fetch PageFetcher[T, O]
	log   zerolog.Logger
	name  string

	mu         sync.Mutex
	items      []T
	count      int
	order      O
	ascending  bool
	scope      *library.Library
	working    bool
	failed     bool
	finished   bool
	err        error
	generation uint64
	subs       []subscriber[T, O]
	nextSub    int

	pubMu sync.Mutex
	tasks sync.WaitGroup
}

type subscriber[T any, O comparable] struct {
	id int
	fn func(Snapshot[T, O])
}

type settings struct {
	log  zerolog.Logger
	name string
}

// Option configures a Loader.
type Option func(*settings)

// WithLogger attaches a logger used for dispatch and failure events.
func WithLogger(log zerolog.Logger) Option {
	return func(s *settings) { s.log = log }
}

// WithName labels the collection in log output.
func WithName(name string) Option {
	return func(s *settings) { s.name = name }
}

// New builds an empty Loader. A scope must be set before the first load.
func New[T any, O comparable](fetch PageFetcher[T, O], order O, ascending bool, opts ...Option) *Loader[T, O] {
	if fetch == nil {
		panic("lazyload: nil page fetcher")
	}
	cfg := settings{log: zerolog.Nop(), name: "collection"}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Loader[T, O]{
		fetch:     fetch,
		log:       cfg.log.With().Str("collection", cfg.name).Logger(),
		name:      cfg.name,
		order:     order,
		ascending: ascending,
	}
}

// Name returns the collection label.
func (l *Loader[T, O]) Name() string {
	return l.name
}

// Snapshot returns a copy of the current state.
func (l *Loader[T, O]) Snapshot() Snapshot[T, O] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Subscribe registers fn to receive a full snapshot after every state change.
// Notifications are delivered one at a time, in order. fn must not call
// Refresh synchronously. The returned func removes the subscription.
func (l *Loader[T, O]) Subscribe(fn func(Snapshot[T, O])) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextSub++
	id := l.nextSub
	l.subs = append(l.subs, subscriber[T, O]{id: id, fn: fn})
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.subs = slices.DeleteFunc(l.subs, func(s subscriber[T, O]) bool { return s.id == id })
	}
}

// InitialLoad fetches the first page when the view is empty and idle.
func (l *Loader[T, O]) InitialLoad(ctx context.Context) {
	l.dispatch(ctx, true)
}

// LoadMore fetches the page following the loaded items. It is called
// whenever the UI scrolls near the end of what is loaded; calls made while a
// fetch is in flight or after the collection is exhausted do nothing.
func (l *Loader[T, O]) LoadMore(ctx context.Context) {
	l.dispatch(ctx, false)
}

// Refresh drops everything loaded and fetches the first page again, even if a
// fetch is already in flight. It returns once that page has been applied or
// has failed.
func (l *Loader[T, O]) Refresh(ctx context.Context) {
	l.requireScope()
	l.mu.Lock()
	l.resetLocked()
	l.working = true
	gen, order, ascending, scope := l.generation, l.order, l.ascending, l.scope
	l.mu.Unlock()
	l.publish()

	l.tasks.Add(1)
	defer l.tasks.Done()
	l.fetchPage(ctx, gen, 0, order, ascending, scope)
}

// SetSortOrder switches the sort criterion. The view is emptied and any
// fetch in flight is abandoned; the caller triggers the reload.
func (l *Loader[T, O]) SetSortOrder(order O) {
	l.mu.Lock()
	changed := l.setCriteriaLocked(order, l.ascending)
	l.mu.Unlock()
	if changed {
		l.publish()
	}
}

// SetAscending switches the sort direction. See SetSortOrder.
func (l *Loader[T, O]) SetAscending(ascending bool) {
	l.mu.Lock()
	changed := l.setCriteriaLocked(l.order, ascending)
	l.mu.Unlock()
	if changed {
		l.publish()
	}
}

// SetCriteria switches sort order and direction in one step. See SetSortOrder.
func (l *Loader[T, O]) SetCriteria(order O, ascending bool) {
	l.mu.Lock()
	changed := l.setCriteriaLocked(order, ascending)
	l.mu.Unlock()
	if changed {
		l.publish()
	}
}

func (l *Loader[T, O]) setCriteriaLocked(order O, ascending bool) bool {
	if l.order == order && l.ascending == ascending {
		return false
	}
	l.order = order
	l.ascending = ascending
	l.resetLocked()
	return true
}

// SetScope binds the loader to a library. Changing to a different library
// empties the view like a criterion change.
func (l *Loader[T, O]) SetScope(scope *library.Library) {
	if scope == nil {
		panic("lazyload: nil scope")
	}
	l.mu.Lock()
	if l.scope != nil && l.scope.ID == scope.ID {
		l.scope = scope
		l.mu.Unlock()
		return
	}
	hadScope := l.scope != nil
	l.scope = scope
	if hadScope {
		l.resetLocked()
	}
	l.mu.Unlock()
	l.publish()
}

// Wait blocks until every dispatched fetch has settled.
func (l *Loader[T, O]) Wait() {
	l.tasks.Wait()
}

// dispatch claims the next page and fetches it on a new goroutine. The
// busy, exhausted and populated checks happen under the same lock that sets
// working, so of several simultaneous triggers exactly one fetches and the
// rest return without effect.
func (l *Loader[T, O]) dispatch(ctx context.Context, initial bool) {
	l.requireScope()

	l.mu.Lock()
	if l.working || l.finished || (initial && len(l.items) > 0) {
		l.mu.Unlock()
		return
	}
	l.working = true
	l.failed = false
	page := len(l.items) / PageSize
	gen, order, ascending, scope := l.generation, l.order, l.ascending, l.scope
	l.tasks.Add(1)
	l.mu.Unlock()

	go func() {
		defer l.tasks.Done()
		l.publish()
		l.fetchPage(ctx, gen, page, order, ascending, scope)
	}()
}

func (l *Loader[T, O]) fetchPage(ctx context.Context, gen uint64, page int, order O, ascending bool, scope *library.Library) {
	l.log.Debug().Int("page", page).Uint64("generation", gen).Msg("fetching page")

	received, total, err := l.fetch(ctx, page, order, ascending, scope)
	if err == nil && len(received) > PageSize {
		err = fmt.Errorf("%w: page %d returned %d items", ErrPageOverflow, page, len(received))
	}

	l.mu.Lock()
	if gen != l.generation {
		l.mu.Unlock()
		l.log.Debug().Int("page", page).Uint64("generation", gen).Msg("discarding stale page")
		return
	}
	l.working = false
	if err != nil {
		l.failed = true
		l.err = err
		l.mu.Unlock()
		l.log.Warn().Err(err).Int("page", page).Msg("page fetch failed")
		l.publish()
		return
	}
	l.items = append(l.items, received...)
	l.count = total
	l.err = nil
	l.finished = len(received) < PageSize
	loaded, finished := len(l.items), l.finished
	l.mu.Unlock()
	if finished {
		l.log.Debug().Int("items", loaded).Msg("collection exhausted")
	}
	l.publish()
}

// resetLocked empties the view and invalidates any fetch in flight.
func (l *Loader[T, O]) resetLocked() {
	l.generation++
	l.items = nil
	l.count = 0
	l.working = false
	l.failed = false
	l.finished = false
	l.err = nil
}

// requireScope panics when no scope is bound. Scopes are never unset, so the
// check holds for the rest of the caller's operation.
func (l *Loader[T, O]) requireScope() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.scope == nil {
		panic(fmt.Sprintf("lazyload: %s loaded before a scope was set", l.name))
	}
}

func (l *Loader[T, O]) snapshotLocked() Snapshot[T, O] {
	return Snapshot[T, O]{
		Items:      slices.Clone(l.items),
		Count:      l.count,
		SortOrder:  l.order,
		Ascending:  l.ascending,
		Scope:      l.scope,
		Working:    l.working,
		Failed:     l.failed,
		Finished:   l.finished,
		Err:        l.err,
		Generation: l.generation,
	}
}

// publish delivers the latest state to subscribers. pubMu serializes
// deliveries so a subscriber never sees an older snapshot after a newer one.
func (l *Loader[T, O]) publish() {
	l.pubMu.Lock()
	defer l.pubMu.Unlock()

	l.mu.Lock()
	snap := l.snapshotLocked()
	subs := slices.Clone(l.subs)
	l.mu.Unlock()

	for _, s := range subs {
		s.fn(snap)
	}
}
