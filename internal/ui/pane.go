package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shelver/internal/lazyload"
	"github.com/five82/shelver/internal/prefs"
)

// loadMoreThreshold is how many rows before the loaded end a visible row
// requests the next page.
const loadMoreThreshold = 4

// pane is one browsable collection: a tab or a drilled-in series.
type pane interface {
	title() string
	apply(snapshot any) bool
	subscribe(send func(tea.Msg)) func()

	len() int
	cursor() int
	offset() int
	move(delta, height int)
	moveTo(index, height int)
	selected() any

	view() paneView
	row(index, width int) []string
	columns(width int) []column

	initialLoad(ctx context.Context)
	loadMore(ctx context.Context)
	refresh(ctx context.Context) tea.Cmd
	cycleSort(ctx context.Context) tea.Cmd
	toggleOrder(ctx context.Context) tea.Cmd
	storePrefs(p *prefs.Prefs) bool

	// wantsMore reports whether the rows on screen reach far enough down
	// the loaded items to ask for the next page.
	wantsMore(height int) bool
}

// paneView is the footer state of a pane.
type paneView struct {
	Loaded    int
	Total     int
	Remaining int
	Status    lazyload.Status
	Err       error
	SortLabel string
	Ascending bool
	Sortable  bool
}

// snapshotMsg carries a loader snapshot to the pane it belongs to.
type snapshotMsg struct {
	pane     pane
	snapshot any
}

// column describes one table column.
type column struct {
	Title string
	Width int
}

// collectionPane adapts a typed loader to the pane interface.
type collectionPane[T any, O comparable] struct {
	name   string
	loader *lazyload.Loader[T, O]
	snap   lazyload.Snapshot[T, O]

	// next cycles the ordering; nil when the collection has a single order.
	next    func(O) O
	label   func(O) string
	render  func(item T, width int) []string
	layout  func(width int) []column
	persist func(p *prefs.Prefs, order O, ascending bool)

	cur int
	off int
}

func (c *collectionPane[T, O]) title() string { return c.name }

func (c *collectionPane[T, O]) apply(snapshot any) bool {
	snap, ok := snapshot.(lazyload.Snapshot[T, O])
	if !ok || snap.Generation < c.snap.Generation {
		return false
	}
	if snap.Generation != c.snap.Generation {
		c.cur, c.off = 0, 0
	}
	c.snap = snap
	c.clamp()
	return true
}

func (c *collectionPane[T, O]) subscribe(send func(tea.Msg)) func() {
	return c.loader.Subscribe(func(s lazyload.Snapshot[T, O]) {
		send(snapshotMsg{pane: c, snapshot: s})
	})
}

func (c *collectionPane[T, O]) len() int    { return len(c.snap.Items) }
func (c *collectionPane[T, O]) cursor() int { return c.cur }
func (c *collectionPane[T, O]) offset() int { return c.off }

func (c *collectionPane[T, O]) move(delta, height int) {
	c.moveTo(c.cur+delta, height)
}

func (c *collectionPane[T, O]) moveTo(index, height int) {
	c.cur = index
	c.clamp()
	if height < 1 {
		height = 1
	}
	if c.cur < c.off {
		c.off = c.cur
	}
	if c.cur >= c.off+height {
		c.off = c.cur - height + 1
	}
}

func (c *collectionPane[T, O]) clamp() {
	n := len(c.snap.Items)
	if c.cur >= n {
		c.cur = n - 1
	}
	if c.cur < 0 {
		c.cur = 0
	}
	if c.off > c.cur {
		c.off = c.cur
	}
}

func (c *collectionPane[T, O]) selected() any {
	if c.cur < 0 || c.cur >= len(c.snap.Items) {
		return nil
	}
	return c.snap.Items[c.cur]
}

func (c *collectionPane[T, O]) view() paneView {
	v := paneView{
		Loaded:    len(c.snap.Items),
		Total:     c.snap.Count,
		Remaining: c.snap.Remaining(),
		Status:    c.snap.Status(),
		Err:       c.snap.Err,
		Ascending: c.snap.Ascending,
		Sortable:  c.next != nil,
	}
	if c.label != nil {
		v.SortLabel = c.label(c.snap.SortOrder)
	}
	return v
}

func (c *collectionPane[T, O]) row(index, width int) []string {
	if index < 0 || index >= len(c.snap.Items) {
		return nil
	}
	return c.render(c.snap.Items[index], width)
}

func (c *collectionPane[T, O]) columns(width int) []column { return c.layout(width) }

func (c *collectionPane[T, O]) initialLoad(ctx context.Context) { c.loader.InitialLoad(ctx) }

func (c *collectionPane[T, O]) loadMore(ctx context.Context) { c.loader.LoadMore(ctx) }

func (c *collectionPane[T, O]) refresh(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		c.loader.Refresh(ctx)
		return nil
	}
}

func (c *collectionPane[T, O]) cycleSort(ctx context.Context) tea.Cmd {
	if c.next == nil {
		return nil
	}
	snap := c.loader.Snapshot()
	return c.resort(ctx, c.next(snap.SortOrder), snap.Ascending)
}

func (c *collectionPane[T, O]) toggleOrder(ctx context.Context) tea.Cmd {
	snap := c.loader.Snapshot()
	return c.resort(ctx, snap.SortOrder, !snap.Ascending)
}

func (c *collectionPane[T, O]) resort(ctx context.Context, order O, ascending bool) tea.Cmd {
	// Clearing happens here so the view empties before the refetch starts.
	c.loader.SetCriteria(order, ascending)
	return c.refresh(ctx)
}

func (c *collectionPane[T, O]) storePrefs(p *prefs.Prefs) bool {
	if c.persist == nil {
		return false
	}
	snap := c.loader.Snapshot()
	c.persist(p, snap.SortOrder, snap.Ascending)
	return true
}

func (c *collectionPane[T, O]) wantsMore(height int) bool {
	if c.snap.Failed || c.snap.Working || c.snap.Finished || len(c.snap.Items) == 0 {
		return false
	}
	lastVisible := c.off + max(height, 1) - 1
	return c.snap.NearEnd(lastVisible, loadMoreThreshold)
}
