package collections

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shelver/internal/abs"
	"github.com/five82/shelver/internal/lazyload"
	"github.com/five82/shelver/internal/library"
	"github.com/five82/shelver/internal/prefs"
)

type call struct {
	kind      string
	seriesID  string
	page      int
	order     string
	ascending bool
	library   string
}

// fakeFetcher serves total items for every collection and records each call.
type fakeFetcher struct {
	total int

	mu    sync.Mutex
	calls []call
}

var _ abs.Fetcher = (*fakeFetcher)(nil)

func (f *fakeFetcher) record(c call) (lo, hi int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	lo = min(c.page*lazyload.PageSize, f.total)
	hi = min(lo+lazyload.PageSize, f.total)
	return lo, hi
}

func (f *fakeFetcher) recorded() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func (f *fakeFetcher) FetchAudiobooks(_ context.Context, page int, order library.AudiobookSortOrder, ascending bool, lib *library.Library) ([]library.Audiobook, int, error) {
	lo, hi := f.record(call{kind: "audiobooks", page: page, order: string(order), ascending: ascending, library: lib.ID})
	out := make([]library.Audiobook, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, library.Audiobook{ID: fmt.Sprintf("book-%d", i), LibraryID: lib.ID})
	}
	return out, f.total, nil
}

func (f *fakeFetcher) FetchSeries(_ context.Context, page int, order library.SeriesSortOrder, ascending bool, lib *library.Library) ([]library.Series, int, error) {
	lo, hi := f.record(call{kind: "series", page: page, order: string(order), ascending: ascending, library: lib.ID})
	out := make([]library.Series, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, library.Series{ID: fmt.Sprintf("series-%d", i)})
	}
	return out, f.total, nil
}

func (f *fakeFetcher) FetchPodcasts(_ context.Context, page int, ascending bool, lib *library.Library) ([]library.Podcast, int, error) {
	lo, hi := f.record(call{kind: "podcasts", page: page, ascending: ascending, library: lib.ID})
	out := make([]library.Podcast, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, library.Podcast{ID: fmt.Sprintf("pod-%d", i)})
	}
	return out, f.total, nil
}

func (f *fakeFetcher) FetchAudiobooksInSeries(_ context.Context, seriesID string, page int, order library.AudiobookSortOrder, ascending bool, lib *library.Library) ([]library.Audiobook, int, error) {
	lo, hi := f.record(call{kind: "in-series", seriesID: seriesID, page: page, order: string(order), ascending: ascending, library: lib.ID})
	out := make([]library.Audiobook, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, library.Audiobook{ID: fmt.Sprintf("%s-book-%d", seriesID, i)})
	}
	return out, f.total, nil
}

var testLibrary = &library.Library{ID: "lib-1", Name: "Audiobooks", MediaType: library.MediaBook}

func TestNewAudiobooks_UsesStoredOrder(t *testing.T) {
	f := &fakeFetcher{total: 150}
	p := prefs.Defaults()
	p.AudiobooksSort = string(library.SortAdded)
	p.AudiobooksAscending = false

	loader := NewAudiobooks(f, p)
	assert.Equal(t, "audiobooks", loader.Name())

	loader.SetScope(testLibrary)
	loader.Refresh(context.Background())
	loader.LoadMore(context.Background())
	loader.Wait()

	snap := loader.Snapshot()
	assert.Len(t, snap.Items, 150)
	assert.Equal(t, 150, snap.Count)
	assert.Equal(t, library.SortAdded, snap.SortOrder)
	assert.False(t, snap.Ascending)

	calls := f.recorded()
	require.Len(t, calls, 2)
	for i, c := range calls {
		assert.Equal(t, call{kind: "audiobooks", page: i, order: "addedAt", ascending: false, library: "lib-1"}, c)
	}
}

func TestNewSeries_UsesStoredOrder(t *testing.T) {
	f := &fakeFetcher{total: 3}
	p := prefs.Defaults()
	p.SeriesSort = string(library.SeriesSortBookCount)

	loader := NewSeries(f, p)
	loader.SetScope(testLibrary)
	loader.Refresh(context.Background())

	snap := loader.Snapshot()
	assert.Len(t, snap.Items, 3)
	assert.Equal(t, lazyload.StatusExhausted, snap.Status())

	calls := f.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "numBooks", calls[0].order)
	assert.True(t, calls[0].ascending)
}

func TestNewPodcasts_PagesWithoutOrder(t *testing.T) {
	f := &fakeFetcher{total: 100}
	p := prefs.Defaults()
	p.PodcastsAscending = false

	loader := NewPodcasts(f, p)
	loader.SetScope(testLibrary)
	loader.Refresh(context.Background())
	loader.LoadMore(context.Background())
	loader.Wait()
	loader.LoadMore(context.Background())
	loader.Wait()

	snap := loader.Snapshot()
	assert.Len(t, snap.Items, 100)
	assert.Equal(t, lazyload.StatusExhausted, snap.Status())

	// The full first page needs one empty page to confirm the end.
	calls := f.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, 1, calls[1].page)
	assert.False(t, calls[1].ascending)
}

func TestNewAudiobooksInSeries_PassesSeriesID(t *testing.T) {
	f := &fakeFetcher{total: 4}

	loader := NewAudiobooksInSeries(f, "ser-9")
	assert.Equal(t, "series:ser-9", loader.Name())

	loader.SetScope(testLibrary)
	loader.InitialLoad(context.Background())
	loader.Wait()

	snap := loader.Snapshot()
	require.Len(t, snap.Items, 4)
	assert.Equal(t, "ser-9-book-0", snap.Items[0].ID)

	calls := f.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, call{kind: "in-series", seriesID: "ser-9", page: 0, order: "seriesName", ascending: true, library: "lib-1"}, calls[0])
}
