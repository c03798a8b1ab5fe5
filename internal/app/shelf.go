package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/five82/shelver/internal/abs"
	"github.com/five82/shelver/internal/collections"
	"github.com/five82/shelver/internal/lazyload"
	"github.com/five82/shelver/internal/library"
	"github.com/five82/shelver/internal/prefs"
)

// Shelf holds the top-level loaders for one library. Book libraries get
// audiobooks and series; podcast libraries get podcasts.
type Shelf struct {
	Audiobooks *collections.Audiobooks
	Series     *collections.Series
	Podcasts   *collections.Podcasts
}

// NewShelf builds the loaders that apply to lib, already scoped to it.
func NewShelf(f abs.Fetcher, lib *library.Library, p prefs.Prefs, log zerolog.Logger) Shelf {
	var shelf Shelf
	if lib.MediaType == library.MediaPodcast {
		shelf.Podcasts = collections.NewPodcasts(f, p, lazyload.WithLogger(log))
		shelf.Podcasts.SetScope(lib)
		return shelf
	}
	shelf.Audiobooks = collections.NewAudiobooks(f, p, lazyload.WithLogger(log))
	shelf.Audiobooks.SetScope(lib)
	shelf.Series = collections.NewSeries(f, p, lazyload.WithLogger(log))
	shelf.Series.SetScope(lib)
	return shelf
}

// Preload fetches the first page of every loader concurrently and returns
// the first failure. Loaders that failed keep their failed state.
func (s Shelf) Preload(ctx context.Context) error {
	var g errgroup.Group
	if s.Audiobooks != nil {
		g.Go(func() error { return preloadOne(ctx, s.Audiobooks) })
	}
	if s.Series != nil {
		g.Go(func() error { return preloadOne(ctx, s.Series) })
	}
	if s.Podcasts != nil {
		g.Go(func() error { return preloadOne(ctx, s.Podcasts) })
	}
	return g.Wait()
}

func preloadOne[T any, O comparable](ctx context.Context, l *lazyload.Loader[T, O]) error {
	l.Refresh(ctx)
	if snap := l.Snapshot(); snap.Failed {
		return fmt.Errorf("preload %s: %w", l.Name(), snap.Err)
	}
	return nil
}

// Collect drives l headlessly from the first page until the collection is
// exhausted, a fetch fails or maxPages pages have been fetched (zero means
// no limit). It returns what was loaded and the server's total count.
func Collect[T any, O comparable](ctx context.Context, l *lazyload.Loader[T, O], maxPages int) ([]T, int, error) {
	l.Refresh(ctx)
	for pages := 1; ; pages++ {
		snap := l.Snapshot()
		switch {
		case snap.Failed:
			return snap.Items, snap.Count, fmt.Errorf("load %s: %w", l.Name(), snap.Err)
		case snap.Finished:
			return snap.Items, snap.Count, nil
		case maxPages > 0 && pages >= maxPages:
			return snap.Items, snap.Count, nil
		case ctx.Err() != nil:
			return snap.Items, snap.Count, ctx.Err()
		}
		l.LoadMore(ctx)
		l.Wait()
	}
}
