// Package collections binds the Audiobookshelf page fetchers to lazy loaders,
// one constructor per collection shelver can browse.
package collections

import (
	"context"

	"github.com/five82/shelver/internal/abs"
	"github.com/five82/shelver/internal/lazyload"
	"github.com/five82/shelver/internal/library"
	"github.com/five82/shelver/internal/prefs"
)

type (
	// Audiobooks pages through every audiobook of a library.
	Audiobooks = lazyload.Loader[library.Audiobook, library.AudiobookSortOrder]
	// Series pages through the series of a library.
	Series = lazyload.Loader[library.Series, library.SeriesSortOrder]
	// Podcasts pages through podcasts, which only sort by title.
	Podcasts = lazyload.Loader[library.Podcast, library.NoOrder]
)

// NewAudiobooks returns the library-wide audiobook loader, ordered by the
// stored preference.
func NewAudiobooks(f abs.Fetcher, p prefs.Prefs, opts ...lazyload.Option) *Audiobooks {
	opts = append([]lazyload.Option{lazyload.WithName("audiobooks")}, opts...)
	return lazyload.New(f.FetchAudiobooks, p.AudiobookOrder(), p.AudiobooksAscending, opts...)
}

// NewSeries returns the series loader.
func NewSeries(f abs.Fetcher, p prefs.Prefs, opts ...lazyload.Option) *Series {
	opts = append([]lazyload.Option{lazyload.WithName("series")}, opts...)
	return lazyload.New(f.FetchSeries, p.SeriesOrder(), p.SeriesAscending, opts...)
}

// NewPodcasts returns the podcast loader.
func NewPodcasts(f abs.Fetcher, p prefs.Prefs, opts ...lazyload.Option) *Podcasts {
	fetch := func(ctx context.Context, page int, _ library.NoOrder, ascending bool, lib *library.Library) ([]library.Podcast, int, error) {
		return f.FetchPodcasts(ctx, page, ascending, lib)
	}
	opts = append([]lazyload.Option{lazyload.WithName("podcasts")}, opts...)
	return lazyload.New(fetch, library.NoOrder{}, p.PodcastsAscending, opts...)
}

// NewAudiobooksInSeries returns a loader for the books of one series, in
// series sequence order.
func NewAudiobooksInSeries(f abs.Fetcher, seriesID string, opts ...lazyload.Option) *Audiobooks {
	fetch := func(ctx context.Context, page int, order library.AudiobookSortOrder, ascending bool, lib *library.Library) ([]library.Audiobook, int, error) {
		return f.FetchAudiobooksInSeries(ctx, seriesID, page, order, ascending, lib)
	}
	opts = append([]lazyload.Option{lazyload.WithName("series:" + seriesID)}, opts...)
	return lazyload.New(fetch, library.SortSeriesName, true, opts...)
}
