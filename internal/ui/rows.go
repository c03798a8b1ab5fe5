package ui

import (
	"fmt"
	"strings"

	"github.com/five82/shelver/internal/collections"
	"github.com/five82/shelver/internal/library"
	"github.com/five82/shelver/internal/prefs"
)

func newAudiobooksPane(loader *collections.Audiobooks) *collectionPane[library.Audiobook, library.AudiobookSortOrder] {
	return &collectionPane[library.Audiobook, library.AudiobookSortOrder]{
		name:   "Audiobooks",
		loader: loader,
		snap:   loader.Snapshot(),
		next:   nextLibraryOrder,
		label:  library.AudiobookSortOrder.Label,
		render: audiobookRow,
		layout: audiobookColumns,
		persist: func(p *prefs.Prefs, order library.AudiobookSortOrder, ascending bool) {
			p.AudiobooksSort = string(order)
			p.AudiobooksAscending = ascending
		},
	}
}

// newSeriesBooksPane lists the books of one series. Sort choices there are
// not persisted.
func newSeriesBooksPane(series library.Series, loader *collections.Audiobooks) *collectionPane[library.Audiobook, library.AudiobookSortOrder] {
	return &collectionPane[library.Audiobook, library.AudiobookSortOrder]{
		name:   series.Name,
		loader: loader,
		snap:   loader.Snapshot(),
		next:   library.AudiobookSortOrder.Next,
		label:  library.AudiobookSortOrder.Label,
		render: audiobookRow,
		layout: audiobookColumns,
	}
}

func newSeriesPane(loader *collections.Series) *collectionPane[library.Series, library.SeriesSortOrder] {
	return &collectionPane[library.Series, library.SeriesSortOrder]{
		name:   "Series",
		loader: loader,
		snap:   loader.Snapshot(),
		next:   library.SeriesSortOrder.Next,
		label:  library.SeriesSortOrder.Label,
		render: seriesRow,
		layout: seriesColumns,
		persist: func(p *prefs.Prefs, order library.SeriesSortOrder, ascending bool) {
			p.SeriesSort = string(order)
			p.SeriesAscending = ascending
		},
	}
}

func newPodcastsPane(loader *collections.Podcasts) *collectionPane[library.Podcast, library.NoOrder] {
	return &collectionPane[library.Podcast, library.NoOrder]{
		name:   "Podcasts",
		loader: loader,
		snap:   loader.Snapshot(),
		label:  func(library.NoOrder) string { return "Title" },
		render: podcastRow,
		layout: podcastColumns,
		persist: func(p *prefs.Prefs, _ library.NoOrder, ascending bool) {
			p.PodcastsAscending = ascending
		},
	}
}

// nextLibraryOrder cycles audiobook orders, skipping series position which
// only means something inside a series.
func nextLibraryOrder(o library.AudiobookSortOrder) library.AudiobookSortOrder {
	next := o.Next()
	if next == library.SortSeriesName {
		next = next.Next()
	}
	return next
}

// splitWidth divides width among weighted columns after fixed ones.
func splitWidth(width, fixed int, weights ...int) []int {
	free := max(width-fixed, len(weights)*8)
	total := 0
	for _, w := range weights {
		total += w
	}
	out := make([]int, len(weights))
	for i, w := range weights {
		out[i] = free * w / total
	}
	return out
}

func audiobookColumns(width int) []column {
	flex := splitWidth(width, 10+4, 5, 3, 3)
	return []column{
		{Title: "Title", Width: flex[0]},
		{Title: "Author", Width: flex[1]},
		{Title: "Series", Width: flex[2]},
		{Title: "Length", Width: 10},
	}
}

func audiobookRow(b library.Audiobook, width int) []string {
	cols := audiobookColumns(width)
	title := b.Title
	if b.Subtitle != "" {
		title = b.Title + ": " + b.Subtitle
	}
	series := make([]string, 0, len(b.Series))
	for _, ref := range b.Series {
		series = append(series, strings.TrimSpace(ref.Name+ternary(ref.Sequence != "", " #"+ref.Sequence, "")))
	}
	return []string{
		truncate(title, cols[0].Width),
		truncate(joinNames(b.Authors, 2), cols[1].Width),
		truncate(joinNames(series, 1), cols[2].Width),
		formatRuntime(b.Duration),
	}
}

func seriesColumns(width int) []column {
	flex := splitWidth(width, 8+2, 1)
	return []column{
		{Title: "Name", Width: flex[0]},
		{Title: "Books", Width: 8},
	}
}

func seriesRow(s library.Series, width int) []string {
	cols := seriesColumns(width)
	return []string{
		truncate(s.Name, cols[0].Width),
		fmt.Sprintf("%d", len(s.AudiobookIDs)),
	}
}

func podcastColumns(width int) []column {
	flex := splitWidth(width, 12+4, 3, 2)
	return []column{
		{Title: "Title", Width: flex[0]},
		{Title: "Author", Width: flex[1]},
		{Title: "Episodes", Width: 12},
	}
}

func podcastRow(p library.Podcast, width int) []string {
	cols := podcastColumns(width)
	episodes := fmt.Sprintf("%d", p.EpisodeCount)
	if p.IncompleteEpisodes > 0 {
		episodes = fmt.Sprintf("%d (%d new)", p.EpisodeCount, p.IncompleteEpisodes)
	}
	return []string{
		truncate(p.Title, cols[0].Width),
		truncate(p.Author, cols[1].Width),
		episodes,
	}
}
