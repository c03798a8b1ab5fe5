package library

import (
	"fmt"
	"strings"
)

// AudiobookSortOrder selects the server-side ordering of audiobook pages.
type AudiobookSortOrder string

const (
	SortTitle      AudiobookSortOrder = "title"
	SortAuthor     AudiobookSortOrder = "authorName"
	SortPublished  AudiobookSortOrder = "published"
	SortAdded      AudiobookSortOrder = "addedAt"
	SortDuration   AudiobookSortOrder = "duration"
	SortSize       AudiobookSortOrder = "size"
	SortLastPlayed AudiobookSortOrder = "lastPlayed"
	SortSeriesName AudiobookSortOrder = "seriesName"
)

var audiobookSortOrders = []AudiobookSortOrder{
	SortTitle, SortAuthor, SortPublished, SortAdded,
	SortDuration, SortSize, SortLastPlayed, SortSeriesName,
}

// AudiobookSortOrders lists every supported audiobook ordering in display order.
func AudiobookSortOrders() []AudiobookSortOrder {
	out := make([]AudiobookSortOrder, len(audiobookSortOrders))
	copy(out, audiobookSortOrders)
	return out
}

// QueryValue returns the value the server expects in the sort parameter.
func (o AudiobookSortOrder) QueryValue() string {
	switch o {
	case SortTitle:
		return "media.metadata.title"
	case SortAuthor:
		return "media.metadata.authorNameLF"
	case SortPublished:
		return "media.metadata.publishedYear"
	case SortAdded:
		return "addedAt"
	case SortDuration:
		return "media.duration"
	case SortSize:
		return "size"
	case SortLastPlayed:
		return "progress"
	case SortSeriesName:
		return "sequence"
	default:
		return "media.metadata.title"
	}
}

// Label is the human readable name of the ordering.
func (o AudiobookSortOrder) Label() string {
	switch o {
	case SortAuthor:
		return "Author"
	case SortPublished:
		return "Published"
	case SortAdded:
		return "Added"
	case SortDuration:
		return "Duration"
	case SortSize:
		return "Size"
	case SortLastPlayed:
		return "Last played"
	case SortSeriesName:
		return "Series position"
	default:
		return "Title"
	}
}

// Next cycles to the following ordering, wrapping at the end.
func (o AudiobookSortOrder) Next() AudiobookSortOrder {
	for i, candidate := range audiobookSortOrders {
		if candidate == o {
			return audiobookSortOrders[(i+1)%len(audiobookSortOrders)]
		}
	}
	return SortTitle
}

// ParseAudiobookSortOrder accepts the identifiers used in prefs and flags.
func ParseAudiobookSortOrder(value string) (AudiobookSortOrder, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range audiobookSortOrders {
		if strings.EqualFold(trimmed, string(candidate)) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("unknown audiobook sort order %q", value)
}

// SeriesSortOrder selects the server-side ordering of series pages.
type SeriesSortOrder string

const (
	SeriesSortName          SeriesSortOrder = "name"
	SeriesSortBookCount     SeriesSortOrder = "numBooks"
	SeriesSortAdded         SeriesSortOrder = "addedAt"
	SeriesSortLastBookAdded SeriesSortOrder = "lastBookAdded"
	SeriesSortDuration      SeriesSortOrder = "totalDuration"
)

var seriesSortOrders = []SeriesSortOrder{
	SeriesSortName, SeriesSortBookCount, SeriesSortAdded,
	SeriesSortLastBookAdded, SeriesSortDuration,
}

// QueryValue returns the value the server expects in the sort parameter.
func (o SeriesSortOrder) QueryValue() string {
	if o == "" {
		return string(SeriesSortName)
	}
	return string(o)
}

// Label is the human readable name of the ordering.
func (o SeriesSortOrder) Label() string {
	switch o {
	case SeriesSortBookCount:
		return "Books"
	case SeriesSortAdded:
		return "Added"
	case SeriesSortLastBookAdded:
		return "Last book added"
	case SeriesSortDuration:
		return "Duration"
	default:
		return "Name"
	}
}

// Next cycles to the following ordering, wrapping at the end.
func (o SeriesSortOrder) Next() SeriesSortOrder {
	for i, candidate := range seriesSortOrders {
		if candidate == o {
			return seriesSortOrders[(i+1)%len(seriesSortOrders)]
		}
	}
	return SeriesSortName
}

// ParseSeriesSortOrder accepts the identifiers used in prefs and flags.
func ParseSeriesSortOrder(value string) (SeriesSortOrder, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range seriesSortOrders {
		if strings.EqualFold(trimmed, string(candidate)) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("unknown series sort order %q", value)
}

// NoOrder is the order key for collections the server cannot sort.
type NoOrder struct{}
