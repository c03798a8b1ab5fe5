package abs

import (
	"strings"
	"time"

	"github.com/five82/shelver/internal/library"
)

// StatusResponse mirrors the unauthenticated /status payload.
type StatusResponse struct {
	IsInit        bool   `json:"isInit"`
	Language      string `json:"language"`
	ServerVersion string `json:"serverVersion"`
}

// LibrariesResponse mirrors /api/libraries.
type LibrariesResponse struct {
	Libraries []LibraryPayload `json:"libraries"`
}

// LibraryPayload describes a library in transport form.
type LibraryPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MediaType string `json:"mediaType"`
}

// ResultResponse is the envelope of every paged listing endpoint.
type ResultResponse[T any] struct {
	Results []T `json:"results"`
	Total   int `json:"total"`
	Limit   int `json:"limit"`
	Page    int `json:"page"`
}

// ItemPayload is a library item (book or podcast) in minified form.
type ItemPayload struct {
	ID                    string       `json:"id"`
	LibraryID             string       `json:"libraryId"`
	MediaType             string       `json:"mediaType"`
	AddedAt               int64        `json:"addedAt"`
	Media                 MediaPayload `json:"media"`
	NumEpisodesIncomplete int          `json:"numEpisodesIncomplete"`
}

// MediaPayload holds the media part of an item.
type MediaPayload struct {
	Metadata    MetadataPayload `json:"metadata"`
	Duration    float64         `json:"duration"`
	NumEpisodes int             `json:"numEpisodes"`
}

// MetadataPayload holds descriptive metadata of books and podcasts.
type MetadataPayload struct {
	Title         string   `json:"title"`
	Subtitle      string   `json:"subtitle"`
	AuthorName    string   `json:"authorName"`
	Author        string   `json:"author"`
	NarratorName  string   `json:"narratorName"`
	SeriesName    string   `json:"seriesName"`
	Genres        []string `json:"genres"`
	PublishedYear string   `json:"publishedYear"`
	ReleaseDate   string   `json:"releaseDate"`
	Explicit      bool     `json:"explicit"`
}

// SeriesPayload is a series entry from /api/libraries/{id}/series.
type SeriesPayload struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	AddedAt     int64         `json:"addedAt"`
	Books       []ItemPayload `json:"books"`
}

func (p LibraryPayload) toLibrary() library.Library {
	return library.Library{ID: p.ID, Name: p.Name, MediaType: library.MediaType(p.MediaType)}
}

func (p ItemPayload) toAudiobook() library.Audiobook {
	meta := p.Media.Metadata
	return library.Audiobook{
		ID:        p.ID,
		LibraryID: p.LibraryID,
		Title:     meta.Title,
		Subtitle:  meta.Subtitle,
		Authors:   splitNames(meta.AuthorName),
		Narrators: splitNames(meta.NarratorName),
		Series:    parseSeriesNames(meta.SeriesName),
		Genres:    meta.Genres,
		Duration:  time.Duration(p.Media.Duration * float64(time.Second)),
		Released:  meta.PublishedYear,
		AddedAt:   parseMillis(p.AddedAt),
		Explicit:  meta.Explicit,
	}
}

func (p ItemPayload) toPodcast() library.Podcast {
	meta := p.Media.Metadata
	return library.Podcast{
		ID:                 p.ID,
		LibraryID:          p.LibraryID,
		Title:              meta.Title,
		Author:             meta.Author,
		Genres:             meta.Genres,
		EpisodeCount:       p.Media.NumEpisodes,
		IncompleteEpisodes: p.NumEpisodesIncomplete,
		Explicit:           meta.Explicit,
		AddedAt:            parseMillis(p.AddedAt),
	}
}

func (p SeriesPayload) toSeries(libraryID string) library.Series {
	ids := make([]string, 0, len(p.Books))
	for _, book := range p.Books {
		ids = append(ids, book.ID)
	}
	return library.Series{
		ID:           p.ID,
		LibraryID:    libraryID,
		Name:         p.Name,
		Description:  p.Description,
		AudiobookIDs: ids,
		AddedAt:      parseMillis(p.AddedAt),
	}
}

func splitNames(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// parseSeriesNames splits "Stormlight Archive #1, Cosmere #4" into refs.
func parseSeriesNames(value string) []library.SeriesRef {
	var out []library.SeriesRef
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ref := library.SeriesRef{Name: part}
		if idx := strings.LastIndex(part, " #"); idx > 0 {
			ref.Name = strings.TrimSpace(part[:idx])
			ref.Sequence = strings.TrimSpace(part[idx+2:])
		}
		out = append(out, ref)
	}
	return out
}

func parseMillis(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
