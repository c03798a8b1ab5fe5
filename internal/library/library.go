package library

import (
	"strings"
	"time"
)

// MediaType distinguishes book libraries from podcast libraries.
type MediaType string

const (
	MediaBook    MediaType = "book"
	MediaPodcast MediaType = "podcast"
)

// Library is the scope every collection fetch runs against.
type Library struct {
	ID        string
	Name      string
	MediaType MediaType
}

// Audiobook is a single book item in a library.
type Audiobook struct {
	ID        string
	LibraryID string
	Title     string
	Subtitle  string
	Authors   []string
	Narrators []string
	Series    []SeriesRef
	Genres    []string
	Duration  time.Duration
	Released  string
	AddedAt   time.Time
	Explicit  bool
}

// SeriesRef links an audiobook to a series with its position label.
type SeriesRef struct {
	ID       string
	Name     string
	Sequence string
}

// SortName returns the key used for local alphabetic ordering.
func (a Audiobook) SortName() string {
	return sortName(a.Title, a.Authors)
}

// Matches reports whether query occurs in the audiobook's sort name,
// ignoring case. An empty query matches everything.
func (a Audiobook) Matches(query string) bool {
	return matches(a.SortName(), query)
}

// Series groups audiobooks by series.
type Series struct {
	ID           string
	LibraryID    string
	Name         string
	Description  string
	AudiobookIDs []string
	AddedAt      time.Time
}

// Podcast is a single podcast show in a podcast library.
type Podcast struct {
	ID                 string
	LibraryID          string
	Title              string
	Author             string
	Genres             []string
	EpisodeCount       int
	IncompleteEpisodes int
	Explicit           bool
	AddedAt            time.Time
}

// SortName returns the key used for local alphabetic ordering.
func (p Podcast) SortName() string {
	var authors []string
	if p.Author != "" {
		authors = []string{p.Author}
	}
	return sortName(p.Title, authors)
}

// Matches reports whether query occurs in the podcast's sort name,
// ignoring case.
func (p Podcast) Matches(query string) bool {
	return matches(p.SortName(), query)
}

func sortName(name string, authors []string) string {
	key := strings.ToLower(name)
	key = strings.TrimPrefix(key, "a ")
	key = strings.TrimPrefix(key, "the ")
	key += " " + strings.Join(authors, " ")
	return key
}

func matches(key, query string) bool {
	query = strings.TrimSpace(query)
	return query == "" || strings.Contains(strings.ToLower(key), strings.ToLower(query))
}
