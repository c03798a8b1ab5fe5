package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/five82/shelver/internal/library"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"

	tabPadding = 2
)

func validFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}

// listing is the structured form of every list command. Loaded counts what
// was fetched; Items holds only the entries that passed Match.
type listing[T any] struct {
	Total  int    `json:"total" yaml:"total"`
	Loaded int    `json:"loaded" yaml:"loaded"`
	Match  string `json:"match,omitempty" yaml:"match,omitempty"`
	Items  []T    `json:"items" yaml:"items"`
}

// counts describes the collection a listing was cut from.
type counts struct {
	loaded int
	total  int
	match  string
}

// filter keeps the items that match query.
func filter[T interface{ Matches(string) bool }](items []T, query string) []T {
	if query == "" {
		return items
	}
	kept := make([]T, 0, len(items))
	for _, item := range items {
		if item.Matches(query) {
			kept = append(kept, item)
		}
	}
	return kept
}

type audiobookRow struct {
	ID        string   `json:"id" yaml:"id"`
	Title     string   `json:"title" yaml:"title"`
	Authors   []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Narrators []string `json:"narrators,omitempty" yaml:"narrators,omitempty"`
	Series    []string `json:"series,omitempty" yaml:"series,omitempty"`
	Duration  string   `json:"duration" yaml:"duration"`
	Released  string   `json:"released,omitempty" yaml:"released,omitempty"`
	AddedAt   string   `json:"addedAt,omitempty" yaml:"addedAt,omitempty"`
}

type seriesRow struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Books int    `json:"books" yaml:"books"`
}

type podcastRow struct {
	ID         string `json:"id" yaml:"id"`
	Title      string `json:"title" yaml:"title"`
	Author     string `json:"author,omitempty" yaml:"author,omitempty"`
	Episodes   int    `json:"episodes" yaml:"episodes"`
	Incomplete int    `json:"incomplete" yaml:"incomplete"`
}

type libraryRow struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	MediaType string `json:"mediaType" yaml:"mediaType"`
	Selected  bool   `json:"selected" yaml:"selected"`
}

func writeAudiobooks(w io.Writer, format string, books []library.Audiobook, c counts) error {
	books = filter(books, c.match)
	rows := make([]audiobookRow, 0, len(books))
	for _, b := range books {
		series := make([]string, 0, len(b.Series))
		for _, s := range b.Series {
			name := s.Name
			if s.Sequence != "" {
				name += " #" + s.Sequence
			}
			series = append(series, name)
		}
		rows = append(rows, audiobookRow{
			ID:        b.ID,
			Title:     b.Title,
			Authors:   b.Authors,
			Narrators: b.Narrators,
			Series:    series,
			Duration:  formatDuration(b.Duration),
			Released:  b.Released,
			AddedAt:   formatTime(b.AddedAt),
		})
	}
	return write(w, format, listing[audiobookRow]{Total: c.total, Loaded: c.loaded, Match: c.match, Items: rows}, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "TITLE\tAUTHOR\tSERIES\tDURATION")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Title, strings.Join(r.Authors, ", "), strings.Join(r.Series, ", "), r.Duration)
		}
	})
}

func writeSeries(w io.Writer, format string, series []library.Series, total int) error {
	rows := make([]seriesRow, 0, len(series))
	for _, s := range series {
		rows = append(rows, seriesRow{ID: s.ID, Name: s.Name, Books: len(s.AudiobookIDs)})
	}
	return write(w, format, listing[seriesRow]{Total: total, Loaded: len(series), Items: rows}, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "NAME\tBOOKS\tID")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", r.Name, r.Books, r.ID)
		}
	})
}

func writePodcasts(w io.Writer, format string, podcasts []library.Podcast, c counts) error {
	podcasts = filter(podcasts, c.match)
	rows := make([]podcastRow, 0, len(podcasts))
	for _, p := range podcasts {
		rows = append(rows, podcastRow{
			ID:         p.ID,
			Title:      p.Title,
			Author:     p.Author,
			Episodes:   p.EpisodeCount,
			Incomplete: p.IncompleteEpisodes,
		})
	}
	return write(w, format, listing[podcastRow]{Total: c.total, Loaded: c.loaded, Match: c.match, Items: rows}, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "TITLE\tAUTHOR\tEPISODES\tUNPLAYED")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", r.Title, r.Author, r.Episodes, r.Incomplete)
		}
	})
}

func writeLibraries(w io.Writer, format string, libs []library.Library, selectedID string) error {
	rows := make([]libraryRow, 0, len(libs))
	for _, l := range libs {
		rows = append(rows, libraryRow{ID: l.ID, Name: l.Name, MediaType: string(l.MediaType), Selected: l.ID == selectedID})
	}
	if format != formatText {
		return encode(w, format, rows)
	}
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintln(tw, "\tNAME\tTYPE\tID")
	for _, r := range rows {
		marker := ""
		if r.Selected {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", marker, r.Name, r.MediaType, r.ID)
	}
	return tw.Flush()
}

// write renders v as JSON or YAML, or calls table followed by a summary line
// for text output.
func write[T any](w io.Writer, format string, v listing[T], table func(*tabwriter.Writer)) error {
	if format != formatText {
		return encode(w, format, v)
	}
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	table(tw)
	if err := tw.Flush(); err != nil {
		return err
	}
	if v.Match != "" {
		_, err := fmt.Fprintf(w, "\n%d matching %q, %d of %d loaded\n", len(v.Items), v.Match, v.Loaded, v.Total)
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d of %d loaded\n", v.Loaded, v.Total)
	return err
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return validFormat(format)
	}
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	d = d.Round(time.Minute)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", h, m)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
