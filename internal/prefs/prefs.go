// Package prefs handles shelver user preferences persistence.
// Preferences are stored in ~/.config/shelver/prefs.toml.
package prefs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/shelver/internal/library"
)

// Prefs holds user preferences for shelver: the theme and the last sort
// choice of every collection view.
type Prefs struct {
	Theme               string `toml:"theme"`
	AudiobooksSort      string `toml:"audiobooks_sort"`
	AudiobooksAscending bool   `toml:"audiobooks_ascending"`
	SeriesSort          string `toml:"series_sort"`
	SeriesAscending     bool   `toml:"series_ascending"`
	PodcastsAscending   bool   `toml:"podcasts_ascending"`
}

const (
	defaultPrefsPath = "~/.config/shelver/prefs.toml"
	defaultTheme     = "Nightfox"
)

// Defaults returns the preferences used when no file exists.
func Defaults() Prefs {
	return Prefs{
		Theme:               defaultTheme,
		AudiobooksSort:      string(library.SortTitle),
		AudiobooksAscending: true,
		SeriesSort:          string(library.SeriesSortName),
		SeriesAscending:     true,
		PodcastsAscending:   true,
	}
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// AudiobookOrder returns the stored audiobook ordering, or title order when
// the stored value is unknown.
func (p Prefs) AudiobookOrder() library.AudiobookSortOrder {
	order, err := library.ParseAudiobookSortOrder(p.AudiobooksSort)
	if err != nil {
		return library.SortTitle
	}
	return order
}

// SeriesOrder returns the stored series ordering, or name order when the
// stored value is unknown.
func (p Prefs) SeriesOrder() library.SeriesSortOrder {
	order, err := library.ParseSeriesSortOrder(p.SeriesSort)
	if err != nil {
		return library.SeriesSortName
	}
	return order
}

// Load reads preferences from the given path, falling back to defaults if missing.
func Load(path string) (Prefs, error) {
	prefs := Defaults()

	resolved, err := resolvePath(path)
	if err != nil {
		return prefs, nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		return prefs, nil // Graceful degradation, missing or unreadable
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return prefs, nil // Graceful degradation
	}

	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Defaults(), nil // Graceful degradation
	}

	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = defaultTheme
	}

	return prefs, nil
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
