package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shelver/internal/abs"
	"github.com/five82/shelver/internal/config"
	"github.com/five82/shelver/internal/lazyload"
	"github.com/five82/shelver/internal/library"
	"github.com/five82/shelver/internal/prefs"
)

// fakeServer serves a book library with books items and series series.
type fakeServer struct {
	books       int
	series      int
	failSeries  bool
	itemCalls   atomic.Int32
	seriesCalls atomic.Int32
}

func (f *fakeServer) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, abs.StatusResponse{IsInit: true, ServerVersion: "2.17.2"})
	})
	mux.HandleFunc("/api/libraries", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, abs.LibrariesResponse{Libraries: []abs.LibraryPayload{
			{ID: "pods", Name: "Podcasts", MediaType: "podcast"},
			{ID: "lib-1", Name: "Audiobooks", MediaType: "book"},
		}})
	})
	mux.HandleFunc("/api/libraries/lib-1/items", func(w http.ResponseWriter, r *http.Request) {
		f.itemCalls.Add(1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		lo, hi := pageBounds(page, f.books)
		results := make([]map[string]any, 0, hi-lo)
		for i := lo; i < hi; i++ {
			results = append(results, map[string]any{
				"id":        fmt.Sprintf("book-%d", i),
				"libraryId": "lib-1",
				"mediaType": "book",
				"media": map[string]any{
					"metadata": map[string]any{"title": fmt.Sprintf("Book %d", i), "authorName": "Ann Leckie"},
					"duration": 3600.0,
				},
			})
		}
		writeJSON(t, w, map[string]any{"results": results, "total": f.books})
	})
	mux.HandleFunc("/api/libraries/lib-1/series", func(w http.ResponseWriter, r *http.Request) {
		f.seriesCalls.Add(1)
		if f.failSeries {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		lo, hi := pageBounds(page, f.series)
		results := make([]map[string]any, 0, hi-lo)
		for i := lo; i < hi; i++ {
			results = append(results, map[string]any{"id": fmt.Sprintf("ser-%d", i), "name": fmt.Sprintf("Series %d", i)})
		}
		writeJSON(t, w, map[string]any{"results": results, "total": f.series})
	})
	return mux
}

func pageBounds(page, total int) (int, int) {
	lo := min(page*lazyload.PageSize, total)
	return lo, min(lo+lazyload.PageSize, total)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func testConfig(serverURL string) config.Config {
	return config.Config{
		ServerURL:      serverURL,
		Token:          "token",
		RequestTimeout: 2 * time.Second,
		RetryMax:       0,
		LogLevel:       "info",
	}
}

func TestConnect_PicksFirstBookLibrary(t *testing.T) {
	server := httptest.NewServer((&fakeServer{}).handler(t))
	defer server.Close()

	session, err := Connect(context.Background(), testConfig(server.URL), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "2.17.2", session.Status.ServerVersion)
	assert.Equal(t, "lib-1", session.Library.ID)
	assert.Equal(t, library.MediaBook, session.Library.MediaType)
}

func TestConnect_UnknownLibraryFails(t *testing.T) {
	server := httptest.NewServer((&fakeServer{}).handler(t))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Library = "Comics"
	_, err := Connect(context.Background(), cfg, zerolog.Nop())
	require.Error(t, err)
	assert.ErrorIs(t, err, abs.ErrLibraryNotFound)
}

func TestNewShelf_BookLibraryPreloadsConcurrently(t *testing.T) {
	fake := &fakeServer{books: 250, series: 7}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	session, err := Connect(context.Background(), testConfig(server.URL), zerolog.Nop())
	require.NoError(t, err)

	shelf := NewShelf(session.Client, session.Library, prefs.Defaults(), zerolog.Nop())
	require.NotNil(t, shelf.Audiobooks)
	require.NotNil(t, shelf.Series)
	assert.Nil(t, shelf.Podcasts)

	require.NoError(t, shelf.Preload(context.Background()))
	assert.Len(t, shelf.Audiobooks.Snapshot().Items, 100)
	assert.Equal(t, 250, shelf.Audiobooks.Snapshot().Count)
	assert.Len(t, shelf.Series.Snapshot().Items, 7)
}

func TestShelf_PreloadReportsFailureAndKeepsState(t *testing.T) {
	fake := &fakeServer{books: 10, failSeries: true}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	session, err := Connect(context.Background(), testConfig(server.URL), zerolog.Nop())
	require.NoError(t, err)

	shelf := NewShelf(session.Client, session.Library, prefs.Defaults(), zerolog.Nop())
	err = shelf.Preload(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "series")

	assert.Equal(t, lazyload.StatusFailed, shelf.Series.Snapshot().Status())
	assert.Len(t, shelf.Audiobooks.Snapshot().Items, 10)
}

func TestCollect_DrainsUntilExhausted(t *testing.T) {
	fake := &fakeServer{books: 250}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	session, err := Connect(context.Background(), testConfig(server.URL), zerolog.Nop())
	require.NoError(t, err)
	shelf := NewShelf(session.Client, session.Library, prefs.Defaults(), zerolog.Nop())

	books, total, err := Collect(context.Background(), shelf.Audiobooks, 0)
	require.NoError(t, err)
	assert.Equal(t, 250, total)
	require.Len(t, books, 250)
	assert.Equal(t, "book-0", books[0].ID)
	assert.Equal(t, "book-249", books[249].ID)
	assert.Equal(t, []string{"Ann Leckie"}, books[0].Authors)
	assert.EqualValues(t, 3, fake.itemCalls.Load())
}

func TestCollect_StopsAtPageLimit(t *testing.T) {
	fake := &fakeServer{books: 250}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	session, err := Connect(context.Background(), testConfig(server.URL), zerolog.Nop())
	require.NoError(t, err)
	shelf := NewShelf(session.Client, session.Library, prefs.Defaults(), zerolog.Nop())

	books, total, err := Collect(context.Background(), shelf.Audiobooks, 2)
	require.NoError(t, err)
	assert.Equal(t, 250, total)
	assert.Len(t, books, 200)
	assert.EqualValues(t, 2, fake.itemCalls.Load())
}

func TestCollect_ReturnsFetchError(t *testing.T) {
	fake := &fakeServer{failSeries: true}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	session, err := Connect(context.Background(), testConfig(server.URL), zerolog.Nop())
	require.NoError(t, err)
	shelf := NewShelf(session.Client, session.Library, prefs.Defaults(), zerolog.Nop())

	series, _, err := Collect(context.Background(), shelf.Series, 0)
	require.Error(t, err)
	assert.Empty(t, series)
}
