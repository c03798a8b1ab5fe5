package abs

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/five82/shelver/internal/library"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" {
		t.Fatalf("scheme = %q, want http", u.Scheme)
	}
	if u.Host != defaultServerURL {
		t.Fatalf("host = %q, want %q", u.Host, defaultServerURL)
	}

	u, err = parseBaseURL("https://example.com:1234/abs/?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "/abs" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestCheckVersion(t *testing.T) {
	if err := checkVersion("2.8.1"); err != nil {
		t.Fatalf("checkVersion(2.8.1) returned error: %v", err)
	}
	if err := checkVersion("1.9.0"); !errors.Is(err, ErrUnsupportedServer) {
		t.Fatalf("checkVersion(1.9.0) = %v, want ErrUnsupportedServer", err)
	}
	if err := checkVersion("not-a-version"); !errors.Is(err, ErrUnsupportedServer) {
		t.Fatalf("checkVersion(garbage) = %v, want ErrUnsupportedServer", err)
	}
}

func TestPickLibrary(t *testing.T) {
	libs := []library.Library{
		{ID: "pod", Name: "Podcasts", MediaType: library.MediaPodcast},
		{ID: "bk", Name: "Audiobooks", MediaType: library.MediaBook},
	}
	if lib, ok := pickLibrary(libs, ""); !ok || lib.ID != "bk" {
		t.Fatalf("pickLibrary(empty) = %#v, %v, want first book library", lib, ok)
	}
	if lib, ok := pickLibrary(libs, "podcasts"); !ok || lib.ID != "pod" {
		t.Fatalf("pickLibrary(name) = %#v, %v, want pod", lib, ok)
	}
	if lib, ok := pickLibrary(libs, "bk"); !ok || lib.ID != "bk" {
		t.Fatalf("pickLibrary(id) = %#v, %v, want bk", lib, ok)
	}
	if _, ok := pickLibrary(libs, "missing"); ok {
		t.Fatalf("pickLibrary(missing) returned ok")
	}
	if _, ok := pickLibrary(nil, ""); ok {
		t.Fatalf("pickLibrary(nil) returned ok")
	}
}

func TestClient_FetchesListingsAndEncodesQueries(t *testing.T) {
	t.Parallel()

	var (
		gotItemQueries []url.Values
		gotSeriesQuery url.Values
		gotAuth        string
		gotRequestID   string
		gotUserAgent   string
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/abs/status":
			_ = json.NewEncoder(w).Encode(StatusResponse{IsInit: true, ServerVersion: "2.17.0"})
		case "/abs/api/libraries":
			_ = json.NewEncoder(w).Encode(LibrariesResponse{Libraries: []LibraryPayload{
				{ID: "lib1", Name: "Books", MediaType: "book"},
			}})
		case "/abs/api/libraries/lib1/items":
			gotItemQueries = append(gotItemQueries, r.URL.Query())
			_, _ = w.Write([]byte(`{
				"results": [{
					"id": "li_1",
					"libraryId": "lib1",
					"mediaType": "book",
					"addedAt": 1700000000000,
					"numEpisodesIncomplete": 3,
					"media": {
						"duration": 3600.5,
						"numEpisodes": 12,
						"metadata": {
							"title": "The Way of Kings",
							"authorName": "Brandon Sanderson",
							"author": "Host",
							"narratorName": "Michael Kramer, Kate Reading",
							"seriesName": "The Stormlight Archive #1",
							"publishedYear": "2010"
						}
					}
				}],
				"total": 250, "limit": 100, "page": 0
			}`))
		case "/abs/api/libraries/lib1/series":
			gotSeriesQuery = r.URL.Query()
			_, _ = w.Write([]byte(`{"results":[{"id":"ser_1","name":"Cosmere","addedAt":1700000000000,"books":[{"id":"li_1"},{"id":"li_2"}]}],"total":7}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL+"/abs/", "secret", WithRetryMax(0))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	status, err := c.CheckServer(ctx)
	if err != nil {
		t.Fatalf("CheckServer returned error: %v", err)
	}
	if status.ServerVersion != "2.17.0" {
		t.Fatalf("ServerVersion = %q, want 2.17.0", status.ServerVersion)
	}

	lib, err := c.ResolveLibrary(ctx, "books")
	if err != nil {
		t.Fatalf("ResolveLibrary returned error: %v", err)
	}
	if lib.ID != "lib1" || lib.MediaType != library.MediaBook {
		t.Fatalf("ResolveLibrary = %#v, want lib1 book", lib)
	}

	books, total, err := c.FetchAudiobooks(ctx, 2, library.SortAuthor, false, lib)
	if err != nil {
		t.Fatalf("FetchAudiobooks returned error: %v", err)
	}
	if total != 250 || len(books) != 1 {
		t.Fatalf("FetchAudiobooks = %d items total %d, want 1 item total 250", len(books), total)
	}
	book := books[0]
	if book.Title != "The Way of Kings" || len(book.Narrators) != 2 || book.Narrators[1] != "Kate Reading" {
		t.Fatalf("FetchAudiobooks book = %#v", book)
	}
	if len(book.Series) != 1 || book.Series[0].Name != "The Stormlight Archive" || book.Series[0].Sequence != "1" {
		t.Fatalf("book series = %#v, want Stormlight #1", book.Series)
	}
	if book.Duration != 3600*time.Second+500*time.Millisecond {
		t.Fatalf("book duration = %v", book.Duration)
	}
	if book.AddedAt.UnixMilli() != 1700000000000 {
		t.Fatalf("book addedAt = %v", book.AddedAt)
	}
	q := gotItemQueries[0]
	if q.Get("page") != "2" || q.Get("limit") != "100" || q.Get("sort") != "media.metadata.authorNameLF" || q.Get("desc") != "1" {
		t.Fatalf("FetchAudiobooks query = %v, want page/limit/sort/desc encoded", q)
	}

	if _, _, err := c.FetchAudiobooksInSeries(ctx, "ser_1", 0, library.SortSeriesName, true, lib); err != nil {
		t.Fatalf("FetchAudiobooksInSeries returned error: %v", err)
	}
	q = gotItemQueries[1]
	wantFilter := "series." + base64.StdEncoding.EncodeToString([]byte("ser_1"))
	if q.Get("filter") != wantFilter || q.Has("sort") || q.Get("desc") != "0" {
		t.Fatalf("FetchAudiobooksInSeries query = %v, want filter %q and no sort", q, wantFilter)
	}

	podcasts, _, err := c.FetchPodcasts(ctx, 0, true, lib)
	if err != nil {
		t.Fatalf("FetchPodcasts returned error: %v", err)
	}
	if podcasts[0].EpisodeCount != 12 || podcasts[0].IncompleteEpisodes != 3 || podcasts[0].Author != "Host" {
		t.Fatalf("FetchPodcasts podcast = %#v", podcasts[0])
	}
	if gotItemQueries[2].Get("include") != "numEpisodesIncomplete" {
		t.Fatalf("FetchPodcasts query = %v, want include", gotItemQueries[2])
	}

	series, total, err := c.FetchSeries(ctx, 1, library.SeriesSortBookCount, true, lib)
	if err != nil {
		t.Fatalf("FetchSeries returned error: %v", err)
	}
	if total != 7 || series[0].Name != "Cosmere" || len(series[0].AudiobookIDs) != 2 || series[0].LibraryID != "lib1" {
		t.Fatalf("FetchSeries = %#v total %d", series, total)
	}
	if gotSeriesQuery.Get("sort") != "numBooks" || gotSeriesQuery.Get("page") != "1" || gotSeriesQuery.Get("desc") != "0" {
		t.Fatalf("FetchSeries query = %v", gotSeriesQuery)
	}

	if gotAuth != "Bearer secret" {
		t.Fatalf("Authorization = %q, want bearer token", gotAuth)
	}
	if len(gotRequestID) != 26 {
		t.Fatalf("X-Request-ID = %q, want a ULID", gotRequestID)
	}
	if !strings.HasPrefix(gotUserAgent, "shelver/") {
		t.Fatalf("User-Agent = %q, want shelver/*", gotUserAgent)
	}
}

func TestClient_RequiresLibraryAndSeries(t *testing.T) {
	c, err := NewClient("127.0.0.1:1", "")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, _, err := c.FetchAudiobooks(context.Background(), 0, library.SortTitle, true, nil); err == nil {
		t.Fatalf("FetchAudiobooks(nil library) returned nil error")
	}
	lib := &library.Library{ID: "x"}
	if _, _, err := c.FetchAudiobooksInSeries(context.Background(), " ", 0, library.SortTitle, true, lib); err == nil {
		t.Fatalf("FetchAudiobooksInSeries(empty series) returned nil error")
	}
}

func TestClient_HTTPErrorsAndDecodeError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/status":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{not-json"))
		case "/api/libraries":
			http.Error(w, "nope", http.StatusUnauthorized)
		case "/api/libraries/lib1/series":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, "bad", WithRetryMax(0))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.FetchStatus(context.Background())
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("FetchStatus error = %v, want decode response error", err)
	}

	_, err = c.FetchLibraries(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("FetchLibraries error = %v, want ErrUnauthorized", err)
	}

	_, _, err = c.FetchSeries(context.Background(), 0, library.SeriesSortName, true, &library.Library{ID: "lib1"})
	if err == nil || !strings.Contains(err.Error(), "returned status 500") {
		t.Fatalf("FetchSeries error = %v, want status 500 error", err)
	}
}

func TestClient_RetriesTransientServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"libraries":[]}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, "", WithRetryMax(1))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	libs, err := c.FetchLibraries(context.Background())
	if err != nil {
		t.Fatalf("FetchLibraries returned error: %v", err)
	}
	if len(libs) != 0 || calls.Load() != 2 {
		t.Fatalf("FetchLibraries = %v after %d calls, want empty after 2", libs, calls.Load())
	}
}
